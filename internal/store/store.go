// Package store owns the in-memory application state of a client session. It
// decides whether the remote store or the local cache is the source of truth,
// applies mutations optimistically and mirrors every transition to the cache.
//
// Create and Update are optimistic: local state changes first and a remote
// failure never rolls it back. Delete is the exception; in remote-backed mode
// the remote delete must succeed before local state changes.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kindling/internal/cache"
	"kindling/internal/domain"
	"kindling/internal/paia"
	"kindling/internal/search"
	appErrors "kindling/pkg/errors"
)

// Remote is the server side of the session.
type Remote interface {
	// LoadAll reads ideas, themes and learnings.
	LoadAll(ctx context.Context) (domain.AppData, error)
	// CreateIdea stores a new idea and returns the server-confirmed record, whose id may differ.
	CreateIdea(ctx context.Context, idea domain.Idea) (domain.Idea, error)
	UpdateIdea(ctx context.Context, id string, patch domain.IdeaPatch) error
	DeleteIdea(ctx context.Context, id string) error
}

var (
	// ErrNotLoaded is returned by mutations issued before Load.
	ErrNotLoaded = errors.New("store not loaded")
	// ErrOffline is the sync error recorded when the first remote read fails.
	ErrOffline = errors.New("using offline mode")
	// ErrNoRemote is the sync error recorded when no remote is configured.
	ErrNoRemote = errors.New("no remote configured")
)

// Options tune a Store. Zero values pick defaults.
type Options struct {
	Logger        *zap.Logger
	Now           func() time.Time
	NewID         func() string
	RemoteTimeout time.Duration
}

// Store is the single owner of a session's AppData.
type Store struct {
	remote Remote
	cache  cache.Cache
	logger *zap.Logger
	now    func() time.Time
	newID  func() string

	remoteTimeout time.Duration

	mu      sync.Mutex
	data    domain.AppData
	mode    Mode
	syncErr error

	pending sync.WaitGroup
}

// New creates a store in ModeInitializing. remote may be nil, in which case Load
// goes straight to local-only.
func New(remote Remote, c cache.Cache, opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.RemoteTimeout == 0 {
		opts.RemoteTimeout = 15 * time.Second
	}
	if c == nil {
		c = cache.NewMemory()
	}
	return &Store{
		remote:        remote,
		cache:         c,
		logger:        opts.Logger,
		now:           opts.Now,
		newID:         opts.NewID,
		remoteTimeout: opts.RemoteTimeout,
		data:          domain.DefaultAppData(opts.Now()),
		mode:          ModeInitializing,
	}
}

// Mode returns the current consistency mode.
func (s *Store) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SyncError returns the persistent warning set when the session fell back to
// local-only. It is cleared only by a successful Resync.
func (s *Store) SyncError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncErr
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() domain.AppData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Wait blocks until every background remote update has finished.
func (s *Store) Wait() {
	s.pending.Wait()
}

// Load performs the initial read. A remote failure is not returned: the store
// falls back to the cached snapshot and enters local-only mode.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	if s.mode != ModeInitializing {
		s.mu.Unlock()
		return errors.New("store already loaded")
	}
	s.mu.Unlock()

	cached, haveCache, err := s.cache.Load(ctx)
	if err != nil {
		s.logger.Warn("Local cache unreadable", zap.Error(err))
		haveCache = false
	}

	if s.remote != nil {
		remoteData, err := s.loadRemote(ctx)
		if err == nil {
			s.mu.Lock()
			s.data = s.mergeRemote(remoteData, cached, haveCache)
			s.mode = ModeRemoteBacked
			s.syncErr = nil
			s.mirrorLocked(ctx)
			s.mu.Unlock()
			s.logger.Info("Session loaded from remote", zap.Int("ideas", len(remoteData.Ideas)))
			return nil
		}
		s.logger.Warn("Remote unreachable, using local cache", zap.Error(err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if haveCache {
		s.data = cached
	}
	s.mode = ModeLocalOnly
	if s.remote == nil {
		s.syncErr = ErrNoRemote
	} else {
		s.syncErr = ErrOffline
	}
	s.logger.Info("Session loaded from local cache", zap.Bool("cached", haveCache), zap.Int("ideas", len(s.data.Ideas)))
	return nil
}

// Resync re-reads the remote store and, on success, replaces local state wholesale.
// Local-only edits that never reached the remote are discarded. On failure the
// mode is unchanged and the error is recorded and returned.
func (s *Store) Resync(ctx context.Context) error {
	if s.remote == nil {
		return ErrNoRemote
	}
	s.mu.Lock()
	if s.mode == ModeInitializing {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	s.mu.Unlock()

	remoteData, err := s.loadRemote(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.syncErr = fmt.Errorf("resync failed: %w", err)
		s.logger.Warn("Resync failed", zap.String("mode", s.mode.String()), zap.Error(err))
		return s.syncErr
	}
	s.data = s.mergeRemote(remoteData, s.data, true)
	s.mode = ModeRemoteBacked
	s.syncErr = nil
	s.mirrorLocked(ctx)
	s.logger.Info("Resynced from remote", zap.Int("ideas", len(remoteData.Ideas)))
	return nil
}

func (s *Store) loadRemote(ctx context.Context) (domain.AppData, error) {
	ctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()
	return s.remote.LoadAll(ctx)
}

// mergeRemote takes collections from the remote and settings from the local side,
// since settings are never stored remotely.
func (s *Store) mergeRemote(remote, local domain.AppData, haveLocal bool) domain.AppData {
	data := domain.DefaultAppData(s.now())
	if haveLocal {
		data.Settings = local.Settings
	}
	if remote.Ideas != nil {
		data.Ideas = remote.Ideas
	}
	if remote.Themes != nil {
		data.Themes = remote.Themes
	}
	if remote.Learnings != nil {
		data.Learnings = remote.Learnings
	}
	return data
}

// mirrorLocked writes the current state to the cache. Cache failures are logged
// and never fail the mutation. Callers hold s.mu.
func (s *Store) mirrorLocked(ctx context.Context) {
	if s.mode == ModeInitializing {
		return
	}
	s.data.LastUpdated = s.now()
	if err := s.cache.Save(ctx, s.data); err != nil {
		s.logger.Warn("Failed to mirror state to local cache", zap.Error(err))
	}
}

// Create inserts a new idea immediately and, when remote-backed, pushes it.
// On remote success the optimistic record is replaced by the confirmed one. On
// remote failure the local record stays as is and no retry is attempted.
func (s *Store) Create(ctx context.Context, draft domain.IdeaDraft) (domain.Idea, error) {
	draft = draft.WithDefaults()
	if err := domain.Validator().Struct(draft); err != nil {
		return domain.Idea{}, appErrors.NewValidation(err.Error())
	}

	s.mu.Lock()
	if s.mode == ModeInitializing {
		s.mu.Unlock()
		return domain.Idea{}, ErrNotLoaded
	}
	localID := s.newID()
	idea := domain.NewIdea(draft, localID, s.now())
	s.data.Ideas = append(s.data.Ideas, idea)
	s.mirrorLocked(ctx)
	remoteBacked := s.mode == ModeRemoteBacked
	s.mu.Unlock()

	if !remoteBacked {
		return idea.Clone(), nil
	}

	rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	confirmed, err := s.remote.CreateIdea(rctx, idea)
	cancel()
	if err != nil {
		s.logger.Warn("Remote create failed, idea kept locally only",
			zap.String("ideaID", localID),
			zap.Error(err),
		)
		return idea.Clone(), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.data.FindIdea(localID); i >= 0 {
		s.data.Ideas[i] = confirmed.Clone()
		s.mirrorLocked(ctx)
	}
	return confirmed.Clone(), nil
}

// Update applies patch immediately. A stage change appends to the stage history.
// When remote-backed, the remote patch is sent in the background; its failure is
// logged and local state is kept.
func (s *Store) Update(ctx context.Context, id string, patch domain.IdeaPatch) (domain.Idea, error) {
	if err := domain.ValidatePatch(patch); err != nil {
		return domain.Idea{}, appErrors.NewValidation(err.Error())
	}

	s.mu.Lock()
	if s.mode == ModeInitializing {
		s.mu.Unlock()
		return domain.Idea{}, ErrNotLoaded
	}
	i := s.data.FindIdea(id)
	if i < 0 {
		s.mu.Unlock()
		return domain.Idea{}, appErrors.NewNotFound(fmt.Sprintf("idea %s not found", id))
	}
	updated := s.data.Ideas[i].Apply(patch, s.now())
	s.data.Ideas[i] = updated
	s.mirrorLocked(ctx)
	remoteBacked := s.mode == ModeRemoteBacked
	s.mu.Unlock()

	if remoteBacked {
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.remoteTimeout)
			defer cancel()
			if err := s.remote.UpdateIdea(rctx, id, patch); err != nil {
				s.logger.Warn("Remote update failed", zap.String("ideaID", id), zap.Error(err))
			}
		}()
	}
	return updated.Clone(), nil
}

// Delete removes an idea. When remote-backed, local state is touched only after
// the remote delete succeeds; a remote error is returned with state unchanged.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.mode == ModeInitializing {
		s.mu.Unlock()
		return ErrNotLoaded
	}
	if s.data.FindIdea(id) < 0 {
		s.mu.Unlock()
		return appErrors.NewNotFound(fmt.Sprintf("idea %s not found", id))
	}
	remoteBacked := s.mode == ModeRemoteBacked
	s.mu.Unlock()

	if remoteBacked {
		rctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
		err := s.remote.DeleteIdea(rctx, id)
		cancel()
		if err != nil {
			s.logger.Warn("Remote delete failed, idea kept", zap.String("ideaID", id), zap.Error(err))
			return fmt.Errorf("delete idea %s: %w", id, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.data.FindIdea(id); i >= 0 {
		s.data.Ideas = append(s.data.Ideas[:i:i], s.data.Ideas[i+1:]...)
	}
	s.mirrorLocked(ctx)
	return nil
}

// ImportJSON replaces the whole state with an exported payload. An invalid
// payload leaves state untouched. The import is local and is not pushed remotely.
func (s *Store) ImportJSON(ctx context.Context, payload []byte) error {
	data, err := domain.ParseAppData(payload, s.now())
	if err != nil {
		return appErrors.NewValidation(err.Error())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeInitializing {
		return ErrNotLoaded
	}
	s.data = data
	s.mirrorLocked(ctx)
	s.logger.Info("Imported data", zap.Int("ideas", len(data.Ideas)), zap.Int("themes", len(data.Themes)))
	return nil
}

// ImportPAIA parses themes and learnings markdown and replaces both collections
// wholesale. Either text may be empty.
func (s *Store) ImportPAIA(ctx context.Context, themesMarkdown, learningsMarkdown string) (themes, learnings int, err error) {
	parsedThemes := paia.ParseThemes(themesMarkdown, s.logger)
	parsedLearnings := paia.ParseLearnings(learningsMarkdown, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeInitializing {
		return 0, 0, ErrNotLoaded
	}
	stamp := s.now().UnixMilli()
	for i := range parsedThemes {
		parsedThemes[i].ID = fmt.Sprintf("theme-%d-%d", stamp, i)
	}
	for i := range parsedLearnings {
		parsedLearnings[i].ID = fmt.Sprintf("learning-%d-%d", stamp, i)
	}
	s.data.Themes = parsedThemes
	s.data.Learnings = parsedLearnings
	s.mirrorLocked(ctx)
	return len(parsedThemes), len(parsedLearnings), nil
}

// AddTheme records a manually entered theme locally.
func (s *Store) AddTheme(ctx context.Context, theme domain.Theme) (domain.Theme, error) {
	if err := domain.Validator().Struct(theme); err != nil {
		return domain.Theme{}, appErrors.NewValidation(err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeInitializing {
		return domain.Theme{}, ErrNotLoaded
	}
	theme = theme.Clone()
	theme.ID = s.newID()
	theme.Source = domain.SourceManual
	if theme.KeyMoments == nil {
		theme.KeyMoments = []string{}
	}
	if theme.LinkedIdeas == nil {
		theme.LinkedIdeas = []string{}
	}
	s.data.Themes = append(s.data.Themes, theme)
	s.mirrorLocked(ctx)
	return theme.Clone(), nil
}

// AddLearning records a manually entered learning locally.
func (s *Store) AddLearning(ctx context.Context, learning domain.Learning) (domain.Learning, error) {
	if err := domain.Validator().Struct(learning); err != nil {
		return domain.Learning{}, appErrors.NewValidation(err.Error())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeInitializing {
		return domain.Learning{}, ErrNotLoaded
	}
	learning = learning.Clone()
	learning.ID = s.newID()
	learning.Source = domain.SourceManual
	if learning.Date == "" {
		learning.Date = s.now().Format("2006-01-02")
	}
	if learning.LinkedIdeas == nil {
		learning.LinkedIdeas = []string{}
	}
	s.data.Learnings = append(s.data.Learnings, learning)
	s.mirrorLocked(ctx)
	return learning.Clone(), nil
}

// SettingsPatch is a partial settings update.
type SettingsPatch struct {
	DefaultView *domain.View
	OllamaModel *string
}

func (s *Store) UpdateSettings(ctx context.Context, patch SettingsPatch) (domain.Settings, error) {
	if patch.DefaultView != nil && !patch.DefaultView.Valid() {
		return domain.Settings{}, appErrors.NewValidation(fmt.Sprintf("unknown view %q", *patch.DefaultView))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mode == ModeInitializing {
		return domain.Settings{}, ErrNotLoaded
	}
	if patch.DefaultView != nil {
		s.data.Settings.DefaultView = *patch.DefaultView
	}
	if patch.OllamaModel != nil && *patch.OllamaModel != "" {
		s.data.Settings.OllamaModel = *patch.OllamaModel
	}
	s.mirrorLocked(ctx)
	return s.data.Settings, nil
}

// Export renders the current state in the import format.
func (s *Store) Export() ([]byte, error) {
	return s.Snapshot().Marshal()
}

// Search filters the current ideas. With an empty query and filters it returns
// every idea in stored order.
func (s *Store) Search(query string, filters search.Filters) []domain.Idea {
	return search.Ideas(s.Snapshot().Ideas, query, filters)
}

// Idea returns one idea by id.
func (s *Store) Idea(id string) (domain.Idea, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.data.FindIdea(id); i >= 0 {
		return s.data.Ideas[i].Clone(), true
	}
	return domain.Idea{}, false
}
