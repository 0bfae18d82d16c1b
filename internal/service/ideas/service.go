// Package ideas provides the server-side business operations over the remote store.
package ideas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kindling/internal/domain"
	"kindling/internal/events"
	"kindling/internal/repository"
	appErrors "kindling/pkg/errors"
)

// SyncResult reports the outcome of a bulk sync.
type SyncResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Service defines the idea operations exposed over HTTP.
type Service interface {
	// ListIdeas returns every stored idea
	ListIdeas(ctx context.Context) ([]domain.Idea, error)
	GetIdea(ctx context.Context, id string) (domain.Idea, error)

	// CreateIdea assigns a server id and the initial stage history
	CreateIdea(ctx context.Context, draft domain.IdeaDraft) (domain.Idea, error)

	// UpdateIdea merges the patch, appending stage history on a stage change
	UpdateIdea(ctx context.Context, id string, patch domain.IdeaPatch) (domain.Idea, error)
	DeleteIdea(ctx context.Context, id string) error

	// AddLink validates raw link data for the given collection and appends it with a new id
	AddLink(ctx context.Context, id string, linkType domain.LinkType, data json.RawMessage) (domain.Idea, error)
	RemoveLink(ctx context.Context, id string, linkType domain.LinkType, linkID string) (domain.Idea, error)

	// BulkSync stores ideas whose id is not yet present and skips the rest
	BulkSync(ctx context.Context, ideas []domain.Idea) (SyncResult, error)

	// GetAllData reads ideas, themes and learnings in one snapshot
	GetAllData(ctx context.Context) (domain.AppData, error)
	InitializeTables(ctx context.Context) error

	CreateTheme(ctx context.Context, theme domain.Theme) (domain.Theme, error)
	CreateLearning(ctx context.Context, learning domain.Learning) (domain.Learning, error)
}

// service implements the Service interface with concrete business logic.
type service struct {
	repo      repository.Repository
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewService creates a new idea service with the provided repository.
func NewService(repo repository.Repository, publisher events.Publisher, logger *zap.Logger) Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{repo: repo, publisher: publisher, logger: logger, now: time.Now, newID: uuid.NewString}
}

func (s *service) ListIdeas(ctx context.Context) ([]domain.Idea, error) {
	ideas, err := s.repo.ListIdeas(ctx)
	if err != nil {
		return nil, translate(err, "failed to fetch ideas")
	}
	return ideas, nil
}

func (s *service) GetIdea(ctx context.Context, id string) (domain.Idea, error) {
	idea, err := s.repo.GetIdea(ctx, id)
	if err != nil {
		return domain.Idea{}, translate(err, "failed to fetch idea")
	}
	return idea, nil
}

func (s *service) CreateIdea(ctx context.Context, draft domain.IdeaDraft) (domain.Idea, error) {
	draft = draft.WithDefaults()
	if err := domain.Validator().Struct(draft); err != nil {
		return domain.Idea{}, appErrors.NewValidation(err.Error())
	}

	idea := domain.NewIdea(draft, s.newID(), s.now().UTC())
	if err := s.repo.CreateIdea(ctx, idea); err != nil {
		return domain.Idea{}, translate(err, "failed to create idea")
	}
	s.publish(ctx, events.IdeaCreated(idea))
	return idea, nil
}

func (s *service) UpdateIdea(ctx context.Context, id string, patch domain.IdeaPatch) (domain.Idea, error) {
	if err := domain.ValidatePatch(patch); err != nil {
		return domain.Idea{}, appErrors.NewValidation(err.Error())
	}
	current, err := s.repo.GetIdea(ctx, id)
	if err != nil {
		return domain.Idea{}, translate(err, "failed to fetch idea")
	}
	updated := current.Apply(patch, s.now().UTC())
	if err := s.repo.UpdateIdea(ctx, updated); err != nil {
		return domain.Idea{}, translate(err, "failed to update idea")
	}
	if updated.Stage != current.Stage {
		s.publish(ctx, events.IdeaStageChanged(current, updated))
	}
	return updated, nil
}

func (s *service) DeleteIdea(ctx context.Context, id string) error {
	if err := s.repo.DeleteIdea(ctx, id); err != nil {
		return translate(err, "failed to delete idea")
	}
	s.publish(ctx, events.IdeaDeleted(id, s.now().UTC()))
	return nil
}

func (s *service) AddLink(ctx context.Context, id string, linkType domain.LinkType, data json.RawMessage) (domain.Idea, error) {
	link, err := decodeLink(linkType, data, s.newID())
	if err != nil {
		return domain.Idea{}, err
	}
	current, err := s.repo.GetIdea(ctx, id)
	if err != nil {
		return domain.Idea{}, translate(err, "failed to fetch idea")
	}
	withLink, _ := current.WithLink(link)
	withLink.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateIdea(ctx, withLink); err != nil {
		return domain.Idea{}, translate(err, "failed to add link")
	}
	return withLink, nil
}

func (s *service) RemoveLink(ctx context.Context, id string, linkType domain.LinkType, linkID string) (domain.Idea, error) {
	if !linkType.Valid() {
		return domain.Idea{}, appErrors.NewValidation("invalid linkType")
	}
	if linkID == "" {
		return domain.Idea{}, appErrors.NewValidation("missing linkId")
	}
	current, err := s.repo.GetIdea(ctx, id)
	if err != nil {
		return domain.Idea{}, translate(err, "failed to fetch idea")
	}
	without, _ := current.WithoutLink(linkType, linkID)
	without.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateIdea(ctx, without); err != nil {
		return domain.Idea{}, translate(err, "failed to remove link")
	}
	return without, nil
}

func (s *service) BulkSync(ctx context.Context, ideas []domain.Idea) (SyncResult, error) {
	existing, err := s.repo.ListIdeas(ctx)
	if err != nil {
		return SyncResult{}, translate(err, "failed to sync ideas")
	}
	known := make(map[string]bool, len(existing))
	for _, idea := range existing {
		known[idea.ID] = true
	}

	var result SyncResult
	for _, idea := range ideas {
		if idea.ID == "" || known[idea.ID] {
			result.Skipped++
			continue
		}
		if err := s.repo.CreateIdea(ctx, idea); err != nil {
			if repository.IsConflict(err) {
				result.Skipped++
				continue
			}
			return result, translate(err, "failed to sync ideas")
		}
		known[idea.ID] = true
		result.Created++
	}
	s.logger.Info("Bulk sync finished", zap.Int("created", result.Created), zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *service) GetAllData(ctx context.Context) (domain.AppData, error) {
	data := domain.DefaultAppData(s.now().UTC())
	var err error
	if data.Ideas, err = s.repo.ListIdeas(ctx); err != nil {
		return domain.AppData{}, translate(err, "failed to fetch data")
	}
	if data.Themes, err = s.repo.ListThemes(ctx); err != nil {
		return domain.AppData{}, translate(err, "failed to fetch data")
	}
	if data.Learnings, err = s.repo.ListLearnings(ctx); err != nil {
		return domain.AppData{}, translate(err, "failed to fetch data")
	}
	return data, nil
}

func (s *service) InitializeTables(ctx context.Context) error {
	if err := s.repo.InitializeTables(ctx); err != nil {
		return translate(err, "failed to initialize sheets")
	}
	return nil
}

func (s *service) CreateTheme(ctx context.Context, theme domain.Theme) (domain.Theme, error) {
	if err := domain.Validator().Struct(theme); err != nil {
		return domain.Theme{}, appErrors.NewValidation(err.Error())
	}
	theme.ID = s.newID()
	if theme.Source == "" {
		theme.Source = domain.SourceManual
	}
	if theme.KeyMoments == nil {
		theme.KeyMoments = []string{}
	}
	if theme.LinkedIdeas == nil {
		theme.LinkedIdeas = []string{}
	}
	if err := s.repo.CreateTheme(ctx, theme); err != nil {
		return domain.Theme{}, translate(err, "failed to create theme")
	}
	return theme, nil
}

func (s *service) CreateLearning(ctx context.Context, learning domain.Learning) (domain.Learning, error) {
	if err := domain.Validator().Struct(learning); err != nil {
		return domain.Learning{}, appErrors.NewValidation(err.Error())
	}
	learning.ID = s.newID()
	if learning.Source == "" {
		learning.Source = domain.SourceManual
	}
	if learning.Date == "" {
		learning.Date = s.now().UTC().Format("2006-01-02")
	}
	if learning.LinkedIdeas == nil {
		learning.LinkedIdeas = []string{}
	}
	if err := s.repo.CreateLearning(ctx, learning); err != nil {
		return domain.Learning{}, translate(err, "failed to create learning")
	}
	return learning, nil
}

func (s *service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish event",
			zap.String("eventType", event.Type),
			zap.String("ideaID", event.IdeaID),
			zap.Error(err),
		)
	}
}

// decodeLink validates link data for its collection and assigns the id.
func decodeLink(linkType domain.LinkType, data json.RawMessage, id string) (any, error) {
	var (
		link any
		err  error
	)
	switch linkType {
	case domain.LinkMemory:
		var l domain.MemoryLink
		err = decodeStrict(data, &l)
		l.ID = id
		link = l
	case domain.LinkResource:
		var l domain.ResourceLink
		err = decodeStrict(data, &l)
		l.ID = id
		link = l
	case domain.LinkPerson:
		var l domain.PersonLink
		err = decodeStrict(data, &l)
		l.ID = id
		link = l
	default:
		return nil, appErrors.NewValidation("invalid linkType")
	}
	if err != nil {
		return nil, appErrors.NewValidation(fmt.Sprintf("invalid input: %v", err))
	}
	if err := domain.Validator().Struct(link); err != nil {
		return nil, appErrors.NewValidation(fmt.Sprintf("invalid input: %v", err))
	}
	return link, nil
}

func decodeStrict(data json.RawMessage, dst any) error {
	if len(data) == 0 {
		return errors.New("missing data")
	}
	return json.Unmarshal(data, dst)
}

// translate maps repository failures onto application error categories.
func translate(err error, message string) error {
	var nf repository.ErrNotFound
	switch {
	case errors.As(err, &nf):
		return appErrors.NewNotFound(fmt.Sprintf("%s not found", nf.Resource))
	case errors.Is(err, repository.ErrNotConfigured):
		return appErrors.NewUnavailable("storage not configured", err)
	case repository.IsConflict(err):
		return appErrors.NewValidation(err.Error())
	}
	return appErrors.Wrap(err, message)
}
