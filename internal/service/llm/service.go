package llm

import (
	"context"
	"math"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"kindling/internal/domain"
	appErrors "kindling/pkg/errors"
)

// Kind names a server-built suggestion prompt.
type Kind string

const (
	KindSpark           Kind = "spark"
	KindProgress        Kind = "progress"
	KindNewIdeas        Kind = "new-ideas"
	KindThemeConnection Kind = "theme-connection"
	KindCategorize      Kind = "categorize"
	KindInsights        Kind = "insights"
)

// NeedsIdea reports whether the prompt is built around a single idea.
func (k Kind) NeedsIdea() bool {
	switch k {
	case KindSpark, KindProgress, KindThemeConnection, KindCategorize:
		return true
	}
	return false
}

// Suggestion is a completed suggestion.
type Suggestion struct {
	Suggestion     string          `json:"suggestion"`
	Model          string          `json:"model"`
	Type           string          `json:"type,omitempty"`
	Categorization *Categorization `json:"categorization,omitempty"`
}

// ChatReply is a completed chat turn.
type ChatReply struct {
	Response string `json:"response"`
	Model    string `json:"model"`
}

// Status describes the reachability of the completion backend.
type Status struct {
	Status          string   `json:"status"`
	Host            string   `json:"host,omitempty"`
	Model           string   `json:"model,omitempty"`
	AvailableModels []string `json:"availableModels,omitempty"`
	Message         string   `json:"message,omitempty"`
}

// Service provides LLM-powered suggestions and chat
type Service struct {
	provider Provider
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a new LLM service with the specified provider
func NewService(provider Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{provider: provider, logger: logger, now: time.Now}
}

// IsAvailable returns true if the backend answers a model listing.
func (s *Service) IsAvailable(ctx context.Context) bool {
	if s.provider == nil {
		return false
	}
	_, err := s.provider.Models(ctx)
	return err == nil
}

// Status reports the backend host, model and installed models.
func (s *Service) Status(ctx context.Context) (Status, error) {
	if s.provider == nil {
		return Status{Status: "disconnected"}, appErrors.NewUnavailable("AI provider not configured", nil)
	}
	info := s.provider.Info()
	models, err := s.provider.Models(ctx)
	if err != nil {
		return Status{Status: "disconnected", Message: appErrors.MessageOf(err)}, err
	}
	return Status{Status: "connected", Host: info.Host, Model: info.Model, AvailableModels: models}, nil
}

// Suggest completes a caller-supplied prompt.
func (s *Service) Suggest(ctx context.Context, prompt, kind string) (Suggestion, error) {
	if strings.TrimSpace(prompt) == "" {
		return Suggestion{}, appErrors.NewValidation("Prompt is required")
	}
	completion, err := s.complete(ctx, prompt, suggestOptions)
	if err != nil {
		return Suggestion{}, err
	}
	out := Suggestion{Suggestion: completion.Text, Model: completion.Model, Type: kind}
	if Kind(kind) == KindCategorize {
		if c, ok := ParseCategorization(completion.Text); ok {
			out.Categorization = &c
		}
	}
	return out, nil
}

// SuggestFor builds the prompt for kind from the snapshot and completes it.
func (s *Service) SuggestFor(ctx context.Context, kind Kind, data domain.AppData, ideaID string) (Suggestion, error) {
	prompt, err := BuildPrompt(kind, data, ideaID, s.now())
	if err != nil {
		return Suggestion{}, err
	}
	return s.Suggest(ctx, prompt, string(kind))
}

// Chat answers message against the supplied portfolio snapshot.
func (s *Service) Chat(ctx context.Context, message string, cc ChatContext) (ChatReply, error) {
	if strings.TrimSpace(message) == "" {
		return ChatReply{}, appErrors.NewValidation("Message is required")
	}
	completion, err := s.complete(ctx, ChatPrompt(cc, message), chatOptions)
	if err != nil {
		return ChatReply{}, err
	}
	return ChatReply{Response: completion.Text, Model: completion.Model}, nil
}

func (s *Service) complete(ctx context.Context, prompt string, options CompletionOptions) (Completion, error) {
	if s.provider == nil {
		return Completion{}, appErrors.NewUnavailable("AI provider not configured", nil)
	}
	start := s.now()
	completion, err := s.provider.Complete(ctx, prompt, options)
	if err != nil {
		return Completion{}, err
	}
	s.logger.Debug("Completion finished",
		zap.String("model", completion.Model),
		zap.Int("promptLength", len(prompt)),
		zap.Duration("duration", s.now().Sub(start)),
	)
	return completion, nil
}

// BuildPrompt renders the prompt for kind. Idea-centred kinds require ideaID to exist in data.
func BuildPrompt(kind Kind, data domain.AppData, ideaID string, now time.Time) (string, error) {
	var idea domain.Idea
	if kind.NeedsIdea() {
		if ideaID == "" {
			return "", appErrors.NewValidation("ideaId is required for " + string(kind))
		}
		i := data.FindIdea(ideaID)
		if i < 0 {
			return "", appErrors.NewNotFound("idea not found")
		}
		idea = data.Ideas[i]
	}

	switch kind {
	case KindSpark:
		return SparkPrompt(idea.Title, idea.Description), nil
	case KindProgress:
		days := int(math.Floor(now.Sub(idea.UpdatedAt).Hours() / 24))
		return ProgressPrompt(idea.Title, idea.Stage, max(days, 0)), nil
	case KindThemeConnection:
		return ThemeConnectionPrompt(idea.Title, idea.Description, data.Themes), nil
	case KindCategorize:
		return CategorizationPrompt(idea.Title, idea.Description), nil
	case KindNewIdeas:
		return NewIdeasPrompt(data.Ideas, data.Themes), nil
	case KindInsights:
		return InsightsPrompt(data.Ideas, data.Themes), nil
	}
	return "", appErrors.NewValidation("unknown suggestion type: " + string(kind))
}

// Categorization is a parsed categorization reply. Fields the model got wrong are left empty.
type Categorization struct {
	Stage     domain.Stage  `json:"stage,omitempty"`
	Tags      []string      `json:"tags,omitempty"`
	Effort    domain.Effort `json:"effort,omitempty"`
	Reasoning string        `json:"reasoning,omitempty"`
}

var categorizationLine = regexp.MustCompile(`(?im)^[\s*]*(STAGE|TAGS|EFFORT|REASONING)\**\s*:\s*(.*)$`)

// ParseCategorization extracts the STAGE/TAGS/EFFORT/REASONING lines of a reply.
// ok is false when none of the lines were usable.
func ParseCategorization(text string) (Categorization, bool) {
	var c Categorization
	ok := false
	for _, m := range categorizationLine.FindAllStringSubmatch(text, -1) {
		value := strings.Trim(strings.TrimSpace(m[2]), "[]")
		switch strings.ToUpper(m[1]) {
		case "STAGE":
			if stage := domain.Stage(strings.ToLower(strings.TrimSpace(value))); stage.Valid() {
				c.Stage, ok = stage, true
			}
		case "EFFORT":
			if effort := domain.Effort(strings.ToLower(strings.TrimSpace(value))); effort.Valid() {
				c.Effort, ok = effort, true
			}
		case "TAGS":
			for _, tag := range strings.Split(value, ",") {
				tag = strings.ToLower(strings.TrimSpace(tag))
				if tag != "" {
					c.Tags = append(c.Tags, tag)
					ok = true
				}
			}
		case "REASONING":
			if value != "" {
				c.Reasoning, ok = value, true
			}
		}
	}
	return c, ok
}
