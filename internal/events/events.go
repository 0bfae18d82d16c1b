// Package events publishes idea lifecycle events for integrations.
package events

import (
	"context"
	"time"

	"kindling/internal/domain"
)

const Source = "kindling"

// Event types.
const (
	TypeIdeaCreated      = "IdeaCreated"
	TypeIdeaStageChanged = "IdeaStageChanged"
	TypeIdeaDeleted      = "IdeaDeleted"
)

// Event describes one change to an idea.
type Event struct {
	Type       string       `json:"eventType"`
	IdeaID     string       `json:"ideaId"`
	Title      string       `json:"title,omitempty"`
	Stage      domain.Stage `json:"stage,omitempty"`
	PrevStage  domain.Stage `json:"previousStage,omitempty"`
	OccurredAt time.Time    `json:"occurredAt"`
}

func IdeaCreated(idea domain.Idea) Event {
	return Event{Type: TypeIdeaCreated, IdeaID: idea.ID, Title: idea.Title, Stage: idea.Stage, OccurredAt: idea.CreatedAt}
}

func IdeaStageChanged(before, after domain.Idea) Event {
	return Event{
		Type:       TypeIdeaStageChanged,
		IdeaID:     after.ID,
		Title:      after.Title,
		Stage:      after.Stage,
		PrevStage:  before.Stage,
		OccurredAt: after.UpdatedAt,
	}
}

func IdeaDeleted(id string, at time.Time) Event {
	return Event{Type: TypeIdeaDeleted, IdeaID: id, OccurredAt: at}
}

// Publisher sends events somewhere. Publishing is best effort; callers log failures.
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, ...Event) error { return nil }
