// Package repository defines the persistence contract for the remote tabular store.
// Each logical sheet (Ideas, Themes, Learnings) holds rows addressed by an opaque id.
package repository

import (
	"context"

	"kindling/internal/domain"
)

// Sheet names one of the logical tables in the remote store.
type Sheet string

const (
	SheetIdeas     Sheet = "Ideas"
	SheetThemes    Sheet = "Themes"
	SheetLearnings Sheet = "Learnings"
)

// Sheets lists every sheet in initialization order.
var Sheets = []Sheet{SheetIdeas, SheetThemes, SheetLearnings}

// IdeaRepository persists ideas. UpdateIdea replaces the stored row wholesale.
type IdeaRepository interface {
	ListIdeas(ctx context.Context) ([]domain.Idea, error)
	GetIdea(ctx context.Context, id string) (domain.Idea, error)
	CreateIdea(ctx context.Context, idea domain.Idea) error
	UpdateIdea(ctx context.Context, idea domain.Idea) error
	DeleteIdea(ctx context.Context, id string) error
}

// InsightRepository persists themes and learnings.
type InsightRepository interface {
	ListThemes(ctx context.Context) ([]domain.Theme, error)
	CreateTheme(ctx context.Context, theme domain.Theme) error
	ListLearnings(ctx context.Context) ([]domain.Learning, error)
	CreateLearning(ctx context.Context, learning domain.Learning) error
}

// Repository is the full store adapter.
type Repository interface {
	IdeaRepository
	InsightRepository

	// InitializeTables writes the header row of every sheet. It is idempotent.
	InitializeTables(ctx context.Context) error
}
