package repository

import (
	"context"

	"kindling/internal/domain"
)

// Unconfigured is the repository used when no storage backend has been selected.
// Every call fails with ErrNotConfigured.
type Unconfigured struct{}

var _ Repository = Unconfigured{}

func (Unconfigured) ListIdeas(context.Context) ([]domain.Idea, error) { return nil, ErrNotConfigured }

func (Unconfigured) GetIdea(context.Context, string) (domain.Idea, error) {
	return domain.Idea{}, ErrNotConfigured
}

func (Unconfigured) CreateIdea(context.Context, domain.Idea) error { return ErrNotConfigured }
func (Unconfigured) UpdateIdea(context.Context, domain.Idea) error { return ErrNotConfigured }
func (Unconfigured) DeleteIdea(context.Context, string) error      { return ErrNotConfigured }

func (Unconfigured) ListThemes(context.Context) ([]domain.Theme, error) { return nil, ErrNotConfigured }
func (Unconfigured) CreateTheme(context.Context, domain.Theme) error     { return ErrNotConfigured }

func (Unconfigured) ListLearnings(context.Context) ([]domain.Learning, error) {
	return nil, ErrNotConfigured
}
func (Unconfigured) CreateLearning(context.Context, domain.Learning) error { return ErrNotConfigured }
func (Unconfigured) InitializeTables(context.Context) error                { return ErrNotConfigured }
