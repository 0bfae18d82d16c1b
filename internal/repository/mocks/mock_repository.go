// Package mocks provides an in-memory implementation of the repository interface for testing.
package mocks

import (
	"context"
	"sync"

	"kindling/internal/domain"
	"kindling/internal/repository"
)

// MockRepository keeps every sheet in memory in insertion order.
// This is useful for unit testing services without requiring a real database.
type MockRepository struct {
	mu sync.RWMutex

	ideas       []domain.Idea
	themes      []domain.Theme
	learnings   []domain.Learning
	initialized bool

	// For testing error scenarios
	shouldFailOn map[string]error
	calls        map[string]int
}

var _ repository.Repository = (*MockRepository)(nil)

// NewMockRepository creates a new mock repository instance.
func NewMockRepository() *MockRepository {
	return &MockRepository{
		shouldFailOn: make(map[string]error),
		calls:        make(map[string]int),
	}
}

// SetError configures the mock to return an error for a specific method.
func (m *MockRepository) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn[method] = err
}

// ClearErrors removes all configured errors.
func (m *MockRepository) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn = make(map[string]error)
}

// Calls reports how many times a method has been invoked.
func (m *MockRepository) Calls(method string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[method]
}

// Initialized reports whether InitializeTables has succeeded.
func (m *MockRepository) Initialized() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.initialized
}

// record counts the call and returns the configured error. Callers hold m.mu.
func (m *MockRepository) record(method string) error {
	m.calls[method]++
	return m.shouldFailOn[method]
}

func (m *MockRepository) ListIdeas(ctx context.Context) ([]domain.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListIdeas"); err != nil {
		return nil, err
	}
	out := make([]domain.Idea, len(m.ideas))
	for i, idea := range m.ideas {
		out[i] = idea.Clone()
	}
	return out, nil
}

func (m *MockRepository) GetIdea(ctx context.Context, id string) (domain.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("GetIdea"); err != nil {
		return domain.Idea{}, err
	}
	for _, idea := range m.ideas {
		if idea.ID == id {
			return idea.Clone(), nil
		}
	}
	return domain.Idea{}, repository.NewNotFound("idea", id)
}

func (m *MockRepository) CreateIdea(ctx context.Context, idea domain.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateIdea"); err != nil {
		return err
	}
	for _, existing := range m.ideas {
		if existing.ID == idea.ID {
			return repository.ErrConflict{Resource: "idea", ID: idea.ID}
		}
	}
	m.ideas = append(m.ideas, idea.Clone())
	return nil
}

func (m *MockRepository) UpdateIdea(ctx context.Context, idea domain.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("UpdateIdea"); err != nil {
		return err
	}
	for i, existing := range m.ideas {
		if existing.ID == idea.ID {
			m.ideas[i] = idea.Clone()
			return nil
		}
	}
	return repository.NewNotFound("idea", idea.ID)
}

func (m *MockRepository) DeleteIdea(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("DeleteIdea"); err != nil {
		return err
	}
	for i, existing := range m.ideas {
		if existing.ID == id {
			m.ideas = append(m.ideas[:i], m.ideas[i+1:]...)
			return nil
		}
	}
	return repository.NewNotFound("idea", id)
}

func (m *MockRepository) ListThemes(ctx context.Context) ([]domain.Theme, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListThemes"); err != nil {
		return nil, err
	}
	out := make([]domain.Theme, len(m.themes))
	for i, t := range m.themes {
		out[i] = t.Clone()
	}
	return out, nil
}

func (m *MockRepository) CreateTheme(ctx context.Context, theme domain.Theme) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateTheme"); err != nil {
		return err
	}
	m.themes = append(m.themes, theme.Clone())
	return nil
}

func (m *MockRepository) ListLearnings(ctx context.Context) ([]domain.Learning, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("ListLearnings"); err != nil {
		return nil, err
	}
	out := make([]domain.Learning, len(m.learnings))
	for i, l := range m.learnings {
		out[i] = l.Clone()
	}
	return out, nil
}

func (m *MockRepository) CreateLearning(ctx context.Context, learning domain.Learning) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("CreateLearning"); err != nil {
		return err
	}
	m.learnings = append(m.learnings, learning.Clone())
	return nil
}

func (m *MockRepository) InitializeTables(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.record("InitializeTables"); err != nil {
		return err
	}
	m.initialized = true
	return nil
}
