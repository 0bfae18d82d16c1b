// Package search evaluates free-text queries and structured filters over ideas
// and derives the summary views shown on the dashboard.
package search

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"kindling/internal/domain"
)

// Filters is a conjunction across fields of disjunctions within each field.
// An empty field does not constrain the result.
type Filters struct {
	Stages  []domain.Stage    `json:"stages,omitempty"`
	Types   []domain.IdeaType `json:"types,omitempty"`
	Efforts []domain.Effort   `json:"efforts,omitempty"`
	Tags    []string          `json:"tags,omitempty"`
}

func (f Filters) IsEmpty() bool {
	return len(f.Stages) == 0 && len(f.Types) == 0 && len(f.Efforts) == 0 && len(f.Tags) == 0
}

// IsActive reports whether a query or any filter would narrow the collection.
func IsActive(query string, f Filters) bool {
	return strings.TrimSpace(query) != "" || !f.IsEmpty()
}

// Ideas returns the ideas matching query and filters in their original order.
// When nothing is active the input collection is returned unchanged.
func Ideas(ideas []domain.Idea, query string, f Filters) []domain.Idea {
	if !IsActive(query, f) {
		return ideas
	}
	m := newMatcher(query)
	out := make([]domain.Idea, 0, len(ideas))
	for _, idea := range ideas {
		if m.matches(idea) && f.matches(idea) {
			out = append(out, idea)
		}
	}
	return out
}

func (f Filters) matches(idea domain.Idea) bool {
	if len(f.Stages) > 0 && !slices.Contains(f.Stages, idea.Stage) {
		return false
	}
	if len(f.Types) > 0 && !slices.Contains(f.Types, idea.Type) {
		return false
	}
	if len(f.Efforts) > 0 && !slices.Contains(f.Efforts, idea.Effort) {
		return false
	}
	if len(f.Tags) > 0 && !slices.ContainsFunc(f.Tags, idea.HasTag) {
		return false
	}
	return true
}

// matcher does case-insensitive substring matching. A Caser is stateful, so
// each search gets its own.
type matcher struct {
	fold   cases.Caser
	needle string
}

func newMatcher(query string) *matcher {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	fold := cases.Fold()
	return &matcher{fold: fold, needle: fold.String(query)}
}

func (m *matcher) contains(s string) bool {
	return strings.Contains(m.fold.String(s), m.needle)
}

func (m *matcher) matches(idea domain.Idea) bool {
	if m == nil {
		return true
	}
	if m.contains(idea.Title) || m.contains(idea.Description) || m.contains(idea.Notes) {
		return true
	}
	return slices.ContainsFunc(idea.Tags, m.contains)
}
