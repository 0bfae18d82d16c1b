package domain

import (
	"slices"
	"time"
)

// StageHistoryEntry is one transition in an idea's append-only stage log.
type StageHistoryEntry struct {
	Stage Stage     `json:"stage"`
	Date  time.Time `json:"date"`
}

// Idea is a single tracked idea.
type Idea struct {
	ID            string              `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Stage         Stage               `json:"stage"`
	Type          IdeaType            `json:"type"`
	Tags          []string            `json:"tags"`
	Effort        Effort              `json:"effort"`
	Notes         string              `json:"notes"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
	StartedAt     *time.Time          `json:"startedAt,omitempty"`
	StageHistory  []StageHistoryEntry `json:"stageHistory"`
	AISuggestions []string            `json:"aiSuggestions,omitempty"`
	MemoryLinks   []MemoryLink        `json:"memoryLinks,omitempty"`
	ResourceLinks []ResourceLink      `json:"resourceLinks,omitempty"`
	PersonLinks   []PersonLink        `json:"personLinks,omitempty"`
}

// IdeaDraft is an idea before it has an id, timestamps or history.
type IdeaDraft struct {
	Title         string         `json:"title" validate:"required,max=200"`
	Description   string         `json:"description" validate:"max=5000"`
	Stage         Stage          `json:"stage" validate:"omitempty,stage"`
	Type          IdeaType       `json:"type" validate:"omitempty,ideatype"`
	Tags          []string       `json:"tags" validate:"dive,max=50"`
	Effort        Effort         `json:"effort" validate:"omitempty,effort"`
	Notes         string         `json:"notes"`
	StartedAt     *time.Time     `json:"startedAt,omitempty"`
	AISuggestions []string       `json:"aiSuggestions,omitempty"`
	MemoryLinks   []MemoryLink   `json:"memoryLinks,omitempty"`
	ResourceLinks []ResourceLink `json:"resourceLinks,omitempty"`
	PersonLinks   []PersonLink   `json:"personLinks,omitempty"`
}

// WithDefaults fills the fields the API treats as optional.
func (d IdeaDraft) WithDefaults() IdeaDraft {
	if d.Stage == "" {
		d.Stage = StageSpark
	}
	if d.Type == "" {
		d.Type = TypeExperiment
	}
	if d.Effort == "" {
		d.Effort = EffortMedium
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}
	return d
}

// NewIdea materialises a draft. The first stage history entry is written with the
// initial stage at creation time, and createdAt equals updatedAt.
func NewIdea(draft IdeaDraft, id string, now time.Time) Idea {
	tags := draft.Tags
	if tags == nil {
		tags = []string{}
	}
	return Idea{
		ID:            id,
		Title:         draft.Title,
		Description:   draft.Description,
		Stage:         draft.Stage,
		Type:          draft.Type,
		Tags:          slices.Clone(tags),
		Effort:        draft.Effort,
		Notes:         draft.Notes,
		CreatedAt:     now,
		UpdatedAt:     now,
		StartedAt:     draft.StartedAt,
		StageHistory:  []StageHistoryEntry{{Stage: draft.Stage, Date: now}},
		AISuggestions: slices.Clone(draft.AISuggestions),
		MemoryLinks:   slices.Clone(draft.MemoryLinks),
		ResourceLinks: slices.Clone(draft.ResourceLinks),
		PersonLinks:   slices.Clone(draft.PersonLinks),
	}
}

// IdeaPatch is a partial update. Nil fields are left untouched.
type IdeaPatch struct {
	Title         *string         `json:"title,omitempty"`
	Description   *string         `json:"description,omitempty"`
	Stage         *Stage          `json:"stage,omitempty"`
	Type          *IdeaType       `json:"type,omitempty"`
	Tags          *[]string       `json:"tags,omitempty"`
	Effort        *Effort         `json:"effort,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	StartedAt     *time.Time      `json:"startedAt,omitempty"`
	AISuggestions *[]string       `json:"aiSuggestions,omitempty"`
	MemoryLinks   *[]MemoryLink   `json:"memoryLinks,omitempty"`
	ResourceLinks *[]ResourceLink `json:"resourceLinks,omitempty"`
	PersonLinks   *[]PersonLink   `json:"personLinks,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p IdeaPatch) IsEmpty() bool {
	return p == IdeaPatch{}
}

// Apply returns a copy of the idea with the patch applied. updatedAt is always bumped;
// when the stage changes a history entry is appended before the new stage is set.
func (i Idea) Apply(p IdeaPatch, now time.Time) Idea {
	out := i.Clone()
	if p.Stage != nil && *p.Stage != i.Stage {
		out.StageHistory = append(out.StageHistory, StageHistoryEntry{Stage: *p.Stage, Date: now})
		out.Stage = *p.Stage
	}
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Description != nil {
		out.Description = *p.Description
	}
	if p.Type != nil {
		out.Type = *p.Type
	}
	if p.Tags != nil {
		out.Tags = slices.Clone(*p.Tags)
	}
	if p.Effort != nil {
		out.Effort = *p.Effort
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	if p.StartedAt != nil {
		started := *p.StartedAt
		out.StartedAt = &started
	}
	if p.AISuggestions != nil {
		out.AISuggestions = slices.Clone(*p.AISuggestions)
	}
	if p.MemoryLinks != nil {
		out.MemoryLinks = slices.Clone(*p.MemoryLinks)
	}
	if p.ResourceLinks != nil {
		out.ResourceLinks = slices.Clone(*p.ResourceLinks)
	}
	if p.PersonLinks != nil {
		out.PersonLinks = slices.Clone(*p.PersonLinks)
	}
	out.UpdatedAt = now
	return out
}

// Clone returns a deep copy so callers never share slices with stored state.
func (i Idea) Clone() Idea {
	out := i
	out.Tags = slices.Clone(i.Tags)
	out.StageHistory = slices.Clone(i.StageHistory)
	out.AISuggestions = slices.Clone(i.AISuggestions)
	out.MemoryLinks = slices.Clone(i.MemoryLinks)
	out.ResourceLinks = slices.Clone(i.ResourceLinks)
	out.PersonLinks = slices.Clone(i.PersonLinks)
	if i.StartedAt != nil {
		started := *i.StartedAt
		out.StartedAt = &started
	}
	return out
}

// HasTag reports whether the idea carries the exact tag.
func (i Idea) HasTag(tag string) bool {
	return slices.Contains(i.Tags, tag)
}
