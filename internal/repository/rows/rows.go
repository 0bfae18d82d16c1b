// Package rows converts records to and from flat rows of string cells.
// Nested values are flattened: tags are comma joined, stage history is a
// semicolon list of stage|date pairs, AI suggestions are joined with "|||"
// and link collections are JSON encoded.
package rows

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"kindling/internal/domain"
)

// Row is one sheet row keyed by column header.
type Row map[string]string

const (
	tagSeparator        = ","
	historySeparator    = ";"
	historyPairSep      = "|"
	suggestionSeparator = "|||"
)

var (
	IdeaHeaders = []string{
		"id", "title", "description", "stage", "type", "tags", "effort", "notes",
		"createdAt", "updatedAt", "stageHistory", "aiSuggestions",
		"startedAt", "memoryLinks", "resourceLinks", "personLinks",
	}
	ThemeHeaders    = []string{"id", "title", "description", "occurrences", "keyMoments", "linkedIdeas", "source"}
	LearningHeaders = []string{"id", "date", "title", "context", "discovery", "actionable", "linkedIdeas", "source"}
)

// Values returns the cells in header order.
func (r Row) Values(headers []string) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = r[h]
	}
	return out
}

// FromValues builds a row from cells in header order. Missing trailing cells are empty.
func FromValues(headers, values []string) Row {
	r := make(Row, len(headers))
	for i, h := range headers {
		if i < len(values) {
			r[h] = values[i]
		} else {
			r[h] = ""
		}
	}
	return r
}

func FromIdea(idea domain.Idea) Row {
	history := make([]string, 0, len(idea.StageHistory))
	for _, h := range idea.StageHistory {
		history = append(history, string(h.Stage)+historyPairSep+formatTime(h.Date))
	}
	r := Row{
		"id":            idea.ID,
		"title":         idea.Title,
		"description":   idea.Description,
		"stage":         string(idea.Stage),
		"type":          string(idea.Type),
		"tags":          strings.Join(idea.Tags, tagSeparator),
		"effort":        string(idea.Effort),
		"notes":         idea.Notes,
		"createdAt":     formatTime(idea.CreatedAt),
		"updatedAt":     formatTime(idea.UpdatedAt),
		"stageHistory":  strings.Join(history, historySeparator),
		"aiSuggestions": strings.Join(idea.AISuggestions, suggestionSeparator),
		"memoryLinks":   encodeJSON(idea.MemoryLinks),
		"resourceLinks": encodeJSON(idea.ResourceLinks),
		"personLinks":   encodeJSON(idea.PersonLinks),
	}
	if idea.StartedAt != nil {
		r["startedAt"] = formatTime(*idea.StartedAt)
	}
	return r
}

// ToIdea decodes a row. Cells that cannot be decoded fall back to empty values.
func ToIdea(r Row) domain.Idea {
	idea := domain.Idea{
		ID:           r["id"],
		Title:        r["title"],
		Description:  r["description"],
		Stage:        domain.Stage(r["stage"]),
		Type:         domain.IdeaType(r["type"]),
		Tags:         splitTags(r["tags"]),
		Effort:       domain.Effort(r["effort"]),
		Notes:        r["notes"],
		CreatedAt:    parseTime(r["createdAt"]),
		UpdatedAt:    parseTime(r["updatedAt"]),
		StageHistory: splitHistory(r["stageHistory"]),
	}
	if idea.Type == "" {
		idea.Type = domain.TypeExperiment
	}
	if s := r["aiSuggestions"]; s != "" {
		idea.AISuggestions = nonEmpty(strings.Split(s, suggestionSeparator))
	}
	if s := r["startedAt"]; s != "" {
		started := parseTime(s)
		idea.StartedAt = &started
	}
	decodeJSON(r["memoryLinks"], &idea.MemoryLinks)
	decodeJSON(r["resourceLinks"], &idea.ResourceLinks)
	decodeJSON(r["personLinks"], &idea.PersonLinks)
	return idea
}

func FromTheme(t domain.Theme) Row {
	return Row{
		"id":          t.ID,
		"title":       t.Title,
		"description": t.Description,
		"occurrences": strconv.Itoa(t.Occurrences),
		"keyMoments":  encodeStrings(t.KeyMoments),
		"linkedIdeas": encodeStrings(t.LinkedIdeas),
		"source":      string(t.Source),
	}
}

func ToTheme(r Row) domain.Theme {
	occurrences, err := strconv.Atoi(strings.TrimSpace(r["occurrences"]))
	if err != nil {
		occurrences = 0
	}
	t := domain.Theme{
		ID:          r["id"],
		Title:       r["title"],
		Description: r["description"],
		Occurrences: occurrences,
		KeyMoments:  []string{},
		LinkedIdeas: []string{},
		Source:      sourceOrDefault(r["source"]),
	}
	decodeJSON(r["keyMoments"], &t.KeyMoments)
	decodeJSON(r["linkedIdeas"], &t.LinkedIdeas)
	return t
}

func FromLearning(l domain.Learning) Row {
	return Row{
		"id":          l.ID,
		"date":        l.Date,
		"title":       l.Title,
		"context":     l.Context,
		"discovery":   l.Discovery,
		"actionable":  l.Actionable,
		"linkedIdeas": encodeStrings(l.LinkedIdeas),
		"source":      string(l.Source),
	}
}

func ToLearning(r Row) domain.Learning {
	l := domain.Learning{
		ID:          r["id"],
		Date:        r["date"],
		Title:       r["title"],
		Context:     r["context"],
		Discovery:   r["discovery"],
		Actionable:  r["actionable"],
		LinkedIdeas: []string{},
		Source:      sourceOrDefault(r["source"]),
	}
	decodeJSON(r["linkedIdeas"], &l.LinkedIdeas)
	return l
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range strings.Split(s, tagSeparator) {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func splitHistory(s string) []domain.StageHistoryEntry {
	history := []domain.StageHistoryEntry{}
	for _, entry := range strings.Split(s, historySeparator) {
		if entry == "" {
			continue
		}
		stage, date, _ := strings.Cut(entry, historyPairSep)
		history = append(history, domain.StageHistoryEntry{Stage: domain.Stage(stage), Date: parseTime(date)})
	}
	return history
}

func nonEmpty(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func sourceOrDefault(s string) domain.Source {
	if s == "" {
		return domain.SourceManual
	}
	return domain.Source(s)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// encodeStrings always writes an array, never null.
func encodeStrings(values []string) string {
	if values == nil {
		values = []string{}
	}
	return encodeJSON(values)
}

func encodeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return ""
	}
	return string(b)
}

func decodeJSON[T any](s string, dst *T) {
	if s == "" {
		return
	}
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return
	}
	*dst = v
}
