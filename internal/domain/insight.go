package domain

import "slices"

// Theme is a recurring pattern, usually imported from a PAIA themes file.
type Theme struct {
	ID          string   `json:"id"`
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description"`
	Occurrences int      `json:"occurrences" validate:"gte=0"`
	KeyMoments  []string `json:"keyMoments"`
	LinkedIdeas []string `json:"linkedIdeas"`
	Source      Source   `json:"source"`
}

// Learning is a dated discovery, usually imported from a PAIA learnings file.
type Learning struct {
	ID          string   `json:"id"`
	Date        string   `json:"date"`
	Title       string   `json:"title" validate:"required"`
	Context     string   `json:"context"`
	Discovery   string   `json:"discovery"`
	Actionable  string   `json:"actionable"`
	LinkedIdeas []string `json:"linkedIdeas"`
	Source      Source   `json:"source"`
}

func (t Theme) Clone() Theme {
	t.KeyMoments = slices.Clone(t.KeyMoments)
	t.LinkedIdeas = slices.Clone(t.LinkedIdeas)
	return t
}

func (l Learning) Clone() Learning {
	l.LinkedIdeas = slices.Clone(l.LinkedIdeas)
	return l
}
