package search

import (
	"slices"
	"sort"

	"kindling/internal/domain"
)

// DefaultRecentLimit is the number of ideas shown in the recent list.
const DefaultRecentLimit = 5

// Stats summarises the collection for the dashboard.
type Stats struct {
	Total          int                  `json:"total"`
	ByStage        map[domain.Stage]int `json:"byStage"`
	Permasolutions int                  `json:"permasolutions"`
	ActiveBuilding int                  `json:"activeBuilding"`
	Themes         int                  `json:"themes"`
	Learnings      int                  `json:"learnings"`
}

func ComputeStats(data domain.AppData) Stats {
	stats := Stats{
		Total:     len(data.Ideas),
		ByStage:   make(map[domain.Stage]int, len(domain.Stages)),
		Themes:    len(data.Themes),
		Learnings: len(data.Learnings),
	}
	for _, stage := range domain.Stages {
		stats.ByStage[stage] = 0
	}
	for _, idea := range data.Ideas {
		stats.ByStage[idea.Stage]++
		if idea.Type == domain.TypePermasolution {
			stats.Permasolutions++
		}
	}
	stats.ActiveBuilding = stats.ByStage[domain.StageBuilding]
	return stats
}

// AllTags returns every distinct tag, sorted.
func AllTags(ideas []domain.Idea) []string {
	seen := map[string]struct{}{}
	for _, idea := range ideas {
		for _, tag := range idea.Tags {
			seen[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Recent returns up to limit ideas, most recently updated first.
func Recent(ideas []domain.Idea, limit int) []domain.Idea {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	sorted := slices.Clone(ideas)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})
	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

func ByStage(ideas []domain.Idea, stage domain.Stage) []domain.Idea {
	return Ideas(ideas, "", Filters{Stages: []domain.Stage{stage}})
}
