// Package paia extracts themes and learnings from the two PAIA markdown files
// (recurring_themes.md and learnings.md). Parsing is best effort: a section
// that cannot be read is logged and skipped, and parsing never fails.
package paia

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"kindling/internal/domain"
)

const (
	maxKeyMoments     = 5
	maxDescriptionLen = 500
)

var (
	themeHeading   = regexp.MustCompile(`###\s*\d+\.`)
	themeTitle     = regexp.MustCompile(`###\s*\d+\.[ \t\r\f\v]*([^\n]+)`)
	occurrencesRe  = regexp.MustCompile(`\*\*Occurrences\*\*:\s*(\d+)`)
	keyMomentsRe   = regexp.MustCompile(`\*\*Key moments\*\*:\s*\n`)
	quotedBullet   = regexp.MustCompile(`(?m)^-\s+"([^"]+)"`)
	metadataLine   = regexp.MustCompile(`\*\*[^*]+\*\*:\s*[^\n]+\n`)
	sectionBreaks  = []string{"\n---", "\n###"}
	keyMomentsMark = "**Key moments**"
)

// ParseThemes reads a recurring_themes.md document:
//
//	### 1. Theme Title
//	**First appeared**: 2025-12-24
//	**Occurrences**: 8 (details...)
//
//	Description paragraph...
//
//	**Key moments**:
//	- "Quote one"
//	- "Quote two"
//
// Returned themes have no id. The occurrence count defaults to 1.
func ParseThemes(markdown string, logger *zap.Logger) []domain.Theme {
	if logger == nil {
		logger = zap.NewNop()
	}
	themes := []domain.Theme{}
	if strings.TrimSpace(markdown) == "" {
		return themes
	}

	for _, section := range splitBefore(markdown, themeHeading) {
		if strings.TrimSpace(section) == "" || !themeHeading.MatchString(section) {
			continue
		}
		title := themeTitle.FindStringSubmatch(section)
		if title == nil || strings.TrimSpace(title[1]) == "" {
			logger.Warn("Skipping theme section without a title", zap.String("section", preview(section)))
			continue
		}

		occurrences := 1
		if m := occurrencesRe.FindStringSubmatch(section); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				occurrences = n
			}
		}

		keyMoments := extractKeyMoments(section)
		if len(keyMoments) > maxKeyMoments {
			keyMoments = keyMoments[:maxKeyMoments]
		}

		themes = append(themes, domain.Theme{
			Title:       strings.TrimSpace(title[1]),
			Description: truncate(extractDescription(section), maxDescriptionLen),
			Occurrences: occurrences,
			KeyMoments:  keyMoments,
			LinkedIdeas: []string{},
			Source:      domain.SourcePAIA,
		})
	}
	return themes
}

func extractKeyMoments(section string) []string {
	moments := []string{}
	loc := keyMomentsRe.FindStringIndex(section)
	if loc == nil {
		return moments
	}
	body := cutAtFirst(section[loc[1]:], sectionBreaks)
	for _, m := range quotedBullet.FindAllStringSubmatch(body, -1) {
		moments = append(moments, m[1])
	}
	return moments
}

// extractDescription takes the first paragraph after the metadata block and
// before the key moments block.
func extractDescription(section string) string {
	from := max(strings.Index(section, "Occurrences"), 0)
	rel := strings.Index(section[from:], "\n\n")
	if rel < 0 {
		return ""
	}
	start := from + rel
	end := strings.Index(section, keyMomentsMark)
	if end < 0 {
		end = len(section)
	}
	if end <= start {
		return ""
	}
	text := metadataLine.ReplaceAllString(section[start:end], "")
	text = strings.TrimSpace(text)
	first, _, _ := strings.Cut(text, "\n\n")
	return first
}
