package paia

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"kindling/internal/domain"
)

const (
	maxContextLen    = 500
	maxDiscoveryLen  = 1000
	maxActionableLen = 500
)

var (
	learningHeading = regexp.MustCompile(`###\s*\d{4}-\d{2}-\d{2}:`)
	learningHeader  = regexp.MustCompile(`###\s*(\d{4}-\d{2}-\d{2}):[ \t\r\f\v]*([^\n]+)`)
	fieldBreaks     = []string{"\n**", "\n---", "\n###"}
	fieldLabels     = map[string]*regexp.Regexp{
		"Context":    regexp.MustCompile(`\*\*Context\*\*:\s*`),
		"Discovery":  regexp.MustCompile(`\*\*Discovery\*\*:\s*`),
		"Actionable": regexp.MustCompile(`\*\*Actionable\*\*:\s*`),
	}
)

// ParseLearnings reads a learnings.md document:
//
//	### 2026-01-09: Learning Title
//
//	**Context**: ...
//	**Discovery**: ...
//	**Actionable**: ...
//
// Each field runs until the next bold label or section boundary and is
// truncated independently. Returned learnings have no id.
func ParseLearnings(markdown string, logger *zap.Logger) []domain.Learning {
	if logger == nil {
		logger = zap.NewNop()
	}
	learnings := []domain.Learning{}
	if strings.TrimSpace(markdown) == "" {
		return learnings
	}

	for _, section := range splitBefore(markdown, learningHeading) {
		if strings.TrimSpace(section) == "" || !learningHeading.MatchString(section) {
			continue
		}
		header := learningHeader.FindStringSubmatch(section)
		if header == nil || strings.TrimSpace(header[2]) == "" {
			logger.Warn("Skipping learning section without a title", zap.String("section", preview(section)))
			continue
		}

		learnings = append(learnings, domain.Learning{
			Date:        header[1],
			Title:       strings.TrimSpace(header[2]),
			Context:     truncate(extractField(section, "Context"), maxContextLen),
			Discovery:   truncate(extractField(section, "Discovery"), maxDiscoveryLen),
			Actionable:  truncate(extractField(section, "Actionable"), maxActionableLen),
			LinkedIdeas: []string{},
			Source:      domain.SourcePAIA,
		})
	}
	return learnings
}

func extractField(section, label string) string {
	loc := fieldLabels[label].FindStringIndex(section)
	if loc == nil {
		return ""
	}
	return strings.TrimSpace(cutAtFirst(section[loc[1]:], fieldBreaks))
}
