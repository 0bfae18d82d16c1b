package paia

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// splitBefore splits s so that every match of heading starts a new section.
// Text before the first heading becomes the first section.
func splitBefore(s string, heading *regexp.Regexp) []string {
	starts := heading.FindAllStringIndex(s, -1)
	if len(starts) == 0 {
		return []string{s}
	}
	sections := make([]string, 0, len(starts)+1)
	prev := 0
	for _, loc := range starts {
		if loc[0] > prev {
			sections = append(sections, s[prev:loc[0]])
		}
		prev = loc[0]
	}
	return append(sections, s[prev:])
}

// cutAtFirst returns s up to the earliest occurrence of any marker.
func cutAtFirst(s string, markers []string) string {
	end := len(s)
	for _, m := range markers {
		if i := strings.Index(s, m); i >= 0 && i < end {
			end = i
		}
	}
	return s[:end]
}

// truncate limits s to n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func preview(section string) string {
	return truncate(section, 100)
}
