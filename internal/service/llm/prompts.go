package llm

import (
	"fmt"
	"strings"

	"kindling/internal/domain"
)

// SparkPrompt asks for next steps on a freshly captured idea.
func SparkPrompt(title, description string) string {
	return fmt.Sprintf(`You are helping a builder develop a project idea. The user has captured this spark:

Title: %s
Description: %s

Provide a brief, practical response (2-3 paragraphs) that:
1. Identifies the core problem or opportunity
2. Suggests 2-3 concrete next steps to explore this idea

Keep it actionable and encouraging. No fluff.`, title, orDefault(description, "(no description yet)"))
}

// ProgressPrompt asks for a check-in on an idea that has been sitting in a stage.
func ProgressPrompt(title string, stage domain.Stage, daysSinceUpdate int) string {
	return fmt.Sprintf(`You are helping a builder reflect on a project they're working on.

Project: %s
Current stage: %s
Days since last update: %d

Provide a brief, supportive check-in (1-2 paragraphs) that:
1. Acknowledges their progress
2. Gently asks a clarifying question if the project seems stalled
3. If it's been building for a while, asks if it might be slipping into "sustainer trap" territory

Be direct but kind. No fluff.`, title, stage, daysSinceUpdate)
}

// NewIdeasPrompt asks for new ideas that fit the existing portfolio and themes.
func NewIdeasPrompt(ideas []domain.Idea, themes []domain.Theme) string {
	var ideaLines []string
	for _, idea := range head(ideas, 10) {
		ideaLines = append(ideaLines, fmt.Sprintf("- %s (%s)", idea.Title, idea.Stage))
	}
	var themeLines []string
	for _, theme := range head(themes, 5) {
		themeLines = append(themeLines, "- "+theme.Title)
	}

	return fmt.Sprintf(`You are helping a builder discover new project ideas based on their patterns.

Current projects:
%s

Recurring themes in their work:
%s

Based on these patterns, suggest 2-3 new project ideas that:
1. Align with their interests and themes
2. Are specific and actionable, not vague

Format each idea as:
**[Title]**: Brief description and why it fits their pattern.

Be creative but practical.`,
		orDefault(strings.Join(ideaLines, "\n"), "(no projects yet)"),
		orDefault(strings.Join(themeLines, "\n"), "(no themes imported)"))
}

// ThemeConnectionPrompt asks which recurring themes an idea relates to.
func ThemeConnectionPrompt(title, description string, themes []domain.Theme) string {
	var themeLines []string
	for _, theme := range themes {
		themeLines = append(themeLines, fmt.Sprintf("- %s: %s...", theme.Title, clip(theme.Description, 100)))
	}

	return fmt.Sprintf(`You are helping a builder see connections between a project and their recurring themes.

Project:
Title: %s
Description: %s

Their recurring themes:
%s

In 1-2 sentences, identify which theme(s) this project relates to and why. Be specific about the connection.`,
		title, orDefault(description, "(no description)"),
		orDefault(strings.Join(themeLines, "\n"), "(no themes imported)"))
}

// CategorizationPrompt asks for a starting stage, tags and effort in a line format
// that ParseCategorization understands.
func CategorizationPrompt(title, description string) string {
	return fmt.Sprintf(`You are helping categorize a new project idea.

Title: %s
Description: %s

Based on this, suggest the following. Be concise and direct:

1. **Stage**: Which stage should this start in?
   - spark: Just an idea, needs more thinking
   - exploring: Ready to research/validate
   - building: Ready to build now
   - shipped: Already complete (rare for new ideas)
   - paused: On hold for now

2. **Tags**: Suggest 2-4 relevant tags (comma-separated, lowercase)

3. **Effort**: Estimate the effort level
   - trivial: < 1 hour
   - small: 1-4 hours
   - medium: 1-2 days
   - large: 1 week+
   - epic: Multi-week

Respond in EXACTLY this format (one line each):
STAGE: [stage]
TAGS: [tag1, tag2, tag3]
EFFORT: [effort]
REASONING: [1 sentence explaining your choices]`, title, orDefault(description, "(no description yet)"))
}

// InsightsPrompt asks for an analysis of the whole portfolio.
func InsightsPrompt(ideas []domain.Idea, themes []domain.Theme) string {
	var order []domain.Stage
	groups := make(map[domain.Stage][]string)
	for _, idea := range ideas {
		if _, seen := groups[idea.Stage]; !seen {
			order = append(order, idea.Stage)
		}
		groups[idea.Stage] = append(groups[idea.Stage], idea.Title)
	}
	var stageLines []string
	for _, stage := range order {
		titles := groups[stage]
		more := ""
		if len(titles) > 2 {
			more = "..."
		}
		stageLines = append(stageLines, fmt.Sprintf("- %s: %d (%s%s)", stage, len(titles), strings.Join(head(titles, 2), ", "), more))
	}
	var themeLines []string
	for _, theme := range head(themes, 3) {
		themeLines = append(themeLines, "- "+theme.Title)
	}

	return fmt.Sprintf(`You are helping a builder understand patterns in their project portfolio.

Portfolio breakdown:
%s

Total: %d ideas

Recurring themes:
%s

Provide a brief analysis (2-3 short paragraphs) that:
1. Identifies any patterns worth noting (too many ideas stuck in one stage?)
2. Suggests what to focus on next
3. Offers one actionable recommendation

Be direct and practical.`, strings.Join(stageLines, "\n"), len(ideas),
		orDefault(strings.Join(themeLines, "\n"), "(no themes)"))
}

// ChatContext is the portfolio snapshot a chat message is answered against.
type ChatContext struct {
	Ideas     []domain.Idea     `json:"ideas"`
	Themes    []domain.Theme    `json:"themes"`
	Learnings []domain.Learning `json:"learnings"`
}

// ChatPrompt builds the companion system prompt followed by the user's message.
func ChatPrompt(cc ChatContext, message string) string {
	var order []domain.Stage
	groups := make(map[domain.Stage][]string)
	for _, idea := range cc.Ideas {
		if _, seen := groups[idea.Stage]; !seen {
			order = append(order, idea.Stage)
		}
		line := "- " + idea.Title
		if len(idea.Tags) > 0 {
			line += " [" + strings.Join(idea.Tags, ", ") + "]"
		}
		groups[idea.Stage] = append(groups[idea.Stage], line)
	}
	var sections []string
	for _, stage := range order {
		sections = append(sections, strings.ToUpper(string(stage))+":\n"+strings.Join(groups[stage], "\n"))
	}

	themes := "(No themes imported yet)"
	if len(cc.Themes) > 0 {
		lines := make([]string, len(cc.Themes))
		for i, t := range cc.Themes {
			lines[i] = fmt.Sprintf("- %s: %s...", t.Title, clip(t.Description, 100))
		}
		themes = strings.Join(lines, "\n")
	}
	learnings := "(No learnings imported yet)"
	if len(cc.Learnings) > 0 {
		lines := make([]string, len(cc.Learnings))
		for i, l := range cc.Learnings {
			lines[i] = fmt.Sprintf("- %s: %s...", l.Title, clip(l.Discovery, 100))
		}
		learnings = strings.Join(lines, "\n")
	}

	var b strings.Builder
	b.WriteString("You are Kindling Companion, a helpful AI assistant for the Kindling idea tracker.\n\n")
	b.WriteString("The user is a builder who is good at starting things but sometimes struggles to sustain them. ")
	b.WriteString(`They prefer "permasolutions": things built once that keep running without ongoing maintenance.` + "\n\n")
	b.WriteString("You have access to their current project data:\n\n")
	b.WriteString("IDEAS BY STAGE:\n" + orDefault(strings.Join(sections, "\n\n"), "(No ideas yet)") + "\n\n")
	b.WriteString("RECURRING THEMES:\n" + themes + "\n\n")
	b.WriteString("KEY LEARNINGS:\n" + learnings + "\n\n")
	b.WriteString("Your job is to:\n")
	b.WriteString("1. Help the user explore patterns and connections in their ideas\n")
	b.WriteString("2. Answer questions about their projects, themes, and learnings\n")
	b.WriteString("3. Suggest which sparks might be worth pursuing\n")
	b.WriteString(`4. Identify if any projects might be "sustainer traps" (require ongoing maintenance)` + "\n")
	b.WriteString("5. Be direct, practical, and encouraging. No fluff.\n\n")
	b.WriteString("When searching for ideas, match against titles, descriptions, tags, and notes.\n")
	b.WriteString("Keep responses concise (2-3 paragraphs max) unless asked for detail.\n")
	b.WriteString("Use fire and flame metaphors naturally (sparks, kindling, blazing, beacons) since that's the app's theme.")
	b.WriteString("\n\nUser: " + message + "\n\nAssistant:")
	return b.String()
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func head[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
