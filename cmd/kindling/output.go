package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"kindling/internal/domain"
)

const markdownWidth = 80

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("208")).
			Padding(0, 1)
)

// renderMarkdown renders model output for the terminal. Rendering failures fall
// back to the raw text.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(markdownWidth),
	)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

func newTable(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func printIdeas(out io.Writer, ideas []domain.Idea) error {
	if len(ideas) == 0 {
		fmt.Fprintln(out, "No ideas found.")
		return nil
	}
	w := newTable(out)
	fmt.Fprintln(w, "ID\tTITLE\tSTAGE\tTYPE\tEFFORT\tTAGS")
	for _, idea := range ideas {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(idea.ID),
			truncate(idea.Title, 40),
			idea.Stage.Label(),
			idea.Type,
			idea.Effort,
			strings.Join(idea.Tags, ","),
		)
	}
	return w.Flush()
}

func printIdea(out io.Writer, idea domain.Idea) error {
	fmt.Fprintln(out, headingStyle.Render(idea.Title))
	w := newTable(out)
	fmt.Fprintf(w, "ID:\t%s\n", idea.ID)
	fmt.Fprintf(w, "Stage:\t%s (%s)\n", idea.Stage.Label(), idea.Stage)
	fmt.Fprintf(w, "Type:\t%s\n", idea.Type)
	fmt.Fprintf(w, "Effort:\t%s\n", idea.Effort)
	if len(idea.Tags) > 0 {
		fmt.Fprintf(w, "Tags:\t%s\n", strings.Join(idea.Tags, ", "))
	}
	fmt.Fprintf(w, "Created:\t%s\n", idea.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(w, "Updated:\t%s\n", idea.UpdatedAt.Format("2006-01-02 15:04"))
	if idea.StartedAt != nil {
		fmt.Fprintf(w, "Started:\t%s\n", idea.StartedAt.Format("2006-01-02"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if idea.Description != "" {
		fmt.Fprintf(out, "\n%s\n", idea.Description)
	}
	if idea.Notes != "" {
		fmt.Fprintf(out, "\n%s\n%s\n", mutedStyle.Render("Notes"), idea.Notes)
	}
	if len(idea.StageHistory) > 0 {
		fmt.Fprintf(out, "\n%s\n", mutedStyle.Render("History"))
		for _, h := range idea.StageHistory {
			fmt.Fprintf(out, "  %s  %s\n", h.Date.Format("2006-01-02"), h.Stage.Label())
		}
	}
	if n := len(idea.MemoryLinks) + len(idea.ResourceLinks) + len(idea.PersonLinks); n > 0 {
		fmt.Fprintf(out, "\n%s %d memory, %d resource, %d person\n",
			mutedStyle.Render("Links:"), len(idea.MemoryLinks), len(idea.ResourceLinks), len(idea.PersonLinks))
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
