package paia

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindling/internal/domain"
)

const themesDoc = `# Recurring Themes

Intro text that is not a theme.

### 1. Tools before rules
**First appeared**: 2025-12-24
**Occurrences**: 8 (across journals)

Builds a small tool whenever a process gets annoying.

Second paragraph is ignored.

**Key moments**:
- "Wrote a script for invoices"
- "Shared the script with a friend"

---

### 2. Slow mornings
**First appeared**: 2025-11-02

Protects the first hour of the day.
`

const learningsDoc = `# Learnings

### 2025-01-09: Title
**Context**: X
**Discovery**: Y
**Connections**: ignored
**Actionable**: Z

---

### 2025-02-10: Multi-line discovery
**Discovery**: line one
line two
`

func TestParseThemes(t *testing.T) {
	themes := ParseThemes(themesDoc, nil)
	require.Len(t, themes, 2)

	first := themes[0]
	assert.Equal(t, "Tools before rules", first.Title)
	assert.Equal(t, 8, first.Occurrences)
	assert.Equal(t, []string{"Wrote a script for invoices", "Shared the script with a friend"}, first.KeyMoments)
	assert.Equal(t, "Builds a small tool whenever a process gets annoying.", first.Description)
	assert.Equal(t, domain.SourcePAIA, first.Source)
	assert.Empty(t, first.ID)
	assert.NotNil(t, first.LinkedIdeas)

	second := themes[1]
	assert.Equal(t, 1, second.Occurrences, "occurrences default to 1")
	assert.Empty(t, second.KeyMoments)
	assert.Equal(t, "Protects the first hour of the day.", second.Description)
}

func TestParseThemesLimits(t *testing.T) {
	var b strings.Builder
	b.WriteString("### 1. Many moments\n**Occurrences**: 2\n\n")
	b.WriteString(strings.Repeat("x", 700))
	b.WriteString("\n\n**Key moments**:\n")
	for i := 0; i < 7; i++ {
		b.WriteString("- \"moment\"\n")
	}

	themes := ParseThemes(b.String(), nil)
	require.Len(t, themes, 1)
	assert.Len(t, themes[0].KeyMoments, 5)
	assert.Len(t, themes[0].Description, 500)
}

func TestParseThemesFailsOpen(t *testing.T) {
	assert.Empty(t, ParseThemes("", nil))
	assert.Empty(t, ParseThemes("no headings here", nil))

	themes := ParseThemes("### 1.\n### 2. Kept\n", nil)
	require.Len(t, themes, 1)
	assert.Equal(t, "Kept", themes[0].Title)
}

func TestParseLearnings(t *testing.T) {
	learnings := ParseLearnings(learningsDoc, nil)
	require.Len(t, learnings, 2)

	assert.Equal(t, domain.Learning{
		Date:        "2025-01-09",
		Title:       "Title",
		Context:     "X",
		Discovery:   "Y",
		Actionable:  "Z",
		LinkedIdeas: []string{},
		Source:      domain.SourcePAIA,
	}, learnings[0])

	assert.Equal(t, "line one\nline two", learnings[1].Discovery)
	assert.Empty(t, learnings[1].Context)
}

func TestParseLearningsTruncatesFields(t *testing.T) {
	doc := "### 2025-03-01: Long\n**Context**: " + strings.Repeat("c", 800) +
		"\n**Discovery**: " + strings.Repeat("d", 1500) + "\n"
	learnings := ParseLearnings(doc, nil)
	require.Len(t, learnings, 1)
	assert.Len(t, learnings[0].Context, 500)
	assert.Len(t, learnings[0].Discovery, 1000)
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "deep", "er"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "deep", ThemesFile), []byte(themesDoc), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "deep", "er", ThemesFile), []byte("old"), 0o644))

	files, err := Discover(root)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "deep", ThemesFile), files.Themes)
	assert.Empty(t, files.Learnings)

	themes, learnings, err := files.Read()
	require.NoError(t, err)
	assert.Equal(t, themesDoc, themes)
	assert.Empty(t, learnings)

	_, err = Discover(t.TempDir())
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, LearningsFile)
	require.NoError(t, os.WriteFile(path, []byte("initial"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, Files{Learnings: path}, 20*time.Millisecond, nil, func(context.Context) {
			changed <- struct{}{}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "unrelated.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(learningsDoc), 0o644))

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification")
	}

	cancel()
	assert.NoError(t, <-done)
}
