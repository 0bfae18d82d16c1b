package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	t1 = time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC)
)

func TestNewIdea(t *testing.T) {
	t.Run("Should seed history with the initial stage", func(t *testing.T) {
		idea := NewIdea(IdeaDraft{Title: "Compost bins"}.WithDefaults(), "idea-1", t0)

		assert.Equal(t, StageSpark, idea.Stage)
		assert.Equal(t, TypeExperiment, idea.Type)
		assert.Equal(t, EffortMedium, idea.Effort)
		assert.Equal(t, t0, idea.CreatedAt)
		assert.Equal(t, idea.CreatedAt, idea.UpdatedAt)
		require.Len(t, idea.StageHistory, 1)
		assert.Equal(t, StageHistoryEntry{Stage: StageSpark, Date: t0}, idea.StageHistory[0])
		assert.NotNil(t, idea.Tags)
	})

	t.Run("Should not share tag slices with the draft", func(t *testing.T) {
		tags := []string{"garden"}
		idea := NewIdea(IdeaDraft{Title: "x", Tags: tags}.WithDefaults(), "idea-2", t0)
		tags[0] = "changed"
		assert.Equal(t, []string{"garden"}, idea.Tags)
	})
}

func TestIdeaApply(t *testing.T) {
	base := NewIdea(IdeaDraft{Title: "Solar dryer"}.WithDefaults(), "idea-1", t0)

	t.Run("Should append history when the stage changes", func(t *testing.T) {
		stage := StageBuilding
		got := base.Apply(IdeaPatch{Stage: &stage}, t1)

		assert.Equal(t, StageBuilding, got.Stage)
		require.Len(t, got.StageHistory, 2)
		assert.Equal(t, StageHistoryEntry{Stage: StageBuilding, Date: t1}, got.StageHistory[1])
		assert.Equal(t, t1, got.UpdatedAt)
		assert.Len(t, base.StageHistory, 1, "original must be untouched")
	})

	t.Run("Should not append history for the same stage", func(t *testing.T) {
		stage := StageSpark
		got := base.Apply(IdeaPatch{Stage: &stage}, t1)
		assert.Len(t, got.StageHistory, 1)
		assert.Equal(t, t1, got.UpdatedAt)
	})

	t.Run("Should bump updatedAt for an empty patch", func(t *testing.T) {
		got := base.Apply(IdeaPatch{}, t1)
		assert.Equal(t, t1, got.UpdatedAt)
		assert.Equal(t, base.Title, got.Title)
	})

	t.Run("Should replace only provided fields", func(t *testing.T) {
		title := "Solar dehydrator"
		tags := []string{"food", "solar"}
		got := base.Apply(IdeaPatch{Title: &title, Tags: &tags}, t1)
		assert.Equal(t, title, got.Title)
		assert.Equal(t, tags, got.Tags)
		assert.Equal(t, base.Description, got.Description)
		assert.Equal(t, base.Effort, got.Effort)
	})
}

func TestLinks(t *testing.T) {
	idea := NewIdea(IdeaDraft{Title: "x"}.WithDefaults(), "idea-1", t0)

	withLink, ok := idea.WithLink(PersonLink{ID: "p1", Name: "Ada"})
	require.True(t, ok)
	assert.Len(t, withLink.PersonLinks, 1)
	assert.Empty(t, idea.PersonLinks)

	_, ok = idea.WithLink("not a link")
	assert.False(t, ok)

	removed, ok := withLink.WithoutLink(LinkPerson, "p1")
	require.True(t, ok)
	assert.Empty(t, removed.PersonLinks)

	same, ok := withLink.WithoutLink(LinkPerson, "missing")
	require.True(t, ok)
	assert.Len(t, same.PersonLinks, 1)

	_, ok = withLink.WithoutLink(LinkType("bogus"), "p1")
	assert.False(t, ok)
}

func TestParseAppData(t *testing.T) {
	t.Run("Should reject payloads without an ideas array", func(t *testing.T) {
		for _, payload := range []string{`{}`, `{"ideas": "nope"}`, `{"ideas": null}`, `not json`, `[]`} {
			_, err := ParseAppData([]byte(payload), t1)
			assert.ErrorIs(t, err, ErrInvalidImport, payload)
		}
	})

	t.Run("Should fill defaults and reset lastUpdated", func(t *testing.T) {
		data, err := ParseAppData([]byte(`{"ideas": []}`), t1)
		require.NoError(t, err)
		assert.Equal(t, DataVersion, data.Version)
		assert.Equal(t, t1, data.LastUpdated)
		assert.Equal(t, ViewDashboard, data.Settings.DefaultView)
		assert.Equal(t, DefaultOllamaModel, data.Settings.OllamaModel)
		assert.NotNil(t, data.Themes)
		assert.NotNil(t, data.Learnings)
	})

	t.Run("Should round trip an export", func(t *testing.T) {
		data := DefaultAppData(t0)
		data.Ideas = append(data.Ideas, NewIdea(IdeaDraft{Title: "Round", Tags: []string{"a"}}.WithDefaults(), "idea-1", t0))
		data.Themes = append(data.Themes, Theme{ID: "theme-1", Title: "Tools", KeyMoments: []string{}, LinkedIdeas: []string{}, Source: SourcePAIA})
		data.Settings.DefaultView = ViewKanban

		raw, err := data.Marshal()
		require.NoError(t, err)
		parsed, err := ParseAppData(raw, t0)
		require.NoError(t, err)
		assert.Equal(t, data, parsed)
	})
}

func TestValidator(t *testing.T) {
	v := Validator()
	assert.NoError(t, v.Struct(IdeaDraft{Title: "ok", Stage: StageShipped}))
	assert.Error(t, v.Struct(IdeaDraft{Title: ""}))
	assert.Error(t, v.Struct(IdeaDraft{Title: "ok", Stage: "done"}))
	assert.Error(t, v.Struct(ResourceLink{Type: "book"}))

	bad := Effort("huge")
	assert.Error(t, ValidatePatch(IdeaPatch{Effort: &bad}))
	good := EffortEpic
	assert.NoError(t, ValidatePatch(IdeaPatch{Effort: &good}))
}

func TestEffortRank(t *testing.T) {
	assert.Less(t, EffortTrivial.Rank(), EffortEpic.Rank())
	assert.Equal(t, -1, Effort("x").Rank())
}
