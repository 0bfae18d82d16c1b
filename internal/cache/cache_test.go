package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindling/internal/domain"
)

func sampleData() domain.AppData {
	now := time.Date(2025, 5, 5, 5, 5, 5, 0, time.UTC)
	data := domain.DefaultAppData(now)
	data.Ideas = append(data.Ideas, domain.NewIdea(domain.IdeaDraft{Title: "Cache me"}.WithDefaults(), "idea-1", now))
	return data
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "cache.db")

	c, err := OpenSQLite(path)
	require.NoError(t, err)
	defer c.Close()

	t.Run("Should report empty before first save", func(t *testing.T) {
		_, ok, err := c.Load(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Should overwrite the single snapshot", func(t *testing.T) {
		data := sampleData()
		require.NoError(t, c.Save(ctx, data))

		data.Settings.DefaultView = domain.ViewTimeline
		require.NoError(t, c.Save(ctx, data))

		got, ok, err := c.Load(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, data, got)
	})

	t.Run("Should survive reopening", func(t *testing.T) {
		require.NoError(t, c.Close())
		reopened, err := OpenSQLite(path)
		require.NoError(t, err)
		defer reopened.Close()

		got, ok, err := reopened.Load(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, domain.ViewTimeline, got.Settings.DefaultView)
	})

	_, err = OpenSQLite("")
	assert.Error(t, err)
}

func TestSQLiteOlderSnapshot(t *testing.T) {
	ctx := context.Background()
	c, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer c.Close()

	_, err = c.db.ExecContext(ctx, `INSERT INTO snapshots (name, payload, saved_at) VALUES (?, ?, ?);`,
		snapshotKey, `{"lastUpdated":"2024-11-02T08:00:00Z","ideas":[{"id":"old","title":"Before settings"}]}`, "2024-11-02T08:00:00Z")
	require.NoError(t, err)

	got, ok, err := c.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.ViewDashboard, got.Settings.DefaultView)
	assert.Equal(t, domain.DefaultOllamaModel, got.Settings.OllamaModel)
	assert.Equal(t, domain.DataVersion, got.Version)
	assert.NotNil(t, got.Themes)
	assert.NotNil(t, got.Learnings)
	require.Len(t, got.Ideas, 1)
	assert.NotNil(t, got.Ideas[0].Tags)
	assert.NotNil(t, got.Ideas[0].StageHistory)
	assert.Equal(t, time.Date(2024, 11, 2, 8, 0, 0, 0, time.UTC), got.LastUpdated.UTC())
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	data := sampleData()
	require.NoError(t, m.Save(ctx, data))
	data.Ideas[0].Title = "mutated after save"

	got, ok, err := m.Load(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Cache me", got.Ideas[0].Title)
	assert.Equal(t, 1, m.Saves())

	m.FailWith(errors.New("disk full"))
	assert.Error(t, m.Save(ctx, data))
}
