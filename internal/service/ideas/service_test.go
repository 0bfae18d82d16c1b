package ideas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindling/internal/domain"
	"kindling/internal/events"
	"kindling/internal/repository"
	"kindling/internal/repository/mocks"
	appErrors "kindling/pkg/errors"
)

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, evs ...events.Event) error {
	p.events = append(p.events, evs...)
	return p.err
}

func newTestService(t *testing.T) (*service, *mocks.MockRepository, *recordingPublisher) {
	t.Helper()
	repo := mocks.NewMockRepository()
	pub := &recordingPublisher{}
	svc := NewService(repo, pub, nil).(*service)
	clock := time.Date(2025, 2, 2, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return svc, repo, pub
}

func TestCreateIdea(t *testing.T) {
	ctx := context.Background()

	t.Run("SuccessfulCreation", func(t *testing.T) {
		svc, repo, pub := newTestService(t)
		idea, err := svc.CreateIdea(ctx, domain.IdeaDraft{Title: "Hand pump"})
		require.NoError(t, err)

		assert.Equal(t, "id-1", idea.ID)
		assert.Equal(t, domain.StageSpark, idea.Stage)
		assert.Equal(t, domain.TypeExperiment, idea.Type)
		assert.Equal(t, domain.EffortMedium, idea.Effort)
		assert.Equal(t, idea.CreatedAt, idea.UpdatedAt)
		require.Len(t, idea.StageHistory, 1)

		stored, err := repo.GetIdea(ctx, "id-1")
		require.NoError(t, err)
		assert.Equal(t, idea, stored)
		require.Len(t, pub.events, 1)
		assert.Equal(t, events.TypeIdeaCreated, pub.events[0].Type)
	})

	t.Run("MissingTitle", func(t *testing.T) {
		svc, _, _ := newTestService(t)
		_, err := svc.CreateIdea(ctx, domain.IdeaDraft{})
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("PublishFailureIsNotFatal", func(t *testing.T) {
		svc, _, pub := newTestService(t)
		pub.err = errors.New("bus down")
		_, err := svc.CreateIdea(ctx, domain.IdeaDraft{Title: "x"})
		assert.NoError(t, err)
	})

	t.Run("NotConfigured", func(t *testing.T) {
		svc := NewService(repository.Unconfigured{}, nil, nil)
		_, err := svc.CreateIdea(ctx, domain.IdeaDraft{Title: "x"})
		assert.True(t, appErrors.IsUnavailable(err))
	})
}

func TestUpdateIdea(t *testing.T) {
	ctx := context.Background()
	svc, _, pub := newTestService(t)
	idea, err := svc.CreateIdea(ctx, domain.IdeaDraft{Title: "Hand pump"})
	require.NoError(t, err)

	stage := domain.StageBuilding
	updated, err := svc.UpdateIdea(ctx, idea.ID, domain.IdeaPatch{Stage: &stage})
	require.NoError(t, err)
	assert.Len(t, updated.StageHistory, 2)
	assert.True(t, updated.UpdatedAt.After(idea.UpdatedAt))
	assert.Equal(t, events.TypeIdeaStageChanged, pub.events[len(pub.events)-1].Type)

	notes := "same stage"
	updated, err = svc.UpdateIdea(ctx, idea.ID, domain.IdeaPatch{Notes: &notes, Stage: &stage})
	require.NoError(t, err)
	assert.Len(t, updated.StageHistory, 2)

	_, err = svc.UpdateIdea(ctx, "missing", domain.IdeaPatch{Notes: &notes})
	assert.True(t, appErrors.IsNotFound(err))
}

func TestDeleteIdea(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	idea, err := svc.CreateIdea(ctx, domain.IdeaDraft{Title: "x"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteIdea(ctx, idea.ID))
	assert.True(t, appErrors.IsNotFound(svc.DeleteIdea(ctx, idea.ID)))

	repo.SetError("DeleteIdea", appErrors.NewUpstream("throttled", nil))
	err = svc.DeleteIdea(ctx, "any")
	assert.Equal(t, appErrors.ErrorTypeUpstream, appErrors.TypeOf(err))
}

func TestLinks(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t)
	idea, err := svc.CreateIdea(ctx, domain.IdeaDraft{Title: "Podcast garden"})
	require.NoError(t, err)

	t.Run("AddResource", func(t *testing.T) {
		got, err := svc.AddLink(ctx, idea.ID, domain.LinkResource,
			json.RawMessage(`{"type":"podcast","title":"Soil","url":"https://example.com/soil"}`))
		require.NoError(t, err)
		require.Len(t, got.ResourceLinks, 1)
		assert.NotEmpty(t, got.ResourceLinks[0].ID)
		assert.Equal(t, "Soil", got.ResourceLinks[0].Title)
	})

	t.Run("RejectInvalid", func(t *testing.T) {
		_, err := svc.AddLink(ctx, idea.ID, domain.LinkResource, json.RawMessage(`{"type":"book","title":"x"}`))
		assert.True(t, appErrors.IsValidation(err))
		_, err = svc.AddLink(ctx, idea.ID, domain.LinkResource, json.RawMessage(`{"type":"video","url":"not a url"}`))
		assert.True(t, appErrors.IsValidation(err))
		_, err = svc.AddLink(ctx, idea.ID, "bogus", json.RawMessage(`{}`))
		assert.True(t, appErrors.IsValidation(err))
		_, err = svc.AddLink(ctx, idea.ID, domain.LinkPerson, nil)
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("MissingIdea", func(t *testing.T) {
		_, err := svc.AddLink(ctx, "nope", domain.LinkPerson, json.RawMessage(`{"name":"Kai"}`))
		assert.True(t, appErrors.IsNotFound(err))
	})

	t.Run("Remove", func(t *testing.T) {
		withPerson, err := svc.AddLink(ctx, idea.ID, domain.LinkPerson, json.RawMessage(`{"name":"Kai","isBlocking":true}`))
		require.NoError(t, err)
		require.Len(t, withPerson.PersonLinks, 1)

		got, err := svc.RemoveLink(ctx, idea.ID, domain.LinkPerson, withPerson.PersonLinks[0].ID)
		require.NoError(t, err)
		assert.Empty(t, got.PersonLinks)
		assert.Len(t, got.ResourceLinks, 1)

		_, err = svc.RemoveLink(ctx, idea.ID, "bogus", "x")
		assert.True(t, appErrors.IsValidation(err))
	})
}

func TestBulkSync(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	existing, err := svc.CreateIdea(ctx, domain.IdeaDraft{Title: "already there"})
	require.NoError(t, err)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	incoming := []domain.Idea{
		existing,
		domain.NewIdea(domain.IdeaDraft{Title: "new one"}.WithDefaults(), "local-9", now),
		domain.NewIdea(domain.IdeaDraft{Title: "duplicate in batch"}.WithDefaults(), "local-9", now),
	}
	result, err := svc.BulkSync(ctx, incoming)
	require.NoError(t, err)
	assert.Equal(t, SyncResult{Created: 1, Skipped: 2}, result)

	ideas, err := repo.ListIdeas(ctx)
	require.NoError(t, err)
	assert.Len(t, ideas, 2)
}

func TestGetAllDataAndInsights(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newTestService(t)
	_, err := svc.CreateIdea(ctx, domain.IdeaDraft{Title: "a"})
	require.NoError(t, err)
	theme, err := svc.CreateTheme(ctx, domain.Theme{Title: "Recurring"})
	require.NoError(t, err)
	assert.Equal(t, domain.SourceManual, theme.Source)
	learning, err := svc.CreateLearning(ctx, domain.Learning{Title: "Lesson"})
	require.NoError(t, err)
	assert.Equal(t, "2025-02-02", learning.Date)

	data, err := svc.GetAllData(ctx)
	require.NoError(t, err)
	assert.Len(t, data.Ideas, 1)
	assert.Len(t, data.Themes, 1)
	assert.Len(t, data.Learnings, 1)
	assert.Equal(t, domain.DataVersion, data.Version)

	require.NoError(t, svc.InitializeTables(ctx))
	assert.True(t, repo.Initialized())

	repo.SetError("ListThemes", errors.New("boom"))
	_, err = svc.GetAllData(ctx)
	assert.True(t, appErrors.IsInternal(err))
}
