package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kindling/internal/domain"
	appErrors "kindling/pkg/errors"
)

func TestLoopbackHost(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"", DefaultOllamaHost, true},
		{"http://localhost:11434", "http://localhost:11434", true},
		{"http://127.0.0.1:9000/", "http://127.0.0.1:9000", true},
		{"http://[::1]:11434", "http://[::1]:11434", true},
		{"http://10.0.0.5:11434", DefaultOllamaHost, false},
		{"http://ollama.example.com", DefaultOllamaHost, false},
		{"ftp://localhost", DefaultOllamaHost, false},
		{"::not a url", DefaultOllamaHost, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := LoopbackHost(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestOllamaProvider(t *testing.T) {
	ctx := context.Background()

	t.Run("Should send a non-streaming generate request", func(t *testing.T) {
		var got generateRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/generate", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_ = json.NewEncoder(w).Encode(generateResponse{Model: "llama3.1:8b", Response: "hello", Done: true})
		}))
		defer srv.Close()

		p := NewOllamaProvider(srv.URL, "llama3.1:8b", srv.Client(), nil)
		c, err := p.Complete(ctx, "hi", suggestOptions)
		require.NoError(t, err)
		assert.Equal(t, Completion{Text: "hello", Model: "llama3.1:8b"}, c)
		assert.False(t, got.Stream)
		assert.Equal(t, 500, got.Options.MaxTokens)
		assert.Equal(t, 0.7, got.Options.Temperature)
	})

	t.Run("Should map non-2xx to upstream", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "model not found", http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := NewOllamaProvider(srv.URL, "x", srv.Client(), nil).Complete(ctx, "hi", suggestOptions)
		assert.Equal(t, appErrors.ErrorTypeUpstream, appErrors.TypeOf(err))
		assert.Contains(t, err.Error(), "model not found")
	})

	t.Run("Should map connection failure to unavailable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		p := NewOllamaProvider(url, "x", &http.Client{Timeout: time.Second}, nil)
		_, err := p.Complete(ctx, "hi", suggestOptions)
		assert.True(t, appErrors.IsUnavailable(err))
		_, err = p.Models(ctx)
		assert.True(t, appErrors.IsUnavailable(err))
	})

	t.Run("Should list models", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/api/tags", r.URL.Path)
			_, _ = w.Write([]byte(`{"models":[{"name":"llama3.1:8b"},{"name":"qwen2"}]}`))
		}))
		defer srv.Close()

		models, err := NewOllamaProvider(srv.URL, "x", srv.Client(), nil).Models(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"llama3.1:8b", "qwen2"}, models)
	})

	t.Run("Should never target a remote host", func(t *testing.T) {
		p := NewOllamaProvider("http://169.254.169.254", "x", nil, nil)
		assert.Equal(t, DefaultOllamaHost, p.Info().Host)
	})
}

func TestParseCategorization(t *testing.T) {
	t.Run("Should parse the requested format", func(t *testing.T) {
		c, ok := ParseCategorization("STAGE: building\nTAGS: [Solar, garden , ]\nEFFORT: large\nREASONING: Parts are on hand.")
		require.True(t, ok)
		assert.Equal(t, Categorization{
			Stage:     domain.StageBuilding,
			Tags:      []string{"solar", "garden"},
			Effort:    domain.EffortLarge,
			Reasoning: "Parts are on hand.",
		}, c)
	})

	t.Run("Should tolerate markdown emphasis and drop invalid values", func(t *testing.T) {
		c, ok := ParseCategorization("Sure!\n**STAGE**: [someday]\n**EFFORT**: Trivial\n")
		require.True(t, ok)
		assert.Empty(t, c.Stage)
		assert.Equal(t, domain.EffortTrivial, c.Effort)
	})

	t.Run("Should report free text as unparsed", func(t *testing.T) {
		_, ok := ParseCategorization("I think this is a great idea.")
		assert.False(t, ok)
	})
}

func TestService(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	data := domain.DefaultAppData(now)
	data.Ideas = []domain.Idea{
		domain.NewIdea(domain.IdeaDraft{Title: "Rain barrel", Tags: []string{"water"}}.WithDefaults(), "a", now.Add(-72*time.Hour)),
		domain.NewIdea(domain.IdeaDraft{Title: "Compost sensor", Stage: domain.StageBuilding}.WithDefaults(), "b", now),
	}
	data.Themes = []domain.Theme{{Title: "Water", Description: "Capturing rain"}}

	t.Run("Should require a prompt", func(t *testing.T) {
		_, err := NewService(NewMockProvider(), nil).Suggest(ctx, "  ", "spark")
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("Should require a message", func(t *testing.T) {
		_, err := NewService(NewMockProvider(), nil).Chat(ctx, "", ChatContext{})
		assert.True(t, appErrors.IsValidation(err))
	})

	t.Run("Should build server-side prompts", func(t *testing.T) {
		mock := NewMockProvider()
		svc := NewService(mock, nil)
		svc.now = func() time.Time { return now }

		out, err := svc.SuggestFor(ctx, KindProgress, data, "a")
		require.NoError(t, err)
		assert.Equal(t, "progress", out.Type)
		assert.Contains(t, mock.Prompts()[0], "Days since last update: 3")

		_, err = svc.SuggestFor(ctx, KindSpark, data, "")
		assert.True(t, appErrors.IsValidation(err))
		_, err = svc.SuggestFor(ctx, KindSpark, data, "missing")
		assert.True(t, appErrors.IsNotFound(err))
		_, err = svc.SuggestFor(ctx, "haiku", data, "")
		assert.True(t, appErrors.IsValidation(err))

		out, err = svc.SuggestFor(ctx, KindCategorize, data, "b")
		require.NoError(t, err)
		require.NotNil(t, out.Categorization)
		assert.Equal(t, domain.StageExploring, out.Categorization.Stage)
	})

	t.Run("Should use a larger budget for chat", func(t *testing.T) {
		mock := NewMockProvider()
		reply, err := NewService(mock, nil).Chat(ctx, "What should I build?", ChatContext{Ideas: data.Ideas, Themes: data.Themes})
		require.NoError(t, err)
		assert.Equal(t, "mock-model", reply.Model)
		assert.Equal(t, 800, mock.Options()[0].MaxTokens)
		prompt := mock.Prompts()[0]
		assert.Contains(t, prompt, "SPARK:\n- Rain barrel [water]")
		assert.True(t, strings.HasSuffix(prompt, "User: What should I build?\n\nAssistant:"))
	})

	t.Run("Should report status", func(t *testing.T) {
		mock := NewMockProvider()
		svc := NewService(mock, nil)
		st, err := svc.Status(ctx)
		require.NoError(t, err)
		assert.Equal(t, "connected", st.Status)

		mock.SetAvailable(false)
		st, err = svc.Status(ctx)
		assert.True(t, appErrors.IsUnavailable(err))
		assert.Equal(t, "disconnected", st.Status)
		assert.False(t, svc.IsAvailable(ctx))
	})
}

func TestInsightsPrompt(t *testing.T) {
	now := time.Now()
	var ideas []domain.Idea
	for _, title := range []string{"a", "b", "c"} {
		ideas = append(ideas, domain.NewIdea(domain.IdeaDraft{Title: title}.WithDefaults(), title, now))
	}
	prompt := InsightsPrompt(ideas, nil)
	assert.Contains(t, prompt, "- spark: 3 (a, b...)")
	assert.Contains(t, prompt, "Total: 3 ideas")
	assert.Contains(t, prompt, "(no themes)")
}
