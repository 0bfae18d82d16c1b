package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"kindling/internal/domain"
	"kindling/internal/events"
	"kindling/internal/repository/mocks"
)

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("debug", true)
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = NewLogger("loud", false)
	assert.Error(t, err)
}

func TestCollectorMiddleware(t *testing.T) {
	c := NewCollector("kindling")
	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/api/ideas/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/ideas/abc", nil))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/api/ideas/{id}", "404")))

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "kindling_http_requests_total")
}

func TestInstrumentedRepository(t *testing.T) {
	ctx := context.Background()
	recorder := tracetest.NewSpanRecorder()
	tracer := trace.NewTracerProvider(trace.WithSpanProcessor(recorder)).Tracer("test")
	c := NewCollector("kindling")
	inner := mocks.NewMockRepository()
	repo := InstrumentRepository(inner, tracer, c)

	require.NoError(t, repo.CreateIdea(ctx, domain.Idea{ID: "a", Title: "x"}))
	inner.SetError("GetIdea", errors.New("boom"))
	_, err := repo.GetIdea(ctx, "a")
	assert.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "repository.CreateIdea", spans[0].Name())
	assert.Equal(t, "repository.GetIdea", spans[1].Name())
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DBOperations.WithLabelValues("GetIdea", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.DBOperations.WithLabelValues("CreateIdea", "ok")))
}

func TestCountingPublisher(t *testing.T) {
	c := NewCollector("kindling")
	p := CountingPublisher{Next: events.Nop{}, Collector: c}
	require.NoError(t, p.Publish(context.Background(), events.IdeaCreated(domain.Idea{ID: "a"})))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.IdeaEvents.WithLabelValues(events.TypeIdeaCreated)))
}

func TestInitTracingDisabled(t *testing.T) {
	tp, err := InitTracing(context.Background(), TracingConfig{})
	require.NoError(t, err)
	assert.NotNil(t, tp.Tracer())
	assert.NoError(t, tp.Shutdown(context.Background()))
}
