package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"kindling/internal/domain"
	"kindling/internal/repository"
)

// InstrumentedRepository wraps a repository with a span and metrics per call.
type InstrumentedRepository struct {
	inner     repository.Repository
	tracer    trace.Tracer
	collector *Collector
}

var _ repository.Repository = (*InstrumentedRepository)(nil)

// InstrumentRepository decorates inner. A nil collector skips metrics.
func InstrumentRepository(inner repository.Repository, tracer trace.Tracer, collector *Collector) *InstrumentedRepository {
	return &InstrumentedRepository{inner: inner, tracer: tracer, collector: collector}
}

func (r *InstrumentedRepository) observe(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := r.tracer.Start(ctx, "repository."+op, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		if r.collector != nil {
			r.collector.RecordDB(op, start, err)
		}
	}
}

func (r *InstrumentedRepository) ListIdeas(ctx context.Context) (ideas []domain.Idea, err error) {
	ctx, done := r.observe(ctx, "ListIdeas")
	defer func() { done(err) }()
	return r.inner.ListIdeas(ctx)
}

func (r *InstrumentedRepository) GetIdea(ctx context.Context, id string) (idea domain.Idea, err error) {
	ctx, done := r.observe(ctx, "GetIdea", attribute.String("idea.id", id))
	defer func() { done(err) }()
	return r.inner.GetIdea(ctx, id)
}

func (r *InstrumentedRepository) CreateIdea(ctx context.Context, idea domain.Idea) (err error) {
	ctx, done := r.observe(ctx, "CreateIdea", attribute.String("idea.id", idea.ID))
	defer func() { done(err) }()
	return r.inner.CreateIdea(ctx, idea)
}

func (r *InstrumentedRepository) UpdateIdea(ctx context.Context, idea domain.Idea) (err error) {
	ctx, done := r.observe(ctx, "UpdateIdea", attribute.String("idea.id", idea.ID))
	defer func() { done(err) }()
	return r.inner.UpdateIdea(ctx, idea)
}

func (r *InstrumentedRepository) DeleteIdea(ctx context.Context, id string) (err error) {
	ctx, done := r.observe(ctx, "DeleteIdea", attribute.String("idea.id", id))
	defer func() { done(err) }()
	return r.inner.DeleteIdea(ctx, id)
}

func (r *InstrumentedRepository) ListThemes(ctx context.Context) (themes []domain.Theme, err error) {
	ctx, done := r.observe(ctx, "ListThemes")
	defer func() { done(err) }()
	return r.inner.ListThemes(ctx)
}

func (r *InstrumentedRepository) CreateTheme(ctx context.Context, theme domain.Theme) (err error) {
	ctx, done := r.observe(ctx, "CreateTheme")
	defer func() { done(err) }()
	return r.inner.CreateTheme(ctx, theme)
}

func (r *InstrumentedRepository) ListLearnings(ctx context.Context) (learnings []domain.Learning, err error) {
	ctx, done := r.observe(ctx, "ListLearnings")
	defer func() { done(err) }()
	return r.inner.ListLearnings(ctx)
}

func (r *InstrumentedRepository) CreateLearning(ctx context.Context, learning domain.Learning) (err error) {
	ctx, done := r.observe(ctx, "CreateLearning")
	defer func() { done(err) }()
	return r.inner.CreateLearning(ctx, learning)
}

func (r *InstrumentedRepository) InitializeTables(ctx context.Context) (err error) {
	ctx, done := r.observe(ctx, "InitializeTables")
	defer func() { done(err) }()
	return r.inner.InitializeTables(ctx)
}
