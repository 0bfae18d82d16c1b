// Package di assembles the API server with google/wire.
package di

import (
	"context"
	"errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"kindling/internal/config"
	"kindling/internal/observability"
	"kindling/internal/repository"
	"kindling/internal/service/ideas"
)

// Container holds the assembled server.
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Tracer     *observability.TracerProvider
	Collector  *observability.Collector
	Repository repository.Repository
	Ideas      ideas.Service
	Router     *chi.Mux
}

// Shutdown flushes traces and logs.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error
	if c.Tracer != nil {
		if err := c.Tracer.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if c.Logger != nil {
		// Sync fails on non-file stderr; nothing to act on.
		_ = c.Logger.Sync()
	}
	return errors.Join(errs...)
}
