//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"kindling/internal/config"
	"kindling/internal/handlers"
	"kindling/internal/observability"
	"kindling/internal/service/ideas"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideTracerProvider,
	ProvideCollector,
	ProvideAWSConfig,
	ProvideRepository,
	ProvidePublisher,
	ideas.NewService,
	ProvideLLMService,
	ProvideGate,
	ProvideLimiters,
	handlers.NewIdeaHandler,
	handlers.NewDataHandler,
	handlers.NewAIHandler,
	wire.Bind(new(handlers.AIRecorder), new(*observability.Collector)),
	ProvideAuthHandler,
	ProvideHealthHandler,
	wire.Struct(new(Handlers), "*"),
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
