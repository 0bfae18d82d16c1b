package di

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"kindling/internal/auth"
	"kindling/internal/config"
	"kindling/internal/events"
	"kindling/internal/handlers"
	"kindling/internal/observability"
	"kindling/internal/ratelimit"
	"kindling/internal/repository"
	"kindling/internal/repository/ddb"
	"kindling/internal/repository/supabase"
	"kindling/internal/service/llm"
)

// Version is reported by /health. It is set at link time.
var Version = "dev"

// Limiters holds the per-client throttles of the API.
type Limiters struct {
	Auth *ratelimit.FixedWindowLimiter
	AI   *ratelimit.FixedWindowLimiter
	API  *ratelimit.FixedWindowLimiter
	Read *ratelimit.FixedWindowLimiter
}

// ProvideLogger creates the application logger
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	return observability.NewLogger(cfg.Logging.Level, cfg.Logging.Development)
}

// ProvideTracerProvider initializes OpenTelemetry tracing
func ProvideTracerProvider(ctx context.Context, cfg *config.Config) (*observability.TracerProvider, error) {
	return observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     Version,
		Environment: cfg.Environment,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRate:  cfg.Tracing.SampleRate,
	})
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(cfg.Metrics.Namespace)
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Storage.Region),
	)
}

// ProvideRepository selects the remote tabular store. Without a backend every call
// reports that storage is not configured.
func ProvideRepository(
	cfg *config.Config,
	awsCfg aws.Config,
	logger *zap.Logger,
	tp *observability.TracerProvider,
	collector *observability.Collector,
) (repository.Repository, error) {
	var repo repository.Repository
	switch cfg.Storage.Backend {
	case config.BackendDynamoDB:
		client := awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
			if cfg.Storage.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			}
		})
		repo = ddb.NewRepository(client, cfg.Storage.TableName, logger)
	case config.BackendSupabase:
		sb, err := supabase.NewFromURL(cfg.Supabase.URL, cfg.Supabase.Key, logger)
		if err != nil {
			return nil, err
		}
		repo = sb
	default:
		logger.Warn("No storage backend configured, store-backed endpoints will answer 503")
		repo = repository.Unconfigured{}
	}
	return observability.InstrumentRepository(repo, tp.Tracer(), collector), nil
}

// ProvidePublisher creates the lifecycle event publisher
func ProvidePublisher(cfg *config.Config, awsCfg aws.Config, logger *zap.Logger, collector *observability.Collector) events.Publisher {
	var next events.Publisher = events.Nop{}
	if cfg.Events.Enabled {
		next = events.NewEventBridgePublisher(awseventbridge.NewFromConfig(awsCfg), cfg.Events.EventBusName, logger)
	}
	return observability.CountingPublisher{Next: next, Collector: collector}
}

// ProvideLLMService creates the local AI service
func ProvideLLMService(cfg *config.Config, logger *zap.Logger) *llm.Service {
	provider := llm.NewOllamaProvider(cfg.AI.OllamaHost, cfg.AI.OllamaModel, &http.Client{Timeout: cfg.AI.Timeout}, logger)
	return llm.NewService(provider, logger)
}

// ProvideGate creates the authentication gate
func ProvideGate(cfg *config.Config) *auth.Gate {
	return auth.NewGate(auth.Config{
		SitePassword:  cfg.Auth.SitePassword,
		APIKey:        cfg.Auth.APIKey,
		SessionSecret: cfg.Auth.SessionSecret,
		SecureCookie:  cfg.Auth.SecureCookie,
		SessionTTL:    cfg.Auth.SessionTTL,
	})
}

// ProvideLimiters creates the fixed-window throttles
func ProvideLimiters() *Limiters {
	return &Limiters{
		Auth: ratelimit.NewFixedWindowLimiter(ratelimit.AuthPolicy),
		AI:   ratelimit.NewFixedWindowLimiter(ratelimit.AIPolicy),
		API:  ratelimit.NewFixedWindowLimiter(ratelimit.APIPolicy),
		Read: ratelimit.NewFixedWindowLimiter(ratelimit.ReadPolicy),
	}
}

// ProvideAuthHandler creates the login handler
func ProvideAuthHandler(gate *auth.Gate, limiters *Limiters, logger *zap.Logger) *handlers.AuthHandler {
	return handlers.NewAuthHandler(gate, limiters.Auth, logger)
}

// ProvideHealthHandler creates the health handler
func ProvideHealthHandler(cfg *config.Config) *handlers.HealthHandler {
	return handlers.NewHealthHandler(cfg.Storage.Backend, Version)
}
