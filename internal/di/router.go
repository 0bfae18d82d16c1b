package di

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"kindling/internal/auth"
	"kindling/internal/config"
	"kindling/internal/handlers"
	"kindling/internal/middleware"
	"kindling/internal/observability"
	"kindling/internal/ratelimit"
	"kindling/pkg/api"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Ideas  *handlers.IdeaHandler
	Data   *handlers.DataHandler
	AI     *handlers.AIHandler
	Auth   *handlers.AuthHandler
	Health *handlers.HealthHandler
}

// ProvideRouter provides the HTTP router with all handlers.
func ProvideRouter(
	cfg *config.Config,
	logger *zap.Logger,
	tp *observability.TracerProvider,
	collector *observability.Collector,
	gate *auth.Gate,
	limiters *Limiters,
	h *Handlers,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	if cfg.Metrics.Enabled {
		r.Use(collector.Middleware)
	}
	r.Use(observability.TracingMiddleware(tp.Tracer()))

	// Public routes
	r.Get("/health", h.Health.Check)
	if cfg.Metrics.Enabled {
		r.Method(http.MethodGet, cfg.Metrics.Path, collector.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/openapi", api.OpenAPIHandler())

		r.Post("/auth", h.Auth.Login)
		r.Get("/auth", h.Auth.Status)
		r.Delete("/auth", h.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(gate.Require)
			r.Use(middleware.Timeout(cfg.Server.RequestTimeout, logger))

			r.Group(func(r chi.Router) {
				if cfg.RateLimit.Enabled {
					r.Use(byMethod(
						ratelimit.Middleware(limiters.Read, logger),
						ratelimit.Middleware(limiters.API, logger),
					))
				}

				r.Get("/ideas", h.Ideas.ListIdeas)
				r.Post("/ideas", h.Ideas.CreateIdea)
				r.Get("/ideas/{id}", h.Ideas.GetIdea)
				r.Patch("/ideas/{id}", h.Ideas.UpdateIdea)
				r.Delete("/ideas/{id}", h.Ideas.DeleteIdea)
				r.Post("/ideas/{id}/links", h.Ideas.AddLink)
				r.Delete("/ideas/{id}/links", h.Ideas.RemoveLink)

				r.Get("/data", h.Data.GetData)
				r.Post("/data/init", h.Data.InitData)
				r.Post("/sync", h.Data.Sync)
				r.Post("/themes", h.Data.CreateTheme)
				r.Post("/learnings", h.Data.CreateLearning)
			})

			// The local model is slow and single-tenant, so AI routes get their own
			// throttle and breaker.
			r.Group(func(r chi.Router) {
				if cfg.RateLimit.Enabled {
					r.Use(ratelimit.Middleware(limiters.AI, logger))
				}
				r.Use(middleware.CircuitBreaker(middleware.DefaultCircuitBreakerConfig("ollama"), logger))

				r.Get("/suggest", h.AI.Status)
				r.Post("/suggest", h.AI.Suggest)
				r.Post("/chat", h.AI.Chat)
			})
		})
	})

	return r
}

// byMethod sends safe methods through read and everything else through write.
func byMethod(read, write func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		readNext, writeNext := read(next), write(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				readNext.ServeHTTP(w, r)
				return
			}
			writeNext.ServeHTTP(w, r)
		})
	}
}
