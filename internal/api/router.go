// Package api provides the HTTP API for WakeRoute.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/wakeroute/wakeroute/internal/api/handler"
	"github.com/wakeroute/wakeroute/internal/api/middleware"
	"github.com/wakeroute/wakeroute/internal/auth"
	"github.com/wakeroute/wakeroute/internal/featureflags"
	"github.com/wakeroute/wakeroute/internal/history"
	"github.com/wakeroute/wakeroute/internal/planner"
	"github.com/wakeroute/wakeroute/internal/route"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	Commit    string
	BuildTime string

	Logger      zerolog.Logger
	ServiceName string

	Metrics           *middleware.Metrics
	EvaluationMetrics *middleware.EvaluationMetrics

	AuthService        *auth.Service
	PlannerService     *planner.Service
	RouteService       *route.Service
	HistoryService     *history.Service
	FeatureFlagService *featureflags.Service

	// Checks are backing dependency probes surfaced by /readyz and
	// /v1/ops/status.
	Checks []handler.DependencyCheck
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "wakeroute-api"
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing(serviceName))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS)
	r.Use(middleware.RequireJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.Commit, cfg.BuildTime, cfg.Checks)
	authHandler := handler.NewAuthHandler(cfg.AuthService)
	evaluateHandler := handler.NewEvaluateHandler(cfg.PlannerService, cfg.RouteService, cfg.EvaluationMetrics)
	routeHandler := handler.NewRouteHandler(cfg.RouteService)
	outcomeHandler := handler.NewOutcomeHandler(cfg.HistoryService)
	featureFlagsHandler := handler.NewFeatureFlagsHandler(cfg.FeatureFlagService)

	authMiddleware := middleware.Auth(cfg.AuthService)

	pairRateLimit := middleware.RateLimitByIP(middleware.PairRateLimit)          // 10 req/min
	evaluateRateLimit := middleware.RateLimitByUser(middleware.EvaluateRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByUser(middleware.StandardRateLimit) // 100 req/min

	// Liveness and readiness sit outside /v1 for probe configs
	r.Get("/healthz", opsHandler.HealthCheck)
	r.Get("/readyz", opsHandler.ReadinessCheck)

	r.Route("/v1", func(r chi.Router) {
		// Device pairing (public) - strict IP rate limiting
		r.Route("/auth", func(r chi.Router) {
			r.Use(pairRateLimit)
			r.Post("/pair", authHandler.Pair)
		})

		// Ad-hoc evaluation. Alarm clients poll this at the cadence the
		// response prescribes, so the limit stays above the tightest
		// refresh interval.
		r.With(authMiddleware, evaluateRateLimit).Post("/commute:evaluate", evaluateHandler.Evaluate)

		// Saved routes (authenticated)
		r.Route("/routes", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Get("/", routeHandler.ListRoutes)
			r.Post("/", routeHandler.CreateRoute)
			r.With(evaluateRateLimit).Post("/{routeId}:evaluate", evaluateHandler.EvaluateRoute)
			r.Route("/{routeId}", func(r chi.Router) {
				r.Get("/", routeHandler.GetRoute)
				r.Patch("/", routeHandler.UpdateRoute)
				r.Delete("/", routeHandler.DeleteRoute)
			})
		})

		// Trip outcomes and accuracy history (authenticated)
		r.Route("/outcomes", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)
			r.Post("/", outcomeHandler.CreateOutcome)
		})
		r.With(authMiddleware, standardRateLimit).Get("/history/{routeKey}/stats", outcomeHandler.GetStats)

		// Ops endpoints; health and readiness stay public for probes
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.With(authMiddleware).Get("/status", opsHandler.SystemStatus)
			r.With(authMiddleware).Get("/version", opsHandler.Version)
		})

		// Admin endpoints (authenticated)
		r.Route("/admin", func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(standardRateLimit)

			r.Route("/flags", func(r chi.Router) {
				r.Get("/", featureFlagsHandler.ListFeatureFlags)
				r.Put("/", featureFlagsHandler.UpsertFeatureFlags)
				r.Post("/invalidate", featureFlagsHandler.InvalidateCache)
			})
		})
	})

	return r
}
