// Package api provides the HTTP API for ELDRoute.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/eldroute/eldroute/internal/api/handler"
	"github.com/eldroute/eldroute/internal/api/middleware"
	"github.com/eldroute/eldroute/internal/api/response"
	"github.com/eldroute/eldroute/internal/hos"
	"github.com/eldroute/eldroute/internal/provider/resilience"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger
	Metrics   *middleware.Metrics // optional

	// Engine schedules trips. Required.
	Engine *hos.Engine
	// Planner plans trips from addresses. When nil, /v1/trips:plan answers 503.
	Planner  handler.Planner
	Registry *resilience.Registry
	Database handler.Pinger

	RequireTLS bool
}

// NewRouter creates a new chi router with all API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.RequireTLS(cfg.RequireTLS))
	r.Use(middleware.RequireJSON)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, req, "no resource at "+req.URL.Path)
	})
	r.MethodNotAllowed(response.MethodNotAllowed)

	opsHandler := handler.NewOpsHandler(handler.OpsConfig{
		Version:   cfg.Version,
		BuildTime: cfg.BuildTime,
		Registry:  cfg.Registry,
		Database:  cfg.Database,
	})
	tripHandler := handler.NewTripHandler(cfg.Planner, cfg.Engine, cfg.Logger)
	scheduleHandler := handler.NewScheduleHandler(cfg.Engine, cfg.Logger)

	planRateLimit := middleware.RateLimitByIP(middleware.PlanRateLimit)
	computeRateLimit := middleware.RateLimitByIP(middleware.ComputeRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Trip planning calls the routing provider on every request.
		r.With(planRateLimit).Post("/trips:plan", tripHandler.PlanTrip)
		r.With(standardRateLimit).Get("/trips/demo", tripHandler.DemoTrip)

		r.With(computeRateLimit).Post("/schedules:compute", scheduleHandler.ComputeSchedule)
		r.With(standardRateLimit).Get("/rules", scheduleHandler.GetRules)
	})

	return r
}
