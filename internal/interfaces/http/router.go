package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LitiDocket/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LitiDocket/internal/interfaces/http/handlers"
	"github.com/turtacn/LitiDocket/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	// Handlers
	DeadlineHandler  *handlers.DeadlineHandler
	CalendarHandler  *handlers.CalendarHandler
	TriageHandler    *handlers.TriageHandler
	ConflictHandler  *handlers.ConflictHandler
	PrecedentHandler *handlers.PrecedentHandler
	MappingHandler   *handlers.MappingHandler
	HealthHandler    *handlers.HealthHandler

	// Middleware
	CORSConfig    *middleware.CORSConfig
	LoggingConfig *middleware.LoggingConfig
	RateLimiter   middleware.RateLimiter

	// Infrastructure
	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
}

// NewRouter constructs the complete HTTP route tree from the given
// configuration.  It wires global middleware, public health endpoints, and
// the API v1 resource groups into a single http.Handler.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.CORSConfig != nil {
		r.Use(middleware.CORS(*cfg.CORSConfig))
	}
	if cfg.Logger != nil {
		logCfg := middleware.DefaultLoggingConfig()
		if cfg.LoggingConfig != nil {
			logCfg = *cfg.LoggingConfig
		}
		r.Use(middleware.RequestLogging(cfg.Logger, cfg.Metrics, logCfg))
	}
	if cfg.RateLimiter != nil {
		r.Use(middleware.RateLimit(cfg.RateLimiter, middleware.DefaultRateLimitConfig()))
	}

	// Public probes.
	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}

	// Metrics endpoint; expected to sit behind an internal firewall rule.
	if cfg.MetricsCollector != nil {
		r.Handle("/metrics", cfg.MetricsCollector.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerDeadlineRoutes(api, cfg.DeadlineHandler, cfg.CalendarHandler)
		registerCalendarRoutes(api, cfg.CalendarHandler)
		registerCaseRoutes(api, cfg.TriageHandler, cfg.ConflictHandler)
		registerTriageRoutes(api, cfg.TriageHandler)
		registerPrecedentRoutes(api, cfg.PrecedentHandler)
		registerVenueRoutes(api, cfg.MappingHandler)
	})

	return r
}

// registerDeadlineRoutes mounts deadline resource endpoints under /deadlines.
// The upcoming feed is registered before the {deadlineID} subtree so the
// literal path wins.
func registerDeadlineRoutes(r chi.Router, h *handlers.DeadlineHandler, cal *handlers.CalendarHandler) {
	if h == nil {
		return
	}
	r.Route("/deadlines", func(dr chi.Router) {
		dr.Get("/", h.List)
		dr.Post("/", h.Create)
		if cal != nil {
			dr.Get("/upcoming", cal.Upcoming)
		}

		dr.Route("/{deadlineID}", func(item chi.Router) {
			item.Get("/", h.Get)
			item.Put("/", h.Update)
			item.Delete("/", h.Delete)

			// One-way status transitions.
			item.Post("/complete", h.Complete)
			item.Post("/miss", h.Miss)
			item.Post("/cancel", h.Cancel)
			item.Post("/extend", h.Extend)
		})
	})
}

// registerCalendarRoutes mounts the month grid under /calendar.
func registerCalendarRoutes(r chi.Router, h *handlers.CalendarHandler) {
	if h == nil {
		return
	}
	r.Get("/calendar/{year}/{month}", h.MonthGrid)
}

// registerCaseRoutes mounts the per-case triage and conflict endpoints.
func registerCaseRoutes(r chi.Router, triage *handlers.TriageHandler, conflict *handlers.ConflictHandler) {
	if triage == nil && conflict == nil {
		return
	}
	r.Route("/cases/{caseID}", func(cr chi.Router) {
		if triage != nil {
			cr.Post("/triage", triage.Submit)
			cr.Get("/triage", triage.ListByCase)
		}
		if conflict != nil {
			cr.Get("/conflicts", conflict.Get)
			cr.Post("/conflicts/refresh", conflict.Refresh)
		}
	})
}

// registerTriageRoutes mounts the job polling endpoints under /triage/jobs.
func registerTriageRoutes(r chi.Router, h *handlers.TriageHandler) {
	if h == nil {
		return
	}
	r.Route("/triage/jobs/{jobID}", func(jr chi.Router) {
		jr.Get("/", h.Get)
		jr.Put("/progress", h.ReportProgress)
		jr.Delete("/", h.Acknowledge)
	})
}

// registerVenueRoutes mounts venue geometry analysis under /venue.
func registerVenueRoutes(r chi.Router, h *handlers.MappingHandler) {
	if h == nil {
		return
	}
	r.Route("/venue", func(vr chi.Router) {
		vr.Post("/compactness", h.Compactness)
		vr.Post("/alignment", h.Align)
	})
}

// registerPrecedentRoutes mounts precedent search and index maintenance.
func registerPrecedentRoutes(r chi.Router, h *handlers.PrecedentHandler) {
	if h == nil {
		return
	}
	r.Route("/precedents", func(pr chi.Router) {
		pr.Get("/search", h.Search)
		pr.Put("/{precedentID}", h.Index)
		pr.Delete("/{precedentID}", h.Delete)
	})
}
