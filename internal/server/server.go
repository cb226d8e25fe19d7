// Package server exposes the simulation over HTTP and WebSocket.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/Sicakyuz/SCM-simulation/internal/observability"
	"github.com/Sicakyuz/SCM-simulation/internal/reporting"
	"github.com/Sicakyuz/SCM-simulation/internal/simulation"
	"github.com/Sicakyuz/SCM-simulation/internal/verification"
)

// Config holds server configuration
type Config struct {
	Addr           string
	Log            zerolog.Logger
	Runner         *simulation.Runner
	Reports        *reporting.Generator
	Verifier       verification.Verifier  // optional
	Metrics        *observability.Metrics // optional
	MetricsHandler http.Handler           // served at /metrics when set
}

// Server represents the HTTP server
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	runner   *simulation.Runner
	reports  *reporting.Generator
	verifier verification.Verifier
	metrics  *observability.Metrics
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      cfg.Log.With().Str("component", "server").Logger(),
		runner:   cfg.Runner,
		reports:  cfg.Reports,
		verifier: cfg.Verifier,
		metrics:  cfg.Metrics,
	}

	s.setupMiddleware()
	s.setupRoutes(cfg.MetricsHandler)

	s.server = &http.Server{
		Addr:        cfg.Addr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)

	// The front end may be served from another origin
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(metricsHandler http.Handler) {
	s.router.Get("/health", s.handleHealth)
	if metricsHandler != nil {
		s.router.Handle("/metrics", metricsHandler)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/scenarios", s.handleScenarios)

		r.Route("/simulations", func(r chi.Router) {
			r.Post("/", s.handleCreateSimulation)
			r.Get("/", s.handleListSimulations)
			r.Get("/{id}", s.handleGetSimulation)
			r.Get("/{id}/csv", s.handleSimulationCSV)
			r.Get("/{id}/report", s.handleSimulationReport)
			if s.verifier != nil {
				r.Get("/verify", s.handleVerifyAll)
				r.Get("/{id}/verify", s.handleVerifySimulation)
			}
		})
	})

	s.router.Get("/ws/simulate", s.handleSimulateStream)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests and counts them by route pattern
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		if s.metrics != nil {
			s.metrics.RecordHTTPRequest(route, status)
		}

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
