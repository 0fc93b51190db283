// Package server exposes the generation pipeline over HTTP: one generate
// endpoint gated by the rate limiter, plus the report read path consumed by
// the CMS layer.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"growthkit/internal/config"
	"growthkit/internal/core"
	"growthkit/internal/logger"
	"growthkit/internal/ratelimit"
	"growthkit/internal/reports"
)

// ReportDatabase is the report read/delete path the server depends on.
type ReportDatabase interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, id string) (*core.Report, error)
	List(ctx context.Context, researchType core.ResearchType, limit int) ([]core.Report, error)
	Delete(ctx context.Context, id string) error
}

// Server is the HTTP boundary of the generation pipeline.
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	db         ReportDatabase
	limiter    *ratelimit.Limiter
	generator  reports.TextGenerator // nil when the provider is not configured
	manager    *reports.Manager      // nil when the provider is not configured
	config     config.Server
	log        *slog.Logger
}

// New creates a new HTTP server instance. generator and manager may be nil
// when no provider credential is present; generation requests then fail with
// a not-configured error while the report read path keeps working.
func New(cfg config.Server, db ReportDatabase, limiter *ratelimit.Limiter, generator reports.TextGenerator, manager *reports.Manager) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		db:        db,
		limiter:   limiter,
		generator: generator,
		manager:   manager,
		config:    cfg,
		log:       logger.Get(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	// Research generation is the slowest request; its provider call budget
	// bounds the request timeout.
	s.router.Use(middleware.Timeout(2 * time.Minute))

	if s.config.CORS.Enabled {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.config.CORS.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Post("/generate", s.handleGenerate)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", s.handleListReports)
			r.Get("/{id}", s.handleGetReport)
			r.Delete("/{id}", s.handleDeleteReport)
		})
	})
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.log.Info("Starting HTTP server",
		"addr", s.httpServer.Addr,
		"provider_configured", s.generator != nil,
	)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

// Router returns the chi router instance (useful for testing).
func (s *Server) Router() *chi.Mux {
	return s.router
}
