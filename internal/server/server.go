// Package server wires handlers, middleware and routes into an HTTP server.
//
// It is the composition root for the HTTP side: the database is opened here,
// the service and handlers are built on top of it, and Start owns the
// lifecycle (listen, drain on SIGINT/SIGTERM, close the database).
//
// Dependency chain:
//
//	sqlite.DB (repository.UserRepository) → service.UserService → handler.UserHandler
//
// Handlers never touch the database and the service never touches HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sakif/ui-feedback/internal/auth"
	"github.com/sakif/ui-feedback/internal/handler"
	"github.com/sakif/ui-feedback/internal/middleware"
	sqliteRepo "github.com/sakif/ui-feedback/internal/repository/sqlite"
	"github.com/sakif/ui-feedback/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Config holds server configuration.
type Config struct {
	Port   int
	DBPath string

	// JWTSecret enables GET /api/users. Empty leaves the route unregistered.
	JWTSecret        string
	OperatorTokenTTL time.Duration

	CORSAllowedOrigins []string
	MaxBodyBytes       int64
}

// Server represents the HTTP server and all its dependencies.
// It owns the database connection and closes it when Start returns.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
	users  *service.UserService
}

// New opens the database and builds the router.
// listCache may be nil, in which case listings always hit the database.
func New(cfg Config, logger *slog.Logger, listCache service.UserListCache) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		users:  service.NewUserService(db, listCache, logger),
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware and routes.
//
// ROUTES:
// POST   /            → capture (path the client posts to)
// POST   /api/users   → capture
// GET    /api/users   → list captured emails (operator token required)
// GET    /healthz     → database ping
//
// MIDDLEWARE ORDER:
// RequestID first so every later log line has it; CORS before routing so
// preflight requests never hit a handler.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.CORS(s.config.CORSAllowedOrigins))
	if s.config.MaxBodyBytes > 0 {
		s.router.Use(middleware.BodyLimit(s.config.MaxBodyBytes))
	}

	userHandler := handler.NewUserHandler(s.users, s.logger)
	healthHandler := handler.NewHealthHandler(s.users, s.logger)

	s.router.Get("/healthz", healthHandler.HandleHealth)
	s.router.Post("/", userHandler.HandleCapture)

	var requireOperator func(http.Handler) http.Handler
	if s.config.JWTSecret != "" {
		tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.OperatorTokenTTL)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
		requireOperator = auth.RequireOperator(tokens, handler.WriteUnauthorized)
	} else {
		s.logger.Warn("JWT_SECRET not set: GET /api/users is disabled")
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/users", userHandler.HandleCapture)
		if requireOperator != nil {
			r.With(requireOperator).Get("/users", userHandler.HandleList)
		}
	})

	return nil
}

// Handler returns the router wrapped in OpenTelemetry instrumentation.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "ui-feedback",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// Close releases the database. Start calls it on the way out; tests that
// never Start call it directly.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests for up
// to 30s and closes the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
