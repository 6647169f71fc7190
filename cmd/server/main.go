// Package main is the entry point for the feedback capture server.
//
// main stays small: read configuration, build the logger and optional
// backends (Redis, tracing), then hand over to internal/server.
package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sakif/ui-feedback/internal/cache"
	"github.com/sakif/ui-feedback/internal/config"
	"github.com/sakif/ui-feedback/internal/observability"
	"github.com/sakif/ui-feedback/internal/server"
	"github.com/sakif/ui-feedback/internal/service"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// Ensure the data directory exists (like `mkdir -p`). In-memory
	// databases have no directory.
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	ctx := context.Background()

	tp, err := observability.InitTracing(ctx, observability.TracingConfig{
		Endpoint:    cfg.OTELEndpoint,
		ServiceName: cfg.OTELServiceName,
	}, logger)
	if err != nil {
		logger.Error("failed to init tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", slog.String("error", err.Error()))
		}
	}()

	listCache, closeCache := newListCache(ctx, cfg, logger)
	defer closeCache()

	srv, err := server.New(server.Config{
		Port:               cfg.Port,
		DBPath:             cfg.DBPath,
		JWTSecret:          cfg.JWTSecret,
		OperatorTokenTTL:   cfg.OperatorTokenTTL,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodyBytes:       cfg.MaxBodyBytes,
	}, logger, listCache)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT/SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// newListCache connects to Redis when REDIS_ADDR is set. An unreachable
// Redis is not fatal: the server runs without a cache.
func newListCache(ctx context.Context, cfg *config.Server, logger *slog.Logger) (service.UserListCache, func()) {
	if cfg.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set: user list cache disabled")
		return nil, func() {}
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable: user list cache disabled",
			slog.String("addr", cfg.RedisAddr),
			slog.String("error", err.Error()),
		)
		_ = client.Close()
		return nil, func() {}
	}

	logger.Info("user list cache enabled",
		slog.String("addr", cfg.RedisAddr),
		slog.Duration("ttl", cfg.UserListCacheTTL),
	)
	return cache.NewRedis(client, "", cfg.UserListCacheTTL), func() { _ = client.Close() }
}
