// Package config loads runtime settings from environment variables.
//
// Both binaries read their settings here so defaults live in one place.
// Unset variables fall back to defaults; set-but-invalid values are an
// error, so a typo in PORT fails startup instead of silently using 8080.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Server holds settings for cmd/server.
type Server struct {
	Port   int
	DBPath string

	// JWTSecret signs operator tokens. Empty disables the listing route.
	JWTSecret        string
	OperatorTokenTTL time.Duration

	// RedisAddr enables the user list cache when set.
	RedisAddr        string
	UserListCacheTTL time.Duration

	CORSAllowedOrigins []string
	MaxBodyBytes       int64

	OTELEndpoint    string
	OTELServiceName string

	LogLevel slog.Level
}

// Client holds settings for cmd/feedback.
type Client struct {
	APIURL      string
	StatePath   string
	HTTPTimeout time.Duration
	LogLevel    slog.Level

	// Operator commands only.
	OperatorToken string
	JWTSecret     string
}

// LoadServer reads the server settings.
func LoadServer() (*Server, error) {
	var errs []error

	cfg := &Server{
		DBPath:             getEnv("DB_PATH", "data/feedback.db"),
		JWTSecret:          os.Getenv("JWT_SECRET"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		MaxBodyBytes:       1 << 20,
		OTELEndpoint:       os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		OTELServiceName:    getEnv("OTEL_SERVICE_NAME", "ui-feedback"),
	}

	var err error
	if cfg.Port, err = getEnvInt("PORT", 8080); err != nil {
		errs = append(errs, err)
	} else if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", cfg.Port))
	}
	if cfg.OperatorTokenTTL, err = getEnvDuration("OPERATOR_TOKEN_TTL", 24*time.Hour); err != nil {
		errs = append(errs, err)
	}
	if cfg.UserListCacheTTL, err = getEnvDuration("USER_LIST_CACHE_TTL", 30*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.LogLevel, err = getEnvLevel("LOG_LEVEL", slog.LevelInfo); err != nil {
		errs = append(errs, err)
	}
	if cfg.JWTSecret != "" && len(cfg.JWTSecret) < 16 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 16 chars"))
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// LoadClient reads the CLI settings.
func LoadClient() (*Client, error) {
	var errs []error

	cfg := &Client{
		APIURL:    strings.TrimRight(getEnv("FEEDBACK_API_URL", "http://localhost:8080"), "/"),
		StatePath: getEnv("FEEDBACK_STATE_PATH", defaultStatePath()),

		OperatorToken: os.Getenv("FEEDBACK_OPERATOR_TOKEN"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
	}

	var err error
	if cfg.HTTPTimeout, err = getEnvDuration("FEEDBACK_HTTP_TIMEOUT", 10*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.LogLevel, err = getEnvLevel("LOG_LEVEL", slog.LevelWarn); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// defaultStatePath keeps the unlock flag in the user's config dir, falling
// back to the working directory when there is none.
func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "feedback-state.db"
	}
	return filepath.Join(dir, "ui-feedback", "state.db")
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("parse %s: %w", key, err)
	}
	if d < 0 {
		return def, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func getEnvLevel(key string, def slog.Level) (slog.Level, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return def, fmt.Errorf("parse %s: %w", key, err)
	}
	return level, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
