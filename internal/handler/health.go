package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// Pinger reports whether a backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves GET /healthz.
type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

type healthResponse struct {
	Status string `json:"status"`
}

// HandleHealth returns 200 when the database answers a ping within 2s,
// 503 otherwise.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
