package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"bugdaily/internal/core"
)

// HealthHandler reports whether the pool can reach storage
type HealthHandler struct {
	logger   *core.Logger
	db       *core.Database
	registry *core.Registry
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(logger *core.Logger, db *core.Database, registry *core.Registry) *HealthHandler {
	return &HealthHandler{
		logger:   logger,
		db:       db,
		registry: registry,
	}
}

// HealthCheck answers 200 when the database responds and 503 otherwise
func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	if err := h.db.PingWithTimeout(r.Context(), 2*time.Second); err != nil {
		h.logger.WithContext(r.Context()).Warn("Health check failed", "error", err)
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	stats := h.db.Stats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"status":   status,
		"service":  "bugdaily",
		"features": h.registry.GetFeatureStatus(),
		"database": map[string]any{
			"driver":           h.db.Driver(),
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
		},
	})
}
