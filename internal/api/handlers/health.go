package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/errors"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/logger"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/utils"
)

// Pinger is a dependency the readiness probe checks
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// PingContext calls f
func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthHandler handles health check requests
type HealthHandler struct {
	db     Pinger
	cache  Pinger
	logger *logger.Logger
}

// NewHealthHandler creates a new health handler. cache may be nil when the
// cooldown store is in memory.
func NewHealthHandler(db Pinger, cache Pinger, log *logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		cache:  cache,
		logger: log,
	}
}

// Healthz handles liveness probe
// @Summary Liveness probe
// @Description Check if the application is alive
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Application is alive"
// @Router /health [get]
func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "utility-usage-monitor",
	})
}

// Readyz handles readiness probe
// @Summary Readiness probe
// @Description Check the database and cooldown store connections
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "Application is ready"
// @Failure 503 {object} utils.Envelope "Service unavailable"
// @Router /readyz [get]
func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.ErrorWithErr(err, "Database ping failed")
		utils.WriteError(w, errors.ServiceUnavailable("Database connection failed"))
		return
	}

	status := map[string]string{
		"status":   "ready",
		"database": "connected",
		"cooldown": "memory",
	}
	if h.cache != nil {
		if err := h.cache.PingContext(ctx); err != nil {
			h.logger.ErrorWithErr(err, "Redis ping failed")
			utils.WriteError(w, errors.ServiceUnavailable("Cooldown store connection failed"))
			return
		}
		status["cooldown"] = "redis"
	}

	utils.WriteSuccess(w, http.StatusOK, status)
}
