package handler

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HealthChecker reports whether a dependency is reachable
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db     HealthChecker
	queue  HealthChecker
	logger *zap.Logger
}

// NewHealthHandler creates a new health handler. queue may be nil when
// stock alerts are disabled.
func NewHealthHandler(db HealthChecker, queue HealthChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		queue:  queue,
		logger: logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{
		Status:   "healthy",
		Services: make(map[string]string),
	}

	// Check database
	if err := h.db.Health(ctx); err != nil {
		h.logger.Error("database health check failed", zap.Error(err))
		response.Status = "unhealthy"
		response.Services["database"] = "unhealthy"
	} else {
		response.Services["database"] = "healthy"
	}

	// Check queue
	if h.queue != nil {
		if err := h.queue.Health(ctx); err != nil {
			h.logger.Error("queue health check failed", zap.Error(err))
			response.Status = "unhealthy"
			response.Services["queue"] = "unhealthy"
		} else {
			response.Services["queue"] = "healthy"
		}
	} else {
		response.Services["queue"] = "not_configured"
	}

	// Return appropriate status code
	if response.Status == "healthy" {
		respondSuccess(w, response)
	} else {
		respondJSON(w, http.StatusServiceUnavailable, response)
	}
}
