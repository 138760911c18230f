package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints for load balancer and
// orchestration probes.
type HealthHandler struct {
	db         *sql.DB
	instanceID string
}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler(db *sql.DB, instanceID string) *HealthHandler {
	return &HealthHandler{
		db:         db,
		instanceID: instanceID,
	}
}

// LivenessResponse represents the liveness probe response.
type LivenessResponse struct {
	Status     string `json:"status"`
	InstanceID string `json:"instance_id"`
}

// ReadinessResponse represents the readiness probe response.
type ReadinessResponse struct {
	Status     string `json:"status"`
	InstanceID string `json:"instance_id"`
	Database   string `json:"database"`
}

// Liveness handles GET /health/live.
//
// Always returns 200 OK while the HTTP server is running.
func (h *HealthHandler) Liveness(c *gin.Context) {
	respondSuccess(c, http.StatusOK, LivenessResponse{
		Status:     "ok",
		InstanceID: h.instanceID,
	})
}

// Readiness handles GET /health/ready.
//
// Verifies database connectivity; returns 503 when the database is
// unreachable.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		respondError(c, http.StatusServiceUnavailable, "unhealthy", "Database unavailable")
		return
	}

	respondSuccess(c, http.StatusOK, ReadinessResponse{
		Status:     "ready",
		InstanceID: h.instanceID,
		Database:   "connected",
	})
}
