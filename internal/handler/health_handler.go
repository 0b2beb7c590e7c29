package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger reports database reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ReferenceStats reports the size of the loaded reference datasets.
type ReferenceStats interface {
	Size() (vehicles, ports int)
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db        Pinger
	reference ReferenceStats
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, reference ReferenceStats) *HealthHandler {
	return &HealthHandler{db: db, reference: reference}
}

// Liveness handles GET /healthz
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
		return
	}
	vehicles, ports := h.reference.Size()
	if vehicles+ports == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "reference data not loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "vehicles": vehicles, "ports": ports})
}
