// internal/interfaces/http/handlers/health.go
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker is satisfied by the postgres and redis connections
type HealthChecker interface {
	Health() error
}

// HealthHandler reports liveness plus dependency status
type HealthHandler struct {
	checks map[string]HealthChecker
}

// NewHealthHandler creates a health handler; nil checkers are skipped
func NewHealthHandler(checks map[string]HealthChecker) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health handles GET /api/health. It always answers 200 while the process is up.
func (h *HealthHandler) Health(c *gin.Context) {
	deps := gin.H{}
	for name, check := range h.checks {
		if check == nil {
			continue
		}
		if err := check.Health(); err != nil {
			deps[name] = "unhealthy"
			continue
		}
		deps[name] = "healthy"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"message":      "Server is running",
		"timestamp":    time.Now().UTC(),
		"dependencies": deps,
	})
}
