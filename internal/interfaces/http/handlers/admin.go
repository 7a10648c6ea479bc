// internal/interfaces/http/handlers/admin.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/domain/analytics"
)

// AdminHandler serves the admin dashboard
type AdminHandler struct {
	analyticsService *analytics.Service
	log              *logrus.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(analyticsService *analytics.Service, log *logrus.Logger) *AdminHandler {
	return &AdminHandler{
		analyticsService: analyticsService,
		log:              log,
	}
}

// GetStats handles GET /admin/stats
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.analyticsService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetCustomers handles GET /admin/customers
func (h *AdminHandler) GetCustomers(c *gin.Context) {
	customers, err := h.analyticsService.Customers(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, customers)
}
