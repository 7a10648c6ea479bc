// internal/interfaces/http/handlers/order.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/domain/order"
	"github.com/technexus/storefront-backend/internal/domain/user"
)

// OrderService is the order engine as seen by HTTP
type OrderService interface {
	Place(ctx context.Context, buyer uuid.UUID, req *order.PlaceRequest) (*order.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*order.Order, error)
	UpdateTracking(ctx context.Context, id uuid.UUID, t *order.TrackingUpdate) (*order.Order, error)
	List(ctx context.Context, viewer user.Principal) ([]order.Order, error)
	Get(ctx context.Context, viewer user.Principal, id uuid.UUID) (*order.Order, error)
}

// OrderHandler handles order endpoints
type OrderHandler struct {
	orders OrderService
	log    *logrus.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders OrderService, log *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		orders: orders,
		log:    log,
	}
}

// CreateOrder handles POST /orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req order.PlaceRequest
	if !bindJSON(c, &req) {
		return
	}

	placed, err := h.orders.Place(c.Request.Context(), p.ID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, placed)
}

// GetOrders handles GET /orders (own orders, or all for admins)
func (h *OrderHandler) GetOrders(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	orders, err := h.orders.List(c.Request.Context(), p)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GetOrder handles GET /orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	o, err := h.orders.Get(c.Request.Context(), p, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, o)
}

// UpdateOrderStatus handles PATCH /orders/:id/status (admin only)
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req order.StatusRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.orders.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// UpdateOrderTracking handles PATCH /orders/:id/tracking (admin only)
func (h *OrderHandler) UpdateOrderTracking(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	var req order.TrackingUpdate
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.orders.UpdateTracking(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}
