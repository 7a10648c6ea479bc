// internal/interfaces/http/handlers/coupon.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/domain/coupon"
)

// CouponHandler handles coupon endpoints
type CouponHandler struct {
	couponService *coupon.Service
	log           *logrus.Logger
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(couponService *coupon.Service, log *logrus.Logger) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
		log:           log,
	}
}

// GetActiveCoupons handles GET /coupons/active
func (h *CouponHandler) GetActiveCoupons(c *gin.Context) {
	coupons, err := h.couponService.Active(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, coupons)
}

// GetCoupons handles GET /coupons (admin only)
func (h *CouponHandler) GetCoupons(c *gin.Context) {
	coupons, err := h.couponService.List(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, coupons)
}

// ValidateCoupon handles POST /coupons/validate
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	var req coupon.ValidateRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.couponService.Validate(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateCoupon handles POST /coupons (admin only)
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	var req coupon.CreateRequest
	if !bindJSON(c, &req) {
		return
	}

	created, err := h.couponService.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// DeleteCoupon handles DELETE /coupons/:id (admin only)
func (h *CouponHandler) DeleteCoupon(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}

	if err := h.couponService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Coupon deleted successfully"})
}
