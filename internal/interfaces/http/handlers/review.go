// internal/interfaces/http/handlers/review.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/domain/product"
)

// ReviewHandler handles HTTP requests for reviews
type ReviewHandler struct {
	reviewService *product.ReviewService
	log           *logrus.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(reviewService *product.ReviewService, log *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{
		reviewService: reviewService,
		log:           log,
	}
}

// CreateReview handles POST /reviews
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	var req product.CreateReviewRequest
	if !bindJSON(c, &req) {
		return
	}

	review, err := h.reviewService.CreateReview(c.Request.Context(), p.ID, &req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GetProductReviews handles GET /reviews/product/:productId
func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	productID, ok := uuidParam(c, "productId")
	if !ok {
		return
	}

	reviews, err := h.reviewService.GetProductReviews(c.Request.Context(), productID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// GetAllReviews handles GET /reviews/all (admin only)
func (h *ReviewHandler) GetAllReviews(c *gin.Context) {
	reviews, err := h.reviewService.GetAllReviews(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}
