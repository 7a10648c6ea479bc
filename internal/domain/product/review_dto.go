// internal/domain/product/review_dto.go
package product

import (
	"time"

	"github.com/google/uuid"
)

// CreateReviewRequest represents review creation data
type CreateReviewRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required,min=1,max=5"`
	Comment   *string   `json:"comment" binding:"omitempty,max=2000"`
}

// ReviewResponse is a review with its author's display name
type ReviewResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   *string   `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
	FullName  *string   `json:"full_name"`
}

// AdminReviewResponse adds the product name for the moderation list
type AdminReviewResponse struct {
	ReviewResponse
	ProductName *string `json:"product_name"`
}
