// internal/domain/product/review_service.go
package product

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// ReviewService handles product reviews
type ReviewService struct {
	db *gorm.DB
}

// NewReviewService creates a new review service
func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{
		db: db,
	}
}

const reviewColumns = "reviews.id, reviews.product_id, reviews.user_id, reviews.rating, reviews.comment, reviews.created_at, profiles.full_name"

// CreateReview records one review per product per user
func (s *ReviewService) CreateReview(ctx context.Context, userID uuid.UUID, req *CreateReviewRequest) (*Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperror.Validation("Rating must be between 1 and 5")
	}

	review := Review{
		ProductID: req.ProductID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}
	if err := s.db.WithContext(ctx).Create(&review).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, apperror.Conflict("You have already reviewed this product")
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return nil, ErrNotFound
		}
		return nil, apperror.Persistence("failed to create review", err)
	}
	return &review, nil
}

// GetProductReviews lists a product's reviews, newest first
func (s *ReviewService) GetProductReviews(ctx context.Context, productID uuid.UUID) ([]ReviewResponse, error) {
	reviews := []ReviewResponse{}
	err := s.db.WithContext(ctx).Table("reviews").
		Select(reviewColumns).
		Joins("LEFT JOIN profiles ON profiles.id = reviews.user_id").
		Where("reviews.product_id = ?", productID).
		Order("reviews.created_at DESC").
		Scan(&reviews).Error
	if err != nil {
		return nil, apperror.Persistence("failed to list reviews", err)
	}
	return reviews, nil
}

// GetAllReviews lists every review for moderation
func (s *ReviewService) GetAllReviews(ctx context.Context) ([]AdminReviewResponse, error) {
	reviews := []AdminReviewResponse{}
	err := s.db.WithContext(ctx).Table("reviews").
		Select(reviewColumns + ", products.name AS product_name").
		Joins("LEFT JOIN profiles ON profiles.id = reviews.user_id").
		Joins("LEFT JOIN products ON products.id = reviews.product_id").
		Order("reviews.created_at DESC").
		Scan(&reviews).Error
	if err != nil {
		return nil, apperror.Persistence("failed to list reviews", err)
	}
	return reviews, nil
}
