// internal/domain/user/profile_service.go
package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
	"github.com/technexus/storefront-backend/internal/pkg/auth"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileService manages the caller's own profile and loyalty balance
type ProfileService struct {
	db *gorm.DB
}

// NewProfileService creates a new profile service
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// UpdateProfileRequest is a full replacement of the editable profile fields
type UpdateProfileRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,max=255"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone" binding:"omitempty,phone"`
	Address  *string `json:"address"`
	City     *string `json:"city" binding:"omitempty,max=100"`
}

// Get returns the profile, or an empty profile carrying only the ID when none exists yet.
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	var p Profile
	res := s.db.WithContext(ctx).Where("id = ?", userID).Limit(1).Find(&p)
	if res.Error != nil {
		return nil, apperror.Persistence("failed to load profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return &Profile{ID: userID}, nil
	}
	return &p, nil
}

// Upsert writes the profile row for userID.
func (s *ProfileService) Upsert(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*Profile, error) {
	p := Profile{
		ID:       userID,
		FullName: req.FullName,
		Email:    req.Email,
		Address:  req.Address,
		City:     req.City,
	}
	if req.Phone != nil && *req.Phone != "" {
		phone := auth.NormalizePhone(*req.Phone)
		if !auth.ValidPhone(phone) {
			return nil, apperror.Validation("%s", auth.ErrInvalidPhone.Error())
		}
		p.Phone = &phone
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "email", "phone", "address", "city", "updated_at"}),
	}).Create(&p).Error
	if err != nil {
		return nil, apperror.Persistence("failed to save profile", err)
	}
	return s.Get(ctx, userID)
}

// Points returns the loyalty balance, zero when nothing was accrued yet.
func (s *ProfileService) Points(ctx context.Context, userID uuid.UUID) (*LoyaltyPoints, error) {
	var lp LoyaltyPoints
	res := s.db.WithContext(ctx).Where("user_id = ?", userID).Limit(1).Find(&lp)
	if res.Error != nil {
		return nil, apperror.Persistence("failed to load loyalty points", res.Error)
	}
	if res.RowsAffected == 0 {
		return &LoyaltyPoints{UserID: userID}, nil
	}
	return &lp, nil
}
