// internal/domain/coupon/service.go
package coupon

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

var (
	ErrNotFound = apperror.NotFound("Coupon not found")
	ErrInvalid  = apperror.NotFound("Invalid or expired coupon")
)

// Service handles coupon administration and explicit validation
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService creates a new coupon service
func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// CreateRequest represents coupon creation data
type CreateRequest struct {
	Code               string           `json:"code" binding:"required,max=50"`
	DiscountPercentage *int             `json:"discount_percentage" binding:"omitempty,min=1,max=100"`
	DiscountAmount     *decimal.Decimal `json:"discount_amount"`
	MinPurchaseAmount  *decimal.Decimal `json:"min_purchase_amount"`
	MaxUses            *int             `json:"max_uses" binding:"omitempty,min=1"`
	ValidFrom          *time.Time       `json:"valid_from"`
	ValidUntil         time.Time        `json:"valid_until" binding:"required"`
	IsActive           *bool            `json:"is_active"`
}

// ValidateRequest asks whether a code applies to an amount
type ValidateRequest struct {
	Code   string          `json:"code" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

// Validation is the result of an explicit coupon check
type Validation struct {
	Coupon         *Coupon         `json:"coupon"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	FinalAmount    decimal.Decimal `json:"final_amount"`
}

// NormalizeCode canonicalizes a code for lookup and storage
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Active lists coupons a customer can currently use
func (s *Service) Active(ctx context.Context) ([]Coupon, error) {
	now := s.now()
	coupons := []Coupon{}
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND valid_from <= ? AND valid_until > ?", true, now, now).
		Where("max_uses IS NULL OR used_count < max_uses").
		Order("valid_until ASC").
		Find(&coupons).Error
	if err != nil {
		return nil, apperror.Persistence("failed to list active coupons", err)
	}
	return coupons, nil
}

// List returns every coupon, newest first
func (s *Service) List(ctx context.Context) ([]Coupon, error) {
	coupons := []Coupon{}
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&coupons).Error; err != nil {
		return nil, apperror.Persistence("failed to list coupons", err)
	}
	return coupons, nil
}

// Validate explicitly rejects a coupon that would not apply. Order placement
// does not go through here: it ignores inapplicable coupons silently.
func (s *Service) Validate(ctx context.Context, req *ValidateRequest) (*Validation, error) {
	var c Coupon
	err := s.db.WithContext(ctx).Where("code = ?", NormalizeCode(req.Code)).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalid
		}
		return nil, apperror.Persistence("failed to load coupon", err)
	}

	switch c.Check(req.Amount, s.now()) {
	case RejectNone:
	case RejectMinPurchase:
		return nil, apperror.Validation("Minimum purchase amount is %s", c.MinPurchaseAmount.StringFixed(2))
	case RejectExhausted:
		return nil, apperror.Validation("Coupon usage limit reached")
	default:
		return nil, ErrInvalid
	}

	discount := c.Discount(req.Amount)
	return &Validation{
		Coupon:         &c,
		DiscountAmount: discount,
		FinalAmount:    req.Amount.Sub(discount),
	}, nil
}

// Create inserts a coupon. Codes are stored upper-case.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*Coupon, error) {
	if req.DiscountPercentage == nil && req.DiscountAmount == nil {
		return nil, apperror.Validation("Either discount_percentage or discount_amount is required")
	}
	if req.DiscountAmount != nil && req.DiscountAmount.IsNegative() {
		return nil, apperror.Validation("Discount amount must be non-negative")
	}

	c := Coupon{
		Code:               NormalizeCode(req.Code),
		DiscountPercentage: req.DiscountPercentage,
		MaxUses:            req.MaxUses,
		ValidFrom:          s.now(),
		ValidUntil:         req.ValidUntil,
		IsActive:           true,
	}
	if req.DiscountAmount != nil {
		c.DiscountAmount = decimal.NewNullDecimal(req.DiscountAmount.Round(2))
	}
	if req.MinPurchaseAmount != nil {
		c.MinPurchaseAmount = req.MinPurchaseAmount.Round(2)
	}
	if req.ValidFrom != nil {
		c.ValidFrom = *req.ValidFrom
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
	}
	if !c.ValidUntil.After(c.ValidFrom) {
		return nil, apperror.Validation("valid_until must be after valid_from")
	}

	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("Coupon code already exists")
		}
		return nil, apperror.Persistence("failed to create coupon", err)
	}
	return &c, nil
}

// Delete removes a coupon
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&Coupon{}, "id = ?", id)
	if res.Error != nil {
		return apperror.Persistence("failed to delete coupon", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
