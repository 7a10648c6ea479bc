// internal/domain/coupon/entity.go
package coupon

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Coupon is a promotional code
type Coupon struct {
	ID                 uuid.UUID           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Code               string              `gorm:"uniqueIndex;not null;size:50" json:"code"`
	DiscountPercentage *int                `gorm:"check:discount_percentage IS NULL OR (discount_percentage >= 1 AND discount_percentage <= 100)" json:"discount_percentage"`
	DiscountAmount     decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"discount_amount"`
	MinPurchaseAmount  decimal.Decimal     `gorm:"type:decimal(10,2);not null;default:0" json:"min_purchase_amount"`
	MaxUses            *int                `json:"max_uses"`
	UsedCount          int                 `gorm:"not null;default:0" json:"used_count"`
	ValidFrom          time.Time           `gorm:"not null;default:now()" json:"valid_from"`
	ValidUntil         time.Time           `gorm:"not null" json:"valid_until"`
	IsActive           bool                `gorm:"not null" json:"is_active"`
	CreatedAt          time.Time           `json:"created_at"`
}

// TableName overrides
func (Coupon) TableName() string { return "coupons" }

// Rejection says why a coupon does not apply
type Rejection string

const (
	RejectNone        Rejection = ""
	RejectInactive    Rejection = "inactive"
	RejectNotStarted  Rejection = "not_started"
	RejectExpired     Rejection = "expired"
	RejectMinPurchase Rejection = "min_purchase"
	RejectExhausted   Rejection = "exhausted"
)

// Check evaluates applicability against a subtotal at a point in time.
// The validity window is [ValidFrom, ValidUntil).
func (c *Coupon) Check(subtotal decimal.Decimal, now time.Time) Rejection {
	switch {
	case !c.IsActive:
		return RejectInactive
	case now.Before(c.ValidFrom):
		return RejectNotStarted
	case !now.Before(c.ValidUntil):
		return RejectExpired
	case subtotal.LessThan(c.MinPurchaseAmount):
		return RejectMinPurchase
	case c.MaxUses != nil && c.UsedCount >= *c.MaxUses:
		return RejectExhausted
	}
	return RejectNone
}

// Applicable reports whether the coupon contributes a discount
func (c *Coupon) Applicable(subtotal decimal.Decimal, now time.Time) bool {
	return c.Check(subtotal, now) == RejectNone
}

// Discount computes the discount for subtotal. A percentage takes precedence
// over a flat amount; the result never exceeds the subtotal.
func (c *Coupon) Discount(subtotal decimal.Decimal) decimal.Decimal {
	var d decimal.Decimal
	switch {
	case c.DiscountPercentage != nil:
		d = subtotal.Mul(decimal.NewFromInt(int64(*c.DiscountPercentage))).Div(decimal.NewFromInt(100))
	case c.DiscountAmount.Valid:
		d = c.DiscountAmount.Decimal
	default:
		return decimal.Zero
	}
	d = d.Round(2)
	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(subtotal) {
		return subtotal
	}
	return d
}
