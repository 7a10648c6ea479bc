package coupon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func baseCoupon(now time.Time) Coupon {
	return Coupon{
		Code:       "KARIBU10",
		IsActive:   true,
		ValidFrom:  now.Add(-time.Hour),
		ValidUntil: now.Add(time.Hour),
	}
}

func TestCheck(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		mutate func(c *Coupon)
		total  string
		want   Rejection
	}{
		{"applicable", func(c *Coupon) {}, "100", RejectNone},
		{"inactive", func(c *Coupon) { c.IsActive = false }, "100", RejectInactive},
		{"not started", func(c *Coupon) { c.ValidFrom = now.Add(time.Minute) }, "100", RejectNotStarted},
		{"starts exactly now", func(c *Coupon) { c.ValidFrom = now }, "100", RejectNone},
		{"ends exactly now", func(c *Coupon) { c.ValidUntil = now }, "100", RejectExpired},
		{"below minimum", func(c *Coupon) { c.MinPurchaseAmount = dec("10000") }, "5000", RejectMinPurchase},
		{"at minimum", func(c *Coupon) { c.MinPurchaseAmount = dec("5000") }, "5000", RejectNone},
		{"exhausted", func(c *Coupon) { c.MaxUses = intPtr(3); c.UsedCount = 3 }, "100", RejectExhausted},
		{"one use left", func(c *Coupon) { c.MaxUses = intPtr(3); c.UsedCount = 2 }, "100", RejectNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := baseCoupon(now)
			tt.mutate(&c)
			assert.Equal(t, tt.want, c.Check(dec(tt.total), now))
			assert.Equal(t, tt.want == RejectNone, c.Applicable(dec(tt.total), now))
		})
	}
}

func TestDiscount(t *testing.T) {
	pct := Coupon{DiscountPercentage: intPtr(15)}
	assert.Equal(t, "150", pct.Discount(dec("1000")).String())

	flat := Coupon{DiscountAmount: decimal.NewNullDecimal(dec("2500"))}
	assert.Equal(t, "2500", flat.Discount(dec("10000")).String())

	both := Coupon{DiscountPercentage: intPtr(10), DiscountAmount: decimal.NewNullDecimal(dec("2500"))}
	assert.Equal(t, "1000", both.Discount(dec("10000")).String(), "percentage wins")

	none := Coupon{}
	assert.True(t, none.Discount(dec("10000")).IsZero())
}

func TestDiscountNeverExceedsSubtotal(t *testing.T) {
	flat := Coupon{DiscountAmount: decimal.NewNullDecimal(dec("5000"))}
	d := flat.Discount(dec("3000"))
	assert.Equal(t, "3000", d.String())
	assert.False(t, dec("3000").Sub(d).IsNegative())
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "KARIBU10", NormalizeCode("  karibu10 "))
}
