// internal/domain/order/service.go
package order

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/domain/coupon"
	"github.com/technexus/storefront-backend/internal/domain/user"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
	"github.com/technexus/storefront-backend/internal/pkg/metrics"
)

// Service is the order engine
type Service struct {
	store Store
	log   *logrus.Logger
	now   func() time.Time
}

// NewService creates a new order service
func NewService(store Store, log *logrus.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// ItemRequest is one cart line
type ItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// PlaceRequest represents order creation data
type PlaceRequest struct {
	Items           []ItemRequest `json:"items" binding:"required,min=1,dive"`
	ShippingAddress string        `json:"shipping_address" binding:"required"`
	Phone           string        `json:"phone" binding:"required"`
	CouponCode      string        `json:"coupon_code"`
	PaymentMethod   string        `json:"payment_method" binding:"omitempty,max=50"`
}

// StatusRequest represents a status overwrite
type StatusRequest struct {
	Status string `json:"status" binding:"required,max=30"`
}

type pricedLine struct {
	productID uuid.UUID
	quantity  int
	unitPrice decimal.Decimal
}

func (r *PlaceRequest) validate() error {
	if len(r.Items) == 0 {
		return ErrEmptyCart
	}
	for i, it := range r.Items {
		if it.ProductID == uuid.Nil {
			return apperror.Validation("items[%d].product_id is required", i)
		}
		if it.Quantity < 1 {
			return apperror.Validation("items[%d].quantity must be at least 1", i)
		}
	}
	if strings.TrimSpace(r.ShippingAddress) == "" {
		return apperror.Validation("Shipping address is required")
	}
	if strings.TrimSpace(r.Phone) == "" {
		return apperror.Validation("Phone is required")
	}
	return nil
}

// Place prices the cart against the live catalog, applies at most one coupon,
// and commits the order, its items and the stock decrements atomically.
func (s *Service) Place(ctx context.Context, buyer uuid.UUID, req *PlaceRequest) (*Order, error) {
	entry := s.log.WithField("user_id", buyer)

	if err := req.validate(); err != nil {
		metrics.OrdersPlaced.WithLabelValues(metrics.OutcomeRejected).Inc()
		return nil, err
	}

	lines, subtotal, err := s.price(ctx, req.Items)
	if err != nil {
		metrics.OrdersPlaced.WithLabelValues(outcomeOf(err)).Inc()
		return nil, err
	}

	offered, err := s.applicableCoupon(ctx, entry, req.CouponCode, subtotal)
	if err != nil {
		metrics.OrdersPlaced.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, err
	}

	paymentMethod := strings.TrimSpace(req.PaymentMethod)
	if paymentMethod == "" {
		paymentMethod = DefaultPaymentMethod
	}

	var placed *Order
	err = s.store.InTx(ctx, func(tx Tx) error {
		o := &Order{
			UserID:          buyer,
			Status:          StatusPending,
			ShippingAddress: strings.TrimSpace(req.ShippingAddress),
			Phone:           strings.TrimSpace(req.Phone),
			PaymentMethod:   paymentMethod,
			DiscountAmount:  decimal.Zero,
		}

		if offered != nil {
			claimed, err := tx.ClaimCoupon(ctx, offered.ID)
			if err != nil {
				return err
			}
			if claimed {
				code := offered.Code
				o.CouponCode = &code
				o.DiscountAmount = offered.Discount(subtotal)
				metrics.CouponsApplied.WithLabelValues("applied").Inc()
			} else {
				entry.WithField("coupon", offered.Code).Info("coupon usage cap reached during checkout, ignoring")
				metrics.CouponsApplied.WithLabelValues("ignored").Inc()
			}
		}
		o.TotalAmount = subtotal.Sub(o.DiscountAmount)

		if err := tx.InsertOrder(ctx, o); err != nil {
			return err
		}

		for _, l := range lines {
			item := &OrderItem{
				OrderID:   o.ID,
				ProductID: l.productID,
				Quantity:  l.quantity,
				Price:     l.unitPrice,
			}
			if err := tx.InsertItem(ctx, item); err != nil {
				return err
			}
		}

		// Decrement in a stable product order so concurrent checkouts lock rows in the same sequence.
		for _, d := range stockDemand(lines) {
			ok, err := tx.DecrementStock(ctx, d.productID, d.quantity)
			if err != nil {
				return err
			}
			if !ok {
				return apperror.Detail(ErrOutOfStock, "Insufficient stock for product %s", d.productID)
			}
		}

		placed = o
		return nil
	})
	if err != nil {
		metrics.OrdersPlaced.WithLabelValues(outcomeOf(err)).Inc()
		if apperror.KindOf(err) == apperror.KindPersistence {
			entry.WithError(err).Error("order placement failed")
		}
		return nil, err
	}

	metrics.OrdersPlaced.WithLabelValues(metrics.OutcomeSuccess).Inc()
	entry.WithFields(logrus.Fields{
		"order_id": placed.ID,
		"total":    placed.TotalAmount.StringFixed(2),
		"items":    len(lines),
	}).Info("order placed")

	return placed, nil
}

// price checks every line in input order and stops at the first failure.
func (s *Service) price(ctx context.Context, items []ItemRequest) ([]pricedLine, decimal.Decimal, error) {
	lines := make([]pricedLine, 0, len(items))
	subtotal := decimal.Zero

	for _, it := range items {
		p, err := s.store.FindProduct(ctx, it.ProductID)
		if err != nil {
			if errors.Is(err, ErrProductNotFound) {
				return nil, decimal.Zero, apperror.Detail(ErrProductNotFound, "Product %s not found", it.ProductID)
			}
			return nil, decimal.Zero, err
		}
		if !p.HasStock(it.Quantity) {
			return nil, decimal.Zero, apperror.Detail(ErrOutOfStock, "Insufficient stock for product %s", it.ProductID)
		}

		unit := p.EffectivePrice()
		lines = append(lines, pricedLine{productID: p.ID, quantity: it.Quantity, unitPrice: unit})
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	return lines, subtotal, nil
}

// applicableCoupon returns the coupon only when it applies. Unknown or
// inapplicable codes are ignored, not rejected.
func (s *Service) applicableCoupon(ctx context.Context, entry *logrus.Entry, code string, subtotal decimal.Decimal) (*coupon.Coupon, error) {
	code = coupon.NormalizeCode(code)
	if code == "" {
		return nil, nil
	}

	c, err := s.store.FindCouponByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if c == nil {
		entry.WithField("coupon", code).Info("unknown coupon ignored")
		metrics.CouponsApplied.WithLabelValues("ignored").Inc()
		return nil, nil
	}
	if reason := c.Check(subtotal, s.now()); reason != coupon.RejectNone {
		entry.WithFields(logrus.Fields{"coupon": code, "reason": reason}).Info("inapplicable coupon ignored")
		metrics.CouponsApplied.WithLabelValues("ignored").Inc()
		return nil, nil
	}
	return c, nil
}

func stockDemand(lines []pricedLine) []pricedLine {
	byProduct := make(map[uuid.UUID]int, len(lines))
	for _, l := range lines {
		byProduct[l.productID] += l.quantity
	}
	out := make([]pricedLine, 0, len(byProduct))
	for id, q := range byProduct {
		out = append(out, pricedLine{productID: id, quantity: q})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].productID.String() < out[j].productID.String()
	})
	return out
}

// UpdateStatus overwrites the status. Entering "completed" from any other
// status credits loyalty points once.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*Order, error) {
	next := Status(strings.TrimSpace(status))
	if next == "" {
		return nil, apperror.Validation("Status is required")
	}

	var updated *Order
	var awarded int64
	err := s.store.InTx(ctx, func(tx Tx) error {
		o, err := tx.LockOrder(ctx, id)
		if err != nil {
			return err
		}
		prev := o.Status

		at := s.now().UTC()
		if err := tx.SetStatus(ctx, id, next, at); err != nil {
			return err
		}
		o.Status = next
		o.UpdatedAt = at

		if prev != StatusCompleted && next == StatusCompleted {
			if points := user.PointsFor(o.TotalAmount); points > 0 {
				if err := tx.AccruePoints(ctx, o.UserID, points); err != nil {
					return err
				}
				awarded = points
			}
		}

		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	if awarded > 0 {
		metrics.LoyaltyPointsAwarded.Add(float64(awarded))
	}
	s.log.WithFields(logrus.Fields{
		"order_id": id,
		"status":   next,
		"points":   awarded,
	}).Info("order status updated")

	return updated, nil
}

// UpdateTracking overwrites the tracking fields
func (s *Service) UpdateTracking(ctx context.Context, id uuid.UUID, t *TrackingUpdate) (*Order, error) {
	return s.store.UpdateTracking(ctx, id, *t)
}

// List returns every order for admins and the viewer's own orders otherwise
func (s *Service) List(ctx context.Context, viewer user.Principal) ([]Order, error) {
	if viewer.IsAdmin {
		return s.store.ListOrders(ctx, nil)
	}
	return s.store.ListOrders(ctx, &viewer.ID)
}

// Get returns one order with its items if the viewer owns it or is an admin
func (s *Service) Get(ctx context.Context, viewer user.Principal, id uuid.UUID) (*Order, error) {
	o, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.CanAccess(o.UserID) {
		return nil, ErrForbidden
	}
	return o, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrOutOfStock):
		return metrics.OutcomeOutOfStock
	case apperror.KindOf(err) == apperror.KindPersistence:
		return metrics.OutcomeError
	default:
		return metrics.OutcomeRejected
	}
}
