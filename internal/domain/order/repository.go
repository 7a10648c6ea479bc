// internal/domain/order/repository.go
package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/technexus/storefront-backend/internal/domain/coupon"
	"github.com/technexus/storefront-backend/internal/domain/product"
)

// Store is the persistence port of the order engine.
type Store interface {
	// FindProduct returns ErrProductNotFound (or an error wrapping it) for unknown ids.
	FindProduct(ctx context.Context, id uuid.UUID) (*product.Product, error)
	// FindCouponByCode returns nil, nil when no coupon has the code.
	FindCouponByCode(ctx context.Context, code string) (*coupon.Coupon, error)
	// InTx runs fn in one transaction; any error from fn rolls everything back.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	ListOrders(ctx context.Context, userID *uuid.UUID) ([]Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateTracking(ctx context.Context, id uuid.UUID, t TrackingUpdate) (*Order, error)
}

// Tx is the set of writes that must commit together.
type Tx interface {
	// ClaimCoupon consumes one use if the cap allows it. false means the cap was reached.
	ClaimCoupon(ctx context.Context, couponID uuid.UUID) (bool, error)
	InsertOrder(ctx context.Context, o *Order) error
	InsertItem(ctx context.Context, item *OrderItem) error
	// DecrementStock subtracts qty only when at least qty units remain. false means nothing changed.
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error)

	// LockOrder loads the order header under a row lock.
	LockOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	// SetStatus writes the status and stamps updated_at with at.
	SetStatus(ctx context.Context, id uuid.UUID, status Status, at time.Time) error
	// AccruePoints adds points to both the current and lifetime balances, creating the row if needed.
	AccruePoints(ctx context.Context, userID uuid.UUID, points int64) error
}
