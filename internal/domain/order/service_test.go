package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technexus/storefront-backend/internal/domain/coupon"
	"github.com/technexus/storefront-backend/internal/domain/product"
	"github.com/technexus/storefront-backend/internal/domain/user"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
	"github.com/technexus/storefront-backend/internal/pkg/logger"
)

var fixedNow = time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestService(store Store) *Service {
	svc := NewService(store, logger.Discard())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func placeReq(items ...ItemRequest) *PlaceRequest {
	return &PlaceRequest{
		Items:           items,
		ShippingAddress: "Plot 12, Msasani, Dar es Salaam",
		Phone:           "+255712345678",
	}
}

func activeCoupon(code string) coupon.Coupon {
	return coupon.Coupon{
		Code:       code,
		IsActive:   true,
		ValidFrom:  fixedNow.Add(-24 * time.Hour),
		ValidUntil: fixedNow.Add(24 * time.Hour),
	}
}

func TestPlaceFreezesEffectivePrice(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(product.Product{
		Name:          "Smartphone",
		Price:         dec("1000"),
		DiscountPrice: decimal.NewNullDecimal(dec("800")),
		Stock:         5,
	})
	svc := newTestService(store)
	buyer := uuid.New()

	o, err := svc.Place(context.Background(), buyer, placeReq(ItemRequest{ProductID: p.ID, Quantity: 2}))
	require.NoError(t, err)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "1600", o.TotalAmount.String())
	assert.True(t, o.DiscountAmount.IsZero())
	assert.Equal(t, DefaultPaymentMethod, o.PaymentMethod)
	assert.Empty(t, o.Items, "placement returns the header only")
	assert.Equal(t, 3, store.product(p.ID).Stock)

	// A later catalog change must not alter the historical order.
	changed := store.product(p.ID)
	changed.Price = dec("5000")
	changed.DiscountPrice = decimal.NullDecimal{}
	store.addProduct(changed)

	got, err := svc.Get(context.Background(), user.Principal{ID: buyer}, o.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "800", got.Items[0].Price.String())
	assert.Equal(t, "1600", got.TotalAmount.String())
}

func TestPlaceOverStockHasNoSideEffects(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(product.Product{Name: "Router", Price: dec("100"), Stock: 1})
	svc := newTestService(store)

	_, err := svc.Place(context.Background(), uuid.New(), placeReq(ItemRequest{ProductID: p.ID, Quantity: 2}))

	assert.True(t, errors.Is(err, ErrOutOfStock))
	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	assert.Equal(t, 0, store.orderCount())
	assert.Equal(t, 0, store.itemCount())
	assert.Equal(t, 1, store.product(p.ID).Stock)
}

func TestPlaceFirstFailureInInputOrderWins(t *testing.T) {
	store := newMemStore()
	scarce := store.addProduct(product.Product{Name: "Tablet", Price: dec("100"), Stock: 1})
	svc := newTestService(store)

	_, err := svc.Place(context.Background(), uuid.New(), placeReq(
		ItemRequest{ProductID: uuid.New(), Quantity: 1},
		ItemRequest{ProductID: scarce.ID, Quantity: 5},
	))
	assert.ErrorIs(t, err, ErrProductNotFound)

	_, err = svc.Place(context.Background(), uuid.New(), placeReq(
		ItemRequest{ProductID: scarce.ID, Quantity: 5},
		ItemRequest{ProductID: uuid.New(), Quantity: 1},
	))
	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, 0, store.orderCount())
}

func TestPlaceValidation(t *testing.T) {
	svc := newTestService(newMemStore())
	ctx := context.Background()

	_, err := svc.Place(ctx, uuid.New(), placeReq())
	assert.ErrorIs(t, err, ErrEmptyCart)

	req := placeReq(ItemRequest{ProductID: uuid.New(), Quantity: 1})
	req.ShippingAddress = "  "
	_, err = svc.Place(ctx, uuid.New(), req)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	req = placeReq(ItemRequest{ProductID: uuid.New(), Quantity: 0})
	_, err = svc.Place(ctx, uuid.New(), req)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestCouponBelowMinimumIsIgnored(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(product.Product{Name: "Headphones", Price: dec("5000"), Stock: 10})
	c := activeCoupon("BIG")
	c.DiscountPercentage = intPtr(10)
	c.MinPurchaseAmount = dec("10000")
	store.addCoupon(c)
	svc := newTestService(store)

	req := placeReq(ItemRequest{ProductID: p.ID, Quantity: 1})
	req.CouponCode = "BIG"
	o, err := svc.Place(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	assert.True(t, o.DiscountAmount.IsZero())
	assert.Equal(t, "5000", o.TotalAmount.String())
	assert.Nil(t, o.CouponCode)
	assert.Equal(t, 0, store.coupon("BIG").UsedCount)
}

func TestCouponPercentageAppliedAndClaimed(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(product.Product{Name: "Laptop", Price: dec("2000"), Stock: 10})
	c := activeCoupon("KARIBU10")
	c.DiscountPercentage = intPtr(10)
	c.DiscountAmount = decimal.NewNullDecimal(dec("999"))
	store.addCoupon(c)
	svc := newTestService(store)

	req := placeReq(ItemRequest{ProductID: p.ID, Quantity: 2})
	req.CouponCode = " karibu10 "
	o, err := svc.Place(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	assert.Equal(t, "400", o.DiscountAmount.String())
	assert.Equal(t, "3600", o.TotalAmount.String())
	require.NotNil(t, o.CouponCode)
	assert.Equal(t, "KARIBU10", *o.CouponCode)
	assert.Equal(t, 1, store.coupon("KARIBU10").UsedCount)
}

func TestFlatCouponNeverMakesTotalNegative(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(product.Product{Name: "Cable", Price: dec("300"), Stock: 10})
	c := activeCoupon("FLAT")
	c.DiscountAmount = decimal.NewNullDecimal(dec("1000"))
	store.addCoupon(c)
	svc := newTestService(store)

	req := placeReq(ItemRequest{ProductID: p.ID, Quantity: 1})
	req.CouponCode = "FLAT"
	o, err := svc.Place(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	assert.Equal(t, "300", o.DiscountAmount.String())
	assert.True(t, o.TotalAmount.IsZero())
}

func TestExpiredExhaustedAndUnknownCouponsAreIgnored(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(product.Product{Name: "Mouse", Price: dec("100"), Stock: 10})

	expired := activeCoupon("OLD")
	expired.DiscountPercentage = intPtr(50)
	expired.ValidUntil = fixedNow
	store.addCoupon(expired)

	exhausted := activeCoupon("GONE")
	exhausted.DiscountPercentage = intPtr(50)
	exhausted.MaxUses = intPtr(1)
	exhausted.UsedCount = 1
	store.addCoupon(exhausted)

	svc := newTestService(store)

	for _, code := range []string{"OLD", "GONE", "NOPE"} {
		req := placeReq(ItemRequest{ProductID: p.ID, Quantity: 1})
		req.CouponCode = code
		o, err := svc.Place(context.Background(), uuid.New(), req)
		require.NoError(t, err, code)
		assert.Equal(t, "100", o.TotalAmount.String(), code)
		assert.Nil(t, o.CouponCode, code)
	}
	assert.Equal(t, 1, store.coupon("GONE").UsedCount)
}

// lateClaimStore lets another checkout take the last coupon use right after
// this one read the coupon.
type lateClaimStore struct{ *memStore }

func (s lateClaimStore) FindCouponByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	c, err := s.memStore.FindCouponByCode(ctx, code)
	if c != nil {
		taken := *c
		taken.UsedCount = *taken.MaxUses
		s.addCoupon(taken)
	}
	return c, err
}

func TestCouponCapRaceDropsDiscount(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(product.Product{Name: "Speaker", Price: dec("1000"), Stock: 10})
	c := activeCoupon("ONCE")
	c.DiscountPercentage = intPtr(20)
	c.MaxUses = intPtr(1)
	store.addCoupon(c)
	svc := newTestService(lateClaimStore{store})

	req := placeReq(ItemRequest{ProductID: p.ID, Quantity: 1})
	req.CouponCode = "ONCE"
	o, err := svc.Place(context.Background(), uuid.New(), req)
	require.NoError(t, err)

	assert.True(t, o.DiscountAmount.IsZero())
	assert.Equal(t, "1000", o.TotalAmount.String())
	assert.Nil(t, o.CouponCode)
	assert.Equal(t, 1, store.coupon("ONCE").UsedCount)
}

func TestConcurrentCheckoutForLastUnit(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(product.Product{Name: "Console", Price: dec("900"), Stock: 1})

	// Hold both checkouts until each has read stock=1, so both pass pricing.
	var reads sync.WaitGroup
	reads.Add(2)
	store.FindProductHook = func() {
		reads.Done()
		reads.Wait()
	}
	svc := newTestService(store)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Place(context.Background(), uuid.New(), placeReq(ItemRequest{ProductID: p.ID, Quantity: 1}))
		}(i)
	}
	wg.Wait()

	successes, outOfStock := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrOutOfStock):
			outOfStock++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, outOfStock)
	assert.Equal(t, 0, store.product(p.ID).Stock)
	assert.Equal(t, 1, store.orderCount())
	assert.Equal(t, 1, store.itemCount())
}

func TestDuplicateLinesCannotOversell(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(product.Product{Name: "SSD", Price: dec("150"), Stock: 3})
	svc := newTestService(store)

	_, err := svc.Place(context.Background(), uuid.New(), placeReq(
		ItemRequest{ProductID: p.ID, Quantity: 2},
		ItemRequest{ProductID: p.ID, Quantity: 2},
	))

	assert.ErrorIs(t, err, ErrOutOfStock)
	assert.Equal(t, 3, store.product(p.ID).Stock)
	assert.Equal(t, 0, store.orderCount())
}

func TestPlaceRollsBackOnStorageFailure(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(product.Product{Name: "Monitor", Price: dec("700"), Stock: 4})
	c := activeCoupon("SAVE")
	c.DiscountAmount = decimal.NewNullDecimal(dec("50"))
	store.addCoupon(c)
	store.InsertItemErr = apperror.Persistence("failed to create order item", errors.New("connection reset"))
	svc := newTestService(store)

	req := placeReq(ItemRequest{ProductID: p.ID, Quantity: 1})
	req.CouponCode = "SAVE"
	_, err := svc.Place(context.Background(), uuid.New(), req)

	assert.Equal(t, apperror.KindPersistence, apperror.KindOf(err))
	assert.Equal(t, 0, store.orderCount())
	assert.Equal(t, 4, store.product(p.ID).Stock)
	assert.Equal(t, 0, store.coupon("SAVE").UsedCount)
}

func TestUpdateStatusAccruesPointsOnTransitionIntoCompleted(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(product.Product{Name: "TV", Price: dec("12999"), Stock: 5})
	svc := newTestService(store)
	buyer := uuid.New()
	ctx := context.Background()

	o, err := svc.Place(ctx, buyer, placeReq(ItemRequest{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, o.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, updated.Status)
	assert.Equal(t, int64(129), store.balance(buyer).Points)
	assert.Equal(t, int64(129), store.balance(buyer).LifetimePoints)

	_, err = svc.UpdateStatus(ctx, o.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, int64(129), store.balance(buyer).Points, "completed -> completed must not award again")

	_, err = svc.UpdateStatus(ctx, o.ID, "processing")
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, o.ID, "completed")
	require.NoError(t, err)
	assert.Equal(t, int64(258), store.balance(buyer).LifetimePoints)
}

func TestUpdateStatusAcceptsAnyNonEmptyStatus(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(product.Product{Name: "Charger", Price: dec("50"), Stock: 5})
	svc := newTestService(store)
	ctx := context.Background()

	o, err := svc.Place(ctx, uuid.New(), placeReq(ItemRequest{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, o.ID, "awaiting_pickup")
	require.NoError(t, err)
	assert.Equal(t, Status("awaiting_pickup"), updated.Status)

	_, err = svc.UpdateStatus(ctx, o.ID, " ")
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.UpdateStatus(ctx, uuid.New(), "completed")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatusReturnsWrittenTimestamp(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(product.Product{Name: "Router", Price: dec("150"), Stock: 5})
	svc := newTestService(store)
	ctx := context.Background()

	o, err := svc.Place(ctx, uuid.New(), placeReq(ItemRequest{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	later := fixedNow.Add(90 * time.Minute)
	svc.now = func() time.Time { return later }

	updated, err := svc.UpdateStatus(ctx, o.ID, "shipped")
	require.NoError(t, err)
	assert.True(t, later.Equal(updated.UpdatedAt), "updated_at %s", updated.UpdatedAt)
	assert.True(t, store.order(o.ID).UpdatedAt.Equal(updated.UpdatedAt))
}

func TestGetAndListRespectOwnership(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(product.Product{Name: "Webcam", Price: dec("80"), Stock: 5})
	svc := newTestService(store)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	o, err := svc.Place(ctx, alice, placeReq(ItemRequest{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)
	_, err = svc.Place(ctx, bob, placeReq(ItemRequest{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	_, err = svc.Get(ctx, user.Principal{ID: bob}, o.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	got, err := svc.Get(ctx, user.Principal{ID: uuid.New(), IsAdmin: true}, o.ID)
	require.NoError(t, err)
	assert.Equal(t, alice, got.UserID)

	mine, err := svc.List(ctx, user.Principal{ID: alice})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := svc.List(ctx, user.Principal{ID: uuid.New(), IsAdmin: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateTracking(t *testing.T) {
	store := newMemStore()
	p := store.addProduct(product.Product{Name: "Drone", Price: dec("3000"), Stock: 1})
	svc := newTestService(store)
	ctx := context.Background()

	o, err := svc.Place(ctx, uuid.New(), placeReq(ItemRequest{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	number := "TZ-123"
	eta := fixedNow.Add(72 * time.Hour)
	updated, err := svc.UpdateTracking(ctx, o.ID, &TrackingUpdate{TrackingNumber: &number, EstimatedDelivery: &eta})
	require.NoError(t, err)
	assert.Equal(t, "TZ-123", *updated.TrackingNumber)
	assert.Nil(t, updated.TrackingURL)
}

func intPtr(v int) *int { return &v }
