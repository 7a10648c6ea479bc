package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/technexus/storefront-backend/internal/domain/coupon"
	"github.com/technexus/storefront-backend/internal/domain/product"
	"github.com/technexus/storefront-backend/internal/domain/user"
)

// memStore is an in-memory Store. Transactions are serialized and roll back
// by restoring a snapshot, which is enough to observe atomicity in tests.
type memStore struct {
	mu   sync.Mutex
	txMu sync.Mutex

	products map[uuid.UUID]product.Product
	coupons  map[string]coupon.Coupon
	orders   map[uuid.UUID]Order
	items    []OrderItem
	points   map[uuid.UUID]user.LoyaltyPoints

	// FindProductHook runs after each product read, outside the lock.
	FindProductHook func()
	InsertItemErr   error
}

func newMemStore() *memStore {
	return &memStore{
		products: map[uuid.UUID]product.Product{},
		coupons:  map[string]coupon.Coupon{},
		orders:   map[uuid.UUID]Order{},
		points:   map[uuid.UUID]user.LoyaltyPoints{},
	}
}

func (s *memStore) addProduct(p product.Product) product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.products[p.ID] = p
	return p
}

func (s *memStore) addCoupon(c coupon.Coupon) coupon.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.coupons[c.Code] = c
	return c
}

func (s *memStore) product(id uuid.UUID) product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id]
}

func (s *memStore) coupon(code string) coupon.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coupons[code]
}

func (s *memStore) order(id uuid.UUID) Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orders[id]
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) itemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *memStore) balance(userID uuid.UUID) user.LoyaltyPoints {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.points[userID]
}

func (s *memStore) FindProduct(_ context.Context, id uuid.UUID) (*product.Product, error) {
	s.mu.Lock()
	p, ok := s.products[id]
	s.mu.Unlock()

	if s.FindProductHook != nil {
		s.FindProductHook()
	}
	if !ok {
		return nil, ErrProductNotFound
	}
	return &p, nil
}

func (s *memStore) FindCouponByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coupons[code]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

type snapshot struct {
	products map[uuid.UUID]product.Product
	coupons  map[string]coupon.Coupon
	orders   map[uuid.UUID]Order
	items    []OrderItem
	points   map[uuid.UUID]user.LoyaltyPoints
}

func (s *memStore) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		products: make(map[uuid.UUID]product.Product, len(s.products)),
		coupons:  make(map[string]coupon.Coupon, len(s.coupons)),
		orders:   make(map[uuid.UUID]Order, len(s.orders)),
		items:    append([]OrderItem(nil), s.items...),
		points:   make(map[uuid.UUID]user.LoyaltyPoints, len(s.points)),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.coupons {
		snap.coupons[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	for k, v := range s.points {
		snap.points[k] = v
	}
	return snap
}

func (s *memStore) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products, s.coupons, s.orders, s.items, s.points = snap.products, snap.coupons, snap.orders, snap.items, snap.points
}

func (s *memStore) InTx(_ context.Context, fn func(tx Tx) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(memTx{s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *memStore) ListOrders(_ context.Context, userID *uuid.UUID) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Order{}
	for _, o := range s.orders {
		if userID == nil || o.UserID == *userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *memStore) GetOrder(_ context.Context, id uuid.UUID) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	for _, it := range s.items {
		if it.OrderID == id {
			o.Items = append(o.Items, it)
		}
	}
	return &o, nil
}

func (s *memStore) UpdateTracking(_ context.Context, id uuid.UUID, t TrackingUpdate) (*Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	o.TrackingNumber, o.TrackingURL, o.EstimatedDelivery = t.TrackingNumber, t.TrackingURL, t.EstimatedDelivery
	s.orders[id] = o
	return &o, nil
}

type memTx struct{ s *memStore }

func (t memTx) ClaimCoupon(_ context.Context, id uuid.UUID) (bool, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for code, c := range t.s.coupons {
		if c.ID != id {
			continue
		}
		if c.MaxUses != nil && c.UsedCount >= *c.MaxUses {
			return false, nil
		}
		c.UsedCount++
		t.s.coupons[code] = c
		return true, nil
	}
	return false, nil
}

func (t memTx) InsertOrder(_ context.Context, o *Order) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	o.ID = uuid.New()
	t.s.orders[o.ID] = *o
	return nil
}

func (t memTx) InsertItem(_ context.Context, item *OrderItem) error {
	if t.s.InsertItemErr != nil {
		return t.s.InsertItemErr
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	item.ID = uuid.New()
	t.s.items = append(t.s.items, *item)
	return nil
}

func (t memTx) DecrementStock(_ context.Context, productID uuid.UUID, qty int) (bool, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	p, ok := t.s.products[productID]
	if !ok || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	t.s.products[productID] = p
	return true, nil
}

func (t memTx) LockOrder(_ context.Context, id uuid.UUID) (*Order, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	o, ok := t.s.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (t memTx) SetStatus(_ context.Context, id uuid.UUID, status Status, at time.Time) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	o := t.s.orders[id]
	o.Status = status
	o.UpdatedAt = at
	t.s.orders[id] = o
	return nil
}

func (t memTx) AccruePoints(_ context.Context, userID uuid.UUID, points int64) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	lp := t.s.points[userID]
	lp.UserID = userID
	lp.Points += points
	lp.LifetimePoints += points
	t.s.points[userID] = lp
	return nil
}
