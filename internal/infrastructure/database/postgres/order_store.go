// internal/infrastructure/database/postgres/order_store.go
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/technexus/storefront-backend/internal/domain/coupon"
	"github.com/technexus/storefront-backend/internal/domain/order"
	"github.com/technexus/storefront-backend/internal/domain/product"
	"github.com/technexus/storefront-backend/internal/domain/user"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderStore implements order.Store on PostgreSQL
type OrderStore struct {
	db *gorm.DB
}

// NewOrderStore creates a new order store
func NewOrderStore(db *gorm.DB) *OrderStore {
	return &OrderStore{db: db}
}

var _ order.Store = (*OrderStore)(nil)

func (s *OrderStore) FindProduct(ctx context.Context, id uuid.UUID) (*product.Product, error) {
	var p product.Product
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrProductNotFound
		}
		return nil, apperror.Persistence("failed to load product", err)
	}
	return &p, nil
}

func (s *OrderStore) FindCouponByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	var c coupon.Coupon
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, apperror.Persistence("failed to load coupon", err)
	}
	return &c, nil
}

func (s *OrderStore) InTx(ctx context.Context, fn func(tx order.Tx) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&orderTx{db: tx})
	})
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.Persistence("transaction failed", err)
}

// ordersWithCustomer selects order headers with the buyer's display name
func (s *OrderStore) ordersWithCustomer(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&order.Order{}).
		Select("orders.*, profiles.full_name AS customer_name").
		Joins("LEFT JOIN profiles ON profiles.id = orders.user_id")
}

func (s *OrderStore) ListOrders(ctx context.Context, userID *uuid.UUID) ([]order.Order, error) {
	q := s.ordersWithCustomer(ctx).Order("orders.created_at DESC")
	if userID != nil {
		q = q.Where("orders.user_id = ?", *userID)
	}

	orders := []order.Order{}
	if err := q.Find(&orders).Error; err != nil {
		return nil, apperror.Persistence("failed to list orders", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]uuid.UUID, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	items, err := s.items(ctx, ids)
	if err != nil {
		return nil, err
	}
	byOrder := make(map[uuid.UUID][]order.OrderItem, len(orders))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	for i := range orders {
		orders[i].Items = byOrder[orders[i].ID]
	}
	return orders, nil
}

func (s *OrderStore) GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	if err := s.ordersWithCustomer(ctx).Where("orders.id = ?", id).Take(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrNotFound
		}
		return nil, apperror.Persistence("failed to load order", err)
	}

	items, err := s.items(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

// items loads lines with the product's current name and image for display
func (s *OrderStore) items(ctx context.Context, orderIDs []uuid.UUID) ([]order.OrderItem, error) {
	var items []order.OrderItem
	err := s.db.WithContext(ctx).
		Model(&order.OrderItem{}).
		Select("order_items.*, products.name AS product_name, products.image_url AS product_image").
		Joins("LEFT JOIN products ON products.id = order_items.product_id").
		Where("order_items.order_id IN ?", orderIDs).
		Order("order_items.created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, apperror.Persistence("failed to load order items", err)
	}
	return items, nil
}

func (s *OrderStore) UpdateTracking(ctx context.Context, id uuid.UUID, t order.TrackingUpdate) (*order.Order, error) {
	res := s.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"tracking_number":    t.TrackingNumber,
			"tracking_url":       t.TrackingURL,
			"estimated_delivery": t.EstimatedDelivery,
			"updated_at":         time.Now().UTC(),
		})
	if res.Error != nil {
		return nil, apperror.Persistence("failed to update tracking", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, order.ErrNotFound
	}
	return s.GetOrder(ctx, id)
}

type orderTx struct {
	db *gorm.DB
}

func (t *orderTx) ClaimCoupon(ctx context.Context, couponID uuid.UUID) (bool, error) {
	res := t.db.WithContext(ctx).
		Model(&coupon.Coupon{}).
		Where("id = ? AND (max_uses IS NULL OR used_count < max_uses)", couponID).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error != nil {
		return false, apperror.Persistence("failed to claim coupon", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (t *orderTx) InsertOrder(ctx context.Context, o *order.Order) error {
	if err := t.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error; err != nil {
		return apperror.Persistence("failed to create order", err)
	}
	return nil
}

func (t *orderTx) InsertItem(ctx context.Context, item *order.OrderItem) error {
	if err := t.db.WithContext(ctx).Create(item).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return order.ErrProductNotFound
		}
		return apperror.Persistence("failed to create order item", err)
	}
	return nil
}

func (t *orderTx) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (bool, error) {
	res := t.db.WithContext(ctx).
		Model(&product.Product{}).
		Where("id = ? AND stock >= ?", productID, qty).
		UpdateColumns(map[string]interface{}{
			"stock":      gorm.Expr("stock - ?", qty),
			"updated_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return false, apperror.Persistence("failed to update stock", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (t *orderTx) LockOrder(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var o order.Order
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&o, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, order.ErrNotFound
		}
		return nil, apperror.Persistence("failed to load order", err)
	}
	return &o, nil
}

func (t *orderTx) SetStatus(ctx context.Context, id uuid.UUID, status order.Status, at time.Time) error {
	err := t.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "updated_at": at}).Error
	if err != nil {
		return apperror.Persistence("failed to update order status", err)
	}
	return nil
}

func (t *orderTx) AccruePoints(ctx context.Context, userID uuid.UUID, points int64) error {
	row := &user.LoyaltyPoints{UserID: userID, Points: points, LifetimePoints: points}
	err := t.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"points":          gorm.Expr("loyalty_points.points + EXCLUDED.points"),
				"lifetime_points": gorm.Expr("loyalty_points.lifetime_points + EXCLUDED.lifetime_points"),
				"updated_at":      gorm.Expr("now()"),
			}),
		}).
		Create(row).Error
	if err != nil {
		return apperror.Persistence("failed to accrue loyalty points", err)
	}
	return nil
}
