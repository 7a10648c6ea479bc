// internal/domain/analytics/service.go
package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// LowStockThreshold is the stock level at or below which a product counts as low
const LowStockThreshold = 5

// Service computes the admin dashboard figures
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService creates a new analytics service
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:  db,
		now: time.Now,
	}
}

// DashboardStats represents overall dashboard statistics
type DashboardStats struct {
	Products  int64   `json:"products"`
	Orders    int64   `json:"orders"`
	Revenue   float64 `json:"revenue"`
	Messages  int64   `json:"messages"`
	Customers int64   `json:"customers"`
	Reviews   int64   `json:"reviews"`

	OrdersToday        int64        `json:"orders_today"`
	RevenueThisMonth   float64      `json:"revenue_this_month"`
	UnreadMessages     int64        `json:"unread_messages"`
	OutOfStockProducts int64        `json:"out_of_stock_products"`
	LowStockProducts   int64        `json:"low_stock_products"`
	OrdersByStatus     []StatusData `json:"orders_by_status"`
}

// StatusData is the order count and value for one status
type StatusData struct {
	Status string          `json:"status"`
	Count  int64           `json:"count"`
	Value  decimal.Decimal `json:"value"`
}

// CustomerData is a profile with its role and order history summary
type CustomerData struct {
	ID         uuid.UUID       `json:"id"`
	FullName   *string         `json:"full_name"`
	Email      *string         `json:"email"`
	Phone      *string         `json:"phone"`
	Address    *string         `json:"address"`
	City       *string         `json:"city"`
	Role       *string         `json:"role"`
	OrderCount int64           `json:"order_count"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

type countQuery struct {
	dest  *int64
	query string
	args  []interface{}
}

// Stats retrieves the dashboard counters
func (s *Service) Stats(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	stats := &DashboardStats{OrdersByStatus: []StatusData{}}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	counts := []countQuery{
		{&stats.Products, "SELECT COUNT(*) FROM products", nil},
		{&stats.Orders, "SELECT COUNT(*) FROM orders", nil},
		{&stats.Messages, "SELECT COUNT(*) FROM chat_messages", nil},
		{&stats.Customers, "SELECT COUNT(*) FROM profiles", nil},
		{&stats.Reviews, "SELECT COUNT(*) FROM reviews", nil},
		{&stats.OrdersToday, "SELECT COUNT(*) FROM orders WHERE created_at >= ?", []interface{}{today}},
		{&stats.UnreadMessages, "SELECT COUNT(*) FROM chat_messages WHERE is_read = FALSE AND is_from_admin = FALSE", nil},
		{&stats.OutOfStockProducts, "SELECT COUNT(*) FROM products WHERE stock <= 0", nil},
		{&stats.LowStockProducts, "SELECT COUNT(*) FROM products WHERE stock > 0 AND stock <= ?", []interface{}{LowStockThreshold}},
	}
	for _, q := range counts {
		if err := db.Raw(q.query, q.args...).Scan(q.dest).Error; err != nil {
			return nil, apperror.Persistence("failed to compute dashboard stats", err)
		}
	}

	var revenue struct {
		Total     decimal.Decimal
		ThisMonth decimal.Decimal
	}
	err := db.Raw(`SELECT COALESCE(SUM(total_amount), 0) AS total,
		COALESCE(SUM(total_amount) FILTER (WHERE created_at >= ?), 0) AS this_month
		FROM orders`, thisMonth).Scan(&revenue).Error
	if err != nil {
		return nil, apperror.Persistence("failed to compute revenue", err)
	}
	stats.Revenue = revenue.Total.InexactFloat64()
	stats.RevenueThisMonth = revenue.ThisMonth.InexactFloat64()

	err = db.Raw(`SELECT status, COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS value
		FROM orders GROUP BY status ORDER BY count DESC`).Scan(&stats.OrdersByStatus).Error
	if err != nil {
		return nil, apperror.Persistence("failed to group orders by status", err)
	}

	return stats, nil
}

// Customers lists every profile with its role, newest first
func (s *Service) Customers(ctx context.Context) ([]CustomerData, error) {
	customers := []CustomerData{}
	err := s.db.WithContext(ctx).Raw(`
		SELECT p.id, p.full_name, p.email, p.phone, p.address, p.city, p.created_at, p.updated_at,
		       ur.role,
		       COALESCE(o.order_count, 0) AS order_count,
		       COALESCE(o.total_spent, 0) AS total_spent
		FROM profiles p
		LEFT JOIN user_roles ur ON ur.user_id = p.id
		LEFT JOIN (
			SELECT user_id, COUNT(*) AS order_count, SUM(total_amount) AS total_spent
			FROM orders GROUP BY user_id
		) o ON o.user_id = p.id
		ORDER BY p.created_at DESC`).Scan(&customers).Error
	if err != nil {
		return nil, apperror.Persistence("failed to list customers", err)
	}
	return customers, nil
}
