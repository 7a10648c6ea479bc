// internal/domain/order/entity.go
package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
)

// Status is free-form; these are the values the storefront uses.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// DefaultPaymentMethod applies when the caller does not choose one
const DefaultPaymentMethod = "cash_on_delivery"

var (
	ErrEmptyCart       = apperror.Validation("Order items are required")
	ErrProductNotFound = apperror.NotFound("Product not found")
	ErrOutOfStock      = apperror.Conflict("Insufficient stock")
	ErrNotFound        = apperror.NotFound("Order not found")
	ErrForbidden       = apperror.Forbidden("Access denied")
)

// Order represents one checkout
type Order struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID            uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status            Status          `gorm:"type:varchar(30);not null;default:'pending';index" json:"status"`
	ShippingAddress   string          `gorm:"type:text;not null" json:"shipping_address"`
	Phone             string          `gorm:"size:20;not null" json:"phone"`
	PaymentMethod     string          `gorm:"size:50;not null;default:'cash_on_delivery'" json:"payment_method"`
	TrackingNumber    *string         `gorm:"size:100" json:"tracking_number"`
	TrackingURL       *string         `gorm:"size:500" json:"tracking_url"`
	EstimatedDelivery *time.Time      `json:"estimated_delivery"`
	CouponCode        *string         `gorm:"size:50" json:"coupon_code"`
	DiscountAmount    decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"discount_amount"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	CustomerName *string     `gorm:"->;-:migration" json:"full_name,omitempty"`
	Items        []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE;" json:"items,omitempty"`
}

// OrderItem is the frozen snapshot of one purchased line
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity  int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt time.Time       `json:"created_at"`

	ProductName  *string `gorm:"->;-:migration" json:"product_name,omitempty"`
	ProductImage *string `gorm:"->;-:migration" json:"product_image,omitempty"`
}

// TableName overrides
func (Order) TableName() string     { return "orders" }
func (OrderItem) TableName() string { return "order_items" }

// LineTotal is quantity times the frozen unit price
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Subtotal is the pre-discount amount
func (o *Order) Subtotal() decimal.Decimal {
	return o.TotalAmount.Add(o.DiscountAmount)
}

// TrackingUpdate overwrites the shipment tracking fields
type TrackingUpdate struct {
	TrackingNumber    *string    `json:"tracking_number" binding:"omitempty,max=100"`
	TrackingURL       *string    `json:"tracking_url" binding:"omitempty,max=500"`
	EstimatedDelivery *time.Time `json:"estimated_delivery"`
}
