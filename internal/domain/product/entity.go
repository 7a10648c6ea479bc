// internal/domain/product/entity.go
package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Product represents a catalog item
type Product struct {
	ID             uuid.UUID           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name           string              `gorm:"not null;size:255;index" json:"name"`
	Description    *string             `gorm:"type:text" json:"description"`
	Price          decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"price"`
	DiscountPrice  decimal.NullDecimal `gorm:"type:decimal(10,2)" json:"discount_price"`
	Stock          int                 `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	CategoryID     *uuid.UUID          `gorm:"type:uuid;index" json:"category_id"`
	ImageURL       *string             `gorm:"size:500" json:"image_url"`
	Images         pq.StringArray      `gorm:"type:text[]" json:"images"`
	Media          datatypes.JSON      `json:"media"`
	Brand          *string             `gorm:"size:100" json:"brand"`
	Specifications datatypes.JSON      `json:"specifications"`
	IsFeatured     bool                `gorm:"not null;default:false;index" json:"is_featured"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;" json:"category,omitempty"`
}

// Category groups products
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string    `gorm:"uniqueIndex;not null;size:255" json:"name"`
	Description *string   `gorm:"type:text" json:"description"`
	ImageURL    *string   `gorm:"size:500" json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

// Review is one customer's rating of one product
type Review struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user" json:"product_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_product_user;index" json:"user_id"`
	Rating    int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment   *string   `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`

	Product Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE;" json:"-"`
}

// TableName overrides
func (Product) TableName() string  { return "products" }
func (Category) TableName() string { return "categories" }
func (Review) TableName() string   { return "reviews" }

// EffectivePrice is the unit price charged at checkout: the discount price when set, else the list price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice.Valid {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}

// IsInStock checks if at least one unit is available
func (p *Product) IsInStock() bool {
	return p.Stock > 0
}

// HasStock checks whether qty units can be sold
func (p *Product) HasStock(qty int) bool {
	return qty > 0 && p.Stock >= qty
}
