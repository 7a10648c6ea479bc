// internal/domain/product/service.go
package product

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/technexus/storefront-backend/internal/config"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const featuredLimit = 8

// ErrNotFound is returned when a product id does not resolve
var ErrNotFound = apperror.NotFound("Product not found")

// Service handles catalog product logic
type Service struct {
	db     *gorm.DB
	config *config.Config
}

// NewService creates a new product service
func NewService(db *gorm.DB, cfg *config.Config) *Service {
	return &Service{
		db:     db,
		config: cfg,
	}
}

// ListFilter represents product list query parameters
type ListFilter struct {
	Category string `form:"category"`
	Search   string `form:"search"`
	Sort     string `form:"sort"`
	Featured string `form:"featured"`
}

// ProductRequest is the create/update payload. On update every field is written.
type ProductRequest struct {
	Name           string           `json:"name" binding:"required,max=255"`
	Description    *string          `json:"description"`
	Price          *decimal.Decimal `json:"price" binding:"required"`
	DiscountPrice  *decimal.Decimal `json:"discount_price"`
	Stock          *int             `json:"stock" binding:"omitempty,min=0"`
	CategoryID     *uuid.UUID       `json:"category_id"`
	ImageURL       *string          `json:"image_url"`
	Images         []string         `json:"images"`
	Media          json.RawMessage  `json:"media"`
	Brand          *string          `json:"brand"`
	Specifications json.RawMessage  `json:"specifications"`
	IsFeatured     bool             `json:"is_featured"`
}

// OrderClause maps the sort parameter to an ORDER BY expression. Unknown values sort newest first.
func OrderClause(sort string) string {
	switch sort {
	case "price_asc":
		return "price ASC"
	case "price_desc":
		return "price DESC"
	case "name":
		return "name ASC"
	default:
		return "created_at DESC"
	}
}

// List returns products matching the filter with their category preloaded.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Product, error) {
	q := s.db.WithContext(ctx).Model(&Product{}).Preload("Category")

	if f.Category != "" {
		categoryID, err := uuid.Parse(f.Category)
		if err != nil {
			return nil, apperror.Validation("Invalid category id")
		}
		q = q.Where("category_id = ?", categoryID)
	}
	if search := strings.TrimSpace(f.Search); search != "" {
		q = q.Where("name ILIKE ?", "%"+search+"%")
	}
	if f.Featured == "true" {
		q = q.Where("is_featured = ?", true)
	}

	var products []Product
	if err := q.Order(OrderClause(f.Sort)).Find(&products).Error; err != nil {
		return nil, apperror.Persistence("failed to list products", err)
	}
	return products, nil
}

// Featured returns the most recent featured products.
func (s *Service) Featured(ctx context.Context) ([]Product, error) {
	var products []Product
	err := s.db.WithContext(ctx).Preload("Category").
		Where("is_featured = ?", true).
		Order("created_at DESC").
		Limit(featuredLimit).
		Find(&products).Error
	if err != nil {
		return nil, apperror.Persistence("failed to list featured products", err)
	}
	return products, nil
}

// Get returns one product by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	var p Product
	if err := s.db.WithContext(ctx).Preload("Category").First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, apperror.Persistence("failed to load product", err)
	}
	return &p, nil
}

// Create inserts a new product
func (s *Service) Create(ctx context.Context, req *ProductRequest) (*Product, error) {
	var p Product
	if err := req.apply(&p); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, apperror.Validation("Category does not exist")
		}
		return nil, apperror.Persistence("failed to create product", err)
	}
	return &p, nil
}

// Update overwrites the product's editable fields
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *ProductRequest) (*Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := req.apply(p); err != nil {
		return nil, err
	}
	p.Category = nil
	if err := s.db.WithContext(ctx).Save(p).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, apperror.Validation("Category does not exist")
		}
		return nil, apperror.Persistence("failed to update product", err)
	}
	return p, nil
}

// Delete removes a product
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&Product{}, "id = ?", id)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrForeignKeyViolated) {
			return apperror.Conflict("Product is referenced by existing orders")
		}
		return apperror.Persistence("failed to delete product", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRequest) apply(p *Product) error {
	if r.Price == nil || r.Price.IsNegative() {
		return apperror.Validation("Price must be a non-negative amount")
	}
	p.Name = strings.TrimSpace(r.Name)
	p.Description = r.Description
	p.Price = r.Price.Round(2)
	p.DiscountPrice = decimal.NullDecimal{}
	if r.DiscountPrice != nil {
		if r.DiscountPrice.IsNegative() {
			return apperror.Validation("Discount price must be a non-negative amount")
		}
		p.DiscountPrice = decimal.NewNullDecimal(r.DiscountPrice.Round(2))
	}
	if r.Stock != nil {
		p.Stock = *r.Stock
	}
	p.CategoryID = r.CategoryID
	p.ImageURL = r.ImageURL
	p.Images = pq.StringArray(r.Images)
	p.Brand = r.Brand
	p.IsFeatured = r.IsFeatured

	p.Media = nil
	if len(r.Media) > 0 && string(r.Media) != "null" {
		p.Media = datatypes.JSON(r.Media)
	}
	p.Specifications = nil
	if len(r.Specifications) > 0 && string(r.Specifications) != "null" {
		if !json.Valid(r.Specifications) {
			return apperror.Validation("Specifications must be valid JSON")
		}
		p.Specifications = datatypes.JSON(r.Specifications)
	}
	return nil
}
