// internal/domain/product/category_service.go
package product

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/technexus/storefront-backend/internal/config"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// ErrCategoryNotFound is returned when a category id does not resolve
var ErrCategoryNotFound = apperror.NotFound("Category not found")

// CategoryService handles category business logic
type CategoryService struct {
	db     *gorm.DB
	config *config.Config
}

// NewCategoryService creates a new category service
func NewCategoryService(db *gorm.DB, cfg *config.Config) *CategoryService {
	return &CategoryService{
		db:     db,
		config: cfg,
	}
}

// CategoryRequest represents category create/update data
type CategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url"`
}

// GetCategories lists all categories by name
func (s *CategoryService) GetCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, apperror.Persistence("failed to list categories", err)
	}
	return categories, nil
}

// GetCategory retrieves a category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	var category Category
	if err := s.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, apperror.Persistence("failed to load category", err)
	}
	return &category, nil
}

// CreateCategory creates a new category; names are unique
func (s *CategoryService) CreateCategory(ctx context.Context, req *CategoryRequest) (*Category, error) {
	category := Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("Category name already exists")
		}
		return nil, apperror.Persistence("failed to create category", err)
	}
	return &category, nil
}

// UpdateCategory overwrites a category
func (s *CategoryService) UpdateCategory(ctx context.Context, id uuid.UUID, req *CategoryRequest) (*Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	category.Name = strings.TrimSpace(req.Name)
	category.Description = req.Description
	category.ImageURL = req.ImageURL

	if err := s.db.WithContext(ctx).Save(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict("Category name already exists")
		}
		return nil, apperror.Persistence("failed to update category", err)
	}
	return category, nil
}

// DeleteCategory deletes a category. Products keep existing with a null category.
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&Category{}, "id = ?", id)
	if res.Error != nil {
		return apperror.Persistence("failed to delete category", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
