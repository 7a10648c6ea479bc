// internal/infrastructure/database/postgres/upload_store.go
package postgres

import (
	"context"

	"github.com/technexus/storefront-backend/internal/domain/upload"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
	"gorm.io/gorm"
)

// UploadStore records uploaded files
type UploadStore struct {
	db *gorm.DB
}

// NewUploadStore creates a new upload store
func NewUploadStore(db *gorm.DB) *UploadStore {
	return &UploadStore{db: db}
}

func (s *UploadStore) Save(ctx context.Context, f *upload.UploadedFile) error {
	if err := s.db.WithContext(ctx).Create(f).Error; err != nil {
		return apperror.Persistence("failed to record upload", err)
	}
	return nil
}
