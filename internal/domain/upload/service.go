// internal/domain/upload/service.go
package upload

import (
	"context"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/config"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
	"github.com/technexus/storefront-backend/internal/pkg/storage"
)

var (
	ErrNoFile      = apperror.Validation("No file uploaded")
	ErrNoFiles     = apperror.Validation("No files uploaded")
	ErrInvalidType = apperror.Validation("Invalid file type. Only images (JPEG, PNG, WebP, GIF) and videos (MP4, WebM, MOV) are allowed.")
)

// Repository records stored files
type Repository interface {
	Save(ctx context.Context, f *UploadedFile) error
}

// Service handles file upload business logic
type Service struct {
	repo    Repository
	storage storage.Provider
	config  config.UploadConfig
	log     *logrus.Logger
	now     func() time.Time
}

// NewService creates a new upload service
func NewService(repo Repository, provider storage.Provider, cfg config.UploadConfig, log *logrus.Logger) *Service {
	return &Service{
		repo:    repo,
		storage: provider,
		config:  cfg,
		log:     log,
		now:     time.Now,
	}
}

// Upload stores one file under folder
func (s *Service) Upload(ctx context.Context, folder string, header *multipart.FileHeader, uploader uuid.UUID) (*UploadedFile, error) {
	if header == nil {
		return nil, ErrNoFile
	}
	if err := s.validate(header); err != nil {
		return nil, err
	}
	return s.store(ctx, folder, header, uploader)
}

// UploadMany stores up to the configured number of files. Every file is
// checked before any is stored, and a failure removes what was already stored.
func (s *Service) UploadMany(ctx context.Context, folder string, headers []*multipart.FileHeader, uploader uuid.UUID) ([]UploadedFile, error) {
	if len(headers) == 0 {
		return nil, ErrNoFiles
	}
	if len(headers) > s.config.MaxFiles {
		return nil, apperror.Validation("Too many files. Maximum is %d", s.config.MaxFiles)
	}
	for _, h := range headers {
		if err := s.validate(h); err != nil {
			return nil, err
		}
	}

	stored := make([]UploadedFile, 0, len(headers))
	for _, h := range headers {
		f, err := s.store(ctx, folder, h, uploader)
		if err != nil {
			for _, done := range stored {
				if derr := s.storage.Delete(ctx, done.Key); derr != nil {
					s.log.WithError(derr).WithField("key", done.Key).Warn("failed to remove partial upload")
				}
			}
			return nil, err
		}
		stored = append(stored, *f)
	}
	return stored, nil
}

func (s *Service) validate(header *multipart.FileHeader) error {
	if header.Size > s.config.MaxSize {
		return apperror.Validation("File size too large. Maximum size is %dMB", s.config.MaxSize/(1024*1024))
	}
	if !s.allowed(mimeOf(header)) {
		return ErrInvalidType
	}
	return nil
}

func (s *Service) allowed(mimeType string) bool {
	for _, t := range s.config.AllowedMimeTypes {
		if strings.EqualFold(t, mimeType) {
			return true
		}
	}
	return false
}

func (s *Service) store(ctx context.Context, folder string, header *multipart.FileHeader, uploader uuid.UUID) (*UploadedFile, error) {
	src, err := header.Open()
	if err != nil {
		return nil, apperror.Persistence("failed to open upload", err)
	}
	defer src.Close()

	filename := s.generateUniqueFilename(header.Filename)
	key := folder + "/" + filename
	mimeType := mimeOf(header)

	url, err := s.storage.Put(ctx, key, mimeType, src, header.Size)
	if err != nil {
		return nil, apperror.Persistence("failed to upload file", err)
	}

	f := &UploadedFile{
		OriginalName: header.Filename,
		Filename:     filename,
		Key:          key,
		URL:          url,
		MimeType:     mimeType,
		MediaType:    Classify(mimeType),
		Size:         header.Size,
		Folder:       folder,
		UploadedBy:   uploader,
	}
	if err := s.repo.Save(ctx, f); err != nil {
		if derr := s.storage.Delete(ctx, key); derr != nil {
			s.log.WithError(derr).WithField("key", key).Warn("failed to remove orphaned upload")
		}
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"key":  key,
		"type": f.MediaType,
		"size": f.GetFormattedSize(),
	}).Info("file uploaded")
	return f, nil
}

// generateUniqueFilename keeps the extension and replaces the name
func (s *Service) generateUniqueFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), uuid.New().String()[:8], ext)
}

// mimeOf trusts the client-declared part header
func mimeOf(header *multipart.FileHeader) string {
	ct := header.Header.Get("Content-Type")
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
