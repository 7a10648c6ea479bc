// internal/domain/upload/entity.go
package upload

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaType is the coarse kind of an uploaded file
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

// Folders uploads are grouped under
const (
	FolderProducts   = "products"
	FolderCategories = "categories"
)

// UploadedFile records one stored media file
type UploadedFile struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OriginalName string    `gorm:"not null;size:255" json:"original_name"`
	Filename     string    `gorm:"not null;size:255;uniqueIndex" json:"filename"`
	Key          string    `gorm:"not null;size:500" json:"key"`
	URL          string    `gorm:"not null;size:500" json:"url"`
	MimeType     string    `gorm:"not null;size:100" json:"mime_type"`
	MediaType    MediaType `gorm:"type:varchar(10);not null" json:"type"`
	Size         int64     `gorm:"not null" json:"size"`
	Folder       string    `gorm:"size:50;index" json:"folder"`
	UploadedBy   uuid.UUID `gorm:"type:uuid;not null;index" json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName overrides
func (UploadedFile) TableName() string { return "uploaded_files" }

// Classify maps a MIME type to image or video
func Classify(mimeType string) MediaType {
	if strings.HasPrefix(strings.ToLower(mimeType), "video/") {
		return MediaVideo
	}
	return MediaImage
}

// IsVideo reports whether the file is a video
func (f *UploadedFile) IsVideo() bool {
	return f.MediaType == MediaVideo
}

// GetFormattedSize returns human-readable file size
func (f *UploadedFile) GetFormattedSize() string {
	const unit = 1024
	if f.Size < unit {
		return fmt.Sprintf("%d B", f.Size)
	}
	div, exp := int64(unit), 0
	for n := f.Size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(f.Size)/float64(div), "KMGTPE"[exp])
}
