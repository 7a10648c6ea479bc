// internal/interfaces/http/handlers/upload.go
package handlers

import (
	"context"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/technexus/storefront-backend/internal/domain/upload"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
)

// multipart memory before spilling to temp files
const uploadMemory = 8 << 20

// UploadService stores media files
type UploadService interface {
	Upload(ctx context.Context, folder string, header *multipart.FileHeader, uploader uuid.UUID) (*upload.UploadedFile, error)
	UploadMany(ctx context.Context, folder string, headers []*multipart.FileHeader, uploader uuid.UUID) ([]upload.UploadedFile, error)
}

// UploadHandler handles file upload endpoints
type UploadHandler struct {
	uploads UploadService
	log     *logrus.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploads UploadService, log *logrus.Logger) *UploadHandler {
	return &UploadHandler{
		uploads: uploads,
		log:     log,
	}
}

type uploadedFileResponse struct {
	URL      string           `json:"url"`
	Type     upload.MediaType `json:"type"`
	Filename string           `json:"filename"`
}

// UploadProductFile handles POST /upload/product (field "image")
func (h *UploadHandler) UploadProductFile(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		respondError(c, h.log, upload.ErrNoFile)
		return
	}

	f, err := h.uploads.Upload(c.Request.Context(), upload.FolderProducts, header, p.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "File uploaded successfully",
		"imageUrl": f.URL,
		"filename": f.Filename,
		"type":     f.MediaType,
	})
}

// UploadProductFiles handles POST /upload/product/multiple (field "files")
func (h *UploadHandler) UploadProductFiles(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	if err := c.Request.ParseMultipartForm(uploadMemory); err != nil {
		respondError(c, h.log, apperror.Validation("Failed to parse upload form"))
		return
	}
	var headers []*multipart.FileHeader
	if c.Request.MultipartForm != nil {
		headers = c.Request.MultipartForm.File["files"]
	}

	files, err := h.uploads.UploadMany(c.Request.Context(), upload.FolderProducts, headers, p.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	out := make([]uploadedFileResponse, len(files))
	for i, f := range files {
		out[i] = uploadedFileResponse{URL: f.URL, Type: f.MediaType, Filename: f.Filename}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Files uploaded successfully",
		"files":   out,
	})
}

// UploadCategoryImage handles POST /upload/category (field "image")
func (h *UploadHandler) UploadCategoryImage(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		respondError(c, h.log, upload.ErrNoFile)
		return
	}

	f, err := h.uploads.Upload(c.Request.Context(), upload.FolderCategories, header, p.ID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Image uploaded successfully",
		"imageUrl": f.URL,
		"filename": f.Filename,
	})
}
