package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/technexus/storefront-backend/internal/config"
	"github.com/technexus/storefront-backend/internal/pkg/apperror"
	"github.com/technexus/storefront-backend/internal/pkg/logger"
	"github.com/technexus/storefront-backend/internal/pkg/storage"
)

type testFile struct {
	name string
	mime string
	data string
}

func fileHeaders(t *testing.T, files ...testFile) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, f.name))
		h.Set("Content-Type", f.mime)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte(f.data))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	return form.File["files"]
}

type memRepo struct {
	saved []UploadedFile
	err   error
}

func (r *memRepo) Save(_ context.Context, f *UploadedFile) error {
	if r.err != nil {
		return r.err
	}
	f.ID = uuid.New()
	r.saved = append(r.saved, *f)
	return nil
}

func newTestService(t *testing.T, repo Repository) (*Service, string) {
	root := t.TempDir()
	cfg := config.UploadConfig{
		MaxSize:          64,
		MaxFiles:         3,
		AllowedMimeTypes: []string{"image/jpeg", "image/png", "video/mp4"},
	}
	return NewService(repo, storage.NewLocalStorage(root, "/uploads"), cfg, logger.Discard()), root
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	n := 0
	_ = filepath.Walk(dir, func(_ string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			n++
		}
		return nil
	})
	return n
}

func TestClassify(t *testing.T) {
	assert.Equal(t, MediaVideo, Classify("video/mp4"))
	assert.Equal(t, MediaVideo, Classify("VIDEO/QuickTime"))
	assert.Equal(t, MediaImage, Classify("image/webp"))
}

func TestUploadStoresAndRecords(t *testing.T) {
	repo := &memRepo{}
	svc, root := newTestService(t, repo)
	uploader := uuid.New()

	f, err := svc.Upload(context.Background(), FolderProducts, fileHeaders(t, testFile{"Phone.PNG", "image/png", "png"})[0], uploader)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(f.URL, "/uploads/products/"))
	assert.True(t, strings.HasSuffix(f.Filename, ".png"))
	assert.Equal(t, MediaImage, f.MediaType)
	assert.Equal(t, uploader, f.UploadedBy)
	require.Len(t, repo.saved, 1)

	data, err := os.ReadFile(filepath.Join(root, "products", f.Filename))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))
}

func TestUploadRejectsTypeAndSize(t *testing.T) {
	svc, root := newTestService(t, &memRepo{})
	ctx := context.Background()

	_, err := svc.Upload(ctx, FolderProducts, fileHeaders(t, testFile{"doc.pdf", "application/pdf", "pdf"})[0], uuid.New())
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = svc.Upload(ctx, FolderProducts, fileHeaders(t, testFile{"big.jpg", "image/jpeg", strings.Repeat("x", 65)})[0], uuid.New())
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.Upload(ctx, FolderProducts, nil, uuid.New())
	assert.ErrorIs(t, err, ErrNoFile)

	assert.Equal(t, 0, countFiles(t, root))
}

func TestUploadManyIsAllOrNothing(t *testing.T) {
	repo := &memRepo{}
	svc, root := newTestService(t, repo)
	ctx := context.Background()

	_, err := svc.UploadMany(ctx, FolderProducts, fileHeaders(t,
		testFile{"a.jpg", "image/jpeg", "a"},
		testFile{"b.gif", "image/gif", "b"},
	), uuid.New())
	assert.ErrorIs(t, err, ErrInvalidType)
	assert.Equal(t, 0, countFiles(t, root))

	_, err = svc.UploadMany(ctx, FolderProducts, fileHeaders(t,
		testFile{"a.jpg", "image/jpeg", "a"},
		testFile{"b.jpg", "image/jpeg", "b"},
		testFile{"c.jpg", "image/jpeg", "c"},
		testFile{"d.jpg", "image/jpeg", "d"},
	), uuid.New())
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	files, err := svc.UploadMany(ctx, FolderProducts, fileHeaders(t,
		testFile{"a.jpg", "image/jpeg", "a"},
		testFile{"clip.mp4", "video/mp4", "v"},
	), uuid.New())
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, MediaVideo, files[1].MediaType)
	assert.Equal(t, 2, countFiles(t, root))
}

func TestUploadRemovesFileWhenRecordFails(t *testing.T) {
	repo := &memRepo{err: apperror.Persistence("failed to record upload", errors.New("db down"))}
	svc, root := newTestService(t, repo)

	_, err := svc.Upload(context.Background(), FolderCategories, fileHeaders(t, testFile{"c.jpg", "image/jpeg", "c"})[0], uuid.New())

	assert.Equal(t, apperror.KindPersistence, apperror.KindOf(err))
	assert.Equal(t, 0, countFiles(t, root))
}

func TestGetFormattedSize(t *testing.T) {
	assert.Equal(t, "512 B", (&UploadedFile{Size: 512}).GetFormattedSize())
	assert.Equal(t, "1.5 KB", (&UploadedFile{Size: 1536}).GetFormattedSize())
	assert.Equal(t, "50.0 MB", (&UploadedFile{Size: 50 * 1024 * 1024}).GetFormattedSize())
}
