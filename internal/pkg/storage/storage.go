// internal/pkg/storage/storage.go
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/technexus/storefront-backend/internal/config"
)

// Provider stores uploaded media and returns its public URL
type Provider interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Delete(ctx context.Context, key string) error
}

// New selects the provider configured in STORAGE_PROVIDER
func New(cfg config.StorageConfig) (Provider, error) {
	switch cfg.Provider {
	case "", "local":
		return NewLocalStorage(cfg.LocalPath, cfg.PublicPath), nil
	case "s3":
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.Provider)
	}
}

// cleanKey rejects keys that would escape the storage root
func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.ReplaceAll(key, "\\", "/"))
	k = strings.TrimPrefix(k, "/")
	if k == "" || k == "." {
		return "", errors.New("empty storage key")
	}
	return k, nil
}

// LocalStorage writes files below a directory served at PublicPath
type LocalStorage struct {
	root       string
	publicPath string
}

// NewLocalStorage creates a disk-backed provider
func NewLocalStorage(root, publicPath string) *LocalStorage {
	return &LocalStorage{
		root:       root,
		publicPath: "/" + strings.Trim(publicPath, "/"),
	}
}

// Root is the directory files are written to
func (l *LocalStorage) Root() string { return l.root }

func (l *LocalStorage) Put(ctx context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	full := filepath.Join(l.root, filepath.FromSlash(k))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	dst, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(dst, body); err != nil {
		dst.Close()
		os.Remove(full)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		os.Remove(full)
		return "", err
	}
	return l.publicPath + "/" + k, nil
}

func (l *LocalStorage) Delete(_ context.Context, key string) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(l.root, filepath.FromSlash(k))); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// S3Storage puts objects in a bucket, optionally fronted by a CDN
type S3Storage struct {
	client s3iface.S3API
	bucket string
	region string
	cdn    string
}

// NewS3Storage creates an S3 provider from static credentials, or the
// default AWS credential chain when none are configured
func NewS3Storage(cfg config.StorageConfig) (*S3Storage, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		awsCfg.Credentials = credentials.NewStaticCredentials(cfg.S3AccessKey, cfg.S3SecretKey, "")
	}
	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}
	return NewS3StorageWithClient(s3.New(sess), cfg), nil
}

// NewS3StorageWithClient wires a provided client
func NewS3StorageWithClient(client s3iface.S3API, cfg config.StorageConfig) *S3Storage {
	return &S3Storage{
		client: client,
		bucket: cfg.S3Bucket,
		region: cfg.S3Region,
		cdn:    strings.TrimRight(cfg.CDNBaseURL, "/"),
	}
}

func (s *S3Storage) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	k, err := cleanKey(key)
	if err != nil {
		return "", err
	}

	rs, ok := body.(io.ReadSeeker)
	if !ok {
		buf, err := io.ReadAll(body)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		rs = bytes.NewReader(buf)
		size = int64(len(buf))
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(k),
		Body:        rs,
		ContentType: aws.String(contentType),
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := s.client.PutObjectWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return s.url(k), nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	k, err := cleanKey(key)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(k),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

func (s *S3Storage) url(key string) string {
	if s.cdn != "" {
		return s.cdn + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
