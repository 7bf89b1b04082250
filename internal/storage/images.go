// Package storage persists uploaded product images.
package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Raymond9734/storefront-backend/internal/models"
)

// PublicPrefix is the URL path images are served under
const PublicPrefix = "/uploads/images/"

// extensions maps accepted content types to stored file extensions
var extensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ImageStore saves validated images and returns their public URL
type ImageStore interface {
	Save(ctx context.Context, data []byte, declaredType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// localImageStore writes images to a directory on disk
type localImageStore struct {
	dir      string
	maxBytes int64
	logger   *zap.Logger
}

// NewLocalImageStore creates the upload directory if needed
func NewLocalImageStore(dir string, maxBytes int64, logger *zap.Logger) (ImageStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &localImageStore{dir: dir, maxBytes: maxBytes, logger: logger}, nil
}

// DetectImageType sniffs data and falls back to the declared type. It
// returns the stored extension, or a validation error for other types.
func DetectImageType(data []byte, declaredType string) (string, error) {
	sniffed := http.DetectContentType(data)
	if ext, ok := extensions[sniffed]; ok {
		return ext, nil
	}

	declared := strings.ToLower(strings.TrimSpace(strings.Split(declaredType, ";")[0]))
	if sniffed == "application/octet-stream" {
		if ext, ok := extensions[declared]; ok {
			return ext, nil
		}
	}
	return "", models.NewValidationError("image", "only jpeg, png and webp images are allowed")
}

func (s *localImageStore) Save(ctx context.Context, data []byte, declaredType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", models.NewValidationError("image", "file is empty")
	}
	if int64(len(data)) > s.maxBytes {
		return "", models.NewValidationError("image", fmt.Sprintf("file exceeds %d bytes", s.maxBytes))
	}

	ext, err := DetectImageType(data, declaredType)
	if err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write image: %w", err)
	}

	s.logger.Debug("image stored", zap.String("file", name), zap.Int("bytes", len(data)))
	return PublicPrefix + name, nil
}

// Delete removes a stored image by its public URL. Unknown files are ignored.
func (s *localImageStore) Delete(_ context.Context, url string) error {
	if !strings.HasPrefix(url, PublicPrefix) {
		return nil
	}
	name := path.Base(url)
	if name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

// ReadUpload reads a multipart file, failing when it exceeds maxBytes
func ReadUpload(fh *multipart.FileHeader, maxBytes int64) ([]byte, error) {
	if fh.Size > maxBytes {
		return nil, models.NewValidationError("image", fmt.Sprintf("file exceeds %d bytes", maxBytes))
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(raw)) > maxBytes {
		return nil, models.NewValidationError("image", fmt.Sprintf("file exceeds %d bytes", maxBytes))
	}
	return raw, nil
}
