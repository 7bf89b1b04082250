package storage

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Raymond9734/storefront-backend/internal/models"
)

var (
	pngHeader  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	jpegHeader = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00")
	webpHeader = []byte("RIFF\x24\x00\x00\x00WEBPVP8 ")
)

func TestDetectImageType(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		declared string
		wantExt  string
		wantErr  bool
	}{
		{"png", pngHeader, "", ".png", false},
		{"jpeg", jpegHeader, "image/jpeg", ".jpg", false},
		{"webp", webpHeader, "", ".webp", false},
		{"gif rejected", []byte("GIF89a......"), "image/gif", "", true},
		{"text rejected even if declared png", []byte("hello world"), "image/png", "", true},
		{"unknown bytes trust declared", []byte{0x00, 0x01, 0x02, 0x03}, "image/jpg", ".jpg", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ext, err := DetectImageType(tt.data, tt.declared)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, models.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExt, ext)
		})
	}
}

func TestLocalImageStore_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalImageStore(filepath.Join(dir, "images"), 1024, zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Save(ctx, pngHeader, "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, PublicPrefix))
	assert.True(t, strings.HasSuffix(url, ".png"))

	stored := filepath.Join(dir, "images", strings.TrimPrefix(url, PublicPrefix))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	require.NoError(t, store.Delete(ctx, url))
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))

	// deleting again or deleting foreign URLs is a no-op
	require.NoError(t, store.Delete(ctx, url))
	require.NoError(t, store.Delete(ctx, "https://cdn.example.com/a.png"))
}

func TestLocalImageStore_RejectsOversizedAndEmpty(t *testing.T) {
	store, err := NewLocalImageStore(t.TempDir(), 8, zap.NewNop())
	require.NoError(t, err)

	_, err = store.Save(context.Background(), pngHeader, "image/png")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = store.Save(context.Background(), nil, "image/png")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}

func multipartHeader(t *testing.T, field string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, "photo.png")
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File[field][0]
}

func TestReadUpload(t *testing.T) {
	fh := multipartHeader(t, "image", pngHeader)

	data, err := ReadUpload(fh, 1024)
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	_, err = ReadUpload(fh, 4)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
