package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evergrove/storefront/internal/storage"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(t.TempDir(), "http://localhost:8001")
	require.NoError(t, err)
	return s
}

func TestNew_CreatesMediaRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "media", "nested")

	_, err := New(root, "http://localhost:8001")
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestUpload_WritesFileAndReturnsURL(t *testing.T) {
	s := newTestStorage(t)

	result, err := s.Upload(context.Background(), &storage.UploadInput{
		Key:         "products/p1/img.png",
		ContentType: "image/png",
		Size:        9,
		Data:        strings.NewReader("png-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "products/p1/img.png", result.Key)
	assert.Equal(t, "http://localhost:8001/media/products/p1/img.png", result.URL)

	data, err := os.ReadFile(filepath.Join(s.root, "products", "p1", "img.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
}

func TestUpload_RejectsTraversalKey(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.Upload(context.Background(), &storage.UploadInput{
		Key:  "../outside.png",
		Data: strings.NewReader("x"),
	})
	assert.Error(t, err)
}

func TestDelete_RemovesFile(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.Upload(ctx, &storage.UploadInput{Key: "products/p1/a.jpg", Data: strings.NewReader("x")})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, "products/p1/a.jpg"))

	_, statErr := os.Stat(filepath.Join(s.root, "products", "p1", "a.jpg"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestDelete_MissingFile(t *testing.T) {
	s := newTestStorage(t)

	err := s.Delete(context.Background(), "products/p1/missing.jpg")
	assert.Error(t, err)
}

func TestGetURL(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.Upload(ctx, &storage.UploadInput{Key: "products/p1/a.jpg", Data: strings.NewReader("x")})
	require.NoError(t, err)

	url, err := s.GetURL(ctx, "products/p1/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8001/media/products/p1/a.jpg", url)

	_, err = s.GetURL(ctx, "products/p1/missing.jpg")
	assert.Error(t, err)
}
