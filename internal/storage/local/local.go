package local

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/evergrove/storefront/internal/storage"
)

// Storage implements storage.Storage on the local filesystem. Assets are
// written under a media root directory and served by the HTTP layer from
// the corresponding URL prefix.
type Storage struct {
	root    string
	baseURL string
}

var _ storage.Storage = (*Storage)(nil)

// New creates a filesystem-backed storage rooted at root. The directory is
// created if it does not exist.
func New(root, baseURL string) (*Storage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &Storage{root: root, baseURL: baseURL}, nil
}

// resolve maps a key to a path under the media root, rejecting traversal.
func (s *Storage) resolve(key string) (string, error) {
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid asset key: %q", key)
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

// Upload writes the asset bytes to disk and returns its public URL.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	path, err := s.resolve(input.Key)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create asset dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create asset file: %w", err)
	}

	if _, err := io.Copy(f, input.Data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, fmt.Errorf("write asset file: %w", err)
	}

	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close asset file: %w", err)
	}

	return &storage.UploadResult{
		Key: input.Key,
		URL: s.url(input.Key),
	}, nil
}

// Delete removes the asset file from disk.
func (s *Storage) Delete(_ context.Context, key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("delete asset file: %w", err)
	}

	return nil
}

// GetURL returns the public URL for the given key if the asset exists.
func (s *Storage) GetURL(_ context.Context, key string) (string, error) {
	path, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("stat asset file: %w", err)
	}

	return s.url(key), nil
}

func (s *Storage) url(key string) string {
	return fmt.Sprintf("%s/media/%s", s.baseURL, key)
}
