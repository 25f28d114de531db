package memory

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/evergrove/storefront/internal/storage"
)

// assetEntry holds an uploaded asset in memory.
type assetEntry struct {
	ContentType string
	Data        []byte
	URL         string
}

// Storage implements storage.Storage with an in-memory map. It backs local
// development and tests.
type Storage struct {
	mu      sync.RWMutex
	assets  map[string]*assetEntry
	baseURL string
}

var _ storage.Storage = (*Storage)(nil)

// New creates a new in-memory asset storage instance.
func New(baseURL string) *Storage {
	return &Storage{
		assets:  make(map[string]*assetEntry),
		baseURL: baseURL,
	}
}

// Upload stores the asset bytes in memory and returns the generated URL.
func (s *Storage) Upload(_ context.Context, input *storage.UploadInput) (*storage.UploadResult, error) {
	data, err := io.ReadAll(input.Data)
	if err != nil {
		return nil, fmt.Errorf("read asset data: %w", err)
	}

	url := fmt.Sprintf("%s/assets/%s", s.baseURL, input.Key)

	s.mu.Lock()
	s.assets[input.Key] = &assetEntry{
		ContentType: input.ContentType,
		Data:        data,
		URL:         url,
	}
	s.mu.Unlock()

	return &storage.UploadResult{
		Key: input.Key,
		URL: url,
	}, nil
}

// Delete removes an asset from memory.
func (s *Storage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.assets[key]; !exists {
		return fmt.Errorf("asset not found: %s", key)
	}

	delete(s.assets, key)
	return nil
}

// GetURL returns the URL for the given key.
func (s *Storage) GetURL(_ context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, exists := s.assets[key]
	if !exists {
		return "", fmt.Errorf("asset not found: %s", key)
	}

	return entry.URL, nil
}
