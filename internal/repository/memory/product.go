package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/evergrove/storefront/internal/domain"
	"github.com/evergrove/storefront/internal/repository"
	apperrors "github.com/evergrove/storefront/pkg/errors"
)

// ProductRepository implements repository.ProductRepository using an
// in-memory map guarded by a RWMutex. It backs local development and tests.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]domain.Product
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository creates an empty in-memory product repository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		products: make(map[string]domain.Product),
	}
}

// Create inserts a new product.
func (r *ProductRepository) Create(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.products[p.ID]; exists {
		return apperrors.AlreadyExists("product", "id", p.ID)
	}

	r.products[p.ID] = *p
	return nil
}

// GetByID retrieves a product snapshot by its ID.
func (r *ProductRepository) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}

	return &p, nil
}

// List returns products matching the filter, newest first, with the total count.
func (r *ProductRepository) List(_ context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	r.mu.RLock()
	matched := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if filter.Keyword != nil && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(*filter.Keyword)) {
			continue
		}
		if filter.Category != nil && p.Category != *filter.Category {
			continue
		}
		matched = append(matched, p)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)

	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * perPage
	}

	if offset >= total {
		return []domain.Product{}, total, nil
	}
	end := offset + perPage
	if end > total {
		end = total
	}

	return matched[offset:end], total, nil
}

// TopRated returns up to limit products with rating >= minRating, best first.
func (r *ProductRepository) TopRated(_ context.Context, minRating float64, limit int) ([]domain.Product, error) {
	r.mu.RLock()
	matched := make([]domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if p.Rating >= minRating {
			matched = append(matched, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].Rating > matched[j].Rating
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

// Update persists all mutable fields of an existing product. Derived rating
// fields are preserved from the stored record.
func (r *ProductRepository) Update(_ context.Context, p *domain.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[p.ID]
	if !ok {
		return apperrors.NotFound("product", p.ID)
	}

	p.UpdatedAt = time.Now().UTC()

	updated := *p
	updated.Rating = stored.Rating
	updated.NumReviews = stored.NumReviews
	updated.Image = stored.Image
	r.products[p.ID] = updated

	return nil
}

// UpdateAggregates writes the derived review count and average rating.
func (r *ProductRepository) UpdateAggregates(_ context.Context, productID string, count int, avg float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return apperrors.NotFound("product", productID)
	}

	p.NumReviews = count
	p.Rating = avg
	p.UpdatedAt = time.Now().UTC()
	r.products[productID] = p

	return nil
}

// SetImage updates the product's image URL.
func (r *ProductRepository) SetImage(_ context.Context, productID, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return apperrors.NotFound("product", productID)
	}

	p.Image = url
	p.UpdatedAt = time.Now().UTC()
	r.products[productID] = p

	return nil
}

// Delete removes a product by its ID.
func (r *ProductRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return apperrors.NotFound("product", id)
	}

	delete(r.products, id)
	return nil
}
