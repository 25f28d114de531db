package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/evergrove/storefront/internal/domain"
	"github.com/evergrove/storefront/internal/repository"
)

// DefaultTTL is how long a cached product record stays valid.
const DefaultTTL = 5 * time.Minute

// ProductRepository decorates another ProductRepository with a read-through
// Redis cache on GetByID. Every write path invalidates the cached record so
// derived rating fields never go stale. Cache failures degrade to the
// underlying repository; they are logged, never surfaced.
type ProductRepository struct {
	inner  repository.ProductRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ repository.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository wraps inner with a Redis cache.
func NewProductRepository(inner repository.ProductRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *ProductRepository {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ProductRepository{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(id string) string {
	return "product:" + id
}

// Create inserts a new product through the underlying repository.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	return r.inner.Create(ctx, p)
}

// GetByID serves from cache when possible, falling back to the underlying
// repository and populating the cache on a miss.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	data, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	if err == nil {
		var p domain.Product
		if err := json.Unmarshal(data, &p); err == nil {
			return &p, nil
		}
		// Corrupt entry: drop it and fall through to the source of truth.
		r.invalidate(ctx, id)
	} else if !errors.Is(err, redis.Nil) {
		r.logger.WarnContext(ctx, "product cache read failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	p, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := r.client.Set(ctx, cacheKey(id), data, r.ttl).Err(); err != nil {
			r.logger.WarnContext(ctx, "product cache write failed",
				slog.String("product_id", id),
				slog.String("error", err.Error()),
			)
		}
	}

	return p, nil
}

// List is served by the underlying repository; listings are not cached.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.Product, int, error) {
	return r.inner.List(ctx, filter)
}

// TopRated is served by the underlying repository.
func (r *ProductRepository) TopRated(ctx context.Context, minRating float64, limit int) ([]domain.Product, error) {
	return r.inner.TopRated(ctx, minRating, limit)
}

// Update writes through and invalidates the cached record.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) error {
	if err := r.inner.Update(ctx, p); err != nil {
		return err
	}
	r.invalidate(ctx, p.ID)
	return nil
}

// UpdateAggregates writes through and invalidates the cached record.
func (r *ProductRepository) UpdateAggregates(ctx context.Context, productID string, count int, avg float64) error {
	if err := r.inner.UpdateAggregates(ctx, productID, count, avg); err != nil {
		return err
	}
	r.invalidate(ctx, productID)
	return nil
}

// SetImage writes through and invalidates the cached record.
func (r *ProductRepository) SetImage(ctx context.Context, productID, url string) error {
	if err := r.inner.SetImage(ctx, productID, url); err != nil {
		return err
	}
	r.invalidate(ctx, productID)
	return nil
}

// Delete removes the product and its cached record.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	if err := r.inner.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *ProductRepository) invalidate(ctx context.Context, id string) {
	if err := r.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		r.logger.WarnContext(ctx, "product cache invalidation failed",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}
}
