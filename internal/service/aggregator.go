package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/evergrove/storefront/internal/domain"
	"github.com/evergrove/storefront/internal/repository"
)

// RatingAggregator recomputes a product's denormalized rating fields from the
// full set of stored reviews. Recomputation is serialized per product: the
// snapshot read and the aggregate write happen under a product-scoped lock,
// so two concurrent submissions for the same product cannot interleave their
// read and write phases and publish a stale average.
//
// Aggregates are always derived from a complete snapshot rather than adjusted
// incrementally. Incremental updates drift when a write is retried or lost;
// a recompute is self-correcting.
type RatingAggregator struct {
	products repository.ProductRepository
	reviews  repository.ReviewRepository
	logger   *slog.Logger

	locks sync.Map // product ID -> *sync.Mutex
}

// NewRatingAggregator creates a rating aggregator.
func NewRatingAggregator(products repository.ProductRepository, reviews repository.ReviewRepository, logger *slog.Logger) *RatingAggregator {
	return &RatingAggregator{
		products: products,
		reviews:  reviews,
		logger:   logger,
	}
}

// Recompute reads the review summary for the product and persists it onto the
// product record. It returns the summary it applied. The stored average is
// the exact arithmetic mean; rounding is a presentation concern.
func (a *RatingAggregator) Recompute(ctx context.Context, productID string) (*domain.ReviewSummary, error) {
	mu := a.lockFor(productID)
	mu.Lock()
	defer mu.Unlock()

	summary, err := a.reviews.GetSummary(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("get review summary: %w", err)
	}

	if err := a.products.UpdateAggregates(ctx, productID, summary.TotalCount, summary.AverageRating); err != nil {
		return nil, fmt.Errorf("update product aggregates: %w", err)
	}

	a.logger.DebugContext(ctx, "product rating recomputed",
		slog.String("product_id", productID),
		slog.Int("num_reviews", summary.TotalCount),
		slog.Float64("rating", summary.AverageRating),
	)

	return summary, nil
}

func (a *RatingAggregator) lockFor(productID string) *sync.Mutex {
	mu, _ := a.locks.LoadOrStore(productID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
