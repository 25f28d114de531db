package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/evergrove/storefront/internal/domain"
	"github.com/evergrove/storefront/internal/repository"
	apperrors "github.com/evergrove/storefront/pkg/errors"
)

// reviewKey identifies a ledger entry by its (product, user) pair.
type reviewKey struct {
	productID string
	userID    string
}

// ReviewRepository implements the append-only review ledger in memory.
// The check-and-insert in Create runs under the write lock, so the
// (product, user) uniqueness invariant holds even when two submissions
// for the same pair race.
type ReviewRepository struct {
	mu      sync.RWMutex
	reviews map[reviewKey]domain.Review
}

var _ repository.ReviewRepository = (*ReviewRepository)(nil)

// NewReviewRepository creates an empty in-memory review repository.
func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{
		reviews: make(map[reviewKey]domain.Review),
	}
}

// Create appends a new review, failing with ErrAlreadyExists if the pair
// has already been written.
func (r *ReviewRepository) Create(_ context.Context, review *domain.Review) error {
	key := reviewKey{productID: review.ProductID, userID: review.UserID}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reviews[key]; exists {
		return apperrors.AlreadyExists("review", "product_id/user_id", review.ProductID+"/"+review.UserID)
	}

	r.reviews[key] = *review
	return nil
}

// ExistsByProductAndUser reports whether the user has already reviewed the product.
func (r *ReviewRepository) ExistsByProductAndUser(_ context.Context, productID, userID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.reviews[reviewKey{productID: productID, userID: userID}]
	return exists, nil
}

// ListByProductID returns paginated reviews for a product, newest first.
func (r *ReviewRepository) ListByProductID(_ context.Context, productID string, page, perPage int) ([]domain.Review, int, error) {
	r.mu.RLock()
	matched := make([]domain.Review, 0)
	for key, rv := range r.reviews {
		if key.productID == productID {
			matched = append(matched, rv)
		}
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)

	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	if offset >= total {
		return []domain.Review{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}

	return matched[offset:end], total, nil
}

// GetSummary computes the count and mean rating from the full current
// ledger snapshot for the product.
func (r *ReviewRepository) GetSummary(_ context.Context, productID string) (*domain.ReviewSummary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		count int
		sum   int
	)
	for key, rv := range r.reviews {
		if key.productID == productID {
			count++
			sum += rv.Rating
		}
	}

	summary := &domain.ReviewSummary{TotalCount: count}
	if count > 0 {
		summary.AverageRating = float64(sum) / float64(count)
	}

	return summary, nil
}
