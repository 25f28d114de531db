package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evergrove/storefront/internal/domain"
	apperrors "github.com/evergrove/storefront/pkg/errors"
)

func newReview(productID, userID string, rating int, createdAt time.Time) *domain.Review {
	return &domain.Review{
		ID:         productID + "-" + userID,
		ProductID:  productID,
		UserID:     userID,
		AuthorName: "Author " + userID,
		Rating:     rating,
		CreatedAt:  createdAt,
	}
}

func TestReviewRepository_CreateAndExists(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newReview("p1", "u1", 5, time.Now().UTC())))

	exists, err := repo.ExistsByProductAndUser(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByProductAndUser(ctx, "p1", "u2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestReviewRepository_Create_SamePairRejected(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newReview("p1", "u1", 5, time.Now().UTC())))

	err := repo.Create(ctx, newReview("p1", "u1", 2, time.Now().UTC()))
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	// Same user on a different product is fine.
	assert.NoError(t, repo.Create(ctx, newReview("p2", "u1", 3, time.Now().UTC())))
}

func TestReviewRepository_Create_ConcurrentSamePair(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Create(ctx, newReview("p1", "u1", 4, time.Now().UTC())); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded, "exactly one concurrent append for the same pair may win")
}

func TestReviewRepository_ListByProductID_NewestFirst(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		rv := newReview("p1", fmt.Sprintf("u%d", i), 4, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, repo.Create(ctx, rv))
	}
	require.NoError(t, repo.Create(ctx, newReview("p2", "u0", 5, base)))

	reviews, total, err := repo.ListByProductID(ctx, "p1", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, reviews, 3)
	assert.Equal(t, "u4", reviews[0].UserID)
	assert.Equal(t, "u2", reviews[2].UserID)

	rest, total, err := repo.ListByProductID(ctx, "p1", 2, 3)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, rest, 2)
	assert.Equal(t, "u0", rest[1].UserID)
}

func TestReviewRepository_GetSummary_ExactMean(t *testing.T) {
	repo := NewReviewRepository()
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.Create(ctx, newReview("p1", "u1", 4, now)))
	require.NoError(t, repo.Create(ctx, newReview("p1", "u2", 2, now)))
	require.NoError(t, repo.Create(ctx, newReview("p1", "u3", 5, now)))

	summary, err := repo.GetSummary(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalCount)
	assert.InDelta(t, 11.0/3.0, summary.AverageRating, 1e-12)
}

func TestReviewRepository_GetSummary_NoReviews(t *testing.T) {
	repo := NewReviewRepository()

	summary, err := repo.GetSummary(context.Background(), "p-none")
	require.NoError(t, err)
	assert.Zero(t, summary.TotalCount)
	assert.Zero(t, summary.AverageRating)
}
