package postgres

import (
	"context"
	"fmt"

	"github.com/evergrove/storefront/internal/domain"
	"github.com/evergrove/storefront/pkg/database"
	apperrors "github.com/evergrove/storefront/pkg/errors"
)

// ReviewRepository implements the append-only review ledger using PostgreSQL.
// The product_reviews table carries a unique index on (product_id, user_id),
// so Create enforces the one-review-per-user invariant atomically even when
// two submissions for the same pair race.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// Create appends a new review. A concurrent append for the same
// (product_id, user_id) pair loses the race with ErrAlreadyExists.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO product_reviews (id, product_id, user_id, author_name, rating, comment, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		review.ID,
		review.ProductID,
		review.UserID,
		review.AuthorName,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("review", "product_id/user_id", review.ProductID+"/"+review.UserID)
		}
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// ExistsByProductAndUser reports whether the user has already reviewed the product.
func (r *ReviewRepository) ExistsByProductAndUser(ctx context.Context, productID, userID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM product_reviews
			WHERE product_id = $1 AND user_id = $2
		)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, productID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check review existence: %w", err)
	}

	return exists, nil
}

// ListByProductID returns paginated reviews for a given product along with the total count.
func (r *ReviewRepository) ListByProductID(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, error) {
	limit := perPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	query := `
		SELECT id, product_id, user_id, author_name, rating, comment, created_at,
		       count(*) OVER() AS total_count
		FROM product_reviews
		WHERE product_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, productID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var rv domain.Review

		if err := rows.Scan(
			&rv.ID,
			&rv.ProductID,
			&rv.UserID,
			&rv.AuthorName,
			&rv.Rating,
			&rv.Comment,
			&rv.CreatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}

		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

// GetSummary computes the review count and mean rating from the full current
// ledger snapshot for the product. The mean is plain floating-point division,
// never rounded here; presentation rounding is the client's concern.
func (r *ReviewRepository) GetSummary(ctx context.Context, productID string) (*domain.ReviewSummary, error) {
	query := `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM product_reviews
		WHERE product_id = $1`

	var summary domain.ReviewSummary

	err := r.pool.QueryRow(ctx, query, productID).Scan(
		&summary.AverageRating,
		&summary.TotalCount,
	)
	if err != nil {
		return nil, fmt.Errorf("get review summary: %w", err)
	}

	return &summary, nil
}
