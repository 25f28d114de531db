package repository

import (
	"context"

	"github.com/evergrove/storefront/internal/domain"
)

// ProductFilter defines filter criteria for listing products.
type ProductFilter struct {
	Keyword  *string
	Category *string
	Page     int
	PerPage  int
}

// ProductRepository defines the interface for product persistence operations.
type ProductRepository interface {
	// Create inserts a new product into the store.
	Create(ctx context.Context, product *domain.Product) error

	// GetByID retrieves a product by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Product, error)

	// List returns products matching the given filter along with the total count.
	List(ctx context.Context, filter ProductFilter) ([]domain.Product, int, error)

	// TopRated returns up to limit products with an average rating of at
	// least minRating, ordered by rating descending.
	TopRated(ctx context.Context, minRating float64, limit int) ([]domain.Product, error)

	// Update persists all mutable fields of an existing product in a single write.
	Update(ctx context.Context, product *domain.Product) error

	// UpdateAggregates writes the derived review count and average rating
	// for a product without touching any other field.
	UpdateAggregates(ctx context.Context, productID string, count int, avg float64) error

	// SetImage updates the product's image URL without touching any other field.
	SetImage(ctx context.Context, productID, url string) error

	// Delete removes a product from the store by its identifier.
	Delete(ctx context.Context, id string) error
}

// ReviewRepository is the append-only review ledger. Reviews are never
// edited or removed once appended.
type ReviewRepository interface {
	// Create appends a new review. The append atomically enforces the
	// (product_id, user_id) uniqueness invariant: if a review for the same
	// pair already committed, Create fails with errors.ErrAlreadyExists
	// even when the caller's prior existence check passed.
	Create(ctx context.Context, review *domain.Review) error

	// ExistsByProductAndUser reports whether the given user has already
	// reviewed the given product.
	ExistsByProductAndUser(ctx context.Context, productID, userID string) (bool, error)

	// ListByProductID returns paginated reviews for a product along with
	// the total count.
	ListByProductID(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, error)

	// GetSummary computes the review count and mean rating from the full
	// current ledger snapshot for the product.
	GetSummary(ctx context.Context, productID string) (*domain.ReviewSummary, error)
}
