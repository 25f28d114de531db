package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/evergrove/storefront/internal/auth"
	"github.com/evergrove/storefront/internal/domain"
	"github.com/evergrove/storefront/internal/event"
	"github.com/evergrove/storefront/internal/repository"
	apperrors "github.com/evergrove/storefront/pkg/errors"
)

// ReviewService implements the business logic for product reviews. A user
// may review a given product at most once; every accepted review triggers a
// recompute of the product's denormalized rating fields.
type ReviewService struct {
	products   repository.ProductRepository
	reviews    repository.ReviewRepository
	aggregator *RatingAggregator
	producer   *event.Producer
	authorizer auth.Authorizer
	logger     *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	products repository.ProductRepository,
	reviews repository.ReviewRepository,
	aggregator *RatingAggregator,
	producer *event.Producer,
	authorizer auth.Authorizer,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		products:   products,
		reviews:    reviews,
		aggregator: aggregator,
		producer:   producer,
		authorizer: authorizer,
		logger:     logger,
	}
}

// SubmitReviewInput holds the parameters for submitting a review.
type SubmitReviewInput struct {
	ProductID string
	UserID    string
	Rating    int
	Comment   string
}

// SubmitReview records a review for a product on behalf of the requesting
// user and recomputes the product's aggregate rating. The one-review-per-user
// rule is enforced twice: an advisory pre-check that catches most duplicates
// early, and an atomic uniqueness guarantee at the ledger append that closes
// the race between two concurrent submissions from the same user.
func (s *ReviewService) SubmitReview(ctx context.Context, input *SubmitReviewInput, req *auth.Requester) (*domain.Review, error) {
	identity, err := s.authorizer.RequireSelf(ctx, req, input.UserID)
	if err != nil {
		return nil, err
	}

	if _, err := s.products.GetByID(ctx, input.ProductID); err != nil {
		return nil, fmt.Errorf("get product for review: %w", err)
	}

	exists, err := s.reviews.ExistsByProductAndUser(ctx, input.ProductID, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if exists {
		return nil, apperrors.DuplicateReview()
	}

	if input.Rating == 0 {
		return nil, apperrors.InvalidInput("please select a rating")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.InvalidInput("rating must be between 1 and 5")
	}

	review := &domain.Review{
		ID:         uuid.New().String(),
		ProductID:  input.ProductID,
		UserID:     identity.UserID,
		AuthorName: identity.Name,
		Rating:     input.Rating,
		Comment:    input.Comment,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			// Lost the race against a concurrent submission by the same user.
			return nil, apperrors.DuplicateReview()
		}
		return nil, fmt.Errorf("create review: %w", err)
	}

	summary, err := s.aggregator.Recompute(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("recompute rating for product %s: %w", input.ProductID, err)
	}

	if err := s.producer.PublishReviewCreated(ctx, review, summary); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("product_id", review.ProductID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.String("user_id", review.UserID),
		slog.Int("rating", review.Rating),
	)

	return review, nil
}

// ListReviews returns a page of reviews for a product, newest first, along
// with the total review count.
func (s *ReviewService) ListReviews(ctx context.Context, productID string, page, perPage int) ([]domain.Review, int, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, 0, fmt.Errorf("get product for reviews: %w", err)
	}

	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 20
	}

	reviews, total, err := s.reviews.ListByProductID(ctx, productID, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, total, nil
}
