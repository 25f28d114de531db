package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/evergrove/storefront/internal/auth"
	"github.com/evergrove/storefront/internal/domain"
	"github.com/evergrove/storefront/internal/event"
	"github.com/evergrove/storefront/internal/repository"
	"github.com/evergrove/storefront/pkg/slug"
)

const (
	// DefaultPageSize is the catalog listing page size.
	DefaultPageSize = 4
	// MaxPageSize caps the per-page count a caller may request.
	MaxPageSize = 100
	// TopProductsLimit is the number of products returned by TopProducts.
	TopProductsLimit = 5
)

// ProductService implements the business logic for catalog operations.
// Mutations require an admin identity; reads are public.
type ProductService struct {
	repo       repository.ProductRepository
	producer   *event.Producer
	authorizer auth.Authorizer
	logger     *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(repo repository.ProductRepository, producer *event.Producer, authorizer auth.Authorizer, logger *slog.Logger) *ProductService {
	return &ProductService{
		repo:       repo,
		producer:   producer,
		authorizer: authorizer,
		logger:     logger,
	}
}

// CreateProduct creates a placeholder product owned by the admin workflow:
// the record is created first and then filled in through partial updates.
func (s *ProductService) CreateProduct(ctx context.Context, req *auth.Requester) (*domain.Product, error) {
	identity, err := s.authorizer.RequireAdmin(ctx, req)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	product := &domain.Product{
		ID:          uuid.New().String(),
		Name:        "Sample Name",
		Slug:        slug.Generate("Sample Name"),
		Description: "Sample description",
		Category:    "Sample Category",
		Brand:       "Sample Brand",
		Price:       0,
		Stock:       0,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	if err := s.producer.PublishProductCreated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.created event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", product.ID),
		slog.String("admin_id", identity.UserID),
	)

	return product, nil
}

// GetProduct retrieves a product by its ID.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return product, nil
}

// ProductPage is one page of catalog results together with the page that was
// actually served, which may differ from the requested page when the request
// pointed past the end of the catalog.
type ProductPage struct {
	Products   []domain.Product
	TotalCount int
	Page       int
	PerPage    int
}

// ListProducts returns a filtered, paginated slice of the catalog along with
// the total number of matches. Page numbers below one collapse to the first
// page; pages past the end of the result set collapse to the last page.
func (s *ProductService) ListProducts(ctx context.Context, filter repository.ProductFilter) (*ProductPage, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = DefaultPageSize
	}
	if filter.PerPage > MaxPageSize {
		filter.PerPage = MaxPageSize
	}

	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	if len(products) == 0 && total > 0 && filter.Page > 1 {
		lastPage := (total + filter.PerPage - 1) / filter.PerPage
		if filter.Page > lastPage {
			filter.Page = lastPage
			products, total, err = s.repo.List(ctx, filter)
			if err != nil {
				return nil, fmt.Errorf("list products: %w", err)
			}
		}
	}

	return &ProductPage{
		Products:   products,
		TotalCount: total,
		Page:       filter.Page,
		PerPage:    filter.PerPage,
	}, nil
}

// TopProducts returns the highest-rated products, best first. Only products
// whose average rating meets the storefront threshold qualify.
func (s *ProductService) TopProducts(ctx context.Context) ([]domain.Product, error) {
	products, err := s.repo.TopRated(ctx, domain.TopRatedMinimum, TopProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("list top rated products: %w", err)
	}
	return products, nil
}

// UpdateProduct applies a partial update to an existing product. The whole
// patch is validated before any field is applied: an invalid value anywhere
// in the patch leaves the stored record untouched, including fields that
// would have validated on their own.
func (s *ProductService) UpdateProduct(ctx context.Context, id string, patch ProductPatch, req *auth.Requester) (*domain.Product, error) {
	identity, err := s.authorizer.RequireAdmin(ctx, req)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product for update: %w", err)
	}

	normalized, err := ValidatePatch(patch)
	if err != nil {
		return nil, err
	}

	applyPatch(product, normalized)

	if err := s.repo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	if err := s.producer.PublishProductUpdated(ctx, product); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product updated",
		slog.String("product_id", product.ID),
		slog.String("slug", product.Slug),
		slog.String("admin_id", identity.UserID),
	)

	return product, nil
}

// DeleteProduct removes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string, req *auth.Requester) error {
	identity, err := s.authorizer.RequireAdmin(ctx, req)
	if err != nil {
		return err
	}

	// Verify the product exists before deleting.
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("get product for delete: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	if err := s.producer.PublishProductDeleted(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.deleted event",
			slog.String("product_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product deleted",
		slog.String("product_id", id),
		slog.String("admin_id", identity.UserID),
	)

	return nil
}
