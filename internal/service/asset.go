package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/evergrove/storefront/internal/auth"
	"github.com/evergrove/storefront/internal/domain"
	"github.com/evergrove/storefront/internal/event"
	"github.com/evergrove/storefront/internal/repository"
	"github.com/evergrove/storefront/internal/storage"
	apperrors "github.com/evergrove/storefront/pkg/errors"
)

// MaxImageSize is the largest accepted image upload, in bytes.
const MaxImageSize = 5 * 1024 * 1024

// allowedImageTypes holds the accepted image content types. The browser MIME
// type "image/jpg" is nonstandard but common enough to accept alongside the
// proper "image/jpeg".
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
}

// AssetService manages product image assets. At most one image is attached to
// a product at a time; attaching a new one removes the previous asset.
type AssetService struct {
	products   repository.ProductRepository
	store      storage.Storage
	producer   *event.Producer
	authorizer auth.Authorizer
	logger     *slog.Logger
}

// NewAssetService creates a new asset service.
func NewAssetService(products repository.ProductRepository, store storage.Storage, producer *event.Producer, authorizer auth.Authorizer, logger *slog.Logger) *AssetService {
	return &AssetService{
		products:   products,
		store:      store,
		producer:   producer,
		authorizer: authorizer,
		logger:     logger,
	}
}

// AttachImageInput holds the parameters for attaching a product image.
type AttachImageInput struct {
	ProductID   string
	ContentType string
	Size        int64
	Data        io.Reader
}

// AttachImage validates the uploaded file, stores it, removes the product's
// previous image asset if one exists, and records the new image URL on the
// product. Validation happens before any byte is written to storage.
func (s *AssetService) AttachImage(ctx context.Context, input *AttachImageInput, req *auth.Requester) (*domain.Product, error) {
	identity, err := s.authorizer.RequireAdmin(ctx, req)
	if err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, input.ProductID)
	if err != nil {
		return nil, fmt.Errorf("get product for image: %w", err)
	}

	ext, ok := allowedImageTypes[input.ContentType]
	if !ok {
		return nil, apperrors.InvalidInput("unsupported image type: only JPEG and PNG are allowed")
	}
	if input.Size > MaxImageSize {
		return nil, apperrors.InvalidInput("image exceeds the maximum size of 5MB")
	}

	key := fmt.Sprintf("products/%s/%s%s", product.ID, uuid.New().String(), ext)
	result, err := s.store.Upload(ctx, &storage.UploadInput{
		Key:         key,
		ContentType: input.ContentType,
		Size:        input.Size,
		Data:        input.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	// The old asset is removed only after the new one is safely stored, so a
	// failed upload never leaves the product without an image.
	if oldKey := assetKey(product.Image); oldKey != "" {
		if err := s.store.Delete(ctx, oldKey); err != nil {
			s.logger.WarnContext(ctx, "failed to delete previous image asset",
				slog.String("product_id", product.ID),
				slog.String("key", oldKey),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.products.SetImage(ctx, product.ID, result.URL); err != nil {
		return nil, fmt.Errorf("set product image: %w", err)
	}
	product.Image = result.URL

	if err := s.producer.PublishProductImageUpdated(ctx, product.ID, result.URL); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish product.image_updated event",
			slog.String("product_id", product.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product image attached",
		slog.String("product_id", product.ID),
		slog.String("key", result.Key),
		slog.String("admin_id", identity.UserID),
	)

	return product, nil
}

// assetKey extracts the storage key from a previously stored image URL.
// Asset URLs embed the key after a "/media/" or "/assets/" path segment.
func assetKey(imageURL string) string {
	for _, marker := range []string{"/media/", "/assets/"} {
		if _, after, found := strings.Cut(imageURL, marker); found {
			return path.Clean(after)
		}
	}
	return ""
}
