package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/evergrove/storefront/internal/domain"
	pkgkafka "github.com/evergrove/storefront/pkg/kafka"
)

// Kafka topic constants for catalog domain events.
const (
	TopicProductCreated      = "storefront.product.created"
	TopicProductUpdated      = "storefront.product.updated"
	TopicProductDeleted      = "storefront.product.deleted"
	TopicProductImageUpdated = "storefront.product.image_updated"
	TopicReviewCreated       = "storefront.review.created"
)

// Aggregate type constants.
const (
	AggregateTypeProduct = "product"
	AggregateTypeReview  = "review"
)

// Source identifier for events originating from this service.
const SourceStorefront = "storefront"

// ProductData is the payload for product lifecycle events.
type ProductData struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Slug        string  `json:"slug"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// ProductDeletedData is the payload for a product.deleted event.
type ProductDeletedData struct {
	ID string `json:"id"`
}

// ProductImageUpdatedData is the payload for a product.image_updated event.
type ProductImageUpdatedData struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ReviewCreatedData is the payload for a review.created event. It carries
// the recomputed aggregates so consumers never have to re-derive them.
type ReviewCreatedData struct {
	ReviewID      string  `json:"review_id"`
	ProductID     string  `json:"product_id"`
	UserID        string  `json:"user_id"`
	Rating        int     `json:"rating"`
	NumReviews    int     `json:"num_reviews"`
	AverageRating float64 `json:"average_rating"`
}

// Producer publishes catalog domain events to Kafka.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer for the storefront service.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

func productData(p *domain.Product) ProductData {
	return ProductData{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Category:    p.Category,
		Brand:       p.Brand,
		Price:       p.Price,
		Stock:       p.Stock,
	}
}

// PublishProductCreated publishes a product.created event.
func (p *Producer) PublishProductCreated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductCreated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductUpdated publishes a product.updated event.
func (p *Producer) PublishProductUpdated(ctx context.Context, product *domain.Product) error {
	return p.publish(ctx, TopicProductUpdated, product.ID, AggregateTypeProduct, productData(product))
}

// PublishProductDeleted publishes a product.deleted event.
func (p *Producer) PublishProductDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, TopicProductDeleted, id, AggregateTypeProduct, ProductDeletedData{ID: id})
}

// PublishProductImageUpdated publishes a product.image_updated event.
func (p *Producer) PublishProductImageUpdated(ctx context.Context, id, url string) error {
	return p.publish(ctx, TopicProductImageUpdated, id, AggregateTypeProduct, ProductImageUpdatedData{ID: id, URL: url})
}

// PublishReviewCreated publishes a review.created event carrying the
// recomputed product aggregates.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review, summary *domain.ReviewSummary) error {
	data := ReviewCreatedData{
		ReviewID:      review.ID,
		ProductID:     review.ProductID,
		UserID:        review.UserID,
		Rating:        review.Rating,
		NumReviews:    summary.TotalCount,
		AverageRating: summary.AverageRating,
	}
	return p.publish(ctx, TopicReviewCreated, review.ProductID, AggregateTypeReview, data)
}

func (p *Producer) publish(ctx context.Context, topic, aggregateID, aggregateType string, data any) error {
	event, err := pkgkafka.NewEvent(topic, aggregateID, aggregateType, SourceStorefront, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("topic", topic),
		slog.String("aggregate_id", aggregateID),
	)

	return nil
}
