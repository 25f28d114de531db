package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/evergrove/storefront/internal/domain"
	pkgkafka "github.com/evergrove/storefront/pkg/kafka"
)

// AggregateRecomputer re-derives a product's stored rating fields from its
// full review ledger. Implemented by service.RatingAggregator.
type AggregateRecomputer interface {
	Recompute(ctx context.Context, productID string) (*domain.ReviewSummary, error)
}

// DeadLetterPublisher routes undecodable messages to the dead letter queue.
type DeadLetterPublisher interface {
	Publish(ctx context.Context, originalMsg kafka.Message, lastErr error, consumerGroup string) error
}

// ConsumerGroup is the consumer group ID shared by all storefront replicas,
// so each review event is reconciled by exactly one instance.
const ConsumerGroup = "storefront"

// Consumer reconciles product rating aggregates from review.created events.
// The submitting instance recomputes synchronously; this path repairs drift
// when that write was lost (crash between ledger append and product update)
// and covers reviews ingested by out-of-band producers such as imports.
type Consumer struct {
	aggregator AggregateRecomputer
	dlq        DeadLetterPublisher
	logger     *slog.Logger
}

// NewConsumer creates a new review event consumer.
func NewConsumer(aggregator AggregateRecomputer, dlq DeadLetterPublisher, logger *slog.Logger) *Consumer {
	return &Consumer{
		aggregator: aggregator,
		dlq:        dlq,
		logger:     logger,
	}
}

// Handle processes a Kafka event based on its type.
func (c *Consumer) Handle(ctx context.Context, event *pkgkafka.Event) error {
	switch event.EventType {
	case TopicReviewCreated:
		return c.handleReviewCreated(ctx, event)
	default:
		c.logger.WarnContext(ctx, "unknown event type received",
			slog.String("event_type", event.EventType),
			slog.String("event_id", event.EventID),
		)
		return nil
	}
}

// handleReviewCreated recomputes the aggregates for the reviewed product.
// Recompute reads the full ledger, so replays and out-of-order delivery
// converge on the same result.
func (c *Consumer) handleReviewCreated(ctx context.Context, event *pkgkafka.Event) error {
	var data ReviewCreatedData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		c.deadLetter(ctx, event, fmt.Errorf("unmarshal review.created data: %w", err))
		return nil
	}
	if _, parseErr := uuid.Parse(data.ProductID); parseErr != nil {
		c.deadLetter(ctx, event, fmt.Errorf("invalid product id %q", data.ProductID))
		return nil
	}

	if _, err := c.aggregator.Recompute(ctx, data.ProductID); err != nil {
		return fmt.Errorf("recompute aggregates from review event: %w", err)
	}

	c.logger.InfoContext(ctx, "reconciled product rating from review event",
		slog.String("product_id", data.ProductID),
		slog.String("review_id", data.ReviewID),
	)

	return nil
}

// deadLetter forwards a structurally invalid event to the DLQ. Retrying a
// malformed payload can never succeed, so the message is parked for
// inspection instead.
func (c *Consumer) deadLetter(ctx context.Context, event *pkgkafka.Event, cause error) {
	c.logger.ErrorContext(ctx, "malformed review event, routing to dead letter queue",
		slog.String("event_id", event.EventID),
		slog.String("error", cause.Error()),
	)

	raw, err := json.Marshal(event)
	if err != nil {
		c.logger.ErrorContext(ctx, "failed to re-marshal event for dead letter queue",
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()),
		)
		return
	}

	msg := kafka.Message{
		Topic: event.EventType,
		Key:   []byte(event.AggregateID),
		Value: raw,
	}
	if err := c.dlq.Publish(ctx, msg, cause, ConsumerGroup); err != nil {
		c.logger.ErrorContext(ctx, "failed to publish to dead letter queue",
			slog.String("event_id", event.EventID),
			slog.String("error", err.Error()),
		)
	}
}
