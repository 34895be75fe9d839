package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	domain "github.com/blendaura/api/internal/domain"
)

// Event types emitted on the orders topic.
const (
	EventOrderCreated          = "order.created"
	EventOrderPaymentSubmitted = "order.payment.submitted"
	EventOrderPaid             = "order.paid"
	EventOrderStatusChanged    = "order.status.changed"
)

// OrderEvent is the JSON payload published for order lifecycle changes.
type OrderEvent struct {
	Type          string    `json:"type"`
	OrderID       string    `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	UserID        string    `json:"user_id"`
	Total         int64     `json:"total"`
	PaymentStatus string    `json:"payment_status"`
	Status        string    `json:"status"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Publisher emits order lifecycle events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, eventType string, order domain.Order) error
	Close() error
}

// NoopPublisher drops events, used when no topic is configured.
type NoopPublisher struct{}

// PublishOrderEvent implements Publisher.
func (NoopPublisher) PublishOrderEvent(context.Context, string, domain.Order) error { return nil }

// Close implements Publisher.
func (NoopPublisher) Close() error { return nil }

// PubSubPublisher publishes order events to a Cloud Pub/Sub topic.
type PubSubPublisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
	logger *zap.Logger
}

// NewPubSubPublisher constructs a publisher bound to the named topic.
func NewPubSubPublisher(ctx context.Context, projectID, topicName string, logger *zap.Logger, opts ...option.ClientOption) (*PubSubPublisher, error) {
	projectID = strings.TrimSpace(projectID)
	topicName = strings.TrimSpace(topicName)
	if projectID == "" {
		return nil, errors.New("events: project id is required")
	}
	if topicName == "" {
		return nil, errors.New("events: topic name is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("events: create pubsub client: %w", err)
	}
	return &PubSubPublisher{
		client: client,
		topic:  client.Topic(topicName),
		logger: logger,
	}, nil
}

// PublishOrderEvent serialises the order into an OrderEvent and publishes it.
// Publish failures are logged and returned; callers treat them as non-fatal.
func (p *PubSubPublisher) PublishOrderEvent(ctx context.Context, eventType string, order domain.Order) error {
	if p == nil || p.topic == nil {
		return errors.New("events: publisher not initialised")
	}

	payload, err := json.Marshal(OrderEvent{
		Type:          eventType,
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		Total:         order.Total,
		PaymentStatus: string(order.PaymentStatus),
		Status:        string(order.Status),
		OccurredAt:    time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("events: marshal %s: %w", eventType, err)
	}

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"type":     eventType,
			"order_id": order.ID,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		p.logger.Warn("events: publish failed",
			zap.String("type", eventType),
			zap.String("order_id", order.ID),
			zap.Error(err))
		return fmt.Errorf("events: publish %s: %w", eventType, err)
	}
	return nil
}

// Close flushes pending messages and releases the client.
func (p *PubSubPublisher) Close() error {
	if p == nil {
		return nil
	}
	if p.topic != nil {
		p.topic.Stop()
	}
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
