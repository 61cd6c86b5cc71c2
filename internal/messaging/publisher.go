package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
)

// Publish publishes a typed event.
type Publish[T any] func(ctx context.Context, event *T) error

// CorrelationFunc extracts a correlation id from a request context.
type CorrelationFunc func(ctx context.Context) string

// NewPublishFunc creates a typed publish function for a specific topic. When
// correlate is non-nil its result is attached to every message.
func NewPublishFunc[T any](publisher message.Publisher, topic string, correlate CorrelationFunc) Publish[T] {
	return func(ctx context.Context, event *T) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return fmt.Errorf("encode %s event: %w", topic, err)
		}

		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.SetContext(ctx)

		if correlate != nil {
			if id := correlate(ctx); id != "" {
				middleware.SetCorrelationID(id, msg)
			}
		}

		return publisher.Publish(topic, msg)
	}
}

// NoopPublish discards events. Used when event publishing is disabled.
func NoopPublish[T any]() Publish[T] {
	return func(context.Context, *T) error { return nil }
}

// PublisherGroup manages the underlying publisher lifecycle.
type PublisherGroup struct {
	publisher message.Publisher
}

// NewPublisherGroup creates a new publisher group.
func NewPublisherGroup(publisher message.Publisher) *PublisherGroup {
	return &PublisherGroup{publisher: publisher}
}

// Publisher returns the underlying message publisher for creating typed publish functions.
func (g *PublisherGroup) Publisher() message.Publisher {
	return g.publisher
}

// Shutdown closes the underlying publisher.
func (g *PublisherGroup) Shutdown() error {
	return g.publisher.Close()
}
