package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/bibbank/card-lifecycle/internal/domain/event"
	"github.com/bibbank/card-lifecycle/internal/domain/port"
	"github.com/bibbank/card-lifecycle/pkg/events"
	pkgkafka "github.com/bibbank/card-lifecycle/pkg/kafka"
)

// DefaultTopic is the channel every card lifecycle event is sent to.
const DefaultTopic = "card-service-topic"

// Header names set on every message.
const (
	HeaderEventType = "event_type"
	HeaderEventName = "event_name"
	HeaderEventID   = "event_id"
)

// MessageProducer is the subset of pkg/kafka.Producer used here.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// EventPublisher implements port.EventPublisher and port.OutboxRelayPublisher
// over Kafka. Messages are keyed by card ID so one card's events keep their order.
type EventPublisher struct {
	producer MessageProducer
	logger   *slog.Logger
	topic    string
}

// NewEventPublisher creates a new EventPublisher.
func NewEventPublisher(producer MessageProducer, topic string, logger *slog.Logger) *EventPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	return &EventPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Publish sends a lifecycle event to Kafka.
func (p *EventPublisher) Publish(ctx context.Context, evt event.CardLifecycleEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("%w: failed to marshal event %s: %w", port.ErrDelivery, evt.EventType(), err)
	}

	p.logger.DebugContext(ctx, "publishing event to Kafka",
		slog.String("topic", p.topic),
		slog.String("event_type", evt.EventType()),
		slog.Int("payload_size", len(payload)),
	)

	return p.send(ctx, pkgkafka.Message{
		Key:   []byte(evt.AggregateID().String()),
		Value: payload,
		Headers: map[string]string{
			HeaderEventType: evt.EventType(),
			HeaderEventName: evt.Name,
			HeaderEventID:   evt.EventID().String(),
		},
	})
}

// PublishEntry resends a stored outbox entry with the same key and headers
// the original publish would have used.
func (p *EventPublisher) PublishEntry(ctx context.Context, entry events.OutboxEntry) error {
	return p.send(ctx, pkgkafka.Message{
		Key:   []byte(entry.AggregateID.String()),
		Value: entry.Payload,
		Headers: map[string]string{
			HeaderEventType: entry.EventType,
			HeaderEventName: event.Kind(entry.EventType).DisplayName(),
			HeaderEventID:   entry.ID.String(),
		},
	})
}

func (p *EventPublisher) send(ctx context.Context, msg pkgkafka.Message) error {
	if err := p.producer.Publish(ctx, p.topic, msg); err != nil {
		return fmt.Errorf("%w: topic %s: %w", port.ErrDelivery, p.topic, err)
	}
	return nil
}
