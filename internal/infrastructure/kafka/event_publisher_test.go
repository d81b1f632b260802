package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/card-lifecycle/internal/domain/event"
	"github.com/bibbank/card-lifecycle/internal/domain/port"
	"github.com/bibbank/card-lifecycle/pkg/events"
	pkgkafka "github.com/bibbank/card-lifecycle/pkg/kafka"
)

type recordingProducer struct {
	topic    string
	messages []pkgkafka.Message
	err      error
}

func (r *recordingProducer) Publish(_ context.Context, topic string, messages ...pkgkafka.Message) error {
	if r.err != nil {
		return r.err
	}
	r.topic = topic
	r.messages = append(r.messages, messages...)
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func blockedEvent() event.CardLifecycleEvent {
	return event.NewCardTransitioned(event.KindBlocked, event.CardSnapshot{
		CardID:     uuid.New(),
		CardNumber: "**** **** **** 1111",
		Status:     "BLOCKED",
	}, "ACTIVE", time.Now())
}

func TestEventPublisher_Publish(t *testing.T) {
	producer := &recordingProducer{}
	pub := NewEventPublisher(producer, "", discardLogger())
	evt := blockedEvent()

	require.NoError(t, pub.Publish(context.Background(), evt))

	assert.Equal(t, DefaultTopic, producer.topic)
	require.Len(t, producer.messages, 1)

	msg := producer.messages[0]
	assert.Equal(t, evt.AggregateID().String(), string(msg.Key))
	assert.Equal(t, "card.blocked", msg.Headers[HeaderEventType])
	assert.Equal(t, "Card Blocked", msg.Headers[HeaderEventName])
	assert.Equal(t, evt.EventID().String(), msg.Headers[HeaderEventID])

	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "ACTIVE", payload["previous_status"])
	assert.Equal(t, "Card blocked successfully", payload["message"])
}

func TestEventPublisher_PublishFailureWrapsDelivery(t *testing.T) {
	producer := &recordingProducer{err: errors.New("broker unreachable")}
	pub := NewEventPublisher(producer, "cards", discardLogger())

	err := pub.Publish(context.Background(), blockedEvent())

	require.Error(t, err)
	assert.ErrorIs(t, err, port.ErrDelivery)
	assert.Contains(t, err.Error(), "broker unreachable")
	assert.Contains(t, err.Error(), "cards")
}

func TestEventPublisher_PublishEntry(t *testing.T) {
	producer := &recordingProducer{}
	pub := NewEventPublisher(producer, "cards", discardLogger())

	entry, err := events.NewOutboxEntry(blockedEvent())
	require.NoError(t, err)

	require.NoError(t, pub.PublishEntry(context.Background(), entry))

	require.Len(t, producer.messages, 1)
	msg := producer.messages[0]
	assert.Equal(t, "cards", producer.topic)
	assert.Equal(t, entry.AggregateID.String(), string(msg.Key))
	assert.Equal(t, entry.Payload, msg.Value)
	assert.Equal(t, "Card Blocked", msg.Headers[HeaderEventName])
}
