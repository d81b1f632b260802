package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/card-lifecycle/internal/domain/event"
	pkgkafka "github.com/bibbank/card-lifecycle/pkg/kafka"
	"github.com/bibbank/card-lifecycle/pkg/testutil"
)

func TestEventPublisher_Integration(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	kc := testutil.NewKafkaContainer(ctx, t)
	defer kc.Cleanup(t)

	producer := pkgkafka.NewProducer(pkgkafka.Config{
		ClientID:               "card-lifecycle-test",
		Brokers:                kc.Brokers,
		MaxAttempts:            5,
		AllowAutoTopicCreation: true,
	})
	defer func() { _ = producer.Close() }()

	publisher := NewEventPublisher(producer, "", discardLogger())
	evt := blockedEvent()
	require.NoError(t, publisher.Publish(ctx, evt))

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     kc.Brokers,
		Topic:       DefaultTopic,
		StartOffset: kafkago.FirstOffset,
		MaxWait:     500 * time.Millisecond,
	})
	defer func() { _ = reader.Close() }()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)

	assert.Equal(t, evt.AggregateID().String(), string(msg.Key))

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "Card Blocked", headers[HeaderEventName])
	assert.Equal(t, string(event.KindBlocked), headers[HeaderEventType])
	assert.Equal(t, evt.EventID().String(), headers[HeaderEventID])

	var payload map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, "BLOCKED", payload["new_status"])
	assert.Equal(t, "ACTIVE", payload["previous_status"])
}
