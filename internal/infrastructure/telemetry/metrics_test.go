package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/bibbank/card-lifecycle/internal/domain/event"
	"github.com/bibbank/card-lifecycle/internal/domain/valueobject"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Sum[int64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := make(map[string]metricdata.Sum[int64])
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				out[m.Name] = sum
			}
		}
	}
	return out
}

func TestLifecycleMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	m, err := NewLifecycleMetrics(provider.Meter("card-lifecycle"))
	require.NoError(t, err)

	ctx := context.Background()
	m.TransitionRecorded(ctx, valueobject.TriggerBlock, "applied")
	m.TransitionRecorded(ctx, valueobject.TriggerBlock, "applied")
	m.TransitionRecorded(ctx, valueobject.TriggerCancel, "rejected")
	m.CardIssued(ctx, valueobject.CardTypeDebit)
	m.DeliveryFailed(ctx, event.KindBlocked)
	m.SweepCompleted(ctx, 10, 3, 1)
	m.OutboxRelayed(ctx, 2, 0)

	sums := collect(t, reader)

	transitions := sums["card_transitions"]
	require.Len(t, transitions.DataPoints, 2)
	for _, dp := range transitions.DataPoints {
		trigger, _ := dp.Attributes.Value(attribute.Key("trigger"))
		if trigger.AsString() == "block" {
			assert.Equal(t, int64(2), dp.Value)
		} else {
			assert.Equal(t, int64(1), dp.Value)
		}
	}

	assert.Equal(t, int64(10), sums["card_sweep_scanned"].DataPoints[0].Value)
	assert.Equal(t, int64(3), sums["card_sweep_expired"].DataPoints[0].Value)
	assert.Equal(t, int64(2), sums["card_outbox_published"].DataPoints[0].Value)
	assert.Equal(t, int64(1), sums["card_event_delivery_failures"].DataPoints[0].Value)
}
