// Package telemetry records card lifecycle metrics through OpenTelemetry.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/bibbank/card-lifecycle/internal/domain/event"
	"github.com/bibbank/card-lifecycle/internal/domain/port"
	"github.com/bibbank/card-lifecycle/internal/domain/valueobject"
)

var _ port.LifecycleMetrics = (*LifecycleMetrics)(nil)

// LifecycleMetrics implements port.LifecycleMetrics.
type LifecycleMetrics struct {
	transitions     metric.Int64Counter
	issued          metric.Int64Counter
	deliveryFailure metric.Int64Counter
	sweepScanned    metric.Int64Counter
	sweepExpired    metric.Int64Counter
	sweepFailed     metric.Int64Counter
	outboxPublished metric.Int64Counter
	outboxFailed    metric.Int64Counter
}

// NewLifecycleMetrics creates the instruments on meter.
func NewLifecycleMetrics(meter metric.Meter) (*LifecycleMetrics, error) {
	m := &LifecycleMetrics{}

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.transitions, "card_transitions", "Lifecycle triggers handled, by trigger and outcome."},
		{&m.issued, "card_issued", "Cards issued, by card type."},
		{&m.deliveryFailure, "card_event_delivery_failures", "Lifecycle events that could not be delivered, by kind."},
		{&m.sweepScanned, "card_sweep_scanned", "Active cards examined by the expiry sweep."},
		{&m.sweepExpired, "card_sweep_expired", "Cards expired by the sweep."},
		{&m.sweepFailed, "card_sweep_failed", "Cards the sweep failed to expire."},
		{&m.outboxPublished, "card_outbox_published", "Outbox events redelivered."},
		{&m.outboxFailed, "card_outbox_failed", "Outbox redelivery attempts that failed."},
	}

	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, fmt.Errorf("telemetry: create %s: %w", c.name, err)
		}
		*c.dst = counter
	}

	return m, nil
}

func (m *LifecycleMetrics) TransitionRecorded(ctx context.Context, trigger valueobject.Trigger, outcome string) {
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger", trigger.String()),
		attribute.String("outcome", outcome),
	))
}

func (m *LifecycleMetrics) CardIssued(ctx context.Context, cardType valueobject.CardType) {
	m.issued.Add(ctx, 1, metric.WithAttributes(attribute.String("card_type", cardType.String())))
}

func (m *LifecycleMetrics) DeliveryFailed(ctx context.Context, kind event.Kind) {
	m.deliveryFailure.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(kind))))
}

func (m *LifecycleMetrics) SweepCompleted(ctx context.Context, scanned, expired, failed int) {
	m.sweepScanned.Add(ctx, int64(scanned))
	m.sweepExpired.Add(ctx, int64(expired))
	m.sweepFailed.Add(ctx, int64(failed))
}

func (m *LifecycleMetrics) OutboxRelayed(ctx context.Context, published, failed int) {
	m.outboxPublished.Add(ctx, int64(published))
	m.outboxFailed.Add(ctx, int64(failed))
}
