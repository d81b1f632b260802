package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bibbank/card-lifecycle/internal/domain/event"
	"github.com/bibbank/card-lifecycle/internal/domain/model"
	"github.com/bibbank/card-lifecycle/internal/domain/port"
	"github.com/bibbank/card-lifecycle/internal/domain/valueobject"
	"github.com/bibbank/card-lifecycle/pkg/events"
)

const (
	DefaultStoreTimeout       = 5 * time.Second
	DefaultPublishTimeout     = 5 * time.Second
	DefaultMaxConflictRetries = 3
	DefaultMaxNumberAttempts  = 5
)

// Outcome labels recorded for each transition attempt.
const (
	OutcomeApplied  = "applied"
	OutcomeDegraded = "degraded"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// LifecycleEngine validates, applies, persists and publishes card state changes.
// It holds no per-card state and is safe for concurrent use.
type LifecycleEngine struct {
	cardRepo  port.CardRepository
	publisher port.EventPublisher
	outbox    events.OutboxRepository
	generator port.CardNumberGenerator
	clock     port.Clock
	metrics   port.LifecycleMetrics
	logger    *slog.Logger
	tracer    trace.Tracer

	storeTimeout       time.Duration
	publishTimeout     time.Duration
	maxConflictRetries int
	maxNumberAttempts  int
}

// EngineOption customises a LifecycleEngine.
type EngineOption func(*LifecycleEngine)

// WithOutbox stores events whose delivery failed so a relay can resend them.
func WithOutbox(outbox events.OutboxRepository) EngineOption {
	return func(e *LifecycleEngine) { e.outbox = outbox }
}

// WithMetrics records lifecycle outcomes.
func WithMetrics(m port.LifecycleMetrics) EngineOption {
	return func(e *LifecycleEngine) { e.metrics = m }
}

// WithTimeouts overrides the store and publish deadlines.
func WithTimeouts(store, publish time.Duration) EngineOption {
	return func(e *LifecycleEngine) {
		if store > 0 {
			e.storeTimeout = store
		}
		if publish > 0 {
			e.publishTimeout = publish
		}
	}
}

// WithRetryLimits overrides how often conflicts and duplicate numbers are retried.
func WithRetryLimits(conflicts, numbers int) EngineOption {
	return func(e *LifecycleEngine) {
		if conflicts > 0 {
			e.maxConflictRetries = conflicts
		}
		if numbers > 0 {
			e.maxNumberAttempts = numbers
		}
	}
}

// NewLifecycleEngine creates a new LifecycleEngine.
func NewLifecycleEngine(
	cardRepo port.CardRepository,
	publisher port.EventPublisher,
	generator port.CardNumberGenerator,
	clock port.Clock,
	logger *slog.Logger,
	opts ...EngineOption,
) *LifecycleEngine {
	e := &LifecycleEngine{
		cardRepo:           cardRepo,
		publisher:          publisher,
		generator:          generator,
		clock:              clock,
		metrics:            port.NopMetrics{},
		logger:             logger,
		tracer:             otel.Tracer("github.com/bibbank/card-lifecycle/internal/application/usecase"),
		storeTimeout:       DefaultStoreTimeout,
		publishTimeout:     DefaultPublishTimeout,
		maxConflictRetries: DefaultMaxConflictRetries,
		maxNumberAttempts:  DefaultMaxNumberAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// TransitionResult is the outcome of an accepted state change. DeliveryErr is
// non-nil when the change was stored but its event was not delivered.
type TransitionResult struct {
	DeliveryErr error
	Card        model.Card
}

// Degraded reports whether the state change succeeded without event delivery.
func (r TransitionResult) Degraded() bool {
	return r.DeliveryErr != nil
}

// Transition applies trigger to the card with the given ID.
//
// The card is read, the trigger validated against its current status, and the
// result stored with a compare-and-save on the status that was read. A lost race
// is retried against a fresh read up to the configured limit.
func (e *LifecycleEngine) Transition(ctx context.Context, cardID uuid.UUID, trigger valueobject.Trigger) (TransitionResult, error) {
	ctx, span := e.tracer.Start(ctx, "card.transition", trace.WithAttributes(
		attribute.String("card.id", cardID.String()),
		attribute.String("card.trigger", trigger.String()),
	))
	defer span.End()

	result, err := e.transition(ctx, cardID, trigger)
	switch {
	case err == nil && result.Degraded():
		e.metrics.TransitionRecorded(ctx, trigger, OutcomeDegraded)
	case err == nil:
		e.metrics.TransitionRecorded(ctx, trigger, OutcomeApplied)
	case errors.Is(err, valueobject.ErrInvalidTransition), errors.Is(err, port.ErrCardNotFound), errors.Is(err, model.ErrCardNotExpired):
		e.metrics.TransitionRecorded(ctx, trigger, OutcomeRejected)
		span.SetStatus(codes.Error, err.Error())
	default:
		e.metrics.TransitionRecorded(ctx, trigger, OutcomeFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func (e *LifecycleEngine) transition(ctx context.Context, cardID uuid.UUID, trigger valueobject.Trigger) (TransitionResult, error) {
	for attempt := 1; ; attempt++ {
		card, err := e.findByID(ctx, cardID)
		if err != nil {
			return TransitionResult{}, err
		}

		next, err := card.Apply(trigger, e.clock.Now())
		if err != nil {
			return TransitionResult{}, fmt.Errorf("card %s: %w", cardID, err)
		}

		err = e.save(ctx, next, card.Status())
		if errors.Is(err, port.ErrConflict) && attempt < e.maxConflictRetries {
			e.logger.Debug("card changed concurrently, retrying",
				"card_id", cardID,
				"trigger", trigger,
				"attempt", attempt,
			)
			continue
		}
		if err != nil {
			return TransitionResult{}, fmt.Errorf("failed to save card %s: %w", cardID, err)
		}

		e.logger.Info("card status changed",
			"card_id", cardID,
			"trigger", trigger,
			"from", card.Status(),
			"to", next.Status(),
		)

		deliveryErr := e.publishEvents(ctx, next)
		return TransitionResult{Card: next.ClearEvents(), DeliveryErr: deliveryErr}, nil
	}
}

// Issue creates a card record, regenerating the number if the store reports a
// collision, and publishes its Card Issued event.
func (e *LifecycleEngine) Issue(ctx context.Context, params model.NewCardParams) (TransitionResult, error) {
	ctx, span := e.tracer.Start(ctx, "card.issue", trace.WithAttributes(
		attribute.String("card.type", params.CardType.String()),
		attribute.String("card.initial_status", params.InitialStatus.String()),
	))
	defer span.End()

	number, err := e.generator.Generate()
	if err != nil {
		span.RecordError(err)
		return TransitionResult{}, fmt.Errorf("failed to generate card number: %w", err)
	}
	params.Number = number

	card, err := model.NewCard(params, e.clock.Now())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return TransitionResult{}, fmt.Errorf("failed to create card: %w", err)
	}

	for attempt := 1; ; attempt++ {
		err = e.create(ctx, card)
		if err == nil {
			break
		}
		if !errors.Is(err, port.ErrDuplicateCardNumber) || attempt >= e.maxNumberAttempts {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return TransitionResult{}, fmt.Errorf("failed to save card: %w", err)
		}

		e.logger.Warn("generated card number already in use, regenerating", "attempt", attempt)
		number, err := e.generator.Generate()
		if err != nil {
			return TransitionResult{}, fmt.Errorf("failed to generate card number: %w", err)
		}
		card = card.WithCardNumber(number)
	}

	e.metrics.CardIssued(ctx, card.CardType())
	e.logger.Info("card issued",
		"card_id", card.ID(),
		"user_id", card.UserID(),
		"card_type", card.CardType(),
		"status", card.Status(),
	)

	deliveryErr := e.publishEvents(ctx, card)
	return TransitionResult{Card: card.ClearEvents(), DeliveryErr: deliveryErr}, nil
}

func (e *LifecycleEngine) findByID(ctx context.Context, id uuid.UUID) (model.Card, error) {
	ctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()

	card, err := e.cardRepo.FindByID(ctx, id)
	if err != nil {
		return model.Card{}, fmt.Errorf("failed to find card %s: %w", id, err)
	}
	return card, nil
}

func (e *LifecycleEngine) save(ctx context.Context, card model.Card, expectedPrior valueobject.CardStatus) error {
	ctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()
	return e.cardRepo.Save(ctx, card, expectedPrior)
}

func (e *LifecycleEngine) create(ctx context.Context, card model.Card) error {
	ctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()
	return e.cardRepo.Create(ctx, card)
}

// publishEvents delivers the card's pending events once the write has been
// acknowledged. The caller's cancellation no longer applies at this point.
// Failed events go to the outbox when one is configured.
func (e *LifecycleEngine) publishEvents(ctx context.Context, card model.Card) error {
	detached := context.WithoutCancel(ctx)

	var errs []error
	for _, de := range card.DomainEvents() {
		evt, ok := de.(event.CardLifecycleEvent)
		if !ok {
			continue
		}

		if err := e.publishOne(detached, evt); err != nil {
			if !errors.Is(err, port.ErrDelivery) {
				err = fmt.Errorf("%w: %w", port.ErrDelivery, err)
			}
			errs = append(errs, err)

			e.metrics.DeliveryFailed(detached, evt.Kind)
			e.logger.Warn("failed to publish card event",
				"error", err,
				"card_id", card.ID(),
				"event_id", evt.EventID(),
				"event_type", evt.EventType(),
			)
			e.enqueue(detached, evt, err)
		}
	}
	return errors.Join(errs...)
}

func (e *LifecycleEngine) publishOne(ctx context.Context, evt event.CardLifecycleEvent) error {
	ctx, cancel := context.WithTimeout(ctx, e.publishTimeout)
	defer cancel()
	return e.publisher.Publish(ctx, evt)
}

func (e *LifecycleEngine) enqueue(ctx context.Context, evt event.CardLifecycleEvent, cause error) {
	if e.outbox == nil {
		return
	}

	entry, err := events.NewOutboxEntry(evt)
	if err != nil {
		e.logger.Error("failed to encode undelivered event", "error", err, "event_id", evt.EventID())
		return
	}
	entry.Attempts = 1
	entry.LastError = cause.Error()

	ctx, cancel := context.WithTimeout(ctx, e.storeTimeout)
	defer cancel()
	if err := e.outbox.Store(ctx, []events.OutboxEntry{entry}); err != nil {
		e.logger.Error("failed to store undelivered event in outbox",
			"error", err,
			"event_id", evt.EventID(),
			"card_id", evt.AggregateID(),
		)
	}
}
