package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/card-lifecycle/internal/domain/event"
	"github.com/bibbank/card-lifecycle/internal/domain/model"
	"github.com/bibbank/card-lifecycle/internal/domain/valueobject"
	"github.com/bibbank/card-lifecycle/pkg/events"
)

// CardRepository defines the persistence port for card aggregates.
type CardRepository interface {
	// FindByID retrieves a card by its unique identifier.
	// Returns ErrCardNotFound when no such card exists.
	FindByID(ctx context.Context, id uuid.UUID) (model.Card, error)

	// FindByUserID retrieves all cards belonging to a user.
	FindByUserID(ctx context.Context, userID string) ([]model.Card, error)

	// FindByStatus retrieves all cards currently in the given status.
	FindByStatus(ctx context.Context, status valueobject.CardStatus) ([]model.Card, error)

	// FindByStatusNot retrieves all cards whose status differs from the given one.
	FindByStatusNot(ctx context.Context, status valueobject.CardStatus) ([]model.Card, error)

	// Create persists a newly issued card.
	// Returns ErrDuplicateCardNumber when the number is already taken.
	Create(ctx context.Context, card model.Card) error

	// Save persists a transitioned card only if the stored record still has
	// expectedPrior status and the version preceding card.Version().
	// Returns ErrConflict otherwise and ErrCardNotFound if the record is gone.
	Save(ctx context.Context, card model.Card, expectedPrior valueobject.CardStatus) error

	// Delete removes a card. Returns ErrCardNotFound when no such card exists.
	Delete(ctx context.Context, id uuid.UUID) error

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

// EventPublisher defines the port for publishing lifecycle events.
type EventPublisher interface {
	// Publish sends a single lifecycle event to the configured channel.
	// Failures are wrapped in ErrDelivery.
	Publish(ctx context.Context, evt event.CardLifecycleEvent) error
}

// OutboxRelayPublisher re-sends stored outbox entries.
type OutboxRelayPublisher interface {
	PublishEntry(ctx context.Context, entry events.OutboxEntry) error
}

// CardNumberGenerator produces candidate card numbers. Uniqueness is
// enforced by the store, not the generator.
type CardNumberGenerator interface {
	Generate() (valueobject.CardNumber, error)
}

// Clock supplies the current time. Injected so that expiry can be tested.
type Clock interface {
	Now() time.Time
}

// LifecycleMetrics records lifecycle outcomes.
type LifecycleMetrics interface {
	TransitionRecorded(ctx context.Context, trigger valueobject.Trigger, outcome string)
	CardIssued(ctx context.Context, cardType valueobject.CardType)
	DeliveryFailed(ctx context.Context, kind event.Kind)
	SweepCompleted(ctx context.Context, scanned, expired, failed int)
	OutboxRelayed(ctx context.Context, published, failed int)
}

// NopMetrics discards all measurements.
type NopMetrics struct{}

func (NopMetrics) TransitionRecorded(context.Context, valueobject.Trigger, string) {}
func (NopMetrics) CardIssued(context.Context, valueobject.CardType)                {}
func (NopMetrics) DeliveryFailed(context.Context, event.Kind)                      {}
func (NopMetrics) SweepCompleted(context.Context, int, int, int)                   {}
func (NopMetrics) OutboxRelayed(context.Context, int, int)                         {}
