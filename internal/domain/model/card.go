package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/card-lifecycle/internal/domain/event"
	"github.com/bibbank/card-lifecycle/internal/domain/valueobject"
	"github.com/bibbank/card-lifecycle/pkg/events"
)

// ValidityYears is how long a card stays valid after its issuance date.
const ValidityYears = 10

// DefaultCreditLimit applies to CREDIT cards issued without an explicit limit.
var DefaultCreditLimit = decimal.NewFromInt(25000)

var (
	// ErrInvalidCardDetails is returned when issuance input fails validation.
	ErrInvalidCardDetails = errors.New("invalid card details")
	// ErrCardNotExpired is returned when expiry is attempted before the expiry date has passed.
	ErrCardNotExpired = errors.New("card has not reached its expiry date")
)

var triggerKinds = map[valueobject.Trigger]event.Kind{
	valueobject.TriggerActivate:       event.KindActivated,
	valueobject.TriggerRequestBlock:   event.KindBlockRequested,
	valueobject.TriggerBlock:          event.KindBlocked,
	valueobject.TriggerRequestUnblock: event.KindUnblockRequested,
	valueobject.TriggerUnblock:        event.KindUnblocked,
	valueobject.TriggerCancel:         event.KindCancelled,
	valueobject.TriggerExpire:         event.KindExpired,
}

// Card is the aggregate root for the card lifecycle.
// It encapsulates all card state and enforces business invariants.
type Card struct {
	id             uuid.UUID
	cardNumber     valueobject.CardNumber
	cardHolderName string
	userID         string
	cardType       valueobject.CardType
	creditLimit    decimal.NullDecimal
	availableLimit decimal.Decimal
	expiryDate     time.Time
	status         valueobject.CardStatus
	version        int
	createdAt      time.Time
	updatedAt      time.Time
	domainEvents   []events.DomainEvent
}

// NewCardParams carries the issuance input for NewCard.
type NewCardParams struct {
	Number         valueobject.CardNumber
	CardHolderName string
	UserID         string
	CardType       valueobject.CardType
	// CreditLimit overrides the configured default for CREDIT cards. Ignored for DEBIT.
	CreditLimit        decimal.NullDecimal
	DefaultCreditLimit decimal.Decimal
	// InitialStatus is PENDING_ACTIVATION for requested cards, ACTIVE for direct issuance.
	InitialStatus valueobject.CardStatus
}

// NewCard issues a card and records a Card Issued event.
func NewCard(p NewCardParams, now time.Time) (Card, error) {
	if p.Number.IsZero() {
		return Card{}, fmt.Errorf("%w: card number is required", ErrInvalidCardDetails)
	}
	if strings.TrimSpace(p.CardHolderName) == "" {
		return Card{}, fmt.Errorf("%w: card holder name is required", ErrInvalidCardDetails)
	}
	if strings.TrimSpace(p.UserID) == "" {
		return Card{}, fmt.Errorf("%w: user ID is required", ErrInvalidCardDetails)
	}
	cardType, err := valueobject.NewCardType(p.CardType.String())
	if err != nil {
		return Card{}, err
	}
	if p.InitialStatus != valueobject.CardStatusPendingActivation && p.InitialStatus != valueobject.CardStatusActive {
		return Card{}, fmt.Errorf("%w: cards cannot be issued in %s status", ErrInvalidCardDetails, p.InitialStatus)
	}

	var creditLimit decimal.NullDecimal
	availableLimit := decimal.Zero
	if cardType.IsCredit() {
		limit := p.DefaultCreditLimit
		if limit.IsZero() {
			limit = DefaultCreditLimit
		}
		if p.CreditLimit.Valid {
			limit = p.CreditLimit.Decimal
		}
		if !limit.IsPositive() {
			return Card{}, fmt.Errorf("%w: credit limit must be positive", ErrInvalidCardDetails)
		}
		creditLimit = decimal.NewNullDecimal(limit)
		availableLimit = limit
	}

	now = now.UTC()
	c := Card{
		id:             uuid.New(),
		cardNumber:     p.Number,
		cardHolderName: strings.TrimSpace(p.CardHolderName),
		userID:         p.UserID,
		cardType:       cardType,
		creditLimit:    creditLimit,
		availableLimit: availableLimit,
		expiryDate:     DateOf(now).AddDate(ValidityYears, 0, 0),
		status:         p.InitialStatus,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}

	c.domainEvents = append(c.domainEvents, event.NewCardIssued(c.Snapshot(), now))

	return c, nil
}

// Reconstruct rebuilds a Card aggregate from persisted state.
// No domain events are emitted and no validation is performed beyond construction.
func Reconstruct(
	id uuid.UUID,
	cardNumber valueobject.CardNumber,
	cardHolderName, userID string,
	cardType valueobject.CardType,
	creditLimit decimal.NullDecimal,
	availableLimit decimal.Decimal,
	expiryDate time.Time,
	status valueobject.CardStatus,
	version int,
	createdAt, updatedAt time.Time,
) Card {
	return Card{
		id:             id,
		cardNumber:     cardNumber,
		cardHolderName: cardHolderName,
		userID:         userID,
		cardType:       cardType,
		creditLimit:    creditLimit,
		availableLimit: availableLimit,
		expiryDate:     DateOf(expiryDate),
		status:         status,
		version:        version,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// DateOf truncates t to a UTC calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// cloneEvents returns a deep copy of the domain events slice so that
// value-receiver methods don't race on the shared backing array.
func (c Card) cloneEvents() []events.DomainEvent {
	if len(c.domainEvents) == 0 {
		return nil
	}
	cloned := make([]events.DomainEvent, len(c.domainEvents))
	copy(cloned, c.domainEvents)
	return cloned
}

// Apply moves the card along the lifecycle edge named by trigger and records
// exactly one event for it. The receiver is left untouched.
func (c Card) Apply(trigger valueobject.Trigger, now time.Time) (Card, error) {
	next, err := valueobject.NextStatus(c.status, trigger)
	if err != nil {
		return c, err
	}
	if trigger == valueobject.TriggerExpire && !c.IsExpiredAt(now) {
		return c, fmt.Errorf("%w: expires %s", ErrCardNotExpired, c.expiryDate.Format(time.DateOnly))
	}

	previous := c.status
	c.status = next
	c.updatedAt = now.UTC()
	c.version++

	c.domainEvents = append(c.cloneEvents(), event.NewCardTransitioned(
		triggerKinds[trigger], c.Snapshot(), previous.String(), now.UTC(),
	))

	return c, nil
}

// Activate transitions the card from PENDING_ACTIVATION to ACTIVE.
func (c Card) Activate(now time.Time) (Card, error) {
	return c.Apply(valueobject.TriggerActivate, now)
}

// RequestBlock moves an ACTIVE card into PENDING_BLOCK.
func (c Card) RequestBlock(now time.Time) (Card, error) {
	return c.Apply(valueobject.TriggerRequestBlock, now)
}

// Block transitions the card to BLOCKED from ACTIVE or PENDING_BLOCK.
func (c Card) Block(now time.Time) (Card, error) {
	return c.Apply(valueobject.TriggerBlock, now)
}

// RequestUnblock moves a BLOCKED card into PENDING_UNBLOCK.
func (c Card) RequestUnblock(now time.Time) (Card, error) {
	return c.Apply(valueobject.TriggerRequestUnblock, now)
}

// Unblock transitions the card back to ACTIVE from BLOCKED or PENDING_UNBLOCK.
func (c Card) Unblock(now time.Time) (Card, error) {
	return c.Apply(valueobject.TriggerUnblock, now)
}

// Cancel transitions any non-terminal card to CANCELLED.
func (c Card) Cancel(now time.Time) (Card, error) {
	return c.Apply(valueobject.TriggerCancel, now)
}

// Expire transitions an ACTIVE card whose expiry date has passed to EXPIRED.
func (c Card) Expire(now time.Time) (Card, error) {
	return c.Apply(valueobject.TriggerExpire, now)
}

// IsExpiredAt reports whether the expiry date is strictly before the date of now.
func (c Card) IsExpiredAt(now time.Time) bool {
	return c.expiryDate.Before(DateOf(now))
}

// Snapshot returns the event payload view of the card with the number masked.
func (c Card) Snapshot() event.CardSnapshot {
	return event.CardSnapshot{
		CardID:         c.id,
		CardNumber:     c.cardNumber.Masked(),
		CardHolderName: c.cardHolderName,
		UserID:         c.userID,
		CardType:       c.cardType.String(),
		Status:         c.status.String(),
		CreditLimit:    c.creditLimit,
		AvailableLimit: c.availableLimit,
		ExpiryDate:     c.expiryDate.Format(time.DateOnly),
	}
}

// --- Getters ---

func (c Card) ID() uuid.UUID                      { return c.id }
func (c Card) CardNumber() valueobject.CardNumber { return c.cardNumber }
func (c Card) CardHolderName() string             { return c.cardHolderName }
func (c Card) UserID() string                     { return c.userID }
func (c Card) CardType() valueobject.CardType     { return c.cardType }
func (c Card) CreditLimit() decimal.NullDecimal   { return c.creditLimit }
func (c Card) AvailableLimit() decimal.Decimal    { return c.availableLimit }
func (c Card) ExpiryDate() time.Time              { return c.expiryDate }
func (c Card) Status() valueobject.CardStatus     { return c.status }
func (c Card) Version() int                       { return c.version }
func (c Card) CreatedAt() time.Time               { return c.createdAt }
func (c Card) UpdatedAt() time.Time               { return c.updatedAt }

// WithCardNumber returns a copy of a freshly issued card carrying a new number.
// Used when the store rejects a duplicate number before the card was ever persisted.
func (c Card) WithCardNumber(n valueobject.CardNumber) Card {
	c.cardNumber = n
	c.domainEvents = nil
	c.domainEvents = append(c.domainEvents, event.NewCardIssued(c.Snapshot(), c.createdAt))
	return c
}

// DomainEvents returns all uncommitted domain events.
func (c Card) DomainEvents() []events.DomainEvent {
	events := make([]events.DomainEvent, len(c.domainEvents))
	copy(events, c.domainEvents)
	return events
}

// ClearEvents returns a new Card with the domain events cleared.
func (c Card) ClearEvents() Card {
	c.domainEvents = nil
	return c
}
