package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/card-lifecycle/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

// AggregateType is the aggregate name stamped on every card event.
const AggregateType = "Card"

// Kind identifies which lifecycle transition produced an event.
type Kind string

const (
	KindIssued           Kind = "card.issued"
	KindActivated        Kind = "card.activated"
	KindBlockRequested   Kind = "card.block_requested"
	KindBlocked          Kind = "card.blocked"
	KindUnblockRequested Kind = "card.unblock_requested"
	KindUnblocked        Kind = "card.unblocked"
	KindCancelled        Kind = "card.cancelled"
	KindExpired          Kind = "card.expired"
)

var kindNames = map[Kind]string{
	KindIssued:           "Card Issued",
	KindActivated:        "Card Activated",
	KindBlockRequested:   "Card Block Requested",
	KindBlocked:          "Card Blocked",
	KindUnblockRequested: "Card Unblock Requested",
	KindUnblocked:        "Card Unblocked",
	KindCancelled:        "Card Cancelled",
	KindExpired:          "Card Expired",
}

var kindMessages = map[Kind]string{
	KindIssued:           "Card issued successfully",
	KindActivated:        "Card activated successfully",
	KindBlockRequested:   "Card block requested",
	KindBlocked:          "Card blocked successfully",
	KindUnblockRequested: "Card unblock requested",
	KindUnblocked:        "Card unblocked successfully",
	KindCancelled:        "Card cancelled successfully",
	KindExpired:          "Card expired",
}

// DisplayName returns the human readable event name, e.g. "Card Blocked".
func (k Kind) DisplayName() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return string(k)
}

// Message returns the notification text carried in the event payload.
func (k Kind) Message() string {
	return kindMessages[k]
}

// CardSnapshot is the card state carried in an event payload. The card
// number is always masked.
type CardSnapshot struct {
	CardID         uuid.UUID           `json:"card_id"`
	CardNumber     string              `json:"card_number"`
	CardHolderName string              `json:"card_holder_name"`
	UserID         string              `json:"user_id"`
	CardType       string              `json:"card_type"`
	Status         string              `json:"status"`
	CreditLimit    decimal.NullDecimal `json:"credit_limit"`
	AvailableLimit decimal.Decimal     `json:"available_limit"`
	ExpiryDate     string              `json:"expiry_date"`
}

// CardLifecycleEvent is emitted once for every accepted lifecycle transition.
type CardLifecycleEvent struct {
	events.BaseEvent
	Kind           Kind         `json:"kind"`
	Name           string       `json:"event_name"`
	PreviousStatus string       `json:"previous_status,omitempty"`
	NewStatus      string       `json:"new_status"`
	Card           CardSnapshot `json:"card"`
	Message        string       `json:"message"`
}

func newLifecycleEvent(kind Kind, snapshot CardSnapshot, previous string, occurredAt time.Time) CardLifecycleEvent {
	return CardLifecycleEvent{
		BaseEvent:      events.NewBaseEvent(string(kind), snapshot.CardID, AggregateType, occurredAt),
		Kind:           kind,
		Name:           kind.DisplayName(),
		PreviousStatus: previous,
		NewStatus:      snapshot.Status,
		Card:           snapshot,
		Message:        kind.Message(),
	}
}

// NewCardIssued is emitted when a card record is created. It has no previous status.
func NewCardIssued(snapshot CardSnapshot, issuedAt time.Time) CardLifecycleEvent {
	return newLifecycleEvent(KindIssued, snapshot, "", issuedAt)
}

// NewCardTransitioned builds the event for a transition of the given kind.
func NewCardTransitioned(kind Kind, snapshot CardSnapshot, previous string, at time.Time) CardLifecycleEvent {
	return newLifecycleEvent(kind, snapshot, previous, at)
}
