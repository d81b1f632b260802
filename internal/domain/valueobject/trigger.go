package valueobject

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when a trigger is not allowed from the
// card's current status.
var ErrInvalidTransition = errors.New("invalid status transition")

// Trigger names an operation that attempts to move a card between statuses.
type Trigger string

const (
	TriggerActivate       Trigger = "activate"
	TriggerRequestBlock   Trigger = "request-block"
	TriggerBlock          Trigger = "block"
	TriggerRequestUnblock Trigger = "request-unblock"
	TriggerUnblock        Trigger = "unblock"
	TriggerCancel         Trigger = "cancel"
	TriggerExpire         Trigger = "expire"
)

// AllTriggers lists every trigger the lifecycle accepts.
var AllTriggers = []Trigger{
	TriggerActivate,
	TriggerRequestBlock,
	TriggerBlock,
	TriggerRequestUnblock,
	TriggerUnblock,
	TriggerCancel,
	TriggerExpire,
}

// String returns the string representation of the Trigger.
func (t Trigger) String() string {
	return string(t)
}

// transitions is the canonical lifecycle table: status -> trigger -> next status.
// Direct block/unblock are accepted both from the pending review state and from
// the state a request would have started in.
var transitions = map[CardStatus]map[Trigger]CardStatus{
	CardStatusPendingActivation: {
		TriggerActivate: CardStatusActive,
		TriggerCancel:   CardStatusCancelled,
	},
	CardStatusActive: {
		TriggerRequestBlock: CardStatusPendingBlock,
		TriggerBlock:        CardStatusBlocked,
		TriggerCancel:       CardStatusCancelled,
		TriggerExpire:       CardStatusExpired,
	},
	CardStatusPendingBlock: {
		TriggerBlock:  CardStatusBlocked,
		TriggerCancel: CardStatusCancelled,
	},
	CardStatusBlocked: {
		TriggerRequestUnblock: CardStatusPendingUnblock,
		TriggerUnblock:        CardStatusActive,
		TriggerCancel:         CardStatusCancelled,
	},
	CardStatusPendingUnblock: {
		TriggerUnblock: CardStatusActive,
		TriggerCancel:  CardStatusCancelled,
	},
}

// NextStatus returns the status reached by applying trigger to from, or a
// *TransitionError wrapping ErrInvalidTransition.
func NextStatus(from CardStatus, trigger Trigger) (CardStatus, error) {
	if next, ok := transitions[from][trigger]; ok {
		return next, nil
	}
	return from, &TransitionError{From: from, Trigger: trigger}
}

// CanTransition reports whether trigger is allowed from status.
func CanTransition(from CardStatus, trigger Trigger) bool {
	_, ok := transitions[from][trigger]
	return ok
}

// TransitionError carries the rejected (status, trigger) pair for diagnostics.
type TransitionError struct {
	From    CardStatus
	Trigger Trigger
}

func (e *TransitionError) Error() string {
	if e.From == CardStatusCancelled && e.Trigger == TriggerCancel {
		return "card is already cancelled"
	}
	return fmt.Sprintf("cannot %s card in %s status", e.Trigger, e.From)
}

// Unwrap allows errors.Is(err, ErrInvalidTransition).
func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// NewTrigger creates a validated Trigger from a string.
func NewTrigger(s string) (Trigger, error) {
	t := Trigger(s)
	for _, known := range AllTriggers {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown lifecycle trigger: %q", s)
}
