package valueobject

import "fmt"

// CardStatus represents the lifecycle status of a card.
// This is an immutable value object.
type CardStatus string

const (
	CardStatusPendingActivation CardStatus = "PENDING_ACTIVATION"
	CardStatusActive            CardStatus = "ACTIVE"
	CardStatusPendingBlock      CardStatus = "PENDING_BLOCK"
	CardStatusBlocked           CardStatus = "BLOCKED"
	CardStatusPendingUnblock    CardStatus = "PENDING_UNBLOCK"
	CardStatusCancelled         CardStatus = "CANCELLED"
	CardStatusExpired           CardStatus = "EXPIRED"
)

// AllCardStatuses lists every lifecycle status in declaration order.
var AllCardStatuses = []CardStatus{
	CardStatusPendingActivation,
	CardStatusActive,
	CardStatusPendingBlock,
	CardStatusBlocked,
	CardStatusPendingUnblock,
	CardStatusCancelled,
	CardStatusExpired,
}

var validCardStatuses = func() map[CardStatus]bool {
	m := make(map[CardStatus]bool, len(AllCardStatuses))
	for _, s := range AllCardStatuses {
		m[s] = true
	}
	return m
}()

// NewCardStatus creates a validated CardStatus from a string.
func NewCardStatus(s string) (CardStatus, error) {
	cs := CardStatus(s)
	if !validCardStatuses[cs] {
		return "", fmt.Errorf("invalid card status: %q", s)
	}
	return cs, nil
}

// String returns the string representation of the CardStatus.
func (cs CardStatus) String() string {
	return string(cs)
}

// IsTerminal reports whether no trigger can move a card out of this status.
func (cs CardStatus) IsTerminal() bool {
	return cs == CardStatusCancelled || cs == CardStatusExpired
}

// IsPending reports whether the status is an intermediate review state.
func (cs CardStatus) IsPending() bool {
	switch cs {
	case CardStatusPendingActivation, CardStatusPendingBlock, CardStatusPendingUnblock:
		return true
	default:
		return false
	}
}
