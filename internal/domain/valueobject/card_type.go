package valueobject

import (
	"errors"
	"fmt"
)

// ErrUnsupportedCardType is returned when issuance is requested for a type
// outside CREDIT and DEBIT.
var ErrUnsupportedCardType = errors.New("unsupported card type")

// CardType represents the type of card issued.
// This is an immutable value object.
type CardType string

const (
	CardTypeCredit CardType = "CREDIT"
	CardTypeDebit  CardType = "DEBIT"
)

// NewCardType creates a validated CardType from a string.
func NewCardType(s string) (CardType, error) {
	ct := CardType(s)
	switch ct {
	case CardTypeCredit, CardTypeDebit:
		return ct, nil
	default:
		return "", fmt.Errorf("%w: %q, must be CREDIT or DEBIT", ErrUnsupportedCardType, s)
	}
}

// String returns the string representation of the CardType.
func (ct CardType) String() string {
	return string(ct)
}

// IsCredit returns true if this is a credit card.
func (ct CardType) IsCredit() bool {
	return ct == CardTypeCredit
}
