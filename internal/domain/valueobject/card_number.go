package valueobject

import (
	"fmt"
	"regexp"
)

// CardNumberLength is the number of digits in a generated card number.
const CardNumberLength = 16

var cardNumberRegex = regexp.MustCompile(`^4\d{15}$`)

// CardNumber is the primary account number assigned at issuance.
// This is an immutable value object.
type CardNumber struct {
	value string
}

// NewCardNumber validates s as a mock network number: "4" followed by 15 digits.
func NewCardNumber(s string) (CardNumber, error) {
	if !cardNumberRegex.MatchString(s) {
		return CardNumber{}, fmt.Errorf("card number must be 4 followed by 15 digits, got %d characters", len(s))
	}
	return CardNumber{value: s}, nil
}

// Value returns the full card number. Use it only at persistence boundaries.
func (cn CardNumber) Value() string {
	return cn.value
}

// LastFour returns the last four digits of the card number.
func (cn CardNumber) LastFour() string {
	if len(cn.value) < 4 {
		return ""
	}
	return cn.value[len(cn.value)-4:]
}

// IsZero reports whether the number has not been assigned.
func (cn CardNumber) IsZero() bool {
	return cn.value == ""
}

// Masked returns a masked card representation like **** **** **** 1234.
func (cn CardNumber) Masked() string {
	return fmt.Sprintf("**** **** **** %s", cn.LastFour())
}

// String returns the masked representation.
func (cn CardNumber) String() string {
	return cn.Masked()
}
