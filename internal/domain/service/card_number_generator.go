package service

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"

	"github.com/bibbank/card-lifecycle/internal/domain/valueobject"
)

// CardNumberPrefix is the mock network identifier every generated number starts with.
const CardNumberPrefix = "4"

var suffixSpace = new(big.Int).Exp(big.NewInt(10), big.NewInt(valueobject.CardNumberLength-int64(len(CardNumberPrefix))), nil)

// RandomCardNumberGenerator draws the 15 digits after the prefix uniformly
// from a cryptographic source. It is safe for concurrent use.
type RandomCardNumberGenerator struct {
	source io.Reader
}

// NewRandomCardNumberGenerator creates a generator backed by crypto/rand.
func NewRandomCardNumberGenerator() *RandomCardNumberGenerator {
	return &RandomCardNumberGenerator{source: rand.Reader}
}

// NewCardNumberGeneratorFromReader creates a generator reading from source.
// Intended for deterministic tests.
func NewCardNumberGeneratorFromReader(source io.Reader) *RandomCardNumberGenerator {
	return &RandomCardNumberGenerator{source: source}
}

// Generate returns a new candidate card number.
func (g *RandomCardNumberGenerator) Generate() (valueobject.CardNumber, error) {
	n, err := rand.Int(g.source, suffixSpace)
	if err != nil {
		return valueobject.CardNumber{}, fmt.Errorf("failed to generate card number digits: %w", err)
	}

	return valueobject.NewCardNumber(fmt.Sprintf("%s%015d", CardNumberPrefix, n))
}
