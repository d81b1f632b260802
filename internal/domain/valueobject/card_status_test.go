package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCardStatus(t *testing.T) {
	for _, s := range AllCardStatuses {
		got, err := NewCardStatus(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := NewCardStatus("FROZEN")
	assert.Error(t, err)
}

func TestCardStatus_IsPending(t *testing.T) {
	assert.True(t, CardStatusPendingActivation.IsPending())
	assert.True(t, CardStatusPendingBlock.IsPending())
	assert.True(t, CardStatusPendingUnblock.IsPending())
	assert.False(t, CardStatusActive.IsPending())
	assert.False(t, CardStatusExpired.IsPending())
}

func TestNewCardType(t *testing.T) {
	ct, err := NewCardType("CREDIT")
	require.NoError(t, err)
	assert.True(t, ct.IsCredit())

	ct, err = NewCardType("DEBIT")
	require.NoError(t, err)
	assert.False(t, ct.IsCredit())

	_, err = NewCardType("PREPAID")
	assert.ErrorIs(t, err, ErrUnsupportedCardType)
}
