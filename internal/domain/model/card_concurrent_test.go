package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bibbank/card-lifecycle/internal/domain/valueobject"
)

// TestCard_ConcurrentTransitions applies transitions to the same card value
// from many goroutines. Card uses value receivers, so each goroutine works on
// its own copy; the race detector must stay quiet and the original must not change.
func TestCard_ConcurrentTransitions(t *testing.T) {
	card := newTestCard(t, valueobject.CardTypeCredit, valueobject.CardStatusActive)

	const goroutines = 100

	type result struct {
		blocked   Card
		cancelled Card
		blockErr  error
		cancelErr error
	}

	results := make([]result, goroutines)
	var wg sync.WaitGroup
	wg.Add(goroutines * 2)

	for i := 0; i < goroutines; i++ {
		go func(idx int) {
			defer wg.Done()
			results[idx].blocked, results[idx].blockErr = card.Block(testNow)
		}(i)

		go func(idx int) {
			defer wg.Done()
			results[idx].cancelled, results[idx].cancelErr = card.Cancel(testNow)
		}(i)
	}

	wg.Wait()

	for i, r := range results {
		if assert.NoError(t, r.blockErr, "goroutine %d", i) {
			assert.Equal(t, valueobject.CardStatusBlocked, r.blocked.Status())
			assert.Len(t, r.blocked.DomainEvents(), 1)
		}
		if assert.NoError(t, r.cancelErr, "goroutine %d", i) {
			assert.Equal(t, valueobject.CardStatusCancelled, r.cancelled.Status())
			assert.Len(t, r.cancelled.DomainEvents(), 1)
		}
	}

	assert.Equal(t, valueobject.CardStatusActive, card.Status())
	assert.Empty(t, card.DomainEvents())
	assert.Equal(t, 1, card.Version())
}
