package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/card-lifecycle/internal/application/usecase"
	"github.com/bibbank/card-lifecycle/internal/domain/event"
	"github.com/bibbank/card-lifecycle/internal/domain/model"
	"github.com/bibbank/card-lifecycle/internal/domain/valueobject"
	"github.com/bibbank/card-lifecycle/pkg/testutil"
)

func newSweeper(f *fixture) *usecase.SweepExpiredCardsUseCase {
	return usecase.NewSweepExpiredCardsUseCase(f.repo, f.engine, f.clock, nil, f.logger, 2)
}

func TestSweepExpiredCards_NothingDue(t *testing.T) {
	f := newFixture(t)
	f.issue(t, valueobject.CardStatusActive)

	// The expiry date itself is still valid.
	f.clock.Set(testutil.TestNow.AddDate(model.ValidityYears, 0, 0))

	result, err := newSweeper(f).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Scanned)
	assert.Equal(t, 0, result.Expired)
	assert.Empty(t, f.publisher.events())
}

func TestSweepExpiredCards_ExpiresLapsedActiveCards(t *testing.T) {
	f := newFixture(t)
	first := f.issue(t, valueobject.CardStatusActive)
	second := f.issue(t, valueobject.CardStatusActive)
	pending := f.issue(t, valueobject.CardStatusPendingActivation)
	blocked := f.issue(t, valueobject.CardStatusActive)
	_, err := f.change(context.Background(), blocked.ID(), valueobject.TriggerBlock)
	require.NoError(t, err)
	f.publisher.published = nil

	f.clock.Set(testutil.TestNow.AddDate(model.ValidityYears, 0, 1))

	result, err := newSweeper(f).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Scanned)
	assert.Equal(t, 2, result.Expired)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, f.clock.Now(), result.StartedAt)

	assert.Equal(t, valueobject.CardStatusExpired, f.stored(t, first.ID()).Status())
	assert.Equal(t, valueobject.CardStatusExpired, f.stored(t, second.ID()).Status())
	assert.Equal(t, valueobject.CardStatusPendingActivation, f.stored(t, pending.ID()).Status())
	assert.Equal(t, valueobject.CardStatusBlocked, f.stored(t, blocked.ID()).Status())
	assert.Equal(t, 2, f.publisher.count(event.KindExpired))

	// A second run finds nothing left to do.
	again, err := newSweeper(f).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again.Scanned)
	assert.Equal(t, 0, again.Expired)
	assert.Equal(t, 2, f.publisher.count(event.KindExpired))
}

func TestSweepExpiredCards_IsolatesFailures(t *testing.T) {
	f := newFixture(t)
	broken := f.issue(t, valueobject.CardStatusActive)
	healthy := f.issue(t, valueobject.CardStatusActive)

	f.repo.beforeSave = func(_ context.Context, card model.Card) error {
		if card.ID() == broken.ID() {
			return errStoreDown
		}
		return nil
	}
	f.clock.Set(testutil.TestNow.AddDate(model.ValidityYears, 1, 0))

	result, err := newSweeper(f).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Scanned)
	assert.Equal(t, 1, result.Expired)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, valueobject.CardStatusActive, f.stored(t, broken.ID()).Status())
	assert.Equal(t, valueobject.CardStatusExpired, f.stored(t, healthy.ID()).Status())
	assert.Contains(t, f.logs.String(), "failed to expire card")
}

func TestSweepExpiredCards_CountsDegradedExpiries(t *testing.T) {
	f := newFixture(t)
	card := f.issue(t, valueobject.CardStatusActive)
	f.publisher.publishErr = errors.New("broker unreachable")
	f.clock.Set(testutil.TestNow.AddDate(model.ValidityYears, 0, 2))

	result, err := newSweeper(f).Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Expired)
	assert.Equal(t, 1, result.Degraded)
	assert.Equal(t, valueobject.CardStatusExpired, f.stored(t, card.ID()).Status())
	assert.Equal(t, 1, f.outbox.Pending())
}

func TestSweepExpiredCards_ScanFailure(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newSweeper(f).Execute(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
