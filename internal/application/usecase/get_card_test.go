package usecase_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/card-lifecycle/internal/application/dto"
	"github.com/bibbank/card-lifecycle/internal/application/usecase"
	"github.com/bibbank/card-lifecycle/internal/domain/event"
	"github.com/bibbank/card-lifecycle/internal/domain/port"
	"github.com/bibbank/card-lifecycle/internal/domain/valueobject"
	"github.com/bibbank/card-lifecycle/pkg/testutil"
)

func TestGetCard(t *testing.T) {
	f := newFixture(t)
	card := f.issue(t, valueobject.CardStatusActive)
	uc := usecase.NewGetCardUseCase(f.repo)

	resp, err := uc.Execute(context.Background(), dto.GetCardRequest{CardID: card.ID()})
	require.NoError(t, err)
	assert.Equal(t, card.ID(), resp.ID)
	assert.Equal(t, card.CardNumber().LastFour(), resp.LastFour)
	assert.NotContains(t, resp.CardNumber, card.CardNumber().Value())

	_, err = uc.Execute(context.Background(), dto.GetCardRequest{CardID: uuid.New()})
	assert.ErrorIs(t, err, port.ErrCardNotFound)
}

func TestListCards_ByUser(t *testing.T) {
	f := newFixture(t)
	a := f.issue(t, valueobject.CardStatusActive)
	b := f.issue(t, valueobject.CardStatusPendingActivation)
	uc := usecase.NewListCardsUseCase(f.repo)

	resp, err := uc.ByUser(context.Background(), dto.ListCardsByUserRequest{UserID: testutil.TestUserID1})
	require.NoError(t, err)
	require.Len(t, resp.Cards, 2)
	assert.ElementsMatch(t, []uuid.UUID{a.ID(), b.ID()}, []uuid.UUID{resp.Cards[0].ID, resp.Cards[1].ID})

	resp, err = uc.ByUser(context.Background(), dto.ListCardsByUserRequest{UserID: "nobody"})
	require.NoError(t, err)
	assert.Empty(t, resp.Cards)

	_, err = uc.ByUser(context.Background(), dto.ListCardsByUserRequest{UserID: "  "})
	assert.ErrorIs(t, err, usecase.ErrInvalidRequest)
}

func TestListCards_NonActive(t *testing.T) {
	f := newFixture(t)
	f.issue(t, valueobject.CardStatusActive)
	pending := f.issue(t, valueobject.CardStatusPendingActivation)
	cancelled := f.issue(t, valueobject.CardStatusActive)
	_, err := f.change(context.Background(), cancelled.ID(), valueobject.TriggerCancel)
	require.NoError(t, err)

	resp, err := usecase.NewListCardsUseCase(f.repo).NonActive(context.Background())
	require.NoError(t, err)

	var ids []uuid.UUID
	for _, c := range resp.Cards {
		ids = append(ids, c.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{pending.ID(), cancelled.ID()}, ids)
}

func TestDeleteCard(t *testing.T) {
	f := newFixture(t)
	card := f.issue(t, valueobject.CardStatusActive)
	uc := usecase.NewDeleteCardUseCase(f.repo, f.logger)

	err := uc.Execute(context.Background(), dto.DeleteCardRequest{CardID: card.ID(), Reason: "duplicate record"})
	require.NoError(t, err)

	_, err = f.repo.FindByID(context.Background(), card.ID())
	assert.ErrorIs(t, err, port.ErrCardNotFound)

	assert.Empty(t, f.publisher.events())
	assert.Equal(t, 0, f.publisher.count(event.KindCancelled))
	assert.Contains(t, f.logs.String(), `"level":"WARN"`)
	assert.Contains(t, f.logs.String(), "card record deleted outside the lifecycle")
	assert.Contains(t, f.logs.String(), "duplicate record")

	err = uc.Execute(context.Background(), dto.DeleteCardRequest{CardID: card.ID()})
	assert.ErrorIs(t, err, port.ErrCardNotFound)
}
