// Package memory holds in-process implementations of the storage ports,
// used when STORE_DRIVER=memory and by use-case tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/bibbank/card-lifecycle/internal/domain/model"
	"github.com/bibbank/card-lifecycle/internal/domain/port"
	"github.com/bibbank/card-lifecycle/internal/domain/valueobject"
)

// CardRepository is a mutex guarded map honouring the same compare-and-save
// and unique-number rules as the PostgreSQL store.
type CardRepository struct {
	mu       sync.RWMutex
	cards    map[uuid.UUID]model.Card
	byNumber map[string]uuid.UUID
}

// NewCardRepository creates an empty CardRepository.
func NewCardRepository() *CardRepository {
	return &CardRepository{
		cards:    make(map[uuid.UUID]model.Card),
		byNumber: make(map[string]uuid.UUID),
	}
}

func (r *CardRepository) FindByID(ctx context.Context, id uuid.UUID) (model.Card, error) {
	if err := ctx.Err(); err != nil {
		return model.Card{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	card, ok := r.cards[id]
	if !ok {
		return model.Card{}, port.ErrCardNotFound
	}
	return card, nil
}

func (r *CardRepository) FindByUserID(ctx context.Context, userID string) ([]model.Card, error) {
	return r.filter(ctx, func(c model.Card) bool { return c.UserID() == userID })
}

func (r *CardRepository) FindByStatus(ctx context.Context, status valueobject.CardStatus) ([]model.Card, error) {
	return r.filter(ctx, func(c model.Card) bool { return c.Status() == status })
}

func (r *CardRepository) FindByStatusNot(ctx context.Context, status valueobject.CardStatus) ([]model.Card, error) {
	return r.filter(ctx, func(c model.Card) bool { return c.Status() != status })
}

func (r *CardRepository) Create(ctx context.Context, card model.Card) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byNumber[card.CardNumber().Value()]; taken {
		return fmt.Errorf("%w: ending %s", port.ErrDuplicateCardNumber, card.CardNumber().LastFour())
	}
	if _, exists := r.cards[card.ID()]; exists {
		return fmt.Errorf("card %s already exists", card.ID())
	}

	r.cards[card.ID()] = card.ClearEvents()
	r.byNumber[card.CardNumber().Value()] = card.ID()
	return nil
}

func (r *CardRepository) Save(ctx context.Context, card model.Card, expectedPrior valueobject.CardStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.cards[card.ID()]
	if !ok {
		return port.ErrCardNotFound
	}
	if stored.Status() != expectedPrior || stored.Version() != card.Version()-1 {
		return fmt.Errorf("%w: card %s is %s at version %d", port.ErrConflict, card.ID(), stored.Status(), stored.Version())
	}

	r.cards[card.ID()] = card.ClearEvents()
	return nil
}

func (r *CardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	card, ok := r.cards[id]
	if !ok {
		return port.ErrCardNotFound
	}
	delete(r.cards, id)
	delete(r.byNumber, card.CardNumber().Value())
	return nil
}

func (r *CardRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// filter returns matching cards ordered by creation time.
func (r *CardRepository) filter(ctx context.Context, keep func(model.Card) bool) ([]model.Card, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Card, 0)
	for _, c := range r.cards {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].ID().String() < out[j].ID().String()
		}
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})
	return out, nil
}
