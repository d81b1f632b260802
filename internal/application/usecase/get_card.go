package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/bibbank/card-lifecycle/internal/application/dto"
	"github.com/bibbank/card-lifecycle/internal/domain/port"
	"github.com/bibbank/card-lifecycle/internal/domain/valueobject"
)

// GetCardUseCase handles retrieval of card details.
type GetCardUseCase struct {
	cardRepo port.CardRepository
}

// NewGetCardUseCase creates a new GetCardUseCase.
func NewGetCardUseCase(cardRepo port.CardRepository) *GetCardUseCase {
	return &GetCardUseCase{
		cardRepo: cardRepo,
	}
}

// Execute retrieves card details by ID.
func (uc *GetCardUseCase) Execute(ctx context.Context, req dto.GetCardRequest) (dto.CardResponse, error) {
	card, err := uc.cardRepo.FindByID(ctx, req.CardID)
	if err != nil {
		return dto.CardResponse{}, fmt.Errorf("failed to find card: %w", err)
	}

	return dto.FromCard(card), nil
}

// ListCardsUseCase handles the list queries over cards.
type ListCardsUseCase struct {
	cardRepo port.CardRepository
}

// NewListCardsUseCase creates a new ListCardsUseCase.
func NewListCardsUseCase(cardRepo port.CardRepository) *ListCardsUseCase {
	return &ListCardsUseCase{
		cardRepo: cardRepo,
	}
}

// ByUser returns every card owned by req.UserID. An unknown user yields an empty list.
func (uc *ListCardsUseCase) ByUser(ctx context.Context, req dto.ListCardsByUserRequest) (dto.CardListResponse, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return dto.CardListResponse{}, fmt.Errorf("%w: user ID is required", ErrInvalidRequest)
	}

	cards, err := uc.cardRepo.FindByUserID(ctx, req.UserID)
	if err != nil {
		return dto.CardListResponse{}, fmt.Errorf("failed to list cards for user: %w", err)
	}

	return dto.FromCards(cards), nil
}

// NonActive returns every card whose status is not ACTIVE.
func (uc *ListCardsUseCase) NonActive(ctx context.Context) (dto.CardListResponse, error) {
	cards, err := uc.cardRepo.FindByStatusNot(ctx, valueobject.CardStatusActive)
	if err != nil {
		return dto.CardListResponse{}, fmt.Errorf("failed to list non-active cards: %w", err)
	}

	return dto.FromCards(cards), nil
}
