package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/card-lifecycle/internal/application/dto"
	"github.com/bibbank/card-lifecycle/internal/domain/port"
)

// DeleteCardUseCase removes a card record outside the lifecycle. No event is
// published; the removal is logged as destructive.
type DeleteCardUseCase struct {
	cardRepo port.CardRepository
	logger   *slog.Logger
}

// NewDeleteCardUseCase creates a new DeleteCardUseCase.
func NewDeleteCardUseCase(cardRepo port.CardRepository, logger *slog.Logger) *DeleteCardUseCase {
	return &DeleteCardUseCase{
		cardRepo: cardRepo,
		logger:   logger,
	}
}

// Execute deletes the card identified by req.CardID.
func (uc *DeleteCardUseCase) Execute(ctx context.Context, req dto.DeleteCardRequest) error {
	card, err := uc.cardRepo.FindByID(ctx, req.CardID)
	if err != nil {
		return fmt.Errorf("failed to find card: %w", err)
	}

	if err := uc.cardRepo.Delete(ctx, req.CardID); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	uc.logger.Warn("card record deleted outside the lifecycle",
		"card_id", card.ID(),
		"user_id", card.UserID(),
		"status", card.Status(),
		"reason", req.Reason,
	)

	return nil
}
