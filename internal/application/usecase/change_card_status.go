package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/card-lifecycle/internal/application/dto"
	"github.com/bibbank/card-lifecycle/internal/domain/valueobject"
)

// ChangeCardStatusUseCase drives a single lifecycle trigger against a card.
type ChangeCardStatusUseCase struct {
	engine *LifecycleEngine
}

// NewChangeCardStatusUseCase creates a new ChangeCardStatusUseCase.
func NewChangeCardStatusUseCase(engine *LifecycleEngine) *ChangeCardStatusUseCase {
	return &ChangeCardStatusUseCase{engine: engine}
}

// Execute applies req.Trigger to the card. A stored change whose event could
// not be delivered is returned as a degraded success, not an error.
func (uc *ChangeCardStatusUseCase) Execute(ctx context.Context, req dto.ChangeCardStatusRequest) (dto.CardOperationResponse, error) {
	trigger, err := valueobject.NewTrigger(req.Trigger)
	if err != nil {
		return dto.CardOperationResponse{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	result, err := uc.engine.Transition(ctx, req.CardID, trigger)
	if err != nil {
		return dto.CardOperationResponse{}, fmt.Errorf("failed to %s card: %w", trigger, err)
	}

	return toOperationResponse(result), nil
}
