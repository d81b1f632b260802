package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/bibbank/card-lifecycle/internal/application/dto"
	"github.com/bibbank/card-lifecycle/internal/domain/model"
	"github.com/bibbank/card-lifecycle/internal/domain/valueobject"
)

// IssueCardUseCase handles the creation of new cards. Requested cards start
// in PENDING_ACTIVATION; directly issued cards start ACTIVE.
type IssueCardUseCase struct {
	engine             *LifecycleEngine
	initialStatus      valueobject.CardStatus
	defaultCreditLimit decimal.Decimal
}

// NewRequestCardUseCase creates the use case behind RequestNewCard.
func NewRequestCardUseCase(engine *LifecycleEngine, defaultCreditLimit decimal.Decimal) *IssueCardUseCase {
	return &IssueCardUseCase{
		engine:             engine,
		initialStatus:      valueobject.CardStatusPendingActivation,
		defaultCreditLimit: defaultCreditLimit,
	}
}

// NewIssueCardUseCase creates the use case behind the direct IssueCard operation.
func NewIssueCardUseCase(engine *LifecycleEngine, defaultCreditLimit decimal.Decimal) *IssueCardUseCase {
	return &IssueCardUseCase{
		engine:             engine,
		initialStatus:      valueobject.CardStatusActive,
		defaultCreditLimit: defaultCreditLimit,
	}
}

// Execute issues a new card.
func (uc *IssueCardUseCase) Execute(ctx context.Context, req dto.IssueCardRequest) (dto.CardOperationResponse, error) {
	cardType, err := valueobject.NewCardType(req.CardType)
	if err != nil {
		return dto.CardOperationResponse{}, err
	}

	result, err := uc.engine.Issue(ctx, model.NewCardParams{
		CardHolderName:     req.CardHolderName,
		UserID:             req.UserID,
		CardType:           cardType,
		CreditLimit:        req.CreditLimit,
		DefaultCreditLimit: uc.defaultCreditLimit,
		InitialStatus:      uc.initialStatus,
	})
	if err != nil {
		return dto.CardOperationResponse{}, fmt.Errorf("failed to issue card: %w", err)
	}

	return toOperationResponse(result), nil
}

func toOperationResponse(result TransitionResult) dto.CardOperationResponse {
	resp := dto.CardOperationResponse{
		Card:     dto.FromCard(result.Card),
		Degraded: result.Degraded(),
	}
	if result.DeliveryErr != nil {
		resp.DeliveryError = result.DeliveryErr.Error()
	}
	return resp
}

