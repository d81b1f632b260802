package grpc

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/card-lifecycle/internal/application/dto"
	"github.com/bibbank/card-lifecycle/internal/application/usecase"
	"github.com/bibbank/card-lifecycle/internal/domain/event"
	"github.com/bibbank/card-lifecycle/internal/domain/valueobject"
)

// Compile-time assertion that CardServiceHandler implements CardServiceServer.
var _ CardServiceServer = (*CardServiceHandler)(nil)

// CardServiceHandler implements the gRPC CardServiceServer interface.
type CardServiceHandler struct {
	UnimplementedCardServiceServer
	requestCardUC *usecase.IssueCardUseCase
	issueCardUC   *usecase.IssueCardUseCase
	changeUC      *usecase.ChangeCardStatusUseCase
	getCardUC     *usecase.GetCardUseCase
	listCardsUC   *usecase.ListCardsUseCase
	deleteCardUC  *usecase.DeleteCardUseCase
	logger        *slog.Logger
}

// UseCases groups the application services the handler delegates to.
type UseCases struct {
	RequestCard  *usecase.IssueCardUseCase
	IssueCard    *usecase.IssueCardUseCase
	ChangeStatus *usecase.ChangeCardStatusUseCase
	GetCard      *usecase.GetCardUseCase
	ListCards    *usecase.ListCardsUseCase
	DeleteCard   *usecase.DeleteCardUseCase
}

// NewCardServiceHandler creates a new CardServiceHandler.
func NewCardServiceHandler(uc UseCases, logger *slog.Logger) *CardServiceHandler {
	return &CardServiceHandler{
		requestCardUC: uc.RequestCard,
		issueCardUC:   uc.IssueCard,
		changeUC:      uc.ChangeStatus,
		getCardUC:     uc.GetCard,
		listCardsUC:   uc.ListCards,
		deleteCardUC:  uc.DeleteCard,
		logger:        logger,
	}
}

// RequestNewCard creates a card awaiting activation.
func (h *CardServiceHandler) RequestNewCard(ctx context.Context, req *IssueCardRequest) (*CardOperationResponse, error) {
	return h.issue(ctx, h.requestCardUC, req)
}

// IssueCard creates a card that is active immediately.
func (h *CardServiceHandler) IssueCard(ctx context.Context, req *IssueCardRequest) (*CardOperationResponse, error) {
	return h.issue(ctx, h.issueCardUC, req)
}

func (h *CardServiceHandler) issue(ctx context.Context, uc *usecase.IssueCardUseCase, req *IssueCardRequest) (*CardOperationResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if strings.TrimSpace(req.CardHolderName) == "" {
		return nil, status.Error(codes.InvalidArgument, "card_holder_name is required")
	}
	if strings.TrimSpace(req.UserID) == "" {
		return nil, status.Error(codes.InvalidArgument, "user_id is required")
	}
	if req.CardType == "" {
		return nil, status.Error(codes.InvalidArgument, "card_type is required")
	}

	var creditLimit decimal.NullDecimal
	if req.CreditLimit != "" {
		limit, err := decimal.NewFromString(req.CreditLimit)
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid credit_limit: %v", err)
		}
		creditLimit = decimal.NewNullDecimal(limit)
	}

	resp, err := uc.Execute(ctx, dto.IssueCardRequest{
		CardHolderName: req.CardHolderName,
		UserID:         req.UserID,
		CardType:       strings.ToUpper(req.CardType),
		CreditLimit:    creditLimit,
	})
	if err != nil {
		return nil, h.toStatus(ctx, "issue card", err)
	}

	return toOperationResponse(resp, event.KindIssued), nil
}

// ActivateCard activates a card awaiting activation.
func (h *CardServiceHandler) ActivateCard(ctx context.Context, req *CardIDRequest) (*CardOperationResponse, error) {
	return h.transition(ctx, req, valueobject.TriggerActivate, event.KindActivated)
}

// RequestBlockCard records a block request for an active card.
func (h *CardServiceHandler) RequestBlockCard(ctx context.Context, req *CardIDRequest) (*CardOperationResponse, error) {
	return h.transition(ctx, req, valueobject.TriggerRequestBlock, event.KindBlockRequested)
}

// BlockCard blocks an active card or confirms a pending block.
func (h *CardServiceHandler) BlockCard(ctx context.Context, req *CardIDRequest) (*CardOperationResponse, error) {
	return h.transition(ctx, req, valueobject.TriggerBlock, event.KindBlocked)
}

// RequestUnblockCard records an unblock request for a blocked card.
func (h *CardServiceHandler) RequestUnblockCard(ctx context.Context, req *CardIDRequest) (*CardOperationResponse, error) {
	return h.transition(ctx, req, valueobject.TriggerRequestUnblock, event.KindUnblockRequested)
}

// UnblockCard returns a blocked card to ACTIVE.
func (h *CardServiceHandler) UnblockCard(ctx context.Context, req *CardIDRequest) (*CardOperationResponse, error) {
	return h.transition(ctx, req, valueobject.TriggerUnblock, event.KindUnblocked)
}

// CancelCard cancels a card permanently.
func (h *CardServiceHandler) CancelCard(ctx context.Context, req *CardIDRequest) (*CardOperationResponse, error) {
	return h.transition(ctx, req, valueobject.TriggerCancel, event.KindCancelled)
}

func (h *CardServiceHandler) transition(ctx context.Context, req *CardIDRequest, trigger valueobject.Trigger, kind event.Kind) (*CardOperationResponse, error) {
	cardID, err := parseCardID(req)
	if err != nil {
		return nil, err
	}

	resp, err := h.changeUC.Execute(ctx, dto.ChangeCardStatusRequest{
		CardID:  cardID,
		Trigger: trigger.String(),
	})
	if err != nil {
		return nil, h.toStatus(ctx, trigger.String()+" card", err)
	}

	return toOperationResponse(resp, kind), nil
}

// GetCard returns a single card.
func (h *CardServiceHandler) GetCard(ctx context.Context, req *CardIDRequest) (*GetCardResponse, error) {
	cardID, err := parseCardID(req)
	if err != nil {
		return nil, err
	}

	resp, err := h.getCardUC.Execute(ctx, dto.GetCardRequest{CardID: cardID})
	if err != nil {
		return nil, h.toStatus(ctx, "get card", err)
	}

	return &GetCardResponse{Card: toCardMsg(resp)}, nil
}

// GetCardsByUser lists the cards owned by a user.
func (h *CardServiceHandler) GetCardsByUser(ctx context.Context, req *GetCardsByUserRequest) (*ListCardsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	resp, err := h.listCardsUC.ByUser(ctx, dto.ListCardsByUserRequest{UserID: req.UserID})
	if err != nil {
		return nil, h.toStatus(ctx, "list cards by user", err)
	}

	return toListResponse(resp), nil
}

// GetNonActiveCards lists every card that is not ACTIVE.
func (h *CardServiceHandler) GetNonActiveCards(ctx context.Context, _ *GetNonActiveCardsRequest) (*ListCardsResponse, error) {
	resp, err := h.listCardsUC.NonActive(ctx)
	if err != nil {
		return nil, h.toStatus(ctx, "list non-active cards", err)
	}

	return toListResponse(resp), nil
}

// DeleteCard removes a card record without a lifecycle transition.
func (h *CardServiceHandler) DeleteCard(ctx context.Context, req *DeleteCardRequest) (*DeleteCardResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	cardID, err := uuid.Parse(req.CardID)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid card_id: %v", err)
	}

	if err := h.deleteCardUC.Execute(ctx, dto.DeleteCardRequest{CardID: cardID, Reason: req.Reason}); err != nil {
		return nil, h.toStatus(ctx, "delete card", err)
	}

	return &DeleteCardResponse{CardID: cardID.String(), Deleted: true}, nil
}

func parseCardID(req *CardIDRequest) (uuid.UUID, error) {
	if req == nil {
		return uuid.Nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := uuid.Parse(req.CardID)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid card_id: %v", err)
	}
	return id, nil
}

func toOperationResponse(resp dto.CardOperationResponse, kind event.Kind) *CardOperationResponse {
	return &CardOperationResponse{
		Card:          toCardMsg(resp.Card),
		Message:       kind.Message(),
		Degraded:      resp.Degraded,
		DeliveryError: resp.DeliveryError,
	}
}

func toListResponse(resp dto.CardListResponse) *ListCardsResponse {
	cards := make([]*CardMsg, 0, len(resp.Cards))
	for _, c := range resp.Cards {
		cards = append(cards, toCardMsg(c))
	}
	return &ListCardsResponse{Cards: cards}
}

func toCardMsg(c dto.CardResponse) *CardMsg {
	msg := &CardMsg{
		ID:             c.ID.String(),
		CardNumber:     c.CardNumber,
		LastFour:       c.LastFour,
		CardHolderName: c.CardHolderName,
		UserID:         c.UserID,
		CardType:       c.CardType,
		Status:         c.Status,
		AvailableLimit: c.AvailableLimit.StringFixed(2),
		ExpiryDate:     c.ExpiryDate,
		Version:        c.Version,
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      c.UpdatedAt.Format(time.RFC3339),
	}
	if c.CreditLimit.Valid {
		msg.CreditLimit = c.CreditLimit.Decimal.StringFixed(2)
	}
	return msg
}
