package dto

import (
	"time"

	"github.com/bibbank/card-lifecycle/internal/domain/model"
)

// FromCard maps a card aggregate to its response DTO.
func FromCard(card model.Card) CardResponse {
	return CardResponse{
		ID:             card.ID(),
		CardNumber:     card.CardNumber().Masked(),
		LastFour:       card.CardNumber().LastFour(),
		CardHolderName: card.CardHolderName(),
		UserID:         card.UserID(),
		CardType:       card.CardType().String(),
		Status:         card.Status().String(),
		ExpiryDate:     card.ExpiryDate().Format(time.DateOnly),
		CreditLimit:    card.CreditLimit(),
		AvailableLimit: card.AvailableLimit(),
		Version:        card.Version(),
		CreatedAt:      card.CreatedAt(),
		UpdatedAt:      card.UpdatedAt(),
	}
}

// FromCards maps a slice of card aggregates.
func FromCards(cards []model.Card) CardListResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, FromCard(c))
	}
	return CardListResponse{Cards: out}
}
