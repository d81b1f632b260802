package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IssueCardRequest is the input DTO for issuing a new card.
type IssueCardRequest struct {
	CardHolderName string              `json:"card_holder_name"`
	UserID         string              `json:"user_id"`
	CardType       string              `json:"card_type"`
	CreditLimit    decimal.NullDecimal `json:"credit_limit"`
}

// CardResponse is the general output DTO for card details.
// The card number is always masked.
type CardResponse struct {
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	CardNumber     string              `json:"card_number"`
	LastFour       string              `json:"last_four"`
	CardHolderName string              `json:"card_holder_name"`
	UserID         string              `json:"user_id"`
	CardType       string              `json:"card_type"`
	Status         string              `json:"status"`
	ExpiryDate     string              `json:"expiry_date"`
	CreditLimit    decimal.NullDecimal `json:"credit_limit"`
	AvailableLimit decimal.Decimal     `json:"available_limit"`
	Version        int                 `json:"version"`
	ID             uuid.UUID           `json:"id"`
}

// CardOperationResponse is returned by operations that create or transition a card.
// DeliveryError is set when the state change was stored but its event could not
// be delivered; the event is then queued for redelivery.
type CardOperationResponse struct {
	DeliveryError string       `json:"delivery_error,omitempty"`
	Card          CardResponse `json:"card"`
	Degraded      bool         `json:"degraded"`
}

// ChangeCardStatusRequest is the input DTO for any lifecycle trigger.
type ChangeCardStatusRequest struct {
	Trigger string    `json:"trigger"`
	CardID  uuid.UUID `json:"card_id"`
}

// GetCardRequest is the input DTO for retrieving a card.
type GetCardRequest struct {
	CardID uuid.UUID `json:"card_id"`
}

// ListCardsByUserRequest is the input DTO for listing a user's cards.
type ListCardsByUserRequest struct {
	UserID string `json:"user_id"`
}

// CardListResponse wraps a list of cards.
type CardListResponse struct {
	Cards []CardResponse `json:"cards"`
}

// DeleteCardRequest is the input DTO for the administrative delete.
type DeleteCardRequest struct {
	Reason string    `json:"reason"`
	CardID uuid.UUID `json:"card_id"`
}

// SweepResult summarises one expiry sweep run.
type SweepResult struct {
	StartedAt time.Time `json:"started_at"`
	Scanned   int       `json:"scanned"`
	Expired   int       `json:"expired"`
	Failed    int       `json:"failed"`
	Degraded  int       `json:"degraded"`
}

// RelayOutboxResult summarises one outbox relay run.
type RelayOutboxResult struct {
	Fetched   int `json:"fetched"`
	Published int `json:"published"`
	Failed    int `json:"failed"`
}
