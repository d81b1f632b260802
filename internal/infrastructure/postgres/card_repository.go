package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/bibbank/card-lifecycle/internal/domain/model"
	"github.com/bibbank/card-lifecycle/internal/domain/port"
	"github.com/bibbank/card-lifecycle/internal/domain/valueobject"
	pkgpostgres "github.com/bibbank/card-lifecycle/pkg/postgres"
)

// cardNumberConstraint is the unique constraint on cards.card_number.
const cardNumberConstraint = "cards_card_number_key"

const selectCardColumns = `
	SELECT id, card_number, card_holder_name, user_id, card_type,
		   credit_limit, available_limit, expiry_date, status,
		   version, created_at, updated_at
	FROM cards`

// DB is satisfied by *pgxpool.Pool.
type DB interface {
	pkgpostgres.Querier
	Ping(ctx context.Context) error
}

var _ port.CardRepository = (*CardRepository)(nil)

// CardRepository implements the CardRepository port using PostgreSQL.
type CardRepository struct {
	pool DB
}

// NewCardRepository creates a new CardRepository.
func NewCardRepository(pool DB) *CardRepository {
	return &CardRepository{pool: pool}
}

// Create inserts a newly issued card.
func (r *CardRepository) Create(ctx context.Context, card model.Card) error {
	query := `
		INSERT INTO cards (
			id, card_number, card_holder_name, user_id, card_type,
			credit_limit, available_limit, expiry_date, status,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := r.pool.Exec(ctx, query,
		card.ID(),
		card.CardNumber().Value(),
		card.CardHolderName(),
		card.UserID(),
		card.CardType().String(),
		card.CreditLimit(),
		card.AvailableLimit(),
		card.ExpiryDate(),
		card.Status().String(),
		card.Version(),
		card.CreatedAt(),
		card.UpdatedAt(),
	)
	if pkgpostgres.IsUniqueViolation(err, cardNumberConstraint) {
		return fmt.Errorf("%w: ending %s", port.ErrDuplicateCardNumber, card.CardNumber().LastFour())
	}
	if err != nil {
		return fmt.Errorf("failed to insert card: %w", err)
	}

	return nil
}

// Save writes a transitioned card if the stored row still holds expectedPrior
// and the previous version.
func (r *CardRepository) Save(ctx context.Context, card model.Card, expectedPrior valueobject.CardStatus) error {
	query := `
		UPDATE cards SET
			status = $1,
			available_limit = $2,
			version = $3,
			updated_at = $4
		WHERE id = $5 AND status = $6 AND version = $7
	`

	result, err := r.pool.Exec(ctx, query,
		card.Status().String(),
		card.AvailableLimit(),
		card.Version(),
		card.UpdatedAt(),
		card.ID(),
		expectedPrior.String(),
		card.Version()-1,
	)
	if err != nil {
		return fmt.Errorf("failed to update card: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM cards WHERE id = $1)`, card.ID()).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check card existence: %w", err)
		}
		if !exists {
			return port.ErrCardNotFound
		}
		return fmt.Errorf("%w: card %s is no longer %s at version %d", port.ErrConflict, card.ID(), expectedPrior, card.Version()-1)
	}

	return nil
}

// FindByID retrieves a card by its unique identifier.
func (r *CardRepository) FindByID(ctx context.Context, id uuid.UUID) (model.Card, error) {
	card, err := scanCard(r.pool.QueryRow(ctx, selectCardColumns+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Card{}, port.ErrCardNotFound
	}
	return card, err
}

// FindByUserID retrieves all cards belonging to a user, oldest first.
func (r *CardRepository) FindByUserID(ctx context.Context, userID string) ([]model.Card, error) {
	return r.queryCards(ctx, selectCardColumns+` WHERE user_id = $1 ORDER BY created_at, id`, userID)
}

// FindByStatus retrieves all cards in status, oldest first.
func (r *CardRepository) FindByStatus(ctx context.Context, status valueobject.CardStatus) ([]model.Card, error) {
	return r.queryCards(ctx, selectCardColumns+` WHERE status = $1 ORDER BY created_at, id`, status.String())
}

// FindByStatusNot retrieves all cards not in status, oldest first.
func (r *CardRepository) FindByStatusNot(ctx context.Context, status valueobject.CardStatus) ([]model.Card, error) {
	return r.queryCards(ctx, selectCardColumns+` WHERE status <> $1 ORDER BY created_at, id`, status.String())
}

// Delete removes a card row.
func (r *CardRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	if result.RowsAffected() == 0 {
		return port.ErrCardNotFound
	}
	return nil
}

// Ping checks database connectivity.
func (r *CardRepository) Ping(ctx context.Context) error {
	return pkgpostgres.HealthCheck(ctx, r.pool)
}

func (r *CardRepository) queryCards(ctx context.Context, query string, args ...any) ([]model.Card, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cards: %w", err)
	}
	defer rows.Close()

	cards := make([]model.Card, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return cards, nil
}

// scanCard scans a single row into a Card aggregate. pgx.ErrNoRows is
// returned unwrapped so callers can map it.
func scanCard(row pgx.Row) (model.Card, error) {
	var (
		id             uuid.UUID
		number         string
		holderName     string
		userID         string
		cardTypeStr    string
		creditLimit    decimal.NullDecimal
		availableLimit decimal.Decimal
		expiryDate     time.Time
		statusStr      string
		version        int
		createdAt      time.Time
		updatedAt      time.Time
	)

	err := row.Scan(
		&id, &number, &holderName, &userID, &cardTypeStr,
		&creditLimit, &availableLimit, &expiryDate, &statusStr,
		&version, &createdAt, &updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Card{}, err
	}
	if err != nil {
		return model.Card{}, fmt.Errorf("failed to scan card: %w", err)
	}

	cardType, err := valueobject.NewCardType(cardTypeStr)
	if err != nil {
		return model.Card{}, fmt.Errorf("invalid card type in DB: %w", err)
	}

	status, err := valueobject.NewCardStatus(statusStr)
	if err != nil {
		return model.Card{}, fmt.Errorf("invalid card status in DB: %w", err)
	}

	cardNumber, err := valueobject.NewCardNumber(number)
	if err != nil {
		return model.Card{}, fmt.Errorf("invalid card number in DB: %w", err)
	}

	return model.Reconstruct(
		id, cardNumber, holderName, userID,
		cardType, creditLimit, availableLimit, expiryDate,
		status, version, createdAt.UTC(), updatedAt.UTC(),
	), nil
}
