package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/card-lifecycle/pkg/events"
	pkgpostgres "github.com/bibbank/card-lifecycle/pkg/postgres"
)

var _ events.OutboxRepository = (*OutboxRepository)(nil)

// OutboxRepository stores undelivered events in the outbox table.
type OutboxRepository struct {
	pool pkgpostgres.Querier
}

// NewOutboxRepository creates a new OutboxRepository.
func NewOutboxRepository(pool pkgpostgres.Querier) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// Store inserts entries, ignoring any whose event ID is already present.
func (r *OutboxRepository) Store(ctx context.Context, entries []events.OutboxEntry) error {
	query := `
		INSERT INTO outbox (id, aggregate_id, aggregate_type, event_type, payload, attempts, last_error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO NOTHING
	`

	for _, e := range entries {
		_, err := r.pool.Exec(ctx, query,
			e.ID, e.AggregateID, e.AggregateType, e.EventType,
			e.Payload, e.Attempts, e.LastError, e.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert outbox entry %s: %w", e.ID, err)
		}
	}
	return nil
}

// FetchUnpublished returns up to batchSize pending entries, oldest first.
func (r *OutboxRepository) FetchUnpublished(ctx context.Context, batchSize int) ([]events.OutboxEntry, error) {
	query := `
		SELECT id, aggregate_id, aggregate_type, event_type, payload,
			   attempts, last_error, created_at, published_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to query outbox: %w", err)
	}
	defer rows.Close()

	var entries []events.OutboxEntry
	for rows.Next() {
		var e events.OutboxEntry
		if err := rows.Scan(
			&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &e.Payload,
			&e.Attempts, &e.LastError, &e.CreatedAt, &e.PublishedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}

// MarkPublished stamps the given entries as delivered.
func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE outbox SET published_at = $1, attempts = attempts + 1 WHERE id = ANY($2)`,
		at, ids,
	)
	if err != nil {
		return fmt.Errorf("failed to mark outbox entries published: %w", err)
	}
	return nil
}

// MarkFailed records another failed delivery attempt.
func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE outbox SET attempts = attempts + 1, last_error = $1 WHERE id = $2`,
		reason, id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark outbox entry failed: %w", err)
	}
	return nil
}
