package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bibbank/card-lifecycle/internal/application/dto"
	"github.com/bibbank/card-lifecycle/internal/domain/port"
	"github.com/bibbank/card-lifecycle/pkg/events"
)

// DefaultOutboxBatchSize is how many undelivered events a relay run picks up.
const DefaultOutboxBatchSize = 100

// RelayOutboxUseCase resends events whose first delivery failed.
type RelayOutboxUseCase struct {
	outbox    events.OutboxRepository
	publisher port.OutboxRelayPublisher
	clock     port.Clock
	metrics   port.LifecycleMetrics
	logger    *slog.Logger
	batchSize int
}

// NewRelayOutboxUseCase creates a new RelayOutboxUseCase.
func NewRelayOutboxUseCase(
	outbox events.OutboxRepository,
	publisher port.OutboxRelayPublisher,
	clock port.Clock,
	metrics port.LifecycleMetrics,
	logger *slog.Logger,
	batchSize int,
) *RelayOutboxUseCase {
	if batchSize <= 0 {
		batchSize = DefaultOutboxBatchSize
	}
	if metrics == nil {
		metrics = port.NopMetrics{}
	}
	return &RelayOutboxUseCase{
		outbox:    outbox,
		publisher: publisher,
		clock:     clock,
		metrics:   metrics,
		logger:    logger,
		batchSize: batchSize,
	}
}

// Execute publishes one batch of pending outbox entries in creation order.
func (uc *RelayOutboxUseCase) Execute(ctx context.Context) (dto.RelayOutboxResult, error) {
	entries, err := uc.outbox.FetchUnpublished(ctx, uc.batchSize)
	if err != nil {
		return dto.RelayOutboxResult{}, fmt.Errorf("failed to fetch outbox entries: %w", err)
	}

	result := dto.RelayOutboxResult{Fetched: len(entries)}
	if len(entries) == 0 {
		return result, nil
	}

	published := make([]uuid.UUID, 0, len(entries))
	for _, entry := range entries {
		if err := uc.publisher.PublishEntry(ctx, entry); err != nil {
			result.Failed++
			uc.logger.Warn("outbox relay failed to publish event",
				"error", err,
				"event_id", entry.ID,
				"event_type", entry.EventType,
				"attempts", entry.Attempts+1,
			)
			if markErr := uc.outbox.MarkFailed(ctx, entry.ID, err.Error()); markErr != nil {
				uc.logger.Error("failed to record outbox failure", "error", markErr, "event_id", entry.ID)
			}
			continue
		}
		published = append(published, entry.ID)
	}

	if len(published) > 0 {
		if err := uc.outbox.MarkPublished(ctx, published, uc.clock.Now()); err != nil {
			return result, fmt.Errorf("failed to mark outbox entries published: %w", err)
		}
	}
	result.Published = len(published)

	uc.metrics.OutboxRelayed(ctx, result.Published, result.Failed)
	uc.logger.Info("outbox relay completed",
		"fetched", result.Fetched,
		"published", result.Published,
		"failed", result.Failed,
	)

	return result, nil
}
