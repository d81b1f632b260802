package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/bibbank/card-lifecycle/internal/application/dto"
	"github.com/bibbank/card-lifecycle/internal/domain/model"
	"github.com/bibbank/card-lifecycle/internal/domain/port"
	"github.com/bibbank/card-lifecycle/internal/domain/valueobject"
)

// DefaultSweepConcurrency bounds how many expiries run at once.
const DefaultSweepConcurrency = 4

// SweepExpiredCardsUseCase expires ACTIVE cards whose expiry date has passed.
// One card failing does not stop the others.
type SweepExpiredCardsUseCase struct {
	cardRepo    port.CardRepository
	engine      *LifecycleEngine
	clock       port.Clock
	metrics     port.LifecycleMetrics
	logger      *slog.Logger
	concurrency int
}

// NewSweepExpiredCardsUseCase creates a new SweepExpiredCardsUseCase.
func NewSweepExpiredCardsUseCase(
	cardRepo port.CardRepository,
	engine *LifecycleEngine,
	clock port.Clock,
	metrics port.LifecycleMetrics,
	logger *slog.Logger,
	concurrency int,
) *SweepExpiredCardsUseCase {
	if concurrency <= 0 {
		concurrency = DefaultSweepConcurrency
	}
	if metrics == nil {
		metrics = port.NopMetrics{}
	}
	return &SweepExpiredCardsUseCase{
		cardRepo:    cardRepo,
		engine:      engine,
		clock:       clock,
		metrics:     metrics,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Execute runs one sweep. It returns an error only when the scan itself fails.
func (uc *SweepExpiredCardsUseCase) Execute(ctx context.Context) (dto.SweepResult, error) {
	now := uc.clock.Now()
	result := dto.SweepResult{StartedAt: now}

	active, err := uc.cardRepo.FindByStatus(ctx, valueobject.CardStatusActive)
	if err != nil {
		return result, fmt.Errorf("failed to scan active cards: %w", err)
	}
	result.Scanned = len(active)

	var lapsed []model.Card
	for _, card := range active {
		if card.IsExpiredAt(now) {
			lapsed = append(lapsed, card)
		}
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(uc.concurrency)

	for _, card := range lapsed {
		g.Go(func() error {
			res, err := uc.engine.Transition(ctx, card.ID(), valueobject.TriggerExpire)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Expired++
				if res.Degraded() {
					result.Degraded++
				}
			case errors.Is(err, valueobject.ErrInvalidTransition), errors.Is(err, port.ErrCardNotFound):
				// Changed or removed since the scan.
				uc.logger.Debug("skipping card no longer eligible for expiry", "card_id", card.ID(), "error", err)
			default:
				result.Failed++
				uc.logger.Error("failed to expire card", "card_id", card.ID(), "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	uc.metrics.SweepCompleted(ctx, result.Scanned, result.Expired, result.Failed)
	uc.logger.Info("expiry sweep completed",
		"scanned", result.Scanned,
		"expired", result.Expired,
		"failed", result.Failed,
		"degraded", result.Degraded,
	)

	return result, nil
}
