package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/card-lifecycle/internal/application/dto"
	"github.com/bibbank/card-lifecycle/internal/application/usecase"
	"github.com/bibbank/card-lifecycle/internal/domain/event"
	"github.com/bibbank/card-lifecycle/internal/domain/model"
	"github.com/bibbank/card-lifecycle/internal/domain/port"
	"github.com/bibbank/card-lifecycle/internal/domain/service"
	"github.com/bibbank/card-lifecycle/internal/domain/valueobject"
	"github.com/bibbank/card-lifecycle/internal/infrastructure/clock"
	"github.com/bibbank/card-lifecycle/internal/infrastructure/memory"
	"github.com/bibbank/card-lifecycle/pkg/testutil"
)

// --- Test doubles ---

type mockEventPublisher struct {
	mu         sync.Mutex
	published  []event.CardLifecycleEvent
	publishErr error
	block      bool
	ctxErrs    []error
}

func (m *mockEventPublisher) Publish(ctx context.Context, evt event.CardLifecycleEvent) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.ctxErrs = append(m.ctxErrs, ctx.Err())
	if m.publishErr != nil {
		return m.publishErr
	}
	m.published = append(m.published, evt)
	return nil
}

func (m *mockEventPublisher) events() []event.CardLifecycleEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]event.CardLifecycleEvent, len(m.published))
	copy(out, m.published)
	return out
}

func (m *mockEventPublisher) kinds() []event.Kind {
	var kinds []event.Kind
	for _, e := range m.events() {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

func (m *mockEventPublisher) count(kind event.Kind) int {
	n := 0
	for _, k := range m.kinds() {
		if k == kind {
			n++
		}
	}
	return n
}

// sequenceGenerator hands out numbers in order, repeating the last one.
type sequenceGenerator struct {
	mu      sync.Mutex
	numbers []string
	calls   int
}

func (g *sequenceGenerator) Generate() (valueobject.CardNumber, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	idx := g.calls
	if idx >= len(g.numbers) {
		idx = len(g.numbers) - 1
	}
	g.calls++
	return valueobject.NewCardNumber(g.numbers[idx])
}

// hookedRepository wraps the memory store so tests can inject store behaviour.
type hookedRepository struct {
	*memory.CardRepository
	beforeSave func(ctx context.Context, card model.Card) error
	afterSave  func(card model.Card)
	beforeFind func(ctx context.Context, id uuid.UUID) error
}

func (r *hookedRepository) Save(ctx context.Context, card model.Card, expectedPrior valueobject.CardStatus) error {
	if r.beforeSave != nil {
		if err := r.beforeSave(ctx, card); err != nil {
			return err
		}
	}
	if err := r.CardRepository.Save(ctx, card, expectedPrior); err != nil {
		return err
	}
	if r.afterSave != nil {
		r.afterSave(card)
	}
	return nil
}

func (r *hookedRepository) FindByID(ctx context.Context, id uuid.UUID) (model.Card, error) {
	if r.beforeFind != nil {
		if err := r.beforeFind(ctx, id); err != nil {
			return model.Card{}, err
		}
	}
	return r.CardRepository.FindByID(ctx, id)
}

var errStoreDown = errors.New("store unavailable")

// --- Fixture ---

type fixture struct {
	repo      *hookedRepository
	outbox    *memory.OutboxRepository
	publisher *mockEventPublisher
	clock     *clock.Fixed
	logs      *bytes.Buffer
	logger    *slog.Logger
	engine    *usecase.LifecycleEngine
}

func newFixture(t *testing.T, opts ...usecase.EngineOption) *fixture {
	t.Helper()
	return newFixtureWithGenerator(t, service.NewRandomCardNumberGenerator(), opts...)
}

func newFixtureWithGenerator(t *testing.T, gen port.CardNumberGenerator, opts ...usecase.EngineOption) *fixture {
	t.Helper()

	f := &fixture{
		repo:      &hookedRepository{CardRepository: memory.NewCardRepository()},
		outbox:    memory.NewOutboxRepository(),
		publisher: &mockEventPublisher{},
		clock:     clock.NewFixed(testutil.TestNow),
		logs:      &bytes.Buffer{},
	}
	f.logger = slog.New(slog.NewJSONHandler(f.logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	opts = append([]usecase.EngineOption{usecase.WithOutbox(f.outbox)}, opts...)
	f.engine = usecase.NewLifecycleEngine(f.repo, f.publisher, gen, f.clock, f.logger, opts...)
	return f
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// issue creates a card through the engine and resets the published events.
func (f *fixture) issue(t *testing.T, status valueobject.CardStatus) model.Card {
	t.Helper()

	var uc *usecase.IssueCardUseCase
	if status == valueobject.CardStatusActive {
		uc = usecase.NewIssueCardUseCase(f.engine, model.DefaultCreditLimit)
	} else {
		uc = usecase.NewRequestCardUseCase(f.engine, model.DefaultCreditLimit)
	}

	resp, err := uc.Execute(context.Background(), dto.IssueCardRequest{
		CardHolderName: "Margaret Hamilton",
		UserID:         testutil.TestUserID1,
		CardType:       "CREDIT",
	})
	require.NoError(t, err)

	card, err := f.repo.CardRepository.FindByID(context.Background(), resp.Card.ID)
	require.NoError(t, err)

	f.publisher.mu.Lock()
	f.publisher.published = nil
	f.publisher.ctxErrs = nil
	f.publisher.mu.Unlock()
	return card
}

func (f *fixture) change(ctx context.Context, id uuid.UUID, trigger valueobject.Trigger) (dto.CardOperationResponse, error) {
	return usecase.NewChangeCardStatusUseCase(f.engine).Execute(ctx, dto.ChangeCardStatusRequest{
		CardID:  id,
		Trigger: trigger.String(),
	})
}

func (f *fixture) stored(t *testing.T, id uuid.UUID) model.Card {
	t.Helper()
	card, err := f.repo.CardRepository.FindByID(context.Background(), id)
	require.NoError(t, err)
	return card
}
