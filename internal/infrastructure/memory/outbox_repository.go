package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bibbank/card-lifecycle/pkg/events"
)

// OutboxRepository keeps undelivered events in memory.
type OutboxRepository struct {
	mu      sync.Mutex
	entries map[uuid.UUID]events.OutboxEntry
	order   []uuid.UUID
}

// NewOutboxRepository creates an empty OutboxRepository.
func NewOutboxRepository() *OutboxRepository {
	return &OutboxRepository{entries: make(map[uuid.UUID]events.OutboxEntry)}
}

// Store inserts entries; an entry whose ID is already present is left as is.
func (r *OutboxRepository) Store(ctx context.Context, entries []events.OutboxEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range entries {
		if _, ok := r.entries[e.ID]; !ok {
			r.entries[e.ID] = e
			r.order = append(r.order, e.ID)
		}
	}
	return nil
}

func (r *OutboxRepository) FetchUnpublished(ctx context.Context, batchSize int) ([]events.OutboxEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []events.OutboxEntry
	for _, id := range r.order {
		if e := r.entries[id]; e.PublishedAt == nil {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if batchSize > 0 && len(out) > batchSize {
		out = out[:batchSize]
	}
	return out, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range ids {
		if e, ok := r.entries[id]; ok {
			published := at
			e.PublishedAt = &published
			r.entries[id] = e
		}
	}
	return nil
}

func (r *OutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[id]; ok {
		e.Attempts++
		e.LastError = reason
		r.entries[id] = e
	}
	return nil
}

// Pending returns the number of entries still awaiting delivery.
func (r *OutboxRepository) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, e := range r.entries {
		if e.PublishedAt == nil {
			n++
		}
	}
	return n
}
