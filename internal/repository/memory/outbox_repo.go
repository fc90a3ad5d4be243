package memory

import (
	"context"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
)

type OutboxRepo struct {
	s *Store
}

func (r *OutboxRepo) Create(ctx context.Context, event *usecase.OutboxEvent) (*usecase.OutboxEvent, error) {
	const op = "memory.OutboxRepo.Create"

	state, err := txFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if err := r.s.fault(func(f Faults) error { return f.CreateEvent }); err != nil {
		return nil, e.Wrap(op, err)
	}

	r.s.mu.Lock()
	r.s.nextOutboxID++
	saved := *event
	saved.ID = r.s.nextOutboxID
	saved.Status = usecase.Pending
	r.s.mu.Unlock()

	state.events = append(state.events, &saved)

	out := saved
	return &out, nil
}

// GetAndMarkAsProcessing забирает до limit ожидающих событий в порядке создания.
func (r *OutboxRepo) GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*usecase.OutboxEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make([]*usecase.OutboxEvent, 0, limit)
	for _, event := range r.s.outbox {
		if len(out) >= limit {
			break
		}
		if event.Status != usecase.Pending {
			continue
		}
		event.Status = usecase.Processing
		cp := *event
		out = append(out, &cp)
	}

	return out, nil
}

func (r *OutboxRepo) MarkAsProcessed(ctx context.Context, id int64) error {
	return r.setStatus(id, usecase.Processed)
}

func (r *OutboxRepo) MarkAsPending(ctx context.Context, id int64) error {
	return r.setStatus(id, usecase.Pending)
}

// Events возвращает копию всех зафиксированных событий.
func (r *OutboxRepo) Events() []usecase.OutboxEvent {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]usecase.OutboxEvent, 0, len(r.s.outbox))
	for _, event := range r.s.outbox {
		out = append(out, *event)
	}
	return out
}

func (r *OutboxRepo) setStatus(id int64, status usecase.OutboxStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, event := range r.s.outbox {
		if event.ID != id {
			continue
		}
		event.Status = status
		if status == usecase.Processed {
			now := time.Now()
			event.ProcessedAt = &now
		}
		return nil
	}

	return e.Wrap("memory.OutboxRepo.setStatus", e.ErrNotFound)
}
