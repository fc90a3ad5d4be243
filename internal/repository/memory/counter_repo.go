package memory

import (
	"context"
	"sort"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
)

type CounterRepo struct {
	s *Store
}

// LockForUpdate возвращает счётчик с учётом изменений текущей транзакции.
func (r *CounterRepo) LockForUpdate(ctx context.Context, terminal domain.TerminalID) (*domain.TerminalCounter, error) {
	const op = "memory.CounterRepo.LockForUpdate"

	state, err := txFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if err := r.s.fault(func(f Faults) error { return f.LockCounter }); err != nil {
		return nil, e.Wrap(op, err)
	}

	if staged, ok := state.counters[terminal]; ok {
		return &staged, nil
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counter, ok := r.s.counters[terminal]
	if !ok {
		return nil, e.Wrap(op, e.ErrUnknownTerminal)
	}

	return &counter, nil
}

func (r *CounterRepo) Save(ctx context.Context, counter *domain.TerminalCounter) error {
	const op = "memory.CounterRepo.Save"

	state, err := txFromCtx(ctx)
	if err != nil {
		return e.Wrap(op, err)
	}
	if err := r.s.fault(func(f Faults) error { return f.SaveCounter }); err != nil {
		return e.Wrap(op, err)
	}

	state.counters[counter.Terminal] = *counter
	return nil
}

func (r *CounterRepo) Get(ctx context.Context, terminal domain.TerminalID) (*domain.TerminalCounter, error) {
	const op = "memory.CounterRepo.Get"

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counter, ok := r.s.counters[terminal]
	if !ok {
		return nil, e.Wrap(op, e.ErrUnknownTerminal)
	}

	return &counter, nil
}

func (r *CounterRepo) List(ctx context.Context) ([]domain.TerminalCounter, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.TerminalCounter, 0, len(r.s.counters))
	for _, counter := range r.s.counters {
		out = append(out, counter)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Terminal < out[j].Terminal })

	return out, nil
}

// EnsureTerminals создаёт нулевые счётчики для отсутствующих терминалов.
func (r *CounterRepo) EnsureTerminals(ctx context.Context, terminals []domain.TerminalID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, terminal := range terminals {
		if _, ok := r.s.counters[terminal]; !ok {
			r.s.counters[terminal] = *domain.NewTerminalCounter(terminal)
		}
	}

	return nil
}
