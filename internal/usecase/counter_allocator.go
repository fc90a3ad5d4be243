package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
)

// CounterAllocator выдаёт номера продажи и клиента для терминала.
type CounterAllocator struct {
	counters  CounterRepository
	terminals domain.TerminalSet
}

func NewCounterAllocator(counters CounterRepository, terminals domain.TerminalSet) *CounterAllocator {
	return &CounterAllocator{
		counters:  counters,
		terminals: terminals,
	}
}

// Next продвигает счётчик терминала и счётчик ALL ровно на единицу.
// Вызывается только внутри транзакции: изменения видны лишь после коммита.
// Сначала блокируется строка терминала, затем строка ALL.
func (a *CounterAllocator) Next(ctx context.Context, terminal domain.TerminalID, at time.Time) (domain.Allocation, error) {
	const op = "CounterAllocator.Next"

	if !a.terminals.IsKnown(terminal) {
		return domain.Allocation{}, e.Wrap(op, e.ErrUnknownTerminal)
	}

	alloc, err := a.advance(ctx, terminal, at)
	if err != nil {
		return domain.Allocation{}, e.Wrap(op, err)
	}

	if !terminal.IsAggregate() {
		if _, err := a.advance(ctx, domain.AggregateTerminal, at); err != nil {
			return domain.Allocation{}, e.Wrap(op, err)
		}
	}

	return alloc, nil
}

// Peek возвращает счётчик терминала без блокировки.
func (a *CounterAllocator) Peek(ctx context.Context, terminal domain.TerminalID) (*domain.TerminalCounter, error) {
	const op = "CounterAllocator.Peek"

	if !a.terminals.IsKnown(terminal) {
		return nil, e.Wrap(op, e.ErrUnknownTerminal)
	}

	counter, err := a.counters.Get(ctx, terminal)
	if err != nil {
		return nil, e.Persistence(op, err)
	}

	return counter, nil
}

func (a *CounterAllocator) advance(ctx context.Context, terminal domain.TerminalID, at time.Time) (domain.Allocation, error) {
	current, err := a.counters.LockForUpdate(ctx, terminal)
	if err != nil {
		return domain.Allocation{}, e.Persistence("lock counter "+terminal.String(), err)
	}

	next, alloc := current.Next(at)
	if err := a.counters.Save(ctx, &next); err != nil {
		return domain.Allocation{}, e.Persistence("save counter "+terminal.String(), err)
	}

	return alloc, nil
}
