package memory

import (
	"context"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/tr"
)

type txKey struct{}

// txState — изменения транзакции, применяемые при коммите.
type txState struct {
	counters map[domain.TerminalID]domain.TerminalCounter
	lines    []domain.SaleLine
	events   []*usecase.OutboxEvent
}

func txFromCtx(ctx context.Context) (*txState, error) {
	state, ok := ctx.Value(txKey{}).(*txState)
	if !ok {
		return nil, e.ErrTransactionNotFound
	}
	return state, nil
}

// WithinTx выполняет fn в транзакции. Ошибка fn или коммита отбрасывает все изменения.
// Вложенный вызов присоединяется к внешней транзакции.
// Очередь за другой транзакцией ограничена сроком из tr.WithLockDeadline, после него e.ErrSystemBusy.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, err := txFromCtx(ctx); err == nil {
		return fn(ctx)
	}

	if err := s.beginTx(ctx); err != nil {
		return err
	}
	defer s.txSem.Release(1)

	state := &txState{counters: make(map[domain.TerminalID]domain.TerminalCounter)}
	if err := fn(context.WithValue(ctx, txKey{}, state)); err != nil {
		return err
	}

	return s.commit(state)
}

func (s *Store) beginTx(ctx context.Context) error {
	waitCtx := ctx
	if deadline, ok := tr.LockDeadline(ctx); ok {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithDeadline(ctx, deadline)
		defer cancel()
	}

	if err := s.txSem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return e.ErrSystemBusy
	}
	return nil
}

func (s *Store) commit(state *txState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.faults.Commit != nil {
		return s.faults.Commit
	}

	for terminal, counter := range state.counters {
		s.counters[terminal] = counter
	}
	s.lines = append(s.lines, state.lines...)
	s.outbox = append(s.outbox, state.events...)

	return nil
}
