package tr

import (
	"context"
	"time"

	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/jackc/pgx/v5"
)

type txKey struct{}

// WithTx кладёт транзакцию в контекст
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

// TxFromCtx извлекает объект транзакции (pgx.Tx) из контекста
func TxFromCtx(ctx context.Context) (pgx.Tx, error) {
	tx, ok := ctx.Value(txKey{}).(pgx.Tx)
	if !ok {
		return nil, e.ErrTransactionNotFound
	}
	return tx, nil
}

type lockDeadlineKey struct{}

// WithLockDeadline задаёт момент, после которого ожидание блокировок в транзакции прекращается
func WithLockDeadline(ctx context.Context, deadline time.Time) context.Context {
	return context.WithValue(ctx, lockDeadlineKey{}, deadline)
}

// LockDeadline возвращает момент из WithLockDeadline
func LockDeadline(ctx context.Context) (time.Time, bool) {
	deadline, ok := ctx.Value(lockDeadlineKey{}).(time.Time)
	return deadline, ok
}

// LockBudget возвращает остаток времени на ожидание блокировок, но не больше fallback.
// Если срок в контексте не задан, возвращается fallback.
func LockBudget(ctx context.Context, fallback time.Duration) time.Duration {
	deadline, ok := LockDeadline(ctx)
	if !ok {
		return fallback
	}

	left := time.Until(deadline)
	if fallback > 0 && left > fallback {
		return fallback
	}
	if left < 0 {
		return 0
	}
	return left
}
