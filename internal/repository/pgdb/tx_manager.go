package pgdb

import (
	"context"
	"fmt"
	"time"

	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/tr"
	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jimlawless/whereami"
)

// TxManager выполняет функции в транзакции PostgreSQL с ограничением ожидания блокировок.
type TxManager struct {
	db          transaction.Transactional
	lockTimeout time.Duration
}

func NewTxManager(db transaction.Transactional, lockTimeout time.Duration) *TxManager {
	return &TxManager{
		db:          db,
		lockTimeout: lockTimeout,
	}
}

// WithinTx открывает транзакцию, выставляет lock_timeout и коммитит при успехе fn.
// Срок из tr.WithLockDeadline сокращает lock_timeout до оставшегося времени.
// Если в контексте уже есть транзакция, fn выполняется в ней.
func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, txErr := tr.TxFromCtx(ctx); txErr == nil {
		return fn(ctx)
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, m.db)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	// Если произошла ошибка, происходит Rollback транзакции
	defer func() {
		if err != nil && tx.IsActive() {
			_ = tx.Rollback(ctx)
		}
	}()

	pgTx, ok := tx.Transaction().(pgx.Tx)
	if !ok {
		err = e.ErrTransactionNotFound
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if m.lockTimeout > 0 {
		if err = setLockTimeout(ctx, pgTx, tr.LockBudget(ctx, m.lockTimeout)); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
	}

	if err = fn(tr.WithTx(ctx, pgTx)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// setLockTimeout выставляет lock_timeout до конца транзакции. Нулевое значение в Postgres
// отключает ограничение, поэтому меньше миллисекунды не ставим.
func setLockTimeout(ctx context.Context, tx pgx.Tx, d time.Duration) error {
	ms := max(d.Milliseconds(), 1)
	_, err := tx.Exec(ctx, "SELECT set_config('lock_timeout', $1, true)", fmt.Sprintf("%dms", ms))
	return err
}
