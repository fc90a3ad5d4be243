package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

const counterColumns = `terminal, last_client_id, last_sale_id, total_sales, updated_at`

// CounterRepo хранит счётчики терминалов в таблице terminal_counters.
type CounterRepo struct {
	pool *pgxpool.Pool
	conv converter.TerminalCounterConverter
}

func NewCounterRepo(pool *pgxpool.Pool, conv converter.TerminalCounterConverter) *CounterRepo {
	return &CounterRepo{
		pool: pool,
		conv: conv,
	}
}

// LockForUpdate блокирует строку счётчика до конца транзакции.
// Если блокировка не получена за lock_timeout, возвращается e.ErrSystemBusy.
// При сроке в контексте каждая блокировка ждёт только остаток общего времени.
func (c *CounterRepo) LockForUpdate(ctx context.Context, terminal domain.TerminalID) (*domain.TerminalCounter, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	if _, ok := tr.LockDeadline(ctx); ok {
		budget := tr.LockBudget(ctx, 0)
		if budget <= 0 {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrSystemBusy)
		}
		if err := setLockTimeout(ctx, tx, budget); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	query := `SELECT ` + counterColumns + ` FROM terminal_counters WHERE terminal = $1 FOR UPDATE`

	counter, err := c.scanOne(tx.QueryRow(ctx, query, terminal.String()))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrUnknownTerminal)
		case postgresLockTimeout(err):
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrSystemBusy)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return counter, nil
}

func (c *CounterRepo) Save(ctx context.Context, counter *domain.TerminalCounter) error {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	model := c.conv.ToModel(counter)
	query := `
		UPDATE terminal_counters
		SET last_client_id = $2, last_sale_id = $3, total_sales = $4, updated_at = $5
		WHERE terminal = $1
	`

	result, err := tx.Exec(ctx, query,
		model.Terminal,
		model.LastClientID,
		model.LastSaleID,
		model.TotalSales,
		model.UpdatedAt,
	)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if result.RowsAffected() == 0 {
		return e.Wrap(whereami.WhereAmI(), e.ErrUnknownTerminal)
	}

	return nil
}

func (c *CounterRepo) Get(ctx context.Context, terminal domain.TerminalID) (*domain.TerminalCounter, error) {
	query := `SELECT ` + counterColumns + ` FROM terminal_counters WHERE terminal = $1`

	counter, err := c.scanOne(c.pool.QueryRow(ctx, query, terminal.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, e.Wrap(whereami.WhereAmI(), e.ErrUnknownTerminal)
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return counter, nil
}

func (c *CounterRepo) List(ctx context.Context) ([]domain.TerminalCounter, error) {
	rows, err := c.pool.Query(ctx, `SELECT `+counterColumns+` FROM terminal_counters ORDER BY terminal`)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.TerminalCounter, 0)
	for rows.Next() {
		counter, err := c.scanOne(rows)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, *counter)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// EnsureTerminals создаёт нулевые счётчики для терминалов из конфигурации. Существующие не меняются.
func (c *CounterRepo) EnsureTerminals(ctx context.Context, terminals []domain.TerminalID) error {
	ids := make([]string, 0, len(terminals))
	for _, t := range terminals {
		ids = append(ids, t.String())
	}

	query := `
		INSERT INTO terminal_counters (terminal)
		SELECT unnest($1::text[])
		ON CONFLICT (terminal) DO NOTHING
	`
	if _, err := c.pool.Exec(ctx, query, ids); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *CounterRepo) scanOne(row pgx.Row) (*domain.TerminalCounter, error) {
	var model converter.TerminalCounterModel
	if err := row.Scan(
		&model.Terminal,
		&model.LastClientID,
		&model.LastSaleID,
		&model.TotalSales,
		&model.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return c.conv.ToEntity(&model), nil
}
