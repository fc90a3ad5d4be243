package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
)

// SaleLedger — журнал строк продаж. Записи только добавляются.
type SaleLedger struct {
	sales SaleRepository
}

func NewSaleLedger(sales SaleRepository) *SaleLedger {
	return &SaleLedger{sales: sales}
}

// Append пишет по одной строке на позицию корзины под общим номером продажи.
func (l *SaleLedger) Append(
	ctx context.Context,
	items []domain.CartItem,
	alloc domain.Allocation,
	salesperson string,
	at time.Time,
) ([]domain.SaleLine, error) {
	const op = "SaleLedger.Append"

	if len(items) == 0 {
		return nil, e.Wrap(op, e.ErrCartEmpty)
	}

	lines := domain.BuildSaleLines(items, alloc, salesperson, at)
	saved, err := l.sales.AppendLines(ctx, lines)
	if err != nil {
		return nil, e.Persistence(op, err)
	}

	return saved, nil
}

// Lines возвращает строки журнала. Фильтр по ALL возвращает объединение всех терминалов.
func (l *SaleLedger) Lines(ctx context.Context, filter domain.LedgerFilter) ([]domain.SaleLine, error) {
	const op = "SaleLedger.Lines"

	lines, err := l.sales.ListLines(ctx, filter)
	if err != nil {
		return nil, e.Persistence(op, err)
	}

	return lines, nil
}

// Summary считает агрегаты журнала для терминала или для всех терминалов.
func (l *SaleLedger) Summary(ctx context.Context, terminal domain.TerminalID, today string) (domain.LedgerSummary, error) {
	const op = "SaleLedger.Summary"

	summary, err := l.sales.Summarize(ctx, terminal, today)
	if err != nil {
		return domain.LedgerSummary{}, e.Persistence(op, err)
	}

	return summary, nil
}
