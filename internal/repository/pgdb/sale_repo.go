package pgdb

import (
	"context"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/internal/repository/pgdb/converter"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/tr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/shopspring/decimal"
)

// SaleRepo — журнал строк продаж в таблице sale_lines. Строки только добавляются.
type SaleRepo struct {
	pool *pgxpool.Pool
	conv converter.SaleLineConverter
}

func NewSaleRepo(pool *pgxpool.Pool, conv converter.SaleLineConverter) *SaleRepo {
	return &SaleRepo{
		pool: pool,
		conv: conv,
	}
}

// AppendLines вставляет строки одним батчем в транзакции из контекста.
func (s *SaleRepo) AppendLines(ctx context.Context, lines []domain.SaleLine) ([]domain.SaleLine, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		INSERT INTO sale_lines (
			sale_id, line_no, sale_date, sale_time, client_id, product_name,
			quantity, unit_price, total, salesperson, terminal_id, created_at
		) VALUES ($1, $2, $3::date, $4::time, $5, $6, $7, $8::numeric, $9::numeric, $10, $11, $12)
		RETURNING id
	`

	batch := &pgx.Batch{}
	for i := range lines {
		m := s.conv.ToModel(&lines[i])
		batch.Queue(query,
			m.SaleID, m.LineNo, m.SaleDate, m.SaleTime, m.ClientID, m.ProductName,
			m.Quantity, m.UnitPrice, m.Total, m.Salesperson, m.TerminalID, m.CreatedAt,
		)
	}

	br := tx.SendBatch(ctx, batch)
	saved := make([]domain.SaleLine, len(lines))
	for i, line := range lines {
		if err := br.QueryRow().Scan(&line.ID); err != nil {
			_ = br.Close()
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		saved[i] = line
	}
	if err := br.Close(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return saved, nil
}

// ListLines возвращает строки в порядке записи. ALL или пустой терминал — все терминалы.
func (s *SaleRepo) ListLines(ctx context.Context, filter domain.LedgerFilter) ([]domain.SaleLine, error) {
	query := `
		SELECT id, sale_id, line_no, to_char(sale_date, 'YYYY-MM-DD'), to_char(sale_time, 'HH24:MI:SS'),
			client_id, product_name, quantity, unit_price::text, total::text, salesperson, terminal_id, created_at
		FROM sale_lines
		WHERE ($1::text IS NULL OR terminal_id = $1::text)
		  AND ($2::date IS NULL OR sale_date = $2::date)
		ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query, terminalFilter(filter.Terminal), nullable(filter.Date))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make([]domain.SaleLine, 0)
	for rows.Next() {
		var m converter.SaleLineModel
		if err := rows.Scan(
			&m.ID, &m.SaleID, &m.LineNo, &m.SaleDate, &m.SaleTime,
			&m.ClientID, &m.ProductName, &m.Quantity, &m.UnitPrice, &m.Total,
			&m.Salesperson, &m.TerminalID, &m.CreatedAt,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		line, err := s.conv.ToEntity(&m)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result = append(result, *line)
	}
	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// Summarize считает число продаж, выручку и продажи за день на стороне базы.
func (s *SaleRepo) Summarize(ctx context.Context, terminal domain.TerminalID, today string) (domain.LedgerSummary, error) {
	query := `
		SELECT
			COUNT(DISTINCT (terminal_id, sale_id)),
			COALESCE(SUM(total), 0)::text,
			COUNT(DISTINCT (terminal_id, sale_id)) FILTER (WHERE sale_date = $2::date),
			COUNT(*)
		FROM sale_lines
		WHERE $1::text IS NULL OR terminal_id = $1::text
	`

	var (
		summary domain.LedgerSummary
		revenue string
	)
	if err := s.pool.QueryRow(ctx, query, terminalFilter(terminal), today).Scan(
		&summary.SalesCount,
		&revenue,
		&summary.TodaySalesCount,
		&summary.LineCount,
	); err != nil {
		return domain.LedgerSummary{}, e.Wrap(whereami.WhereAmI(), err)
	}

	var err error
	summary.Revenue, err = decimal.NewFromString(revenue)
	if err != nil {
		return domain.LedgerSummary{}, e.Wrap(whereami.WhereAmI(), err)
	}

	return summary, nil
}

func terminalFilter(terminal domain.TerminalID) any {
	if terminal == "" || terminal.IsAggregate() {
		return nil
	}
	return terminal.String()
}
