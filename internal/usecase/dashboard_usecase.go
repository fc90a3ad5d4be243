package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DashboardUseCase строит статистику панели только на чтение из журнала.
type DashboardUseCase struct {
	ledger    *SaleLedger
	products  ProductRepository
	terminals domain.TerminalSet
	users     []domain.User
	currency  string
	backend   string
	printer   *message.Printer
	logger    logger.Logger
	now       func() time.Time
}

// DashboardOptions — оформление панели.
type DashboardOptions struct {
	Currency string
	Backend  string
	Users    []domain.User
	Now      func() time.Time
}

func NewDashboardUC(
	sales SaleRepository,
	products ProductRepository,
	terminals domain.TerminalSet,
	opts DashboardOptions,
	logger logger.Logger,
) *DashboardUseCase {
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &DashboardUseCase{
		ledger:    NewSaleLedger(sales),
		products:  products,
		terminals: terminals,
		users:     opts.Users,
		currency:  opts.Currency,
		backend:   opts.Backend,
		printer:   message.NewPrinter(language.English),
		logger:    logger,
		now:       opts.Now,
	}
}

// Stats возвращает статистику терминала. Для ALL считается по объединению всех терминалов.
func (d *DashboardUseCase) Stats(ctx context.Context, terminal domain.TerminalID) (*domain.DashboardStats, error) {
	const op = "DashboardUseCase.Stats"

	if !d.terminals.IsKnown(terminal) {
		return nil, e.Wrap(op, e.ErrUnknownTerminal)
	}

	today := d.now().Format(domain.DateLayout)
	summary, err := d.ledger.Summary(ctx, terminal, today)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	catalogSize, err := d.products.CountAvailable(ctx)
	if err != nil {
		return nil, e.Persistence(op, err)
	}

	return &domain.DashboardStats{
		Terminal:         terminal,
		DisplayName:      displayName(terminal),
		SalesCount:       summary.SalesCount,
		Revenue:          summary.Revenue,
		RevenueFormatted: d.FormatMoney(summary.Revenue.RoundBank(2).InexactFloat64()),
		TodaySalesCount:  summary.TodaySalesCount,
		CatalogSize:      catalogSize,
		ActiveUsers:      d.countUsers(terminal),
	}, nil
}

// StatsByTerminal возвращает статистику каждого настроенного терминала в порядке конфигурации.
func (d *DashboardUseCase) StatsByTerminal(ctx context.Context) ([]domain.DashboardStats, error) {
	const op = "DashboardUseCase.StatsByTerminal"

	terminals := d.terminals.Terminals()
	out := make([]domain.DashboardStats, 0, len(terminals))
	for _, terminal := range terminals {
		stats, err := d.Stats(ctx, terminal)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
		out = append(out, *stats)
	}

	return out, nil
}

// Diagnostics сообщает размер каталога и журнала.
func (d *DashboardUseCase) Diagnostics(ctx context.Context) (*DiagnosticsRes, error) {
	const op = "DashboardUseCase.Diagnostics"

	products, err := d.products.Count(ctx)
	if err != nil {
		return nil, e.Persistence(op, err)
	}

	now := d.now()
	summary, err := d.ledger.Summary(ctx, domain.AggregateTerminal, now.Format(domain.DateLayout))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return &DiagnosticsRes{
		Status:      "ok",
		Products:    products,
		LedgerLines: summary.LineCount,
		Backend:     d.backend,
		CheckedAt:   now,
	}, nil
}

// FormatMoney форматирует сумму с разделителями разрядов: $12,345.60.
func (d *DashboardUseCase) FormatMoney(amount float64) string {
	return d.currency + d.printer.Sprintf("%.2f", amount)
}

func (d *DashboardUseCase) countUsers(terminal domain.TerminalID) int64 {
	var n int64
	for _, u := range d.users {
		if terminal.IsAggregate() || u.Terminal == terminal {
			n++
		}
	}
	return n
}

func displayName(terminal domain.TerminalID) string {
	if terminal.IsAggregate() {
		return "Dashboard - General (Todas las Terminales)"
	}
	return "Dashboard - Terminal " + terminal.String()
}
