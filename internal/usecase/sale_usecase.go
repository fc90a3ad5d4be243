package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/keylock"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
	"github.com/DRSN-tech/pocopan-pos/pkg/tr"
	"github.com/shopspring/decimal"
)

// SaleUseCase проводит продажи: проверка корзины, выдача номеров, запись журнала и событий.
type SaleUseCase struct {
	tx          Transactor
	allocator   *CounterAllocator
	ledger      *SaleLedger
	carts       CartRepository
	outbox      OutboxRepository
	locker      TerminalLocker
	terminals   domain.TerminalSet
	taxRate     decimal.Decimal
	maxQuantity int
	logger      logger.Logger
	now         func() time.Time
}

// SaleOptions — параметры продаж из конфигурации.
type SaleOptions struct {
	TaxRate     decimal.Decimal
	MaxQuantity int
	Now         func() time.Time
}

func NewSaleUC(
	tx Transactor,
	counters CounterRepository,
	sales SaleRepository,
	carts CartRepository,
	outbox OutboxRepository,
	locker TerminalLocker,
	terminals domain.TerminalSet,
	opts SaleOptions,
	logger logger.Logger,
) *SaleUseCase {
	if opts.MaxQuantity <= 0 {
		opts.MaxQuantity = domain.DefaultMaxQuantity
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &SaleUseCase{
		tx:          tx,
		allocator:   NewCounterAllocator(counters, terminals),
		ledger:      NewSaleLedger(sales),
		carts:       carts,
		outbox:      outbox,
		locker:      locker,
		terminals:   terminals,
		taxRate:     opts.TaxRate,
		maxQuantity: opts.MaxQuantity,
		logger:      logger,
		now:         opts.Now,
	}
}

// FinalizeSale проводит продажу по корзине пользователя.
// Корзина забирается под блокировкой терминала, так что повторная отправка той же корзины
// получает e.ErrCartEmpty. Номера, строки журнала и событие пишутся одной транзакцией;
// при её откате корзина возвращается пользователю.
func (s *SaleUseCase) FinalizeSale(ctx context.Context, req *FinalizeSaleReq) (*FinalizeSaleRes, error) {
	const op = "SaleUseCase.FinalizeSale"

	if !s.terminals.IsSelling(req.Terminal) {
		return nil, e.Wrap(op, e.ErrUnknownTerminal)
	}

	// Allocating
	ctx, release, err := s.acquire(ctx, req.Terminal)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer release()

	cart, err := s.carts.Take(ctx, req.Owner)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if cart.IsEmpty() {
		return nil, e.Wrap(op, e.ErrCartEmpty)
	}

	// Validating
	if err := s.validateItems(cart.Items); err != nil {
		s.restoreCart(ctx, cart)
		return nil, e.Wrap(op, err)
	}

	at := s.now()

	var (
		receipt *domain.SaleReceipt
		lines   []domain.SaleLine
		alloc   domain.Allocation
	)

	// Persisting
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		alloc, err = s.allocator.Next(ctx, req.Terminal, at)
		if err != nil {
			return err
		}

		lines, err = s.ledger.Append(ctx, cart.Items, alloc, req.Salesperson, at)
		if err != nil {
			return err
		}

		totals := domain.CalculateTotals(cart.Items, s.taxRate)
		receipt = domain.NewSaleReceipt(alloc, lines, totals, at)

		event, err := newSaleCommittedEvent(receipt, req.Salesperson, at)
		if err != nil {
			return err
		}
		if _, err := s.outbox.Create(ctx, event); err != nil {
			return e.Persistence("create outbox event", err)
		}

		return nil
	})
	if err != nil {
		s.logger.Errorf(err, "Sale failed. terminal: %s, salesperson: %s", req.Terminal, req.Salesperson)
		s.restoreCart(ctx, cart)
		return nil, e.Persistence(op, err)
	}

	// Committed
	s.logger.Infof(
		"Sale committed. terminal: %s, sale_id: %d, client_id: %s, lines: %d, total: %s",
		receipt.Terminal, receipt.SaleID, receipt.ClientID, receipt.LineCount, receipt.Totals.Total.StringFixed(2),
	)

	return &FinalizeSaleRes{
		Receipt:      receipt,
		Lines:        lines,
		NextClientID: domain.FormatClientID(alloc.Terminal, alloc.ClientSeq+1),
	}, nil
}

// NextSaleID выдаёт следующую пару номеров терминала без записи продажи. ALL допустим.
func (s *SaleUseCase) NextSaleID(ctx context.Context, terminal domain.TerminalID) (domain.Allocation, error) {
	const op = "SaleUseCase.NextSaleID"

	if !s.terminals.IsKnown(terminal) {
		return domain.Allocation{}, e.Wrap(op, e.ErrUnknownTerminal)
	}

	ctx, release, err := s.acquire(ctx, terminal)
	if err != nil {
		return domain.Allocation{}, e.Wrap(op, err)
	}
	defer release()

	at := s.now()

	var alloc domain.Allocation
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		alloc, err = s.allocator.Next(ctx, terminal, at)
		return err
	})
	if err != nil {
		return domain.Allocation{}, e.Persistence(op, err)
	}

	s.logger.Infof("Counter advanced. terminal: %s, sale_id: %d, client_id: %s", terminal, alloc.SaleID, alloc.ClientID())

	return alloc, nil
}

// PeekNextClientID возвращает идентификатор клиента следующей продажи, ничего не выдавая.
func (s *SaleUseCase) PeekNextClientID(ctx context.Context, terminal domain.TerminalID) (string, error) {
	const op = "SaleUseCase.PeekNextClientID"

	counter, err := s.allocator.Peek(ctx, terminal)
	if err != nil {
		return "", e.Wrap(op, err)
	}

	return counter.NextClientID(), nil
}

// ListSales возвращает строки журнала по фильтру.
func (s *SaleUseCase) ListSales(ctx context.Context, filter domain.LedgerFilter) ([]domain.SaleLine, error) {
	const op = "SaleUseCase.ListSales"

	if filter.Terminal != "" && !s.terminals.IsKnown(filter.Terminal) {
		return nil, e.Wrap(op, e.ErrUnknownTerminal)
	}
	if filter.Date != "" {
		if _, err := time.Parse(domain.DateLayout, filter.Date); err != nil {
			return nil, e.Wrap(op, e.ErrInvalidDate)
		}
	}

	lines, err := s.ledger.Lines(ctx, filter)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return lines, nil
}

// acquire берёт блокировку терминала. Возвращённый контекст не отменяется клиентом,
// а ожидание блокировок в хранилище ограничено остатком того же времени ожидания.
func (s *SaleUseCase) acquire(ctx context.Context, terminal domain.TerminalID) (context.Context, func(), error) {
	deadline := time.Now().Add(s.locker.Timeout())

	release, err := s.locker.Acquire(ctx, terminal.String())
	if err != nil {
		if errors.Is(err, keylock.ErrTimeout) {
			s.logger.Warnf("Terminal lock timeout. terminal: %s", terminal)
			return nil, nil, e.ErrSystemBusy
		}
		return nil, nil, err
	}

	return tr.WithLockDeadline(context.WithoutCancel(ctx), deadline), release, nil
}

// restoreCart возвращает забранную корзину после неудачной продажи.
func (s *SaleUseCase) restoreCart(ctx context.Context, cart *domain.Cart) {
	if err := s.carts.Save(ctx, cart); err != nil {
		s.logger.Errorf(err, "Failed to restore cart after failed sale. owner: %s, items: %d", cart.Owner, len(cart.Items))
	}
}

// validateItems повторно проверяет позиции: корзина могла быть сохранена до смены лимитов.
func (s *SaleUseCase) validateItems(items []domain.CartItem) error {
	for _, item := range items {
		if item.Quantity < domain.MinQuantity || item.Quantity > s.maxQuantity {
			return e.ErrInvalidQuantity
		}
		if !item.UnitPrice.IsPositive() {
			return e.ErrInvalidPrice
		}
	}
	return nil
}
