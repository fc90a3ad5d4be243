package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/internal/repository/memory"
	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestFinalizeSaleReceipt(t *testing.T) {
	f := newFixture(t, 0)
	f.addProduct(t, "Widget", "100")
	f.addToCart(t, "pos1", "Widget", 2)

	res, err := f.finalize("pos1", "POS1")
	require.NoError(t, err)

	receipt := res.Receipt
	assert.Equal(t, int64(1), receipt.SaleID)
	assert.Equal(t, "CLIENTE-POS1-0001", receipt.ClientID)
	assert.Equal(t, 1, receipt.LineCount)
	assert.True(t, dec("200").Equal(receipt.Totals.Subtotal))
	assert.True(t, dec("42").Equal(receipt.Totals.Tax))
	assert.True(t, dec("242").Equal(receipt.Totals.Total))
	assert.Equal(t, "2026-10-14", receipt.Date)
	assert.Equal(t, "10:15:30", receipt.Time)
	assert.Equal(t, "CLIENTE-POS1-0002", res.NextClientID)

	require.Len(t, res.Lines, 1)
	line := res.Lines[0]
	assert.Equal(t, "Widget", line.ProductName)
	assert.Equal(t, "pos1", line.Salesperson)
	assert.Equal(t, domain.TerminalID("POS1"), line.Terminal)
	assert.True(t, dec("200").Equal(line.Total))

	view, err := f.carts.Get(context.Background(), "pos1")
	require.NoError(t, err)
	assert.True(t, view.Cart.IsEmpty(), "cart must be cleared after commit")

	pos1 := f.counter(t, "POS1")
	assert.Equal(t, int64(1), pos1.LastSaleID)
	assert.Equal(t, int64(1), pos1.LastClientID)
	assert.Equal(t, int64(1), pos1.TotalSales)
	assert.Equal(t, int64(1), f.counter(t, domain.AggregateTerminal).TotalSales)
}

func TestFinalizeSaleWritesOutboxEvent(t *testing.T) {
	f := newFixture(t, 0)
	f.addProduct(t, "Widget", "100")
	f.addToCart(t, "pos1", "Widget", 2)

	_, err := f.finalize("pos1", "POS1")
	require.NoError(t, err)

	events := f.store.Outbox().Events()
	require.Len(t, events, 1)
	assert.Equal(t, usecase.SaleCommitted, events[0].EventType)
	assert.Equal(t, usecase.Pending, events[0].Status)
	assert.Equal(t, "POS1:1", events[0].AggregateKey)

	payload, err := usecase.DecodeSaleCommitted(events[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, "POS1", payload["terminal"])
	assert.Equal(t, "CLIENTE-POS1-0001", payload["client_id"])
	assert.Equal(t, "242.00", payload["total"])
	assert.Equal(t, float64(1), payload["sale_id"])
}

func TestFinalizeSaleEmptyCart(t *testing.T) {
	f := newFixture(t, 0)

	_, err := f.finalize("pos1", "POS1")
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrCartEmpty)
	assert.Equal(t, e.KindValidation, e.KindOf(err))
	assert.Equal(t, "cart empty", e.Message(err))

	assert.Equal(t, int64(0), f.counter(t, "POS1").LastSaleID)
	assert.Equal(t, int64(0), f.counter(t, domain.AggregateTerminal).LastSaleID)
}

func TestFinalizeSaleSequentialIDs(t *testing.T) {
	f := newFixture(t, 0)
	f.addProduct(t, "Widget", "100")

	for i := 1; i <= 5; i++ {
		f.addToCart(t, "pos1", "Widget", 1)
		res, err := f.finalize("pos1", "POS1")
		require.NoError(t, err)

		assert.Equal(t, int64(i), res.Receipt.SaleID)
		assert.Equal(t, domain.FormatClientID("POS1", int64(i)), res.Receipt.ClientID)

		c := f.counter(t, "POS1")
		assert.Equal(t, int64(i), c.LastSaleID)
		assert.Equal(t, int64(i), c.LastClientID)
	}
}

func TestFinalizeSaleAcrossTerminals(t *testing.T) {
	f := newFixture(t, 0)
	f.addProduct(t, "Widget", "100")
	f.addProduct(t, "Gadget", "15.50")

	for _, sale := range []struct {
		owner    string
		terminal domain.TerminalID
	}{
		{"pos1", "POS1"},
		{"pos1", "POS1"},
		{"pos2", "POS2"},
	} {
		f.addToCart(t, sale.owner, "Widget", 1)
		f.addToCart(t, sale.owner, "Gadget", 2)
		_, err := f.finalize(sale.owner, sale.terminal)
		require.NoError(t, err)
	}

	assert.Equal(t, int64(2), f.counter(t, "POS1").LastSaleID)
	assert.Equal(t, int64(1), f.counter(t, "POS2").LastSaleID)
	assert.Equal(t, int64(0), f.counter(t, "POS3").LastSaleID)

	all := f.counter(t, domain.AggregateTerminal)
	assert.Equal(t, int64(3), all.TotalSales)
	assert.Equal(t, int64(3), all.LastSaleID)

	ctx := context.Background()
	aggregate, err := f.sales.ListSales(ctx, domain.LedgerFilter{Terminal: domain.AggregateTerminal})
	require.NoError(t, err)
	assert.Len(t, aggregate, 6)

	var union []domain.SaleLine
	for _, terminal := range f.terminals.Terminals() {
		lines, err := f.sales.ListSales(ctx, domain.LedgerFilter{Terminal: terminal})
		require.NoError(t, err)
		union = append(union, lines...)
	}
	assert.ElementsMatch(t, aggregate, union)
	assert.Equal(t, int64(3), domain.SummarizeLines(aggregate, "2026-10-14").SalesCount)
}

func TestFinalizeSaleConcurrent(t *testing.T) {
	const n = 20

	f := newFixture(t, 5*time.Second)
	f.addProduct(t, "Widget", "100")
	for i := 0; i < n; i++ {
		f.addToCart(t, fmt.Sprintf("cashier-%d", i), "Widget", 1)
	}

	ids := make([]int64, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			res, err := f.finalize(fmt.Sprintf("cashier-%d", i), "POS1")
			if err != nil {
				return err
			}
			ids[i] = res.Receipt.SaleID
			return nil
		})
	}
	require.NoError(t, g.Wait())

	sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
	for i, id := range ids {
		assert.Equal(t, int64(i+1), id, "sale ids must be distinct and gapless")
	}

	assert.Equal(t, int64(n), f.counter(t, "POS1").LastSaleID)
	assert.Equal(t, int64(n), f.counter(t, domain.AggregateTerminal).TotalSales)

	lines, err := f.sales.ListSales(context.Background(), domain.LedgerFilter{Terminal: "POS1"})
	require.NoError(t, err)
	assert.Len(t, lines, n)
}

func TestFinalizeSaleSameCartOnce(t *testing.T) {
	const n = 50

	f := newFixture(t, 5*time.Second)
	f.addProduct(t, "Widget", "100")
	f.addToCart(t, "pos1", "Widget", 2)

	var (
		start     = make(chan struct{})
		succeeded atomic.Int32
		g         errgroup.Group
	)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			<-start
			_, err := f.finalize("pos1", "POS1")
			switch {
			case err == nil:
				succeeded.Add(1)
			case !errors.Is(err, e.ErrCartEmpty):
				return err
			}
			return nil
		})
	}
	close(start)
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), succeeded.Load())
	assert.Equal(t, int64(1), f.counter(t, "POS1").LastSaleID)

	lines, err := f.sales.ListSales(context.Background(), domain.LedgerFilter{Terminal: "POS1"})
	require.NoError(t, err)
	assert.Len(t, lines, 1)
	assert.Len(t, f.store.Outbox().Events(), 1)
}

func TestFinalizeSaleRetryAfterCommit(t *testing.T) {
	f := newFixture(t, 0)
	f.addProduct(t, "Widget", "100")
	f.addToCart(t, "pos1", "Widget", 1)

	_, err := f.finalize("pos1", "POS1")
	require.NoError(t, err)

	_, err = f.finalize("pos1", "POS1")
	require.ErrorIs(t, err, e.ErrCartEmpty)
	assert.Equal(t, int64(1), f.counter(t, "POS1").LastSaleID)
}

func TestFinalizeSalePersistenceFailure(t *testing.T) {
	tests := []struct {
		name   string
		faults memory.Faults
	}{
		{"append lines", memory.Faults{AppendLines: errors.New("disk full")}},
		{"save counter", memory.Faults{SaveCounter: errors.New("connection reset")}},
		{"outbox", memory.Faults{CreateEvent: errors.New("relation does not exist")}},
		{"commit", memory.Faults{Commit: errors.New("serialization failure")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 0)
			f.addProduct(t, "Widget", "100")
			f.addToCart(t, "pos1", "Widget", 2)
			f.store.InjectFaults(tt.faults)

			res, err := f.finalize("pos1", "POS1")
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, e.KindPersistence, e.KindOf(err))

			f.store.InjectFaults(memory.Faults{})
			assert.Equal(t, int64(0), f.counter(t, "POS1").LastSaleID)
			assert.Equal(t, int64(0), f.counter(t, domain.AggregateTerminal).LastSaleID)
			assert.Empty(t, f.store.Outbox().Events())

			lines, err := f.sales.ListSales(context.Background(), domain.LedgerFilter{})
			require.NoError(t, err)
			assert.Empty(t, lines)

			view, err := f.carts.Get(context.Background(), "pos1")
			require.NoError(t, err)
			assert.Len(t, view.Cart.Items, 1, "cart must survive a failed sale")

			// После устранения отказа продажа получает первый номер
			res, err = f.finalize("pos1", "POS1")
			require.NoError(t, err)
			assert.Equal(t, int64(1), res.Receipt.SaleID)
		})
	}
}

func TestFinalizeSaleBusy(t *testing.T) {
	f := newFixture(t, 50*time.Millisecond)
	f.addProduct(t, "Widget", "100")
	f.addToCart(t, "pos1", "Widget", 1)

	release, err := f.locker.Acquire(context.Background(), "POS1")
	require.NoError(t, err)

	_, err = f.finalize("pos1", "POS1")
	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrSystemBusy)
	assert.Equal(t, e.KindBusy, e.KindOf(err))
	assert.Equal(t, int64(0), f.counter(t, "POS1").LastSaleID)

	// Другой терминал не ждёт
	f.addToCart(t, "pos2", "Widget", 1)
	_, err = f.finalize("pos2", "POS2")
	require.NoError(t, err)

	release()
	res, err := f.finalize("pos1", "POS1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Receipt.SaleID)
}

func TestFinalizeSaleUnknownTerminal(t *testing.T) {
	f := newFixture(t, 0)
	f.addProduct(t, "Widget", "100")
	f.addToCart(t, "admin", "Widget", 1)

	for _, terminal := range []domain.TerminalID{"POS9", domain.AggregateTerminal} {
		_, err := f.finalize("admin", terminal)
		require.Error(t, err)
		assert.Equal(t, e.KindUnknownTerminal, e.KindOf(err), terminal)
	}
}

func TestFinalizeSaleUsesCartPrice(t *testing.T) {
	f := newFixture(t, 0)
	f.addProduct(t, "Widget", "100")
	f.addToCart(t, "pos1", "Widget", 3)

	_, err := f.catalog.UpdateProduct(context.Background(), "widget", &usecase.ProductReq{
		Name:      "Widget",
		UnitPrice: dec("150"),
	})
	require.NoError(t, err)

	res, err := f.finalize("pos1", "POS1")
	require.NoError(t, err)
	require.Len(t, res.Lines, 1)
	assert.True(t, dec("100").Equal(res.Lines[0].UnitPrice))
	assert.True(t, dec("300").Equal(res.Lines[0].Total))
}

func TestNextSaleID(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	alloc, err := f.sales.NextSaleID(ctx, "POS2")
	require.NoError(t, err)
	assert.Equal(t, domain.Allocation{Terminal: "POS2", SaleID: 1, ClientSeq: 1}, alloc)
	assert.Equal(t, int64(1), f.counter(t, domain.AggregateTerminal).LastSaleID)

	alloc, err = f.sales.NextSaleID(ctx, domain.AggregateTerminal)
	require.NoError(t, err)
	assert.Equal(t, int64(2), alloc.SaleID)
	assert.Equal(t, int64(1), f.counter(t, "POS2").LastSaleID)

	_, err = f.sales.NextSaleID(ctx, "POS7")
	assert.Equal(t, e.KindUnknownTerminal, e.KindOf(err))
}

func TestPeekNextClientID(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	id, err := f.sales.PeekNextClientID(ctx, "POS3")
	require.NoError(t, err)
	assert.Equal(t, "CLIENTE-POS3-0001", id)

	// Просмотр не выдаёт номер
	id, err = f.sales.PeekNextClientID(ctx, "POS3")
	require.NoError(t, err)
	assert.Equal(t, "CLIENTE-POS3-0001", id)
	assert.Equal(t, int64(0), f.counter(t, "POS3").LastClientID)
}

func TestListSalesValidation(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	_, err := f.sales.ListSales(ctx, domain.LedgerFilter{Date: "14/10/2026"})
	assert.ErrorIs(t, err, e.ErrInvalidDate)

	_, err = f.sales.ListSales(ctx, domain.LedgerFilter{Terminal: "POS9"})
	assert.Equal(t, e.KindUnknownTerminal, e.KindOf(err))

	lines, err := f.sales.ListSales(ctx, domain.LedgerFilter{Date: "2026-10-14"})
	require.NoError(t, err)
	assert.Empty(t, lines)
}
