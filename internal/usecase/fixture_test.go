package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/internal/repository/memory"
	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/keylock"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 14, 10, 15, 30, 0, time.UTC)

func clock() time.Time { return fixedNow }

type fixture struct {
	store     *memory.Store
	locker    *keylock.Locker
	terminals domain.TerminalSet
	sales     *usecase.SaleUseCase
	carts     *usecase.CartUseCase
	catalog   *usecase.CatalogUseCase
}

func newFixture(t *testing.T, lockTimeout time.Duration) *fixture {
	t.Helper()

	log := logger.NewTestLogger(t)
	store := memory.NewStore()
	terminals := domain.NewTerminalSet("POS1", "POS2", "POS3")
	require.NoError(t, store.Counters().EnsureTerminals(context.Background(), terminals.WithAggregate()))

	locker := keylock.NewLocker(lockTimeout)
	catalog := usecase.NewCatalogUC(store.Products(), store.Cache(), 10, log)
	carts := usecase.NewCartUC(store.Carts(), catalog, usecase.CartOptions{
		TaxRate: domain.DefaultTaxRate,
		Now:     clock,
	}, log)
	sales := usecase.NewSaleUC(
		store,
		store.Counters(),
		store.Sales(),
		store.Carts(),
		store.Outbox(),
		locker,
		terminals,
		usecase.SaleOptions{TaxRate: domain.DefaultTaxRate, Now: clock},
		log,
	)

	return &fixture{
		store:     store,
		locker:    locker,
		terminals: terminals,
		sales:     sales,
		carts:     carts,
		catalog:   catalog,
	}
}

func (f *fixture) addProduct(t *testing.T, name, price string) *domain.Product {
	t.Helper()

	p, err := f.catalog.CreateProduct(context.Background(), &usecase.ProductReq{
		Name:      name,
		Category:  "Juegos",
		UnitPrice: decimal.RequireFromString(price),
		Supplier:  "Proveedor A",
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) addToCart(t *testing.T, owner, product string, qty int) {
	t.Helper()

	_, err := f.carts.AddItem(context.Background(), usecase.NewAddCartItemReq(owner, product, qty))
	require.NoError(t, err)
}

func (f *fixture) finalize(owner string, terminal domain.TerminalID) (*usecase.FinalizeSaleRes, error) {
	return f.sales.FinalizeSale(context.Background(), usecase.NewFinalizeSaleReq(owner, terminal, owner))
}

func (f *fixture) counter(t *testing.T, terminal domain.TerminalID) domain.TerminalCounter {
	t.Helper()

	c, err := f.store.Counters().Get(context.Background(), terminal)
	require.NoError(t, err)
	return *c
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
