package usecase_test

import (
	"context"
	"testing"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/internal/repository/memory"
	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDashboard(t *testing.T, f *fixture) *usecase.DashboardUseCase {
	return usecase.NewDashboardUC(f.store.Sales(), f.store.Products(), f.terminals, usecase.DashboardOptions{
		Currency: "$",
		Backend:  memory.Backend,
		Users: []domain.User{
			{Username: "admin", Role: domain.RoleAdmin, Terminal: domain.AggregateTerminal},
			{Username: "pos1", Role: domain.RolePOS, Terminal: "POS1"},
			{Username: "pos2", Role: domain.RolePOS, Terminal: "POS2"},
		},
		Now: clock,
	}, logger.NewTestLogger(t))
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(t, 0)
	f.addProduct(t, "Widget", "100")
	f.addProduct(t, "Gadget", "15.50")
	for _, owner := range []string{"pos1", "pos1", "pos2"} {
		f.addToCart(t, owner, "Widget", 2)
		f.addToCart(t, owner, "Gadget", 1)
		terminal := domain.ParseTerminalID(owner)
		_, err := f.finalize(owner, terminal)
		require.NoError(t, err)
	}
	d := newDashboard(t, f)
	ctx := context.Background()

	pos1, err := d.Stats(ctx, "POS1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), pos1.SalesCount)
	assert.Equal(t, int64(2), pos1.TodaySalesCount)
	assert.True(t, dec("431").Equal(pos1.Revenue))
	assert.Equal(t, "$431.00", pos1.RevenueFormatted)
	assert.Equal(t, int64(2), pos1.CatalogSize)
	assert.Equal(t, int64(1), pos1.ActiveUsers)
	assert.Equal(t, "Dashboard - Terminal POS1", pos1.DisplayName)

	all, err := d.Stats(ctx, domain.AggregateTerminal)
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.SalesCount)
	assert.True(t, dec("646.5").Equal(all.Revenue))
	assert.Equal(t, int64(3), all.ActiveUsers)

	byTerminal, err := d.StatsByTerminal(ctx)
	require.NoError(t, err)
	require.Len(t, byTerminal, 3)
	assert.Equal(t, domain.TerminalID("POS3"), byTerminal[2].Terminal)
	assert.Equal(t, int64(0), byTerminal[2].SalesCount)
	assert.Equal(t, "$0.00", byTerminal[2].RevenueFormatted)

	_, err = d.Stats(ctx, "POS9")
	assert.Equal(t, e.KindUnknownTerminal, e.KindOf(err))
}

func TestDashboardFormatMoney(t *testing.T) {
	d := newDashboard(t, newFixture(t, 0))

	assert.Equal(t, "$12,345.60", d.FormatMoney(12345.6))
	assert.Equal(t, "$1,000,000.00", d.FormatMoney(1e6))
}

func TestDiagnostics(t *testing.T) {
	f := newFixture(t, 0)
	f.addProduct(t, "Widget", "100")
	f.addToCart(t, "pos1", "Widget", 1)
	_, err := f.finalize("pos1", "POS1")
	require.NoError(t, err)

	res, err := newDashboard(t, f).Diagnostics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t, int64(1), res.Products)
	assert.Equal(t, int64(1), res.LedgerLines)
	assert.Equal(t, memory.Backend, res.Backend)
}
