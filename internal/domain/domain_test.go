package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateTotals(t *testing.T) {
	tests := []struct {
		name                   string
		subtotals              []string
		rate                   string
		subtotal, tax, total   string
	}{
		{"empty cart", nil, "21", "0", "0", "0"},
		{"single line", []string{"100"}, "21", "100", "21", "121"},
		{"two lines", []string{"200", "15.50"}, "21", "215.5", "45.26", "260.76"},
		{"half to even on tax", []string{"0.5"}, "5", "0.5", "0.02", "0.52"},
		{"zero rate", []string{"10.01"}, "0", "10.01", "0", "10.01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := make([]CartItem, 0, len(tt.subtotals))
			for _, s := range tt.subtotals {
				items = append(items, CartItem{Subtotal: dec(s)})
			}

			got := CalculateTotals(items, dec(tt.rate))
			assert.True(t, dec(tt.subtotal).Equal(got.Subtotal), "subtotal %s", got.Subtotal)
			assert.True(t, dec(tt.tax).Equal(got.Tax), "tax %s", got.Tax)
			assert.True(t, dec(tt.total).Equal(got.Total), "total %s", got.Total)
		})
	}
}

func TestCounterNext(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	c := *NewTerminalCounter("POS1")

	next, alloc := c.Next(now)
	assert.Equal(t, int64(0), c.LastSaleID, "source counter must not change")
	assert.Equal(t, int64(1), next.LastSaleID)
	assert.Equal(t, int64(1), next.LastClientID)
	assert.Equal(t, int64(1), next.TotalSales)
	assert.Equal(t, Allocation{Terminal: "POS1", SaleID: 1, ClientSeq: 1}, alloc)
	assert.Equal(t, "CLIENTE-POS1-0001", alloc.ClientID())
	assert.Equal(t, "CLIENTE-POS1-0002", next.NextClientID())

	for i := 2; i <= 5; i++ {
		next, alloc = next.Next(now)
		assert.Equal(t, int64(i), alloc.SaleID)
		assert.Equal(t, int64(i), alloc.ClientSeq)
	}
}

func TestFormatClientIDWidth(t *testing.T) {
	assert.Equal(t, "CLIENTE-POS2-0042", FormatClientID("POS2", 42))
	assert.Equal(t, "CLIENTE-POS3-12345", FormatClientID("POS3", 12345))
}

func TestBuildSaleLinesUsesSnapshotPrice(t *testing.T) {
	at := time.Date(2026, 10, 14, 9, 30, 5, 0, time.UTC)
	product := NewProduct("Widget", "", "", dec("100"), "")
	items := []CartItem{NewCartItem(product, 2, at)}

	// Цена в каталоге меняется после добавления в корзину.
	product.UnitPrice = dec("150")

	lines := BuildSaleLines(items, Allocation{Terminal: "POS1", SaleID: 3, ClientSeq: 7}, "pos1", at)
	require.Len(t, lines, 1)
	assert.True(t, dec("200").Equal(lines[0].Total))
	assert.True(t, dec("100").Equal(lines[0].UnitPrice))
	assert.Equal(t, "CLIENTE-POS1-0007", lines[0].ClientID)
	assert.Equal(t, "2026-10-14", lines[0].Date)
	assert.Equal(t, "09:30:05", lines[0].Time)
	assert.Equal(t, 1, lines[0].LineNo)
	assert.Equal(t, TerminalID("POS1"), lines[0].Terminal)
}

func TestTerminalSet(t *testing.T) {
	set := NewTerminalSet("pos1", "POS2", "POS2", "ALL", " ")

	assert.Equal(t, []TerminalID{"POS1", "POS2"}, set.Terminals())
	assert.Equal(t, []TerminalID{"POS1", "POS2", "ALL"}, set.WithAggregate())
	assert.True(t, set.IsSelling("POS1"))
	assert.False(t, set.IsSelling("ALL"))
	assert.True(t, set.IsKnown("ALL"))
	assert.False(t, set.IsKnown("POS9"))
}

func TestNewProductDefaults(t *testing.T) {
	p := NewProduct("  Juego   de Mesa ", " ", "Estrategia", dec("15500"), "")

	assert.Equal(t, "Juego de Mesa", p.Name)
	assert.Equal(t, DefaultCategory, p.Category)
	assert.Equal(t, DefaultSupplier, p.Supplier)
	assert.True(t, p.IsAvailable())
	assert.Equal(t, "juego de mesa", NameKey("JUEGO  de mesa"))
}

func TestSummarizeLines(t *testing.T) {
	lines := []SaleLine{
		{Terminal: "POS1", SaleID: 1, Date: "2026-10-13", Total: dec("10")},
		{Terminal: "POS1", SaleID: 1, Date: "2026-10-13", Total: dec("5")},
		{Terminal: "POS2", SaleID: 1, Date: "2026-10-14", Total: dec("7.25")},
		{Terminal: "POS1", SaleID: 2, Date: "2026-10-14", Total: dec("1")},
	}

	s := SummarizeLines(lines, "2026-10-14")
	assert.Equal(t, int64(3), s.SalesCount)
	assert.Equal(t, int64(2), s.TodaySalesCount)
	assert.Equal(t, int64(4), s.LineCount)
	assert.True(t, dec("23.25").Equal(s.Revenue))
}

func TestLedgerFilter(t *testing.T) {
	line := SaleLine{Terminal: "POS1", Date: "2026-10-14"}

	assert.True(t, LedgerFilter{}.Matches(line))
	assert.True(t, LedgerFilter{Terminal: AggregateTerminal}.Matches(line))
	assert.False(t, LedgerFilter{Terminal: "POS2"}.Matches(line))
	assert.False(t, LedgerFilter{Date: "2026-10-13"}.Matches(line))
}
