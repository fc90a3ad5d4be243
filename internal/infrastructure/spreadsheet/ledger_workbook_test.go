package spreadsheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerWorkbookSheets(t *testing.T) {
	at := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	widget := &domain.Product{Name: "Widget", UnitPrice: decimal.NewFromInt(100)}
	gadget := &domain.Product{Name: "Gadget", UnitPrice: decimal.RequireFromString("15.5")}

	var lines []domain.SaleLine
	lines = append(lines, domain.BuildSaleLines(
		[]domain.CartItem{domain.NewCartItem(widget, 2, at), domain.NewCartItem(gadget, 1, at)},
		domain.Allocation{Terminal: "POS1", SaleID: 1, ClientSeq: 1}, "pos1", at,
	)...)
	lines = append(lines, domain.BuildSaleLines(
		[]domain.CartItem{domain.NewCartItem(widget, 1, at)},
		domain.Allocation{Terminal: "POS2", SaleID: 1, ClientSeq: 1}, "pos2", at,
	)...)

	var buf bytes.Buffer
	err := NewLedgerWorkbook().Write(&buf, []domain.TerminalID{"POS1", "POS2", "POS3"}, lines)
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)

	assert.Equal(t, "ID_Venta", f.GetCellValue("POS1", "A1"))
	assert.Equal(t, "ID_Terminal", f.GetCellValue("ALL", "J1"))

	assert.Len(t, f.GetRows("POS1"), 3)
	assert.Len(t, f.GetRows("POS2"), 2)
	assert.Len(t, f.GetRows("POS3"), 1)
	assert.Len(t, f.GetRows("ALL"), 4)

	assert.Equal(t, "Widget", f.GetCellValue("POS1", "E2"))
	assert.Equal(t, "CLIENTE-POS1-0001", f.GetCellValue("POS1", "D2"))
	assert.Equal(t, "200", f.GetCellValue("POS1", "H2"))
	assert.Equal(t, "POS2", f.GetCellValue("ALL", "J4"))
}
