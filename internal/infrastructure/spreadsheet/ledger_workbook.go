// Package spreadsheet строит выгрузку журнала продаж в xlsx.
package spreadsheet

import (
	"fmt"
	"io"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
)

// Header — колонки листа журнала.
var Header = []string{
	"ID_Venta", "Fecha", "Hora", "ID_Cliente", "Producto",
	"Cantidad", "Precio_Unitario", "Total_Venta", "Vendedor", "ID_Terminal",
}

const columns = "ABCDEFGHIJ"

// LedgerWorkbook пишет книгу: лист на каждый терминал и лист ALL со всеми строками.
type LedgerWorkbook struct{}

func NewLedgerWorkbook() *LedgerWorkbook {
	return &LedgerWorkbook{}
}

func (w *LedgerWorkbook) Write(out io.Writer, terminals []domain.TerminalID, lines []domain.SaleLine) error {
	const op = "LedgerWorkbook.Write"

	sheets := append(append([]domain.TerminalID{}, terminals...), domain.AggregateTerminal)
	byTerminal := make(map[domain.TerminalID][]domain.SaleLine, len(sheets))
	for _, line := range lines {
		byTerminal[line.Terminal] = append(byTerminal[line.Terminal], line)
	}
	byTerminal[domain.AggregateTerminal] = lines

	f := excelize.NewFile()
	for i, terminal := range sheets {
		name := terminal.String()
		if i == 0 {
			f.SetSheetName("Sheet1", name)
		} else {
			f.NewSheet(name)
		}
		writeSheet(f, name, byTerminal[terminal])
	}

	if err := f.Write(out); err != nil {
		return e.Wrap(op, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, lines []domain.SaleLine) {
	for col, title := range Header {
		f.SetCellValue(sheet, axis(col, 1), title)
	}

	for i, line := range lines {
		row := i + 2
		values := []any{
			line.SaleID,
			line.Date,
			line.Time,
			line.ClientID,
			line.ProductName,
			line.Quantity,
			line.UnitPrice.InexactFloat64(),
			line.Total.InexactFloat64(),
			line.Salesperson,
			line.Terminal.String(),
		}
		for col, v := range values {
			f.SetCellValue(sheet, axis(col, row), v)
		}
	}
}

func axis(col, row int) string {
	return fmt.Sprintf("%c%d", columns[col], row)
}
