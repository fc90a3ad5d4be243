package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// SaleLine — неизменяемая строка журнала продаж, одна на позицию корзины.
type SaleLine struct {
	ID          int64
	SaleID      int64
	LineNo      int
	Date        string
	Time        string
	ClientID    string
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal
	Salesperson string
	Terminal    TerminalID
	CreatedAt   time.Time
}

// SaleReceipt — результат проведения продажи.
type SaleReceipt struct {
	SaleID    int64
	ClientID  string
	Terminal  TerminalID
	LineCount int
	Totals    Totals
	Date      string
	Time      string
}

// BuildSaleLines строит строки журнала для продажи.
// Total считается из цены, снятой в корзину, а не из текущего каталога.
func BuildSaleLines(items []CartItem, alloc Allocation, salesperson string, at time.Time) []SaleLine {
	date, clock := at.Format(DateLayout), at.Format(TimeLayout)
	clientID := alloc.ClientID()

	lines := make([]SaleLine, 0, len(items))
	for i, item := range items {
		lines = append(lines, SaleLine{
			SaleID:      alloc.SaleID,
			LineNo:      i + 1,
			Date:        date,
			Time:        clock,
			ClientID:    clientID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.LineTotal(),
			Salesperson: salesperson,
			Terminal:    alloc.Terminal,
			CreatedAt:   at,
		})
	}

	return lines
}

// NewSaleReceipt собирает квитанцию по выданным идентификаторам и итогам.
func NewSaleReceipt(alloc Allocation, lines []SaleLine, totals Totals, at time.Time) *SaleReceipt {
	return &SaleReceipt{
		SaleID:    alloc.SaleID,
		ClientID:  alloc.ClientID(),
		Terminal:  alloc.Terminal,
		LineCount: len(lines),
		Totals:    totals,
		Date:      at.Format(DateLayout),
		Time:      at.Format(TimeLayout),
	}
}

// LedgerFilter ограничивает выборку журнала. Пустой Terminal или ALL — все терминалы.
type LedgerFilter struct {
	Terminal TerminalID
	Date     string
}

// Matches сообщает, попадает ли строка под фильтр.
func (f LedgerFilter) Matches(line SaleLine) bool {
	if f.Terminal != "" && !f.Terminal.IsAggregate() && line.Terminal != f.Terminal {
		return false
	}
	if f.Date != "" && line.Date != f.Date {
		return false
	}
	return true
}

// LedgerSummary — агрегаты журнала для панели.
type LedgerSummary struct {
	SalesCount      int64
	Revenue         decimal.Decimal
	TodaySalesCount int64
	LineCount       int64
}

// SaleKey — идентичность продажи: номер продажи уникален в пределах терминала.
type SaleKey struct {
	Terminal TerminalID
	SaleID   int64
}

// SummarizeLines считает агрегаты по строкам журнала.
func SummarizeLines(lines []SaleLine, today string) LedgerSummary {
	sales := make(map[SaleKey]struct{})
	todaySales := make(map[SaleKey]struct{})
	summary := LedgerSummary{Revenue: decimal.Zero}

	for _, line := range lines {
		key := SaleKey{Terminal: line.Terminal, SaleID: line.SaleID}
		sales[key] = struct{}{}
		if line.Date == today {
			todaySales[key] = struct{}{}
		}
		summary.Revenue = summary.Revenue.Add(line.Total)
		summary.LineCount++
	}

	summary.SalesCount = int64(len(sales))
	summary.TodaySalesCount = int64(len(todaySales))
	return summary
}
