package domain

import (
	"fmt"
	"time"
)

// TerminalCounter хранит состояние последовательностей терминала.
// Значения только растут и меняются ровно один раз на каждую проведённую продажу.
type TerminalCounter struct {
	Terminal     TerminalID
	LastClientID int64
	LastSaleID   int64
	TotalSales   int64
	UpdatedAt    *time.Time
}

// Allocation — пара идентификаторов, выданная для одной продажи.
type Allocation struct {
	Terminal  TerminalID
	SaleID    int64
	ClientSeq int64
}

// NewTerminalCounter создаёт счётчик в начальном состоянии.
func NewTerminalCounter(terminal TerminalID) *TerminalCounter {
	return &TerminalCounter{Terminal: terminal}
}

// Next возвращает следующее состояние счётчика и выданную пару идентификаторов.
// Исходный счётчик не изменяется.
func (c TerminalCounter) Next(at time.Time) (TerminalCounter, Allocation) {
	next := c
	next.LastClientID++
	next.LastSaleID++
	next.TotalSales++
	next.UpdatedAt = &at

	return next, Allocation{
		Terminal:  c.Terminal,
		SaleID:    next.LastSaleID,
		ClientSeq: next.LastClientID,
	}
}

// NextClientID возвращает идентификатор клиента, который получит следующая продажа.
func (c TerminalCounter) NextClientID() string {
	return FormatClientID(c.Terminal, c.LastClientID+1)
}

// ClientID возвращает отформатированный идентификатор клиента.
func (a Allocation) ClientID() string {
	return FormatClientID(a.Terminal, a.ClientSeq)
}

// FormatClientID форматирует идентификатор клиента: CLIENTE-POS1-0001.
func FormatClientID(terminal TerminalID, seq int64) string {
	return fmt.Sprintf("CLIENTE-%s-%04d", terminal, seq)
}
