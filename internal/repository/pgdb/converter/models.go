package converter

import "time"

// ProductModel представляет запись таблицы products в PostgreSQL.
// Цена читается как текст, чтобы не терять точность NUMERIC.
type ProductModel struct {
	ID          int64      `db:"id"`
	Name        string     `db:"name"`
	Category    string     `db:"category"`
	Subcategory string     `db:"subcategory"`
	UnitPrice   string     `db:"unit_price"`
	Supplier    string     `db:"supplier"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at"`
}

// SaleLineModel представляет запись таблицы sale_lines в PostgreSQL.
type SaleLineModel struct {
	ID          int64     `db:"id"`
	SaleID      int64     `db:"sale_id"`
	LineNo      int       `db:"line_no"`
	SaleDate    string    `db:"sale_date"`
	SaleTime    string    `db:"sale_time"`
	ClientID    string    `db:"client_id"`
	ProductName string    `db:"product_name"`
	Quantity    int       `db:"quantity"`
	UnitPrice   string    `db:"unit_price"`
	Total       string    `db:"total"`
	Salesperson string    `db:"salesperson"`
	TerminalID  string    `db:"terminal_id"`
	CreatedAt   time.Time `db:"created_at"`
}

// TerminalCounterModel представляет запись таблицы terminal_counters в PostgreSQL.
type TerminalCounterModel struct {
	Terminal     string     `db:"terminal"`
	LastClientID int64      `db:"last_client_id"`
	LastSaleID   int64      `db:"last_sale_id"`
	TotalSales   int64      `db:"total_sales"`
	UpdatedAt    *time.Time `db:"updated_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID           int64      `db:"id"`
	EventID      string     `db:"event_id"`
	EventType    string     `db:"event_type"`
	AggregateKey string     `db:"aggregate_key"`
	Payload      []byte     `db:"payload"`
	Status       string     `db:"status"`
	CreatedAt    time.Time  `db:"created_at"`
	ProcessedAt  *time.Time `db:"processed_at"`
}
