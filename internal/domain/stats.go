package domain

import "github.com/shopspring/decimal"

// DashboardStats — статистика панели по терминалу или по всем терминалам.
type DashboardStats struct {
	Terminal         TerminalID
	DisplayName      string
	SalesCount       int64
	Revenue          decimal.Decimal
	RevenueFormatted string
	TodaySalesCount  int64
	CatalogSize      int64
	ActiveUsers      int64
}
