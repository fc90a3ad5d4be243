package http

import (
	"encoding/json"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
)

// AUTH

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SessionResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Terminal  string    `json:"terminal"`
	ExpiresAt time.Time `json:"expires_at"`
}

func toSessionResponse(s *domain.Session) SessionResponse {
	return SessionResponse{
		Token:     s.Token,
		Username:  s.Username,
		Role:      string(s.Role),
		Terminal:  s.Terminal.String(),
		ExpiresAt: s.ExpiresAt,
	}
}

// PRODUCTS

type ProductRequest struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Subcategory string      `json:"subcategory"`
	UnitPrice   json.Number `json:"unit_price"`
	Supplier    string      `json:"supplier"`
	Status      string      `json:"status"`
}

func (p ProductRequest) toUseCase() (*usecase.ProductReq, error) {
	price, err := parsePrice(p.UnitPrice)
	if err != nil {
		return nil, err
	}

	return &usecase.ProductReq{
		Name:        p.Name,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		UnitPrice:   price,
		Supplier:    p.Supplier,
		Status:      p.Status,
	}, nil
}

type ProductResponse struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Subcategory string      `json:"subcategory"`
	UnitPrice   json.Number `json:"unit_price"`
	Supplier    string      `json:"supplier"`
	Status      string      `json:"status"`
}

func toProductResponse(p *domain.Product) ProductResponse {
	return ProductResponse{
		Name:        p.Name,
		Category:    p.Category,
		Subcategory: p.Subcategory,
		UnitPrice:   money(p.UnitPrice),
		Supplier:    p.Supplier,
		Status:      p.Status,
	}
}

// CART

type AddCartItemRequest struct {
	Product  string `json:"product"`
	Quantity *int   `json:"quantity"`
}

type CartItemResponse struct {
	Product   string      `json:"product"`
	Quantity  int         `json:"quantity"`
	UnitPrice json.Number `json:"unit_price"`
	Subtotal  json.Number `json:"subtotal"`
	Supplier  string      `json:"supplier"`
	Category  string      `json:"category"`
	AddedAt   time.Time   `json:"added_at"`
}

type TotalsResponse struct {
	Subtotal json.Number `json:"subtotal"`
	Tax      json.Number `json:"tax"`
	Total    json.Number `json:"total"`
	TaxRate  json.Number `json:"tax_rate"`
}

type CartResponse struct {
	Items  []CartItemResponse `json:"items"`
	Totals TotalsResponse     `json:"totals"`
}

func toTotalsResponse(t domain.Totals) TotalsResponse {
	return TotalsResponse{
		Subtotal: money(t.Subtotal),
		Tax:      money(t.Tax),
		Total:    money(t.Total),
		TaxRate:  json.Number(t.TaxRate.String()),
	}
}

func toCartResponse(view *usecase.CartView) CartResponse {
	items := make([]CartItemResponse, 0, len(view.Cart.Items))
	for _, item := range view.Cart.Items {
		items = append(items, CartItemResponse{
			Product:   item.ProductName,
			Quantity:  item.Quantity,
			UnitPrice: money(item.UnitPrice),
			Subtotal:  money(item.Subtotal),
			Supplier:  item.Supplier,
			Category:  item.Category,
			AddedAt:   item.AddedAt,
		})
	}

	return CartResponse{Items: items, Totals: toTotalsResponse(view.Totals)}
}

// SALES

type FinalizeSaleRequest struct {
	Terminal string `json:"terminal"`
}

type SaleSummary struct {
	SaleID    int64          `json:"sale_id"`
	ClientID  string         `json:"client_id"`
	Terminal  string         `json:"terminal"`
	LineCount int            `json:"line_count"`
	Totals    TotalsResponse `json:"totals"`
	Date      string         `json:"date"`
	Time      string         `json:"time"`
}

type FinalizeSaleResponse struct {
	Success         bool        `json:"success"`
	Message         string      `json:"message"`
	Summary         SaleSummary `json:"summary"`
	CurrentClientID string      `json:"id_cliente_actual"`
}

func toFinalizeSaleResponse(res *usecase.FinalizeSaleRes) FinalizeSaleResponse {
	r := res.Receipt
	return FinalizeSaleResponse{
		Success: true,
		Message: "sale completed",
		Summary: SaleSummary{
			SaleID:    r.SaleID,
			ClientID:  r.ClientID,
			Terminal:  r.Terminal.String(),
			LineCount: r.LineCount,
			Totals:    toTotalsResponse(r.Totals),
			Date:      r.Date,
			Time:      r.Time,
		},
		CurrentClientID: res.NextClientID,
	}
}

type SaleLineResponse struct {
	SaleID      int64       `json:"sale_id"`
	LineNo      int         `json:"line_no"`
	Date        string      `json:"date"`
	Time        string      `json:"time"`
	ClientID    string      `json:"client_id"`
	Product     string      `json:"product"`
	Quantity    int         `json:"quantity"`
	UnitPrice   json.Number `json:"unit_price"`
	Total       json.Number `json:"total"`
	Salesperson string      `json:"salesperson"`
	Terminal    string      `json:"terminal"`
}

func toSaleLinesResponse(lines []domain.SaleLine) []SaleLineResponse {
	out := make([]SaleLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, SaleLineResponse{
			SaleID:      l.SaleID,
			LineNo:      l.LineNo,
			Date:        l.Date,
			Time:        l.Time,
			ClientID:    l.ClientID,
			Product:     l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   money(l.UnitPrice),
			Total:       money(l.Total),
			Salesperson: l.Salesperson,
			Terminal:    l.Terminal.String(),
		})
	}

	return out
}

// TERMINALS

type NextClientResponse struct {
	Terminal        string `json:"terminal"`
	CurrentClientID string `json:"id_cliente_actual"`
}

type AllocationResponse struct {
	Terminal string `json:"terminal"`
	SaleID   int64  `json:"sale_id"`
	ClientID string `json:"client_id"`
}

// DASHBOARD

type StatsResponse struct {
	Terminal         string      `json:"terminal"`
	DisplayName      string      `json:"display_name"`
	SalesCount       int64       `json:"sales_count"`
	Revenue          json.Number `json:"revenue"`
	RevenueFormatted string      `json:"revenue_formatted"`
	TodaySalesCount  int64       `json:"today_sales_count"`
	CatalogSize      int64       `json:"catalog_size"`
	ActiveUsers      int64       `json:"active_users"`
}

type DashboardResponse struct {
	Stats     StatsResponse   `json:"stats"`
	Terminals []StatsResponse `json:"terminals,omitempty"`
}

func toStatsResponse(s *domain.DashboardStats) StatsResponse {
	return StatsResponse{
		Terminal:         s.Terminal.String(),
		DisplayName:      s.DisplayName,
		SalesCount:       s.SalesCount,
		Revenue:          money(s.Revenue),
		RevenueFormatted: s.RevenueFormatted,
		TodaySalesCount:  s.TodaySalesCount,
		CatalogSize:      s.CatalogSize,
		ActiveUsers:      s.ActiveUsers,
	}
}

type DiagnosticsResponse struct {
	Status      string    `json:"status"`
	Products    int64     `json:"products"`
	LedgerLines int64     `json:"ledger_lines"`
	Backend     string    `json:"backend"`
	CheckedAt   time.Time `json:"checked_at"`
}

// EXPORTS

type ExportResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
