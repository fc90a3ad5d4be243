package usecase

import (
	"context"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
)

type SaleUC interface {
	FinalizeSale(ctx context.Context, req *FinalizeSaleReq) (*FinalizeSaleRes, error)
	NextSaleID(ctx context.Context, terminal domain.TerminalID) (domain.Allocation, error)
	PeekNextClientID(ctx context.Context, terminal domain.TerminalID) (string, error)
	ListSales(ctx context.Context, filter domain.LedgerFilter) ([]domain.SaleLine, error)
}

type CartUC interface {
	Get(ctx context.Context, owner string) (*CartView, error)
	AddItem(ctx context.Context, req *AddCartItemReq) (*CartView, error)
	RemoveItem(ctx context.Context, owner string, index int) (*CartView, error)
	Clear(ctx context.Context, owner string) error
}

type CatalogUC interface {
	FindProduct(ctx context.Context, name string) (*domain.Product, bool, error)
	SearchProducts(ctx context.Context, query string, limit int) ([]string, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	CreateProduct(ctx context.Context, req *ProductReq) (*domain.Product, error)
	UpdateProduct(ctx context.Context, originalName string, req *ProductReq) (*domain.Product, error)
	DeleteProduct(ctx context.Context, name string) error
}

type AuthUC interface {
	Login(ctx context.Context, req *LoginReq) (*domain.Session, error)
	Authenticate(ctx context.Context, token string) (*domain.Session, error)
	Logout(ctx context.Context, token string) error
}

type DashboardUC interface {
	Stats(ctx context.Context, terminal domain.TerminalID) (*domain.DashboardStats, error)
	StatsByTerminal(ctx context.Context) ([]domain.DashboardStats, error)
	Diagnostics(ctx context.Context) (*DiagnosticsRes, error)
}

type ExportUC interface {
	BuildLedger(ctx context.Context) (*Report, error)
	ExportLedger(ctx context.Context) (*ExportRes, error)
}
