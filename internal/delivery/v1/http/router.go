package http

import (
	"net/http"

	_ "github.com/DRSN-tech/pocopan-pos/docs" // Импорт описания swagger
	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

// UseCases — зависимости HTTP-слоя.
type UseCases struct {
	Auth      usecase.AuthUC
	Catalog   usecase.CatalogUC
	Cart      usecase.CartUC
	Sale      usecase.SaleUC
	Dashboard usecase.DashboardUC
	Export    usecase.ExportUC
}

type Router struct {
	router *chi.Mux
	logger logger.Logger
}

func NewRouter(router *chi.Mux, logger logger.Logger) *Router {
	return &Router{router: router, logger: logger}
}

func (r *Router) Init(uc UseCases) http.Handler {
	r.router.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, requestLogger(r.logger))

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		authHandler := NewAuthHandler(uc.Auth, r.logger)
		dashboardHandler := NewDashboardHandler(uc.Dashboard, r.logger)

		v1.Post("/auth/login", authHandler.login)
		v1.Get("/diagnostics", dashboardHandler.diagnostics)

		v1.Group(func(private chi.Router) {
			private.Use(authMiddleware(uc.Auth, r.logger))

			private.Post("/auth/logout", authHandler.logout)
			registerProductRoutes(private, NewProductHandler(uc.Catalog, r.logger))
			registerCartRoutes(private, NewCartHandler(uc.Cart, r.logger))
			registerSaleRoutes(private, NewSaleHandler(uc.Sale, r.logger))
			registerDashboardRoutes(private, dashboardHandler)
			registerExportRoutes(private, NewExportHandler(uc.Export, r.logger))
		})
	})

	return r.router
}

func registerProductRoutes(router chi.Router, h *ProductHandler) {
	router.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.list)
		pr.Get("/search", h.search)
		pr.Get("/{name}", h.get)

		pr.Group(func(admin chi.Router) {
			admin.Use(adminOnly)
			admin.Post("/", h.create)
			admin.Put("/{name}", h.update)
			admin.Delete("/{name}", h.delete)
		})
	})
}

func registerCartRoutes(router chi.Router, h *CartHandler) {
	router.Route("/cart", func(cr chi.Router) {
		cr.Get("/", h.get)
		cr.Delete("/", h.clear)
		cr.Post("/items", h.addItem)
		cr.Delete("/items/{index}", h.removeItem)
	})
}

func registerSaleRoutes(router chi.Router, h *SaleHandler) {
	router.Post("/sales", h.finalize)
	router.Get("/sales", h.list)

	router.Route("/terminals/{terminal}", func(tr chi.Router) {
		tr.Get("/next-client", h.nextClient)
		tr.With(adminOnly).Post("/allocate", h.allocate)
	})
}

func registerDashboardRoutes(router chi.Router, h *DashboardHandler) {
	router.Get("/dashboard", h.overview)
	router.Get("/dashboard/{terminal}", h.terminal)
}

func registerExportRoutes(router chi.Router, h *ExportHandler) {
	router.Route("/exports", func(er chi.Router) {
		er.Use(adminOnly)
		er.Get("/ledger.xlsx", h.download)
		er.Post("/ledger", h.upload)
	})
}
