package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/internal/infrastructure/spreadsheet"
	"github.com/DRSN-tech/pocopan-pos/internal/repository/memory"
	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/keylock"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUsers = []domain.User{
	{Username: "admin", Password: "admin123", Role: domain.RoleAdmin, Terminal: domain.AggregateTerminal},
	{Username: "pos1", Password: "pos1123", Role: domain.RolePOS, Terminal: "POS1"},
	{Username: "pos2", Password: "pos2123", Role: domain.RolePOS, Terminal: "POS2"},
}

type testAPI struct {
	handler http.Handler
	locker  *keylock.Locker
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	log := logger.NewTestLogger(t)
	store := memory.NewStore()
	terminals := domain.NewTerminalSet("POS1", "POS2", "POS3")
	require.NoError(t, store.Counters().EnsureTerminals(context.Background(), terminals.WithAggregate()))

	locker := keylock.NewLocker(20 * time.Millisecond)
	catalog := usecase.NewCatalogUC(store.Products(), store.Cache(), domain.DefaultSearchLimit, log)

	uc := UseCases{
		Auth:    usecase.NewAuthUC(testUsers, store.Sessions(), time.Hour, log),
		Catalog: catalog,
		Cart: usecase.NewCartUC(store.Carts(), catalog, usecase.CartOptions{
			TaxRate: domain.DefaultTaxRate,
		}, log),
		Sale: usecase.NewSaleUC(
			store,
			store.Counters(),
			store.Sales(),
			store.Carts(),
			store.Outbox(),
			locker,
			terminals,
			usecase.SaleOptions{TaxRate: domain.DefaultTaxRate},
			log,
		),
		Dashboard: usecase.NewDashboardUC(store.Sales(), store.Products(), terminals, usecase.DashboardOptions{
			Currency: "$",
			Backend:  memory.Backend,
			Users:    testUsers,
		}, log),
		Export: usecase.NewExportUC(store.Sales(), spreadsheet.NewLedgerWorkbook(), store.Reports(), terminals, "POCOPAN", log),
	}

	return &testAPI{
		handler: NewRouter(chi.NewRouter(), log).Init(uc),
		locker:  locker,
	}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) login(t *testing.T, username, password string) string {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: username, Password: password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.NotEmpty(t, res.Token)
	return res.Token
}

func (a *testAPI) createProduct(t *testing.T, adminToken, name, price string) {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/v1/products", adminToken, ProductRequest{
		Name:      name,
		Category:  "Ingenio",
		UnitPrice: json.Number(price),
		Supplier:  "Proveedor A",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (a *testAPI) addToCart(t *testing.T, token, product string, qty int) {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/v1/cart/items", token, AddCartItemRequest{Product: product, Quantity: &qty})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()

	var res ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestLogin(t *testing.T) {
	api := newTestAPI(t)

	t.Run("valid credentials", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: "pos1", Password: "pos1123"})
		require.Equal(t, http.StatusOK, rec.Code)

		var res SessionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, "pos1", res.Username)
		assert.Equal(t, "POS1", res.Terminal)
		assert.Equal(t, "pos", res.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := api.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: "pos1", Password: "nope"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, e.KindUnauthorized, decodeError(t, rec).Kind)
	})

	t.Run("unknown field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"user":"pos1"}`))
		rec := httptest.NewRecorder()
		api.handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAuthMiddleware(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/cart", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/cart", "bogus", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := api.login(t, "pos1", "pos1123")
	rec = api.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/cart", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminOnlyRoutes(t *testing.T) {
	api := newTestAPI(t)
	token := api.login(t, "pos1", "pos1123")

	rec := api.do(t, http.MethodPost, "/api/v1/products", token, ProductRequest{Name: "X", UnitPrice: "1"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, e.KindForbidden, decodeError(t, rec).Kind)

	rec = api.do(t, http.MethodGet, "/api/v1/exports/ledger.xlsx", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/terminals/POS1/allocate", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFinalizeSaleFlow(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin", "admin123")
	pos1 := api.login(t, "pos1", "pos1123")

	api.createProduct(t, admin, "Pezca Gusanos", "100.00")
	api.addToCart(t, pos1, "pezca gusanos", 2)

	rec := api.do(t, http.MethodGet, "/api/v1/cart", pos1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cart CartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	require.Len(t, cart.Items, 1)
	assert.Equal(t, json.Number("242.00"), cart.Totals.Total)

	rec = api.do(t, http.MethodPost, "/api/v1/sales", pos1, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res FinalizeSaleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, res.Success)
	assert.Equal(t, int64(1), res.Summary.SaleID)
	assert.Equal(t, "CLIENTE-POS1-0001", res.Summary.ClientID)
	assert.Equal(t, "CLIENTE-POS1-0002", res.CurrentClientID)
	assert.Equal(t, json.Number("200.00"), res.Summary.Totals.Subtotal)
	assert.Equal(t, json.Number("42.00"), res.Summary.Totals.Tax)
	assert.Equal(t, json.Number("242.00"), res.Summary.Totals.Total)

	rec = api.do(t, http.MethodGet, "/api/v1/cart", pos1, nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cart))
	assert.Empty(t, cart.Items)

	rec = api.do(t, http.MethodGet, "/api/v1/sales", pos1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var lines []SaleLineResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lines))
	require.Len(t, lines, 1)
	assert.Equal(t, "Pezca Gusanos", lines[0].Product)
	assert.Equal(t, "pos1", lines[0].Salesperson)
	assert.Equal(t, json.Number("200.00"), lines[0].Total)

	rec = api.do(t, http.MethodGet, "/api/v1/terminals/POS1/next-client", pos1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var next NextClientResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &next))
	assert.Equal(t, "CLIENTE-POS1-0002", next.CurrentClientID)
}

func TestFinalizeSale_EmptyCart(t *testing.T) {
	api := newTestAPI(t)
	pos1 := api.login(t, "pos1", "pos1123")

	rec := api.do(t, http.MethodPost, "/api/v1/sales", pos1, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	res := decodeError(t, rec)
	assert.Equal(t, e.KindValidation, res.Kind)
	assert.Equal(t, "cart empty", res.Message)
}

func TestFinalizeSale_AdminPicksTerminal(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin", "admin123")

	api.createProduct(t, admin, "Muñeco Coleccionable", "8900.00")
	api.addToCart(t, admin, "Muñeco Coleccionable", 1)

	rec := api.do(t, http.MethodPost, "/api/v1/sales", admin, FinalizeSaleRequest{Terminal: "POS2"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res FinalizeSaleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "POS2", res.Summary.Terminal)
	assert.Equal(t, "CLIENTE-POS2-0001", res.Summary.ClientID)
}

func TestFinalizeSale_TerminalBusy(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin", "admin123")
	pos1 := api.login(t, "pos1", "pos1123")

	api.createProduct(t, admin, "Pezca Gusanos", "100.00")
	api.addToCart(t, pos1, "Pezca Gusanos", 1)

	release, err := api.locker.Acquire(context.Background(), "POS1")
	require.NoError(t, err)
	defer release()

	rec := api.do(t, http.MethodPost, "/api/v1/sales", pos1, nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, e.KindBusy, decodeError(t, rec).Kind)
}

func TestForeignTerminalForbidden(t *testing.T) {
	api := newTestAPI(t)
	pos1 := api.login(t, "pos1", "pos1123")

	for _, path := range []string{
		"/api/v1/dashboard/POS2",
		"/api/v1/sales?terminal=POS2",
		"/api/v1/terminals/POS2/next-client",
	} {
		rec := api.do(t, http.MethodGet, path, pos1, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}

	rec := api.do(t, http.MethodPost, "/api/v1/sales", pos1, FinalizeSaleRequest{Terminal: "POS2"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDashboard(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin", "admin123")
	pos1 := api.login(t, "pos1", "pos1123")

	rec := api.do(t, http.MethodGet, "/api/v1/dashboard", pos1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var own DashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &own))
	assert.Equal(t, "POS1", own.Stats.Terminal)
	assert.Empty(t, own.Terminals)

	rec = api.do(t, http.MethodGet, "/api/v1/dashboard", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all DashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Equal(t, "ALL", all.Stats.Terminal)
	assert.Len(t, all.Terminals, 3)
}

func TestDiagnosticsIsPublic(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/diagnostics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var res DiagnosticsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "ok", res.Status)
	assert.Equal(t, memory.Backend, res.Backend)
}

func TestExports(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin", "admin123")

	rec := api.do(t, http.MethodGet, "/api/v1/exports/ledger.xlsx", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usecase.XLSXContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "POCOPAN_ventas_")
	assert.NotZero(t, rec.Body.Len())

	rec = api.do(t, http.MethodPost, "/api/v1/exports/ledger", admin, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res ExportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.True(t, strings.HasPrefix(res.Key, "exports/"))
	assert.Equal(t, "memory://"+res.Key, res.URL)
}

func TestProductRoutes(t *testing.T) {
	api := newTestAPI(t)
	admin := api.login(t, "admin", "admin123")
	pos1 := api.login(t, "pos1", "pos1123")

	api.createProduct(t, admin, "Rompecabezas 1000 Piezas", "12000.00")

	rec := api.do(t, http.MethodGet, "/api/v1/products/search?q=rompe", pos1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &names))
	assert.Equal(t, []string{"Rompecabezas 1000 Piezas"}, names)

	rec = api.do(t, http.MethodGet, "/api/v1/products/Rompecabezas%201000%20Piezas", pos1, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var product ProductResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))
	assert.Equal(t, json.Number("12000.00"), product.UnitPrice)

	rec = api.do(t, http.MethodGet, "/api/v1/products/Nope", pos1, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/products", admin, ProductRequest{Name: "Bad", UnitPrice: "-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
