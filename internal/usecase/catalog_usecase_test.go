package usecase_test

import (
	"context"
	"testing"

	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindProductMatchOrder(t *testing.T) {
	f := newFixture(t, 0)
	f.addProduct(t, "Juego de Mesa Catan", "15500")
	f.addProduct(t, "Catan", "9000")
	f.addProduct(t, "Cartas UNO", "2500")
	ctx := context.Background()

	tests := []struct {
		query string
		want  string
		found bool
	}{
		{"Catan", "Catan", true},
		{"CATAN", "Catan", true},
		{"cartas", "Cartas UNO", true},
		{"mesa", "Juego de Mesa Catan", true},
		{"ajedrez", "", false},
		{"   ", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p, found, err := f.catalog.FindProduct(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, p.Name)
			}
		})
	}
}

func TestFindProductUsesCache(t *testing.T) {
	f := newFixture(t, 0)
	f.addProduct(t, "Widget", "100")
	ctx := context.Background()

	_, found, err := f.catalog.FindProduct(ctx, "widget")
	require.NoError(t, err)
	require.True(t, found)

	cached, found, err := f.store.Cache().GetProduct(ctx, "widget")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Widget", cached.Name)

	// Совпадение по подстроке не кэшируется
	_, found, err = f.catalog.FindProduct(ctx, "idg")
	require.NoError(t, err)
	require.True(t, found)
	_, found, err = f.store.Cache().GetProduct(ctx, "idg")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSearchProducts(t *testing.T) {
	f := newFixture(t, 0)
	f.addProduct(t, "Juego de Mesa Catan", "15500")
	f.addProduct(t, "Juego de Cartas", "2500")
	f.addProduct(t, "Rompecabezas", "3000")
	_, err := f.catalog.CreateProduct(context.Background(), &usecase.ProductReq{
		Name: "Juego Agotado", UnitPrice: dec("10"), Status: "Out of stock",
	})
	require.NoError(t, err)
	ctx := context.Background()

	names, err := f.catalog.SearchProducts(ctx, "JUEGO", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Juego de Mesa Catan", "Juego de Cartas"}, names)

	names, err = f.catalog.SearchProducts(ctx, "juego", 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"Juego de Mesa Catan"}, names)

	names, err = f.catalog.SearchProducts(ctx, "j", 10)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestSearchProductsCappedByConfiguredLimit(t *testing.T) {
	f := newFixture(t, 0)
	f.addProduct(t, "Juego de Mesa Catan", "15500")
	f.addProduct(t, "Juego de Cartas", "2500")
	f.addProduct(t, "Juego de Dados", "800")
	ctx := context.Background()

	catalog := usecase.NewCatalogUC(f.store.Products(), f.store.Cache(), 2, logger.NewTestLogger(t))

	names, err := catalog.SearchProducts(ctx, "juego", 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"Juego de Mesa Catan", "Juego de Cartas"}, names)

	names, err = catalog.SearchProducts(ctx, "juego", 1)
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestCreateProductValidation(t *testing.T) {
	f := newFixture(t, 0)
	f.addProduct(t, "Widget", "100")
	ctx := context.Background()

	tests := []struct {
		name string
		req  usecase.ProductReq
		want error
	}{
		{"duplicate ignoring case", usecase.ProductReq{Name: "WIDGET", UnitPrice: dec("1")}, e.ErrProductExists},
		{"empty name", usecase.ProductReq{Name: " ", UnitPrice: dec("1")}, e.ErrProductNameRequired},
		{"zero price", usecase.ProductReq{Name: "Gadget", UnitPrice: dec("0")}, e.ErrInvalidPrice},
		{"negative price", usecase.ProductReq{Name: "Gadget", UnitPrice: dec("-3")}, e.ErrInvalidPrice},
		{"three decimals", usecase.ProductReq{Name: "Gadget", UnitPrice: dec("1.005")}, e.ErrPricePrecision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.catalog.CreateProduct(ctx, &tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, e.KindValidation, e.KindOf(err))
		})
	}
}

func TestUpdateProductRenameInvalidatesCache(t *testing.T) {
	f := newFixture(t, 0)
	f.addProduct(t, "Widget", "100")
	f.addProduct(t, "Gadget", "5")
	ctx := context.Background()

	_, _, err := f.catalog.FindProduct(ctx, "Widget")
	require.NoError(t, err)

	updated, err := f.catalog.UpdateProduct(ctx, "widget", &usecase.ProductReq{Name: "Widget Pro", UnitPrice: dec("120")})
	require.NoError(t, err)
	assert.Equal(t, "Widget Pro", updated.Name)
	assert.NotNil(t, updated.UpdatedAt)

	_, found, err := f.store.Cache().GetProduct(ctx, "widget")
	require.NoError(t, err)
	assert.False(t, found)

	p, found, err := f.catalog.FindProduct(ctx, "widget pro")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, dec("120").Equal(p.UnitPrice))

	_, err = f.catalog.UpdateProduct(ctx, "Widget Pro", &usecase.ProductReq{Name: "gadget", UnitPrice: dec("1")})
	assert.ErrorIs(t, err, e.ErrProductExists)

	_, err = f.catalog.UpdateProduct(ctx, "Nada", &usecase.ProductReq{Name: "Nada", UnitPrice: dec("1")})
	assert.ErrorIs(t, err, e.ErrProductNotFound)
	assert.Equal(t, e.KindNotFound, e.KindOf(err))
}

func TestDeleteProduct(t *testing.T) {
	f := newFixture(t, 0)
	f.addProduct(t, "Widget", "100")
	ctx := context.Background()

	require.NoError(t, f.catalog.DeleteProduct(ctx, "WIDGET"))

	_, found, err := f.catalog.FindProduct(ctx, "Widget")
	require.NoError(t, err)
	assert.False(t, found)

	err = f.catalog.DeleteProduct(ctx, "Widget")
	assert.ErrorIs(t, err, e.ErrProductNotFound)

	products, err := f.catalog.ListProducts(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}
