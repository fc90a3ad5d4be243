package converter

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartConverter_KeepsPriceSnapshot(t *testing.T) {
	at := time.Date(2026, 10, 14, 10, 15, 30, 0, time.UTC)
	product := domain.NewProduct("Widget", "Juegos", "", decimal.RequireFromString("100.10"), "Proveedor A")

	cart := domain.NewCart("pos1")
	cart.Items = append(cart.Items, domain.NewCartItem(product, 3, at))

	var conv CartConverter
	data, err := json.Marshal(conv.ToRedisModel(cart))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"unit_price":"100.1"`)

	var model CartRedisModel
	require.NoError(t, json.Unmarshal(data, &model))

	restored := conv.ToEntity(&model)
	require.Len(t, restored.Items, 1)
	assert.Equal(t, "pos1", restored.Owner)
	assert.True(t, restored.Items[0].UnitPrice.Equal(decimal.RequireFromString("100.10")))
	assert.True(t, restored.Items[0].Subtotal.Equal(decimal.RequireFromString("300.30")))
	assert.True(t, restored.Items[0].AddedAt.Equal(at))
}

func TestSessionConverter(t *testing.T) {
	session := &domain.Session{
		Token:     "t",
		Username:  "admin",
		Role:      domain.RoleAdmin,
		Terminal:  domain.AggregateTerminal,
		ExpiresAt: time.Date(2026, 10, 14, 11, 0, 0, 0, time.UTC),
	}

	var conv SessionConverter
	assert.Equal(t, session, conv.ToEntity(conv.ToRedisModel(session)))
}
