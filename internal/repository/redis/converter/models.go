package converter

import (
	"time"

	"github.com/shopspring/decimal"
)

// Денежные поля decimal.Decimal сериализуются в JSON строкой, точность не теряется.

type ProductRedisModel struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Subcategory string          `json:"subcategory"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Supplier    string          `json:"supplier"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   *time.Time      `json:"updated_at,omitempty"`
}

type CartItemRedisModel struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Supplier    string          `json:"supplier"`
	Category    string          `json:"category"`
	AddedAt     time.Time       `json:"added_at"`
}

type CartRedisModel struct {
	Owner string               `json:"owner"`
	Items []CartItemRedisModel `json:"items"`
}

type SessionRedisModel struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Terminal  string    `json:"terminal"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
