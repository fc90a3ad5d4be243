package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	DefaultMaxCartItems = 50
	MinQuantity         = 1
	DefaultMaxQuantity  = 100
)

// CartItem — позиция корзины. Цена фиксируется в момент добавления.
type CartItem struct {
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
	Supplier    string
	Category    string
	AddedAt     time.Time
}

// Cart — корзина одного пользователя.
type Cart struct {
	Owner string
	Items []CartItem
}

// NewCartItem снимает цену товара в позицию корзины.
func NewCartItem(p *Product, quantity int, at time.Time) CartItem {
	return CartItem{
		ProductName: p.Name,
		Quantity:    quantity,
		UnitPrice:   p.UnitPrice,
		Subtotal:    p.UnitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		Supplier:    p.Supplier,
		Category:    p.Category,
		AddedAt:     at,
	}
}

func NewCart(owner string) *Cart {
	return &Cart{Owner: owner, Items: make([]CartItem, 0)}
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

// LineTotal — итог позиции, вычисленный из снятой цены.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
