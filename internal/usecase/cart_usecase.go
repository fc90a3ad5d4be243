package usecase

import (
	"context"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/logger"
	"github.com/shopspring/decimal"
)

// ProductFinder ищет товар каталога по имени.
type ProductFinder interface {
	FindProduct(ctx context.Context, name string) (*domain.Product, bool, error)
}

// CartUseCase управляет корзиной пользователя. У каждого пользователя одна корзина.
type CartUseCase struct {
	carts       CartRepository
	catalog     ProductFinder
	taxRate     decimal.Decimal
	maxItems    int
	maxQuantity int
	logger      logger.Logger
	now         func() time.Time
}

// CartOptions — лимиты корзины.
type CartOptions struct {
	TaxRate     decimal.Decimal
	MaxItems    int
	MaxQuantity int
	Now         func() time.Time
}

func NewCartUC(carts CartRepository, catalog ProductFinder, opts CartOptions, logger logger.Logger) *CartUseCase {
	if opts.MaxItems <= 0 {
		opts.MaxItems = domain.DefaultMaxCartItems
	}
	if opts.MaxQuantity <= 0 {
		opts.MaxQuantity = domain.DefaultMaxQuantity
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &CartUseCase{
		carts:       carts,
		catalog:     catalog,
		taxRate:     opts.TaxRate,
		maxItems:    opts.MaxItems,
		maxQuantity: opts.MaxQuantity,
		logger:      logger,
		now:         opts.Now,
	}
}

func (c *CartUseCase) Get(ctx context.Context, owner string) (*CartView, error) {
	const op = "CartUseCase.Get"

	cart, err := c.carts.Get(ctx, owner)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return c.view(cart), nil
}

// AddItem добавляет товар в корзину, фиксируя текущую цену каталога.
func (c *CartUseCase) AddItem(ctx context.Context, req *AddCartItemReq) (*CartView, error) {
	const op = "CartUseCase.AddItem"

	if req.Quantity < domain.MinQuantity || req.Quantity > c.maxQuantity {
		return nil, e.Wrap(op, e.ErrInvalidQuantity)
	}
	if domain.NormalizeName(req.ProductName) == "" {
		return nil, e.Wrap(op, e.ErrProductNameRequired)
	}

	product, found, err := c.catalog.FindProduct(ctx, req.ProductName)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if !found || !product.IsAvailable() {
		return nil, e.Wrap(op, e.ErrUnknownProduct)
	}

	cart, err := c.carts.Get(ctx, req.Owner)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if len(cart.Items) >= c.maxItems {
		return nil, e.Wrap(op, e.ErrCartFull)
	}

	cart.Items = append(cart.Items, domain.NewCartItem(product, req.Quantity, c.now()))
	if err := c.carts.Save(ctx, cart); err != nil {
		return nil, e.Wrap(op, err)
	}

	c.logger.Debugf("Cart item added. owner: %s, product: %s, quantity: %d", req.Owner, product.Name, req.Quantity)

	return c.view(cart), nil
}

// RemoveItem удаляет позицию по индексу (с нуля).
func (c *CartUseCase) RemoveItem(ctx context.Context, owner string, index int) (*CartView, error) {
	const op = "CartUseCase.RemoveItem"

	cart, err := c.carts.Get(ctx, owner)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if index < 0 || index >= len(cart.Items) {
		return nil, e.Wrap(op, e.ErrInvalidCartIndex)
	}

	cart.Items = append(cart.Items[:index], cart.Items[index+1:]...)
	if err := c.carts.Save(ctx, cart); err != nil {
		return nil, e.Wrap(op, err)
	}

	return c.view(cart), nil
}

func (c *CartUseCase) Clear(ctx context.Context, owner string) error {
	const op = "CartUseCase.Clear"

	if err := c.carts.Clear(ctx, owner); err != nil {
		return e.Wrap(op, err)
	}
	return nil
}

func (c *CartUseCase) view(cart *domain.Cart) *CartView {
	return NewCartView(cart, domain.CalculateTotals(cart.Items, c.taxRate))
}
