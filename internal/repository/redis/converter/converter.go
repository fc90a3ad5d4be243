// Package converter преобразует сущности domain в JSON-модели Redis и обратно.
package converter

import "github.com/DRSN-tech/pocopan-pos/internal/domain"

type ProductConverter struct{}

func (ProductConverter) ToRedisModel(entity *domain.Product) *ProductRedisModel {
	return &ProductRedisModel{
		ID:          entity.ID,
		Name:        entity.Name,
		Category:    entity.Category,
		Subcategory: entity.Subcategory,
		UnitPrice:   entity.UnitPrice,
		Supplier:    entity.Supplier,
		Status:      entity.Status,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}

func (ProductConverter) ToEntity(model *ProductRedisModel) *domain.Product {
	return &domain.Product{
		ID:          model.ID,
		Name:        model.Name,
		Category:    model.Category,
		Subcategory: model.Subcategory,
		UnitPrice:   model.UnitPrice,
		Supplier:    model.Supplier,
		Status:      model.Status,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

type CartConverter struct{}

func (CartConverter) ToRedisModel(entity *domain.Cart) *CartRedisModel {
	items := make([]CartItemRedisModel, 0, len(entity.Items))
	for _, item := range entity.Items {
		items = append(items, CartItemRedisModel{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
			Supplier:    item.Supplier,
			Category:    item.Category,
			AddedAt:     item.AddedAt,
		})
	}

	return &CartRedisModel{Owner: entity.Owner, Items: items}
}

func (CartConverter) ToEntity(model *CartRedisModel) *domain.Cart {
	cart := domain.NewCart(model.Owner)
	for _, item := range model.Items {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
			Supplier:    item.Supplier,
			Category:    item.Category,
			AddedAt:     item.AddedAt,
		})
	}

	return cart
}

type SessionConverter struct{}

func (SessionConverter) ToRedisModel(entity *domain.Session) *SessionRedisModel {
	return &SessionRedisModel{
		Token:     entity.Token,
		Username:  entity.Username,
		Role:      string(entity.Role),
		Terminal:  entity.Terminal.String(),
		CreatedAt: entity.CreatedAt,
		ExpiresAt: entity.ExpiresAt,
	}
}

func (SessionConverter) ToEntity(model *SessionRedisModel) *domain.Session {
	return &domain.Session{
		Token:     model.Token,
		Username:  model.Username,
		Role:      domain.Role(model.Role),
		Terminal:  domain.TerminalID(model.Terminal),
		CreatedAt: model.CreatedAt,
		ExpiresAt: model.ExpiresAt,
	}
}
