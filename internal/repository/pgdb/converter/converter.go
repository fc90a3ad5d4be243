// Package converter преобразует сущности domain/usecase в модели PostgreSQL и обратно.
package converter

import (
	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"github.com/shopspring/decimal"
)

// ProductConverter преобразует Product между domain и моделью PostgreSQL.
type ProductConverter struct{}

func (ProductConverter) ToModel(entity *domain.Product) *ProductModel {
	return &ProductModel{
		ID:          entity.ID,
		Name:        entity.Name,
		Category:    entity.Category,
		Subcategory: entity.Subcategory,
		UnitPrice:   entity.UnitPrice.StringFixed(2),
		Supplier:    entity.Supplier,
		Status:      entity.Status,
		CreatedAt:   entity.CreatedAt,
		UpdatedAt:   entity.UpdatedAt,
	}
}

func (ProductConverter) ToEntity(model *ProductModel) (*domain.Product, error) {
	price, err := decimal.NewFromString(model.UnitPrice)
	if err != nil {
		return nil, err
	}

	return &domain.Product{
		ID:          model.ID,
		Name:        model.Name,
		Category:    model.Category,
		Subcategory: model.Subcategory,
		UnitPrice:   price,
		Supplier:    model.Supplier,
		Status:      model.Status,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}, nil
}

// SaleLineConverter преобразует SaleLine между domain и моделью PostgreSQL.
type SaleLineConverter struct{}

func (SaleLineConverter) ToModel(entity *domain.SaleLine) *SaleLineModel {
	return &SaleLineModel{
		ID:          entity.ID,
		SaleID:      entity.SaleID,
		LineNo:      entity.LineNo,
		SaleDate:    entity.Date,
		SaleTime:    entity.Time,
		ClientID:    entity.ClientID,
		ProductName: entity.ProductName,
		Quantity:    entity.Quantity,
		UnitPrice:   entity.UnitPrice.StringFixed(2),
		Total:       entity.Total.StringFixed(2),
		Salesperson: entity.Salesperson,
		TerminalID:  entity.Terminal.String(),
		CreatedAt:   entity.CreatedAt,
	}
}

func (SaleLineConverter) ToEntity(model *SaleLineModel) (*domain.SaleLine, error) {
	price, err := decimal.NewFromString(model.UnitPrice)
	if err != nil {
		return nil, err
	}
	total, err := decimal.NewFromString(model.Total)
	if err != nil {
		return nil, err
	}

	return &domain.SaleLine{
		ID:          model.ID,
		SaleID:      model.SaleID,
		LineNo:      model.LineNo,
		Date:        model.SaleDate,
		Time:        model.SaleTime,
		ClientID:    model.ClientID,
		ProductName: model.ProductName,
		Quantity:    model.Quantity,
		UnitPrice:   price,
		Total:       total,
		Salesperson: model.Salesperson,
		Terminal:    domain.TerminalID(model.TerminalID),
		CreatedAt:   model.CreatedAt,
	}, nil
}

// TerminalCounterConverter преобразует TerminalCounter между domain и моделью PostgreSQL.
type TerminalCounterConverter struct{}

func (TerminalCounterConverter) ToModel(entity *domain.TerminalCounter) *TerminalCounterModel {
	return &TerminalCounterModel{
		Terminal:     entity.Terminal.String(),
		LastClientID: entity.LastClientID,
		LastSaleID:   entity.LastSaleID,
		TotalSales:   entity.TotalSales,
		UpdatedAt:    entity.UpdatedAt,
	}
}

func (TerminalCounterConverter) ToEntity(model *TerminalCounterModel) *domain.TerminalCounter {
	return &domain.TerminalCounter{
		Terminal:     domain.TerminalID(model.Terminal),
		LastClientID: model.LastClientID,
		LastSaleID:   model.LastSaleID,
		TotalSales:   model.TotalSales,
		UpdatedAt:    model.UpdatedAt,
	}
}

// OutboxEventConverter преобразует OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter struct{}

func (OutboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:           entity.ID,
		EventID:      entity.EventID,
		EventType:    string(entity.EventType),
		AggregateKey: entity.AggregateKey,
		Payload:      entity.Payload,
		Status:       string(entity.Status),
		CreatedAt:    entity.CreatedAt,
		ProcessedAt:  entity.ProcessedAt,
	}
}

func (OutboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:           model.ID,
		EventID:      model.EventID,
		EventType:    usecase.OutboxEventType(model.EventType),
		AggregateKey: model.AggregateKey,
		Payload:      model.Payload,
		Status:       usecase.OutboxStatus(model.Status),
		CreatedAt:    model.CreatedAt,
		ProcessedAt:  model.ProcessedAt,
	}
}

func (c OutboxEventConverter) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	out := make([]*usecase.OutboxEvent, 0, len(models))
	for _, model := range models {
		out = append(out, c.ToEntity(model))
	}
	return out
}
