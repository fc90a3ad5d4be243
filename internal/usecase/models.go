package usecase

import (
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/shopspring/decimal"
)

// SALE USECASE

// FinalizeSaleReq — запрос на проведение продажи по корзине пользователя.
type FinalizeSaleReq struct {
	Owner       string
	Terminal    domain.TerminalID
	Salesperson string
}

// FinalizeSaleRes — квитанция и идентификатор клиента для следующей продажи.
type FinalizeSaleRes struct {
	Receipt      *domain.SaleReceipt
	Lines        []domain.SaleLine
	NextClientID string
}

// CART USECASE

// AddCartItemReq — запрос на добавление товара в корзину.
type AddCartItemReq struct {
	Owner       string
	ProductName string
	Quantity    int
}

// CartView — корзина вместе с итогами.
type CartView struct {
	Cart   *domain.Cart
	Totals domain.Totals
}

// CATALOG USECASE

// ProductReq — данные товара от администратора.
type ProductReq struct {
	Name        string
	Category    string
	Subcategory string
	UnitPrice   decimal.Decimal
	Supplier    string
	Status      string
}

// AUTH USECASE

type LoginReq struct {
	Username string
	Password string
}

// DASHBOARD USECASE

// DiagnosticsRes — состояние системы.
type DiagnosticsRes struct {
	Status      string
	Products    int64
	LedgerLines int64
	Backend     string
	CheckedAt   time.Time
}

// EXPORT USECASE

// Report — готовая выгрузка для загрузки в хранилище.
type Report struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExportRes — результат выгрузки журнала в хранилище.
type ExportRes struct {
	Key string
	URL string
}

// INFRASTRUCTURE

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
)

type OutboxEventType string

const SaleCommitted OutboxEventType = "sale.committed"

// OutboxEvent — событие, записанное в одной транзакции с продажей.
type OutboxEvent struct {
	ID           int64
	EventID      string
	EventType    OutboxEventType
	AggregateKey string
	Payload      []byte
	Status       OutboxStatus
	CreatedAt    time.Time
	ProcessedAt  *time.Time
}

// WriteRawMessageReq — сообщение для шины с ключом партиционирования.
type WriteRawMessageReq struct {
	Key     string
	Payload []byte
	Headers map[string]string
}

// MAPPERS

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}

// NewEventMessageReq упаковывает событие outbox; id и тип события уходят в заголовки.
func NewEventMessageReq(event *OutboxEvent) *WriteRawMessageReq {
	req := NewWriteRawMessageReq(event.AggregateKey, event.Payload)
	req.Headers = map[string]string{
		"event_id":   event.EventID,
		"event_type": string(event.EventType),
	}
	return req
}

func NewFinalizeSaleReq(owner string, terminal domain.TerminalID, salesperson string) *FinalizeSaleReq {
	return &FinalizeSaleReq{
		Owner:       owner,
		Terminal:    terminal,
		Salesperson: salesperson,
	}
}

func NewAddCartItemReq(owner, productName string, quantity int) *AddCartItemReq {
	return &AddCartItemReq{
		Owner:       owner,
		ProductName: productName,
		Quantity:    quantity,
	}
}

func NewCartView(cart *domain.Cart, totals domain.Totals) *CartView {
	return &CartView{
		Cart:   cart,
		Totals: totals,
	}
}

func NewReport(name, contentType string, data []byte) *Report {
	return &Report{
		Name:        name,
		ContentType: contentType,
		Data:        data,
	}
}
