package usecase

import (
	"context"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
)

// Transactor выполняет fn в одной транзакции хранилища.
// Если fn вернула ошибку, все изменения внутри неё откатываются.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// CounterRepository хранит счётчики терминалов. LockForUpdate и Save работают только внутри транзакции.
type CounterRepository interface {
	LockForUpdate(ctx context.Context, terminal domain.TerminalID) (*domain.TerminalCounter, error)
	Save(ctx context.Context, counter *domain.TerminalCounter) error
	Get(ctx context.Context, terminal domain.TerminalID) (*domain.TerminalCounter, error)
	List(ctx context.Context) ([]domain.TerminalCounter, error)
	EnsureTerminals(ctx context.Context, terminals []domain.TerminalID) error
}

// SaleRepository — журнал продаж, только добавление.
type SaleRepository interface {
	AppendLines(ctx context.Context, lines []domain.SaleLine) ([]domain.SaleLine, error)
	ListLines(ctx context.Context, filter domain.LedgerFilter) ([]domain.SaleLine, error)
	Summarize(ctx context.Context, terminal domain.TerminalID, today string) (domain.LedgerSummary, error)
}

// OutboxRepository хранит события для публикации после коммита.
type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	MarkAsPending(ctx context.Context, id int64) error
}

// ProductRepository — каталог товаров.
type ProductRepository interface {
	// FindByName ищет товар: точное совпадение, затем без учёта регистра, затем по подстроке.
	FindByName(ctx context.Context, name string) (*domain.Product, bool, error)
	Search(ctx context.Context, query string, limit int) ([]string, error)
	// Create возвращает e.ErrProductExists, если имя занято без учёта регистра.
	Create(ctx context.Context, product *domain.Product) (*domain.Product, error)
	Update(ctx context.Context, originalName string, product *domain.Product) (*domain.Product, bool, error)
	Delete(ctx context.Context, name string) (bool, error)
	List(ctx context.Context) ([]domain.Product, error)
	CountAvailable(ctx context.Context) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// CartRepository хранит корзины пользователей между запросами.
// Get для пользователя без корзины возвращает пустую корзину.
// Take атомарно забирает корзину: из двух одновременных вызовов непустую получит только один.
type CartRepository interface {
	Get(ctx context.Context, owner string) (*domain.Cart, error)
	Take(ctx context.Context, owner string) (*domain.Cart, error)
	Save(ctx context.Context, cart *domain.Cart) error
	Clear(ctx context.Context, owner string) error
}

// SessionRepository хранит сессии пользователей.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, bool, error)
	Delete(ctx context.Context, token string) error
}

// CacheRepository кэширует товары каталога по ключу имени.
type CacheRepository interface {
	GetProduct(ctx context.Context, nameKey string) (*domain.Product, bool, error)
	SetProduct(ctx context.Context, product *domain.Product) error
	DeleteProducts(ctx context.Context, names ...string) error
}

// ReportRepository сохраняет выгрузки журнала во внешнее хранилище.
type ReportRepository interface {
	Upload(ctx context.Context, report *Report) (string, error)
	PresignedURL(ctx context.Context, key string) (string, error)
}
