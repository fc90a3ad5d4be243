// Package memory — хранилище в памяти процесса с транзакциями и внедрением отказов.
// Используется в тестах и для локального запуска без Postgres.
package memory

import (
	"sync"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/internal/usecase"
	"golang.org/x/sync/semaphore"
)

const Backend = "memory"

// Store хранит всё состояние. Транзакции выполняются строго по одной.
type Store struct {
	txSem *semaphore.Weighted

	mu            sync.RWMutex
	products      []domain.Product
	nextProductID int64
	lines         []domain.SaleLine
	nextLineID    int64
	counters      map[domain.TerminalID]domain.TerminalCounter
	outbox        []*usecase.OutboxEvent
	nextOutboxID  int64
	carts         map[string]domain.Cart
	sessions      map[string]domain.Session
	cache         map[string]domain.Product
	reports       map[string][]byte

	faults Faults
}

// Faults — ошибки, которые хранилище вернёт вместо выполнения операции.
type Faults struct {
	LockCounter error
	SaveCounter error
	AppendLines error
	CreateEvent error
	Commit      error
	Products    error
	Carts       error
}

func NewStore() *Store {
	return &Store{
		txSem:    semaphore.NewWeighted(1),
		counters: make(map[domain.TerminalID]domain.TerminalCounter),
		carts:    make(map[string]domain.Cart),
		sessions: make(map[string]domain.Session),
		cache:    make(map[string]domain.Product),
		reports:  make(map[string][]byte),
	}
}

// InjectFaults заменяет набор внедрённых ошибок. Пустой Faults отключает их.
func (s *Store) InjectFaults(f Faults) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults = f
}

func (s *Store) fault(pick func(Faults) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return pick(s.faults)
}

func (s *Store) Counters() *CounterRepo { return &CounterRepo{s: s} }

func (s *Store) Sales() *SaleRepo { return &SaleRepo{s: s} }

func (s *Store) Outbox() *OutboxRepo { return &OutboxRepo{s: s} }

func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

func (s *Store) Carts() *CartRepo { return &CartRepo{s: s} }

func (s *Store) Sessions() *SessionRepo { return &SessionRepo{s: s} }

func (s *Store) Cache() *CacheRepo { return &CacheRepo{s: s} }

func (s *Store) Reports() *ReportRepo { return &ReportRepo{s: s} }
