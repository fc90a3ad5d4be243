// Package keylock реализует взаимное исключение по строковому ключу с ограниченным временем ожидания.
package keylock

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTimeout возвращается, если блокировку не удалось получить за отведённое время.
var ErrTimeout = errors.New("lock acquisition timed out")

// DefaultTimeout — время ожидания блокировки по умолчанию.
const DefaultTimeout = 5 * time.Second

// Locker выдаёт эксклюзивный доступ к ключу. Разные ключи не блокируют друг друга.
type Locker struct {
	mu      sync.Mutex
	sems    map[string]*semaphore.Weighted
	timeout time.Duration
}

// NewLocker создаёт Locker. Нулевой timeout заменяется DefaultTimeout.
func NewLocker(timeout time.Duration) *Locker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Locker{
		sems:    make(map[string]*semaphore.Weighted),
		timeout: timeout,
	}
}

// Timeout возвращает время ожидания блокировки.
func (l *Locker) Timeout() time.Duration {
	return l.timeout
}

// Acquire ждёт освобождения ключа не дольше timeout.
// Возвращает функцию освобождения; повторный вызов release безопасен.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	sem := l.semaphore(key)

	waitCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	if err := sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() { sem.Release(1) })
	}, nil
}

// semaphore возвращает семафор ключа, создавая его при первом обращении.
func (l *Locker) semaphore(key string) *semaphore.Weighted {
	l.mu.Lock()
	defer l.mu.Unlock()

	sem, ok := l.sems[key]
	if !ok {
		sem = semaphore.NewWeighted(1)
		l.sems[key] = sem
	}

	return sem
}
