package pgdb

import (
	"context"
	"sync"

	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// OutboxListener держит отдельное соединение с LISTEN на канале outbox.
// Потерянное соединение переоткрывается при следующем ожидании.
type OutboxListener struct {
	pool *pgxpool.Pool
	mu   sync.Mutex
	conn *pgxpool.Conn
}

func NewOutboxListener(pool *pgxpool.Pool) *OutboxListener {
	return &OutboxListener{pool: pool}
}

func (l *OutboxListener) WaitForNotification(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.conn == nil {
		conn, err := l.pool.Acquire(ctx)
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
		if _, err := conn.Exec(ctx, "LISTEN "+OutboxChannel); err != nil {
			conn.Release()
			return e.Wrap(whereami.WhereAmI(), err)
		}
		l.conn = conn
	}

	_, err := l.conn.Conn().WaitForNotification(ctx)
	if err != nil {
		if l.conn.Conn().IsClosed() || ctx.Err() == nil {
			l.releaseLocked()
		}
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (l *OutboxListener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.releaseLocked()
}

func (l *OutboxListener) releaseLocked() {
	if l.conn == nil {
		return
	}
	// Соединение с активным LISTEN не возвращается в пул.
	_ = l.conn.Hijack().Close(context.Background())
	l.conn = nil
}
