package tr

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockBudget(t *testing.T) {
	ctx := context.Background()

	assert.Equal(t, 5*time.Second, LockBudget(ctx, 5*time.Second))

	_, ok := LockDeadline(ctx)
	assert.False(t, ok)

	far := WithLockDeadline(ctx, time.Now().Add(time.Hour))
	assert.Equal(t, 5*time.Second, LockBudget(far, 5*time.Second))

	near := WithLockDeadline(ctx, time.Now().Add(2*time.Second))
	budget := LockBudget(near, 5*time.Second)
	assert.LessOrEqual(t, budget, 2*time.Second)
	assert.Greater(t, budget, time.Second)

	unbounded := LockBudget(near, 0)
	assert.LessOrEqual(t, unbounded, 2*time.Second)

	expired := WithLockDeadline(ctx, time.Now().Add(-time.Second))
	assert.Equal(t, time.Duration(0), LockBudget(expired, 5*time.Second))
}

func TestTxFromCtxMissing(t *testing.T) {
	_, err := TxFromCtx(context.Background())
	assert.Error(t, err)
}
