package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DRSN-tech/pocopan-pos/internal/domain"
	"github.com/DRSN-tech/pocopan-pos/pkg/e"
	"github.com/DRSN-tech/pocopan-pos/pkg/tr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithinTxBusyAfterDeadline(t *testing.T) {
	s := NewStore()

	started := make(chan struct{})
	finish := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- s.WithinTx(context.Background(), func(context.Context) error {
			close(started)
			<-finish
			return nil
		})
	}()
	<-started

	ctx := tr.WithLockDeadline(context.Background(), time.Now().Add(30*time.Millisecond))
	err := s.WithinTx(ctx, func(context.Context) error {
		t.Fatal("must not run while another transaction is open")
		return nil
	})
	assert.ErrorIs(t, err, e.ErrSystemBusy)

	close(finish)
	require.NoError(t, <-done)

	ran := false
	ctx = tr.WithLockDeadline(context.Background(), time.Now().Add(time.Second))
	require.NoError(t, s.WithinTx(ctx, func(context.Context) error {
		ran = true
		return nil
	}))
	assert.True(t, ran)
}

func TestWithinTxCanceledWhileWaiting(t *testing.T) {
	s := NewStore()

	started := make(chan struct{})
	finish := make(chan struct{})
	go func() {
		_ = s.WithinTx(context.Background(), func(context.Context) error {
			close(started)
			<-finish
			return nil
		})
	}()
	<-started
	defer close(finish)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.WithinTx(ctx, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithinTxRollback(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.Counters().EnsureTerminals(ctx, []domain.TerminalID{"POS1"}))

	err := s.WithinTx(ctx, func(ctx context.Context) error {
		c, err := s.Counters().LockForUpdate(ctx, "POS1")
		if err != nil {
			return err
		}
		c.LastSaleID = 7
		if err := s.Counters().Save(ctx, c); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)

	c, err := s.Counters().Get(ctx, "POS1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), c.LastSaleID)
}

func TestCartTake(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	carts := s.Carts()

	cart := domain.NewCart("pos1")
	cart.Items = []domain.CartItem{{ProductName: "Widget", Quantity: 2, UnitPrice: decimal.NewFromInt(100)}}
	require.NoError(t, carts.Save(ctx, cart))

	taken, err := carts.Take(ctx, "pos1")
	require.NoError(t, err)
	assert.Equal(t, "pos1", taken.Owner)
	require.Len(t, taken.Items, 1)

	again, err := carts.Take(ctx, "pos1")
	require.NoError(t, err)
	assert.True(t, again.IsEmpty())

	left, err := carts.Get(ctx, "pos1")
	require.NoError(t, err)
	assert.True(t, left.IsEmpty())
}
