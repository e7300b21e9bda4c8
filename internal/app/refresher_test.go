package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"foodzz/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresher_Trigger(t *testing.T) {
	t.Run("Skips while in flight", func(t *testing.T) {
		release := make(chan struct{})
		started := make(chan struct{})
		var active, maxActive int32

		r := NewRefresher(func(context.Context) error {
			n := atomic.AddInt32(&active, 1)
			if n > atomic.LoadInt32(&maxActive) {
				atomic.StoreInt32(&maxActive, n)
			}
			close(started)
			<-release
			atomic.AddInt32(&active, -1)
			return nil
		}, time.Hour)

		done := make(chan error, 1)
		go func() { done <- r.Trigger(context.Background()) }()
		<-started

		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.ErrorIs(t, r.Trigger(context.Background()), ErrRefreshInFlight)
			}()
		}
		wg.Wait()
		close(release)

		require.NoError(t, <-done)
		assert.Equal(t, int32(1), atomic.LoadInt32(&maxActive))
		assert.Equal(t, uint64(1), r.Runs())
		assert.Equal(t, uint64(5), r.Skipped())
	})

	t.Run("Runs again after completion", func(t *testing.T) {
		var calls int32
		r := NewRefresher(func(context.Context) error {
			atomic.AddInt32(&calls, 1)
			return nil
		}, time.Hour)

		require.NoError(t, r.Trigger(context.Background()))
		require.NoError(t, r.Trigger(context.Background()))
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
		assert.Zero(t, r.Skipped())
	})
}

type chanSubscriber struct {
	events chan notify.Event
}

func (s chanSubscriber) Subscribe(ctx context.Context, fn func(notify.Event)) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-s.events:
			fn(ev)
		}
	}
}

func TestRefresher_Run(t *testing.T) {
	var calls int32
	r := NewRefresher(func(context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}, time.Hour)

	sub := chanSubscriber{events: make(chan notify.Event)}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, sub) }()

	// initial refresh, fully finished so the event is not skipped
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&calls) == 1 && !r.running.Load()
	}, time.Second, 5*time.Millisecond)

	sub.events <- notify.Event{Type: notify.OrderCreated, OrderID: 1}
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.NoError(t, <-done)
}
