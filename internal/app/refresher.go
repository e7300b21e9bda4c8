package app

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"foodzz/internal/logger"
	"foodzz/internal/metrics"
	"foodzz/internal/notify"

	"go.uber.org/zap"
)

// Refresher reloads the dashboard on a ticker and on pushed events. At
// most one refresh runs at a time; a trigger that finds one in flight is
// skipped and counted.
type Refresher struct {
	refresh  func(context.Context) error
	interval time.Duration
	running  atomic.Bool

	runs    atomic.Uint64
	skipped atomic.Uint64

	// OnRefresh, if set, is called after every completed refresh.
	OnRefresh func(err error)
}

func NewRefresher(refresh func(context.Context) error, interval time.Duration) *Refresher {
	return &Refresher{refresh: refresh, interval: interval}
}

// Trigger runs one refresh unless another is in flight.
func (r *Refresher) Trigger(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		r.skipped.Add(1)
		metrics.RefreshSkipped.Inc()
		return ErrRefreshInFlight
	}
	defer r.running.Store(false)

	start := time.Now()
	err := r.refresh(ctx)
	elapsed := time.Since(start)
	r.runs.Add(1)
	metrics.RefreshDuration.Observe(elapsed.Seconds())

	logger.FromCtx(ctx).Debug("dashboard refreshed",
		zap.Duration("duration", elapsed),
		zap.Error(err),
	)
	if r.OnRefresh != nil {
		r.OnRefresh(err)
	}
	return err
}

// Run refreshes once, then on every tick and every event from sub (when
// not nil), until ctx is done.
func (r *Refresher) Run(ctx context.Context, sub Subscriber) error {
	events := make(chan notify.Event, 1)
	if sub != nil {
		go func() {
			err := sub.Subscribe(ctx, func(ev notify.Event) {
				select {
				case events <- ev:
				default:
				}
			})
			if err != nil && ctx.Err() == nil {
				logger.FromCtx(ctx).Warn("event stream ended, polling only", zap.Error(err))
			}
		}()
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			r.tick(ctx)
		case ev := <-events:
			logger.FromCtx(ctx).Debug("event received", zap.String("type", string(ev.Type)))
			r.tick(ctx)
		}
	}
}

// tick runs the refresh in its own goroutine so a slow backend never
// blocks the loop; overlapping ticks are dropped by Trigger.
func (r *Refresher) tick(ctx context.Context) {
	go func() {
		if err := r.Trigger(ctx); err != nil && !errors.Is(err, ErrRefreshInFlight) && ctx.Err() == nil {
			logger.FromCtx(ctx).Warn("dashboard refresh failed", zap.Error(err))
		}
	}()
}

func (r *Refresher) Runs() uint64 {
	return r.runs.Load()
}

func (r *Refresher) Skipped() uint64 {
	return r.skipped.Load()
}
