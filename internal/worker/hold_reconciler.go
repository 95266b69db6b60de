// Package worker holds the background sweeps that reconcile eventually
// consistent state: seat holds and check-in sessions each have their own
// reconciler, intentionally decoupled so one subsystem stalling never
// blocks the other.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/skyhigh/airline-checkin/internal/logger"
	"github.com/skyhigh/airline-checkin/internal/metrics"
)

// HoldExpirer demotes lapsed seat holds back to AVAILABLE.
type HoldExpirer interface {
	ExpireHolds(ctx context.Context, limit int) (int, error)
}

// HoldReconciler periodically sweeps HELD seats whose hold window has
// passed. Expiry is self-describing on the seat row, so a missed sweep
// only delays cleanup; readers already treat lapsed holds as available.
type HoldReconciler struct {
	seats     HoldExpirer
	interval  time.Duration
	batchSize int
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewHoldReconciler constructs a HoldReconciler.
func NewHoldReconciler(seats HoldExpirer, interval time.Duration, batchSize int) *HoldReconciler {
	return &HoldReconciler{
		seats:     seats,
		interval:  interval,
		batchSize: batchSize,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the sweep loop until the context is cancelled or Stop is
// called. Blocks; run it in its own goroutine.
func (r *HoldReconciler) Start(ctx context.Context) {
	logger.Info("hold reconciler started",
		zap.Duration("interval", r.interval),
		zap.Int("batch_size", r.batchSize),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("hold reconciler stopped (context cancelled)")
			return
		case <-r.stopCh:
			logger.Info("hold reconciler stopped")
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// Stop signals the loop to exit and waits for it to finish.
func (r *HoldReconciler) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *HoldReconciler) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("sweeping expired seat holds")

	count, err := r.seats.ExpireHolds(ctx, r.batchSize)
	if err != nil {
		log.Error("expired hold sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		log.Info("expired seat holds released", zap.Int("count", count))
		if m := metrics.Get(); m != nil {
			m.ExpiredSweepTotal.WithLabelValues("seat_hold").Add(float64(count))
		}
	} else {
		log.Debug("no expired seat holds")
	}
}
