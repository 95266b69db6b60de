package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/skyhigh/airline-checkin/internal/logger"
	"github.com/skyhigh/airline-checkin/internal/metrics"
)

// SessionExpirer flips inactive check-in sessions to EXPIRED.
type SessionExpirer interface {
	ExpireSessions(ctx context.Context, limit int) (int, error)
}

// SessionReconciler periodically expires check-in sessions whose sliding
// deadline lapsed. It releases only the session-side resources; any seat
// the session still held is demoted by the hold reconciler, keeping the
// two sweeps fully independent.
type SessionReconciler struct {
	sessions  SessionExpirer
	interval  time.Duration
	batchSize int
	stopCh    chan struct{}
	doneCh    chan struct{}
}

// NewSessionReconciler constructs a SessionReconciler.
func NewSessionReconciler(sessions SessionExpirer, interval time.Duration, batchSize int) *SessionReconciler {
	return &SessionReconciler{
		sessions:  sessions,
		interval:  interval,
		batchSize: batchSize,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start runs the sweep loop until the context is cancelled or Stop is
// called. Blocks; run it in its own goroutine.
func (r *SessionReconciler) Start(ctx context.Context) {
	logger.Info("session reconciler started",
		zap.Duration("interval", r.interval),
		zap.Int("batch_size", r.batchSize),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("session reconciler stopped (context cancelled)")
			return
		case <-r.stopCh:
			logger.Info("session reconciler stopped")
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

// Stop signals the loop to exit and waits for it to finish.
func (r *SessionReconciler) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *SessionReconciler) sweep(ctx context.Context) {
	log := logger.Get()
	log.Debug("sweeping expired check-in sessions")

	count, err := r.sessions.ExpireSessions(ctx, r.batchSize)
	if err != nil {
		log.Error("session expiry sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		log.Info("check-in sessions expired", zap.Int("count", count))
		if m := metrics.Get(); m != nil {
			m.ExpiredSweepTotal.WithLabelValues("session").Add(float64(count))
		}
	} else {
		log.Debug("no expired check-in sessions")
	}
}
