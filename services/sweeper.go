package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sweeper periodically expires abandoned gateway transactions and retries
// owner payouts that failed at completion time.
type Sweeper struct {
	Settlement *SettlementService
	Orders     *OrderService
	Interval   time.Duration
	PendingTTL time.Duration
	BatchSize  int
	Log        *zap.Logger
}

func NewSweeper(settlement *SettlementService, orders *OrderService, interval, pendingTTL time.Duration, log *zap.Logger) *Sweeper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sweeper{
		Settlement: settlement, Orders: orders,
		Interval: interval, PendingTTL: pendingTTL, BatchSize: 100,
		Log: log.Named("sweeper"),
	}
}

// Run blocks until ctx is done. A non-positive interval disables it.
func (w *Sweeper) Run(ctx context.Context) {
	if w.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	w.Log.Info("sweeper started", zap.Duration("interval", w.Interval), zap.Duration("pending_ttl", w.PendingTTL))
	for {
		select {
		case <-ctx.Done():
			w.Log.Info("sweeper stopped")
			return
		case <-ticker.C:
			w.RunOnce()
		}
	}
}

func (w *Sweeper) RunOnce() (expired int64, reconciled int) {
	var err error
	if expired, err = w.Settlement.ExpireStale(w.PendingTTL); err != nil {
		w.Log.Error("expire pending transactions", zap.Error(err))
	} else if expired > 0 {
		w.Log.Info("expired pending transactions", zap.Int64("count", expired))
	}

	if reconciled, err = w.Orders.ReconcilePayouts(w.BatchSize); err != nil {
		w.Log.Error("reconcile payouts", zap.Error(err))
	} else if reconciled > 0 {
		w.Log.Info("reconciled owner payouts", zap.Int("count", reconciled))
	}
	return expired, reconciled
}
