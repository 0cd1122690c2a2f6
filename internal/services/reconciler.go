package services

import (
	"context"
	"log"
	"time"
)

type pendingSettler interface {
	SettlePending(ctx context.Context) (int, error)
}

// Reconciler periodically settles payouts whose immediate settlement
// failed when their session ended.
type Reconciler struct {
	settler  pendingSettler
	interval time.Duration
}

func NewReconciler(settler pendingSettler, interval time.Duration) *Reconciler {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Reconciler{settler: settler, interval: interval}
}

// Run blocks until ctx is cancelled.
func (r *Reconciler) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.RunOnce(ctx)
		}
	}
}

func (r *Reconciler) RunOnce(ctx context.Context) int {
	settled, err := r.settler.SettlePending(ctx)
	if err != nil && ctx.Err() == nil {
		log.Printf("payout reconciler: %v", err)
	}
	if settled > 0 {
		log.Printf("payout reconciler settled %d payout(s)", settled)
	}
	return settled
}
