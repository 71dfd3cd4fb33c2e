package services

import (
	"context"
	"fmt"
	"time"

	"pos-service/repository"
	"pos-service/sender"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const staleSweepBatchSize = 100

// transactionFailer is the slice of the checkout service the reconciler
// needs: the idempotent failure transition.
type transactionFailer interface {
	HandlePaymentFailed(ctx context.Context, transactionID uuid.UUID, errorDetail string) error
}

// Reconciler sweeps transactions stuck in Processing. A mobile money
// gateway that never calls back would otherwise leave a transaction
// dangling forever; the sweep fails them after a configured age and tells
// the operator.
type Reconciler struct {
	txRepo   repository.TransactionRepository
	failer   transactionFailer
	notifier sender.Notifier
	maxAge   time.Duration
	cron     *cron.Cron
	logger   *zap.Logger
}

func NewReconciler(txRepo repository.TransactionRepository, failer transactionFailer, notifier sender.Notifier, maxAge time.Duration, logger *zap.Logger) *Reconciler {
	return &Reconciler{
		txRepo:   txRepo,
		failer:   failer,
		notifier: notifier,
		maxAge:   maxAge,
		logger:   logger,
	}
}

// StartScheduler begins the periodic sweep.
func (r *Reconciler) StartScheduler() {
	r.cron = cron.New()
	if _, err := r.cron.AddFunc("@every 5m", func() {
		r.Sweep(context.Background())
	}); err != nil {
		r.logger.Error("Failed to schedule reconciler sweep", zap.Error(err))
		return
	}
	r.cron.Start()
	r.logger.Info("Stale transaction reconciler started",
		zap.Duration("max_age", r.maxAge))
}

func (r *Reconciler) Stop() {
	if r.cron != nil {
		r.cron.Stop()
	}
}

// Sweep fails every Processing transaction older than maxAge. The failure
// runs through the same idempotent transition as a gateway failure event,
// so a late gateway callback racing the sweep cannot double-settle.
func (r *Reconciler) Sweep(ctx context.Context) {
	cutoff := time.Now().Add(-r.maxAge)
	stale, err := r.txRepo.FindStaleProcessing(ctx, cutoff, staleSweepBatchSize)
	if err != nil {
		r.logger.Error("Stale transaction query failed", zap.Error(err))
		return
	}
	if len(stale) == 0 {
		return
	}

	failed := 0
	for i := range stale {
		detail := fmt.Sprintf("payment confirmation timed out after %s", r.maxAge)
		if err := r.failer.HandlePaymentFailed(ctx, stale[i].ID, detail); err != nil {
			r.logger.Error("Failed to expire stale transaction",
				zap.String("transaction_id", stale[i].ID.String()), zap.Error(err))
			continue
		}
		failed++
	}

	r.notifier.Notify(ctx, sender.LevelWarning, "Stale transactions expired",
		fmt.Sprintf("%d transaction(s) stuck in processing were marked failed", failed))
	r.logger.Warn("Stale transaction sweep finished",
		zap.Int("found", len(stale)), zap.Int("expired", failed))
}
