package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prepstack/prepstack-api/internal/repository"
	"github.com/prepstack/prepstack-api/internal/service"
)

// PaymentStatusWorker reconciles Pending transactions whose gateway webhook
// never arrived. The gateway is queried directly; settlement through this
// path is idempotent with the webhook path.
type PaymentStatusWorker struct {
	trxRepo     *repository.TransactionRepository
	paymentSvc  *service.PaymentService
	interval    time.Duration
	staleAfter  time.Duration // how long a Pending order sits before we ask the gateway
	expireAfter time.Duration // age at which an unpaid order is marked Expired
}

// NewPaymentStatusWorker constructs a PaymentStatusWorker.
func NewPaymentStatusWorker(
	trxRepo *repository.TransactionRepository,
	paymentSvc *service.PaymentService,
	interval time.Duration,
	staleAfter time.Duration,
	expireAfter time.Duration,
) *PaymentStatusWorker {
	return &PaymentStatusWorker{
		trxRepo:     trxRepo,
		paymentSvc:  paymentSvc,
		interval:    interval,
		staleAfter:  staleAfter,
		expireAfter: expireAfter,
	}
}

// Start begins the periodic reconciliation loop until context is canceled.
func (w *PaymentStatusWorker) Start(ctx context.Context) {
	log.Info().
		Dur("interval", w.interval).
		Dur("stale_after", w.staleAfter).
		Dur("expire_after", w.expireAfter).
		Msg("Starting payment status worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Payment status worker stopped")
			return
		}
	}
}

func (w *PaymentStatusWorker) run(ctx context.Context) {
	stale, err := w.trxRepo.GetStalePending(ctx, w.staleAfter)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get stale pending transactions")
		return
	}
	if len(stale) == 0 {
		return
	}

	log.Info().Int("count", len(stale)).Msg("Reconciling stale pending transactions")

	for i := range stale {
		trx := &stale[i]
		expired := time.Since(trx.CreatedAt) > w.expireAfter
		if err := w.paymentSvc.Reconcile(ctx, trx, expired); err != nil {
			log.Error().Err(err).Str("order_id", trx.OrderID).Msg("Reconciliation failed")
		}
	}
}
