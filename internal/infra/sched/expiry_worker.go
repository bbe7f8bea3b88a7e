package sched

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"subscription-service/internal/domain/ports/notify"
	"subscription-service/internal/infra/metrics"
	"subscription-service/internal/usecase"
)

// ExpiryWorker periodically expires stale subscriptions via the use case and
// publishes one notification per transition. A failed tick is logged and the
// worker runs again at the next tick.
type ExpiryWorker struct {
	interval time.Duration
	subUC    usecase.SubscriptionUseCase
	notifier notify.ExpiryNotifier
	log      *zerolog.Logger
}

func NewExpiryWorker(interval time.Duration, subUC usecase.SubscriptionUseCase, notifier notify.ExpiryNotifier, logger *zerolog.Logger) *ExpiryWorker {
	exprLog := logger.With().Str("component", "ExpiryWorker").Logger()
	return &ExpiryWorker{
		interval: interval,
		subUC:    subUC,
		notifier: notifier,
		log:      &exprLog,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (w *ExpiryWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("starting expiry worker")
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("stopping expiry worker")
			return ctx.Err()
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep performs a single tick: expire the due batch in one transaction, then
// publish a notification per expired record. Exposed so tests can trigger a
// tick on demand.
func (w *ExpiryWorker) Sweep(ctx context.Context) {
	now := time.Now().UTC()
	expired, err := w.subUC.ExpireDue(ctx, now)
	if err != nil {
		w.log.Error().Err(err).Msg("expiry sweep failed")
		return
	}
	w.refreshGauges(ctx)
	if len(expired) == 0 {
		return
	}

	for _, rec := range expired {
		ev := notify.ExpiryEvent{
			EventID:        ulid.Make().String(),
			SubscriptionID: rec.SubscriptionID,
			UserID:         rec.UserID,
			ExpiredAt:      now,
		}
		if err := w.notifier.SubscriptionExpired(ctx, ev); err != nil {
			// Best-effort publish: the status change is already committed.
			metrics.IncExpiryNotifyFailure()
			w.log.Error().Err(err).Str("subscription_id", rec.SubscriptionID).Msg("expiry notification failed")
		}
	}

	metrics.IncSubscriptionsExpired(len(expired))
	w.log.Info().Int("count", len(expired)).Msg("expired subscriptions swept")
}

func (w *ExpiryWorker) refreshGauges(ctx context.Context) {
	counts, err := w.subUC.StatusCounts(ctx)
	if err != nil {
		w.log.Warn().Err(err).Msg("subscription count refresh failed")
		return
	}
	metrics.SetSubscriptionsTotal(counts)
}
