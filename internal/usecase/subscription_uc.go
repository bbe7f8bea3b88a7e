package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"subscription-service/internal/domain"
	"subscription-service/internal/domain/model"
	"subscription-service/internal/domain/ports/repository"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

// SubscriptionUseCase implements the subscription lifecycle operations.
type SubscriptionUseCase interface {
	// Subscribe supersedes any existing active subscription for the user
	// (transitioning it to expired) and creates a fresh active one sized from
	// the plan duration. Returns domain.ErrNotFound for an unknown plan.
	Subscribe(ctx context.Context, userID, planID string) (*model.Subscription, error)

	// GetActive returns the user's active subscription. A row whose window has
	// already closed is transitioned to expired as a side effect and reported
	// as domain.ErrNoActiveSubscription, same as if it never existed.
	GetActive(ctx context.Context, userID string) (*model.Subscription, error)

	// ChangePlan overwrites the active subscription's plan and validity window
	// in place; the record keeps its identity and status.
	ChangePlan(ctx context.Context, userID, planID string) (*model.Subscription, error)

	// Cancel transitions the user's active subscription to cancelled.
	Cancel(ctx context.Context, userID string) error

	// History returns every subscription the user ever held, newest first.
	History(ctx context.Context, userID string) ([]*model.Subscription, error)

	// ExpireDue transitions all active subscriptions with end date before
	// `now` to expired in one transaction and returns one record per row.
	ExpireDue(ctx context.Context, now time.Time) ([]repository.ExpiredRecord, error)

	// StatusCounts returns the number of subscriptions per status.
	StatusCounts(ctx context.Context) (map[model.SubscriptionStatus]int, error)
}

type subscriptionUC struct {
	subs  repository.SubscriptionRepository
	plans repository.PlanRepository
	txm   repository.TransactionManager
	log   *zerolog.Logger
}

func NewSubscriptionUseCase(
	subs repository.SubscriptionRepository,
	plans repository.PlanRepository,
	txm repository.TransactionManager,
	logger *zerolog.Logger,
) *subscriptionUC {
	l := logger.With().Str("component", "SubscriptionUseCase").Logger()
	return &subscriptionUC{subs: subs, plans: plans, txm: txm, log: &l}
}

var readCommitted = pgx.TxOptions{IsoLevel: pgx.ReadCommitted}

func (uc *subscriptionUC) Subscribe(ctx context.Context, userID, planID string) (*model.Subscription, error) {
	if userID == "" || planID == "" {
		return nil, domain.ErrInvalidArgument
	}
	plan, err := uc.plans.FindByID(ctx, repository.NoTX, planID)
	if err != nil {
		return nil, err
	}

	var created *model.Subscription
	err = uc.txm.WithTx(ctx, readCommitted, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.subs.LockUser(ctx, tx, userID); err != nil {
			return err
		}
		// Supersede: the prior active record becomes expired, not cancelled.
		if err := uc.subs.ExpireActiveByUser(ctx, tx, userID); err != nil {
			return err
		}
		sub, err := model.NewSubscription(uuid.NewString(), userID, plan)
		if err != nil {
			return err
		}
		if err := uc.subs.Save(ctx, tx, sub); err != nil {
			return err
		}
		created = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", userID).Str("plan_id", planID).Str("subscription_id", created.ID).Msg("subscription created")
	return created, nil
}

func (uc *subscriptionUC) GetActive(ctx context.Context, userID string) (*model.Subscription, error) {
	sub, err := uc.subs.FindActiveByUser(ctx, repository.NoTX, userID)
	if err != nil {
		return nil, err
	}
	if sub.IsStale(time.Now().UTC()) {
		// Lazy expiry. Conditional update so a concurrent cancel wins.
		if _, err := uc.subs.MarkExpired(ctx, repository.NoTX, sub.ID); err != nil {
			uc.log.Error().Err(err).Str("subscription_id", sub.ID).Msg("lazy expiry failed")
		}
		return nil, domain.ErrNoActiveSubscription
	}
	return sub, nil
}

func (uc *subscriptionUC) ChangePlan(ctx context.Context, userID, planID string) (*model.Subscription, error) {
	if userID == "" || planID == "" {
		return nil, domain.ErrInvalidArgument
	}
	plan, err := uc.plans.FindByID(ctx, repository.NoTX, planID)
	if err != nil {
		return nil, err
	}

	var updated *model.Subscription
	err = uc.txm.WithTx(ctx, readCommitted, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.subs.LockUser(ctx, tx, userID); err != nil {
			return err
		}
		sub, err := uc.subs.FindActiveByUser(ctx, tx, userID)
		if err != nil {
			return err
		}
		// Overwrite in place; the record keeps its identity and status.
		now := time.Now().UTC()
		sub.PlanID = plan.ID
		sub.StartDate = now
		sub.EndDate = now.Add(time.Duration(plan.DurationDays) * 24 * time.Hour)
		sub.Plan = plan
		if err := uc.subs.Save(ctx, tx, sub); err != nil {
			return err
		}
		updated = sub
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("user_id", userID).Str("plan_id", planID).Str("subscription_id", updated.ID).Msg("subscription plan changed")
	return updated, nil
}

func (uc *subscriptionUC) Cancel(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrInvalidArgument
	}
	return uc.txm.WithTx(ctx, readCommitted, func(ctx context.Context, tx repository.Tx) error {
		if err := uc.subs.LockUser(ctx, tx, userID); err != nil {
			return err
		}
		ok, err := uc.subs.CancelActive(ctx, tx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNoActiveSubscription
		}
		uc.log.Info().Str("user_id", userID).Msg("subscription cancelled")
		return nil
	})
}

func (uc *subscriptionUC) History(ctx context.Context, userID string) ([]*model.Subscription, error) {
	if userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	return uc.subs.ListByUser(ctx, repository.NoTX, userID)
}

func (uc *subscriptionUC) ExpireDue(ctx context.Context, now time.Time) ([]repository.ExpiredRecord, error) {
	var expired []repository.ExpiredRecord
	err := uc.txm.WithTx(ctx, readCommitted, func(ctx context.Context, tx repository.Tx) error {
		var err error
		expired, err = uc.subs.ExpireDue(ctx, tx, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return expired, nil
}

func (uc *subscriptionUC) StatusCounts(ctx context.Context) (map[model.SubscriptionStatus]int, error) {
	return uc.subs.CountByStatus(ctx, repository.NoTX)
}
