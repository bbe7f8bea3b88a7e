package repository

import (
	"context"
	"time"

	"subscription-service/internal/domain/model"
)

// ExpiredRecord identifies one subscription transitioned to expired by a
// batch sweep.
type ExpiredRecord struct {
	SubscriptionID string
	UserID         string
}

// SubscriptionRepository is the port for the subscription ledger.
//
// All status transitions to "expired" or "cancelled" are conditional updates
// (`... WHERE status = 'active'`) so that a sweep racing a cancellation never
// overwrites a cancelled row.
type SubscriptionRepository interface {
	Save(ctx context.Context, tx Tx, sub *model.Subscription) error

	// FindActiveByUser returns the user's active subscription joined with its
	// plan, or domain.ErrNoActiveSubscription.
	FindActiveByUser(ctx context.Context, tx Tx, userID string) (*model.Subscription, error)

	// ListByUser returns every subscription for the user regardless of status,
	// joined with its plan, newest start date first.
	ListByUser(ctx context.Context, tx Tx, userID string) ([]*model.Subscription, error)

	// ExpireActiveByUser transitions the user's active subscription (if any)
	// to expired. Used by the subscribe path to supersede the prior record.
	ExpireActiveByUser(ctx context.Context, tx Tx, userID string) error

	// CancelActive transitions the user's active subscription to cancelled,
	// reporting whether a row was affected.
	CancelActive(ctx context.Context, tx Tx, userID string) (bool, error)

	// MarkExpired conditionally transitions a single subscription to expired,
	// reporting whether a row was affected.
	MarkExpired(ctx context.Context, tx Tx, subID string) (bool, error)

	// ExpireDue transitions every active subscription whose end date precedes
	// `now` to expired, returning one record per transition.
	ExpireDue(ctx context.Context, tx Tx, now time.Time) ([]ExpiredRecord, error)

	// LockUser serializes concurrent units of work for the same user. Must be
	// called inside a transaction; the lock is released on commit/rollback.
	LockUser(ctx context.Context, tx Tx, userID string) error

	// CountByStatus returns the number of subscriptions per status.
	CountByStatus(ctx context.Context, tx Tx) (map[model.SubscriptionStatus]int, error)
}
