package notify

import (
	"context"
	"time"
)

// ExpiryEvent describes one subscription transitioned to expired.
type ExpiryEvent struct {
	EventID        string    `json:"event_id"`
	SubscriptionID string    `json:"subscription_id"`
	UserID         string    `json:"user_id"`
	ExpiredAt      time.Time `json:"expired_at"`
}

// ExpiryNotifier publishes expiry events to a broadcast channel. Delivery is
// best effort; callers log and continue on error.
type ExpiryNotifier interface {
	SubscriptionExpired(ctx context.Context, ev ExpiryEvent) error
}
