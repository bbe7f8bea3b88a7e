package model

import (
	"time"

	"subscription-service/internal/domain"
)

type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusInactive  SubscriptionStatus = "inactive"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
)

// Subscription represents a user's individual subscription instance.
// At most one subscription per user may hold status "active" at any instant.
type Subscription struct {
	ID        string             `json:"id"`
	UserID    string             `json:"user_id"`
	PlanID    string             `json:"-"`
	Status    SubscriptionStatus `json:"status"`
	StartDate time.Time          `json:"start_date"`
	EndDate   time.Time          `json:"end_date"`
	CreatedAt time.Time          `json:"created_at"`

	// Plan is populated on reads that join the plan row.
	Plan *Plan `json:"plan,omitempty"`
}

// NewSubscription creates an active subscription whose validity window is
// sized from the plan duration: [now, now + DurationDays days).
func NewSubscription(id, userID string, plan *Plan) (*Subscription, error) {
	if id == "" || userID == "" || plan.IsZero() {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now().UTC()
	return &Subscription{
		ID:        id,
		UserID:    userID,
		PlanID:    plan.ID,
		Status:    SubscriptionStatusActive,
		StartDate: now,
		EndDate:   now.Add(time.Duration(plan.DurationDays) * 24 * time.Hour),
		CreatedAt: now,
		Plan:      plan,
	}, nil
}

// IsStale reports whether an active subscription's window has already closed.
func (s *Subscription) IsStale(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && s.EndDate.Before(now)
}
