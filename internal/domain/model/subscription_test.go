//go:build !integration

package model_test

import (
	"errors"
	"testing"
	"time"

	"subscription-service/internal/domain"
	"subscription-service/internal/domain/model"
)

func TestNewPlan(t *testing.T) {
	t.Run("should construct a valid plan", func(t *testing.T) {
		plan, err := model.NewPlan("plan-1", "Pro", 14_99, 30, []string{"priority-queue"})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if plan.DurationDays != 30 || plan.Price != 14_99 {
			t.Errorf("unexpected plan fields: %+v", plan)
		}
		if plan.CreatedAt.IsZero() {
			t.Error("expected CreatedAt to be set")
		}
	})

	t.Run("should default nil features to an empty list", func(t *testing.T) {
		plan, err := model.NewPlan("plan-1", "Pro", 14_99, 30, nil)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if plan.Features == nil || len(plan.Features) != 0 {
			t.Errorf("expected empty feature list, got %v", plan.Features)
		}
	})

	t.Run("should reject invalid input", func(t *testing.T) {
		cases := []struct {
			name  string
			id    string
			pname string
			price int64
			days  int
		}{
			{"empty id", "", "Pro", 14_99, 30},
			{"empty name", "plan-1", "", 14_99, 30},
			{"zero duration", "plan-1", "Pro", 14_99, 0},
			{"negative duration", "plan-1", "Pro", 14_99, -1},
			{"negative price", "plan-1", "Pro", -1, 30},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				if _, err := model.NewPlan(c.id, c.pname, c.price, c.days, nil); !errors.Is(err, domain.ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got: %v", err)
				}
			})
		}
	})
}

func TestNewSubscription(t *testing.T) {
	plan, err := model.NewPlan("plan-1", "Pro", 14_99, 30, nil)
	if err != nil {
		t.Fatalf("new plan: %v", err)
	}

	t.Run("should start active with a window sized from the plan", func(t *testing.T) {
		sub, err := model.NewSubscription("sub-1", "user-1", plan)
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if sub.Status != model.SubscriptionStatusActive {
			t.Errorf("expected status 'active', got '%s'", sub.Status)
		}
		if got := sub.EndDate.Sub(sub.StartDate); got != 30*24*time.Hour {
			t.Errorf("expected a 30 day window, got %v", got)
		}
		if sub.PlanID != plan.ID {
			t.Errorf("expected plan id %s, got %s", plan.ID, sub.PlanID)
		}
	})

	t.Run("should reject missing fields", func(t *testing.T) {
		if _, err := model.NewSubscription("", "user-1", plan); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("empty id: expected ErrInvalidArgument, got %v", err)
		}
		if _, err := model.NewSubscription("sub-1", "", plan); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("empty user: expected ErrInvalidArgument, got %v", err)
		}
		if _, err := model.NewSubscription("sub-1", "user-1", nil); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("nil plan: expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestSubscription_IsStale(t *testing.T) {
	now := time.Now().UTC()
	cases := []struct {
		name   string
		status model.SubscriptionStatus
		end    time.Time
		want   bool
	}{
		{"active past end date", model.SubscriptionStatusActive, now.Add(-time.Minute), true},
		{"active within window", model.SubscriptionStatusActive, now.Add(time.Hour), false},
		{"cancelled past end date", model.SubscriptionStatusCancelled, now.Add(-time.Minute), false},
		{"expired past end date", model.SubscriptionStatusExpired, now.Add(-time.Minute), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := &model.Subscription{Status: c.status, EndDate: c.end}
			if got := s.IsStale(now); got != c.want {
				t.Errorf("IsStale() = %v, want %v", got, c.want)
			}
		})
	}
}
