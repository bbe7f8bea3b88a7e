//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"subscription-service/internal/domain"
	"subscription-service/internal/usecase"
)

func TestPlanUseCase_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("should persist a valid plan with a generated id", func(t *testing.T) {
		plans := newMemPlanRepo()
		uc := usecase.NewPlanUseCase(plans, newTestLogger())

		plan, err := uc.Create(ctx, "Pro", 14_99, 30, []string{"priority-queue"})
		if err != nil {
			t.Fatalf("expected no error, got: %v", err)
		}
		if plan.ID == "" {
			t.Error("expected a generated plan id")
		}
		stored, err := plans.FindByID(ctx, nil, plan.ID)
		if err != nil {
			t.Fatalf("expected the plan to be persisted, got: %v", err)
		}
		if stored.Name != "Pro" || stored.DurationDays != 30 || stored.Price != 14_99 {
			t.Errorf("stored plan does not match input: %+v", stored)
		}
	})

	t.Run("should reject invalid input", func(t *testing.T) {
		plans := newMemPlanRepo()
		uc := usecase.NewPlanUseCase(plans, newTestLogger())

		cases := []struct {
			name  string
			price int64
			days  int
		}{
			{"", 14_99, 30},
			{"Pro", -1, 30},
			{"Pro", 14_99, 0},
			{"Pro", 14_99, -7},
		}
		for _, c := range cases {
			if _, err := uc.Create(ctx, c.name, c.price, c.days, nil); !errors.Is(err, domain.ErrInvalidArgument) {
				t.Errorf("Create(%q, %d, %d): expected ErrInvalidArgument, got %v", c.name, c.price, c.days, err)
			}
		}
		if got, _ := plans.ListAll(ctx, nil); len(got) != 0 {
			t.Errorf("expected nothing persisted, got %d plans", len(got))
		}
	})

	t.Run("should propagate repository failures", func(t *testing.T) {
		plans := newMemPlanRepo()
		plans.saveErr = domain.ErrOperationFailed
		uc := usecase.NewPlanUseCase(plans, newTestLogger())

		if _, err := uc.Create(ctx, "Pro", 14_99, 30, nil); !errors.Is(err, domain.ErrOperationFailed) {
			t.Fatalf("expected ErrOperationFailed, got: %v", err)
		}
	})
}

func TestPlanUseCase_List(t *testing.T) {
	ctx := context.Background()
	plans := newMemPlanRepo()
	uc := usecase.NewPlanUseCase(plans, newTestLogger())

	if got, err := uc.List(ctx); err != nil || len(got) != 0 {
		t.Fatalf("expected empty catalog, got %d plans (err=%v)", len(got), err)
	}

	for _, name := range []string{"Starter", "Pro", "Ultra"} {
		if _, err := uc.Create(ctx, name, 9_99, 30, nil); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	got, err := uc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 plans, got %d", len(got))
	}
}
