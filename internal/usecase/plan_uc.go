package usecase

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"subscription-service/internal/domain/model"
	"subscription-service/internal/domain/ports/repository"
)

// Compile-time check
var _ PlanUseCase = (*planUC)(nil)

// PlanUseCase manages the plan catalog.
type PlanUseCase interface {
	Create(ctx context.Context, name string, price int64, durationDays int, features []string) (*model.Plan, error)
	List(ctx context.Context) ([]*model.Plan, error)
}

type planUC struct {
	plans repository.PlanRepository
	log   *zerolog.Logger
}

func NewPlanUseCase(plans repository.PlanRepository, logger *zerolog.Logger) *planUC {
	l := logger.With().Str("component", "PlanUseCase").Logger()
	return &planUC{plans: plans, log: &l}
}

// Create validates input, persists a new plan and returns it.
func (uc *planUC) Create(ctx context.Context, name string, price int64, durationDays int, features []string) (*model.Plan, error) {
	plan, err := model.NewPlan(uuid.NewString(), name, price, durationDays, features)
	if err != nil {
		return nil, err
	}
	if err := uc.plans.Save(ctx, repository.NoTX, plan); err != nil {
		return nil, err
	}
	uc.log.Info().Str("plan_id", plan.ID).Str("name", plan.Name).Msg("plan created")
	return plan, nil
}

// List returns all plans.
func (uc *planUC) List(ctx context.Context) ([]*model.Plan, error) {
	return uc.plans.ListAll(ctx, repository.NoTX)
}
