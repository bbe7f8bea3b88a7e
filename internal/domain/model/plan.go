package model

import (
	"time"

	"subscription-service/internal/domain"
)

// Plan represents a purchasable subscription plan with a fixed duration,
// price in minor currency units, and a list of feature labels.
type Plan struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Price        int64     `json:"price"`
	DurationDays int       `json:"duration_days"`
	Features     []string  `json:"features"`
	CreatedAt    time.Time `json:"created_at"`
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == "" }

// NewPlan validates and constructs a plan.
func NewPlan(id, name string, price int64, durationDays int, features []string) (*Plan, error) {
	if id == "" || name == "" || durationDays <= 0 || price < 0 {
		return nil, domain.ErrInvalidArgument
	}
	if features == nil {
		features = []string{}
	}
	return &Plan{
		ID:           id,
		Name:         name,
		Price:        price,
		DurationDays: durationDays,
		Features:     features,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
