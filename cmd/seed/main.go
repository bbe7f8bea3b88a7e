package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"subscription-service/internal/config"
	pg "subscription-service/internal/infra/db/postgres"
	"subscription-service/internal/infra/logging"
	"subscription-service/internal/usecase"
)

func main() {
	cfg, err := config.LoadConfig("config.yaml", false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	planUC := usecase.NewPlanUseCase(pg.NewPlanRepo(pool), logger)

	// If plans already exist, do nothing
	plans, err := planUC.List(ctx)
	if err != nil {
		log.Fatalf("list plans: %v", err)
	}
	if len(plans) > 0 {
		fmt.Printf("%d plans already present. No changes.\n", len(plans))
		for _, p := range plans {
			fmt.Printf("  - %s (days=%d, price=%d)\n", p.Name, p.DurationDays, p.Price)
		}
		return
	}

	seed := []struct {
		Name     string
		Price    int64
		Days     int
		Features []string
	}{
		{"Starter", 4_99, 7, []string{"basic-support"}},
		{"Pro", 14_99, 30, []string{"basic-support", "priority-queue"}},
		{"Ultra", 39_99, 90, []string{"basic-support", "priority-queue", "dedicated-support"}},
	}

	for _, s := range seed {
		p, err := planUC.Create(ctx, s.Name, s.Price, s.Days, s.Features)
		if err != nil {
			log.Fatalf("create plan %s: %v", s.Name, err)
		}
		fmt.Printf("created plan %s (%s)\n", p.Name, p.ID)
	}
}
