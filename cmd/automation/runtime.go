package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/stock-automation/internal/application/automation"
	"github.com/jhoicas/stock-automation/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-automation/internal/infrastructure/redislock"
	"github.com/jhoicas/stock-automation/pkg/config"
	"github.com/jhoicas/stock-automation/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// runtime piezas cableadas del motor para un comando.
type runtime struct {
	cfg       *config.Config
	log       *logger.Logger
	pool      *pgxpool.Pool
	redis     *redis.Client
	service   *automation.Service
	scheduler *automation.Scheduler
}

func newRuntime(ctx context.Context, cfg *config.Config, log *logger.Logger) (*runtime, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	rt := &runtime{cfg: cfg, log: log, pool: pool}

	if err := postgres.EnsureAlertSchema(ctx, postgres.NewTxRunner(pool)); err != nil {
		rt.Close()
		return nil, err
	}

	var locker automation.KeyedLocker = automation.NewMutexLocker()
	if cfg.Automation.LockerBackend == "redis" {
		client, err := redislock.NewClient(ctx, cfg.Redis)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("conexión a Redis: %w", err)
		}
		rt.redis = client
		locker = redislock.NewLocker(client, cfg.Automation.LockTTL, log.Component("redislock"))
	}

	rt.service = automation.NewService(automation.Deps{
		Products:     postgres.NewProductRepository(pool),
		StockRecords: postgres.NewStockRecordRepository(pool),
		Batches:      postgres.NewBatchRepository(pool),
		Alerts:       postgres.NewAlertRepository(pool),
		Movements:    postgres.NewStockMovementRepository(pool),
		Sales:        postgres.NewSalesRepository(pool),
		Locker:       locker,
		Log:          log.Component("automation"),
	}, automation.Options{
		ExpiryHorizonDays:  cfg.Automation.ExpiryHorizonDays,
		AlertMaxAgeDays:    cfg.Automation.AlertMaxAgeDays,
		VelocityWindowDays: cfg.Automation.VelocityWindowDays,
		VelocityCoverDays:  cfg.Automation.VelocityCoverDays,
		VelocityTolerance:  cfg.Automation.VelocityTolerance,
	})

	tasks := rt.service.Tasks(cadences(cfg.Automation))
	rt.scheduler = automation.NewScheduler(tasks, cfg.Automation.TaskTimeout, log.Component("scheduler"))
	return rt, nil
}

func cadences(c config.AutomationConfig) automation.Cadences {
	return automation.Cadences{
		Status:       c.StatusInterval,
		Expiry:       c.ExpiryInterval,
		FullSweep:    c.FullSweepInterval,
		AlertCleanup: c.AlertCleanupInterval,
		Velocity:     c.VelocityInterval,
		DailySummary: c.DailySummaryInterval,
	}
}

func (rt *runtime) Close() {
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
	if rt.pool != nil {
		rt.pool.Close()
	}
}
