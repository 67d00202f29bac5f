package automation

import (
	"context"
	"time"
)

// Nombres de tareas del scheduler.
const (
	TaskUpdateStockStatus    = "update-stock-status"
	TaskCheckExpiringBatches = "check-expiring-batches"
	TaskFullAutomation       = "full-automation"
	TaskAutoResolveAlerts    = "auto-resolve-alerts"
	TaskOptimizeStockLevels  = "optimize-stock-levels"
	TaskDailySummary         = "daily-summary"
)

// Cadences intervalos de cada tarea.
type Cadences struct {
	Status       time.Duration
	Expiry       time.Duration
	FullSweep    time.Duration
	AlertCleanup time.Duration
	Velocity     time.Duration
	DailySummary time.Duration
}

// DefaultCadences 5m, 1h, 30m, diario, semanal y diario.
func DefaultCadences() Cadences {
	return Cadences{
		Status:       5 * time.Minute,
		Expiry:       time.Hour,
		FullSweep:    30 * time.Minute,
		AlertCleanup: 24 * time.Hour,
		Velocity:     7 * 24 * time.Hour,
		DailySummary: 24 * time.Hour,
	}
}

// Table nombres y cadencias de las tareas, en el orden en que las registra Service.Tasks.
// No necesita el motor cableado.
func (c Cadences) Table() []TaskInfo {
	return []TaskInfo{
		{Name: TaskUpdateStockStatus, Interval: c.Status},
		{Name: TaskCheckExpiringBatches, Interval: c.Expiry},
		{Name: TaskFullAutomation, Interval: c.FullSweep},
		{Name: TaskAutoResolveAlerts, Interval: c.AlertCleanup},
		{Name: TaskOptimizeStockLevels, Interval: c.Velocity},
		{Name: TaskDailySummary, Interval: c.DailySummary},
	}
}

// Tasks tabla de tareas del motor con las cadencias dadas.
func (s *Service) Tasks(c Cadences) []Task {
	return []Task{
		{Name: TaskUpdateStockStatus, Interval: c.Status, Run: func(ctx context.Context) error {
			_, err := s.UpdateAllStockStatuses(ctx)
			return err
		}},
		{Name: TaskCheckExpiringBatches, Interval: c.Expiry, Run: func(ctx context.Context) error {
			_, err := s.CheckExpiringBatches(ctx)
			return err
		}},
		{Name: TaskFullAutomation, Interval: c.FullSweep, Run: s.RunStockAutomation},
		{Name: TaskAutoResolveAlerts, Interval: c.AlertCleanup, Run: func(ctx context.Context) error {
			_, err := s.AutoResolveExpiredAlerts(ctx)
			return err
		}},
		{Name: TaskOptimizeStockLevels, Interval: c.Velocity, Run: func(ctx context.Context) error {
			_, err := s.OptimizeStockLevels(ctx)
			return err
		}},
		{Name: TaskDailySummary, Interval: c.DailySummary, Run: s.GenerateDailySummary},
	}
}
