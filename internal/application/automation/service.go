package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/stock-automation/internal/domain/repository"
	"github.com/rs/zerolog"
)

// Deps puertos que necesita el motor de automatización.
type Deps struct {
	Products     repository.ProductRepository
	StockRecords repository.StockRecordRepository
	Batches      repository.BatchRepository
	Alerts       repository.AlertRepository
	Movements    repository.StockMovementRepository
	Sales        repository.SalesRepository
	Locker       KeyedLocker
	Now          func() time.Time
	Log          zerolog.Logger
}

// Options umbrales de las tareas.
type Options struct {
	ExpiryHorizonDays  int
	AlertMaxAgeDays    int
	VelocityWindowDays int
	VelocityCoverDays  int
	VelocityTolerance  float64
}

// DefaultOptions valores por defecto: 30 días de horizonte y antigüedad, 30 días de ventana,
// una semana de cobertura y 20% de tolerancia.
func DefaultOptions() Options {
	return Options{
		ExpiryHorizonDays:  30,
		AlertMaxAgeDays:    30,
		VelocityWindowDays: 30,
		VelocityCoverDays:  7,
		VelocityTolerance:  0.2,
	}
}

// Service fachada del motor: las operaciones que invocan el scheduler, la CLI y el API de operación.
type Service struct {
	alerts     *AlertManager
	reconciler *StatusReconciler
	expiry     *ExpiryScanner
	reorder    *ReorderDetector
	velocity   *VelocityAdvisor
	summary    *DailySummary
	opts       Options
	log        zerolog.Logger
}

// NewService construye el motor con todas sus piezas.
func NewService(deps Deps, opts Options) *Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	log := deps.Log
	alerts := NewAlertManager(deps.Alerts, deps.Locker, now, log.With().Str("component", "alerts").Logger())
	return &Service{
		alerts:     alerts,
		reconciler: NewStatusReconciler(deps.Products, deps.StockRecords, alerts, now, log.With().Str("component", "reconciler").Logger()),
		expiry:     NewExpiryScanner(deps.Batches, alerts, now, log.With().Str("component", "expiry").Logger()),
		reorder:    NewReorderDetector(deps.Products, deps.StockRecords, alerts, log.With().Str("component", "reorder").Logger()),
		velocity: NewVelocityAdvisor(deps.Products, deps.Sales, alerts, now,
			opts.VelocityWindowDays, opts.VelocityCoverDays, opts.VelocityTolerance,
			log.With().Str("component", "velocity").Logger()),
		summary: NewDailySummary(deps.Movements, deps.Alerts, alerts, now, log.With().Str("component", "summary").Logger()),
		opts:    opts,
		log:     log,
	}
}

// AlertManager expone el gestor de alertas.
func (s *Service) AlertManager() *AlertManager {
	return s.alerts
}

// UpdateAllStockStatuses reconcilia el estado de stock de todos los productos activos.
func (s *Service) UpdateAllStockStatuses(ctx context.Context) (SweepResult, error) {
	return s.sweep("update_stock_statuses", func() (SweepResult, error) { return s.reconciler.Run(ctx) })
}

// CheckExpiringBatches revisa los lotes dentro del horizonte configurado.
func (s *Service) CheckExpiringBatches(ctx context.Context) (SweepResult, error) {
	return s.sweep("check_expiring_batches", func() (SweepResult, error) {
		return s.expiry.Scan(ctx, s.opts.ExpiryHorizonDays)
	})
}

// CheckReorderPoints revisa los puntos de reorden.
func (s *Service) CheckReorderPoints(ctx context.Context) (SweepResult, error) {
	return s.sweep("check_reorder_points", func() (SweepResult, error) { return s.reorder.CheckReorderPoints(ctx) })
}

// CheckStockDiscrepancies detecta stock negativo y sobre-reservas.
func (s *Service) CheckStockDiscrepancies(ctx context.Context) (SweepResult, error) {
	return s.sweep("check_stock_discrepancies", func() (SweepResult, error) { return s.reorder.CheckDiscrepancies(ctx) })
}

// OptimizeStockLevels emite recomendaciones de stock mínimo por velocidad de venta.
func (s *Service) OptimizeStockLevels(ctx context.Context) (SweepResult, error) {
	return s.sweep("optimize_stock_levels", func() (SweepResult, error) { return s.velocity.Run(ctx) })
}

// AutoResolveExpiredAlerts resuelve las alertas abiertas más antiguas que AlertMaxAgeDays.
func (s *Service) AutoResolveExpiredAlerts(ctx context.Context) (int64, error) {
	n, err := s.alerts.AutoExpire(ctx, s.opts.AlertMaxAgeDays)
	if err != nil {
		s.log.Error().Err(err).Str("operation", "auto_resolve_alerts").Msg("operación fallida")
		return 0, err
	}
	s.log.Info().Str("operation", "auto_resolve_alerts").Int64("resolved", n).Msg("alertas antiguas resueltas")
	return n, nil
}

// GenerateDailySummary publica el resumen diario como alerta de sistema.
func (s *Service) GenerateDailySummary(ctx context.Context) error {
	if _, err := s.summary.Run(ctx); err != nil {
		s.log.Error().Err(err).Str("operation", "daily_summary").Msg("operación fallida")
		return err
	}
	return nil
}

// ResolveAlert resuelve una alerta por acción externa.
func (s *Service) ResolveAlert(ctx context.Context, id string) error {
	return s.alerts.Resolve(ctx, id)
}

// RunStockAutomation barrido completo: estados, vencimientos, reorden y discrepancias.
// Un paso fallido se registra y no impide los siguientes; se devuelven los errores combinados.
func (s *Service) RunStockAutomation(ctx context.Context) error {
	steps := []struct {
		name string
		run  func(context.Context) (SweepResult, error)
	}{
		{"update_stock_statuses", s.UpdateAllStockStatuses},
		{"check_expiring_batches", s.CheckExpiringBatches},
		{"check_reorder_points", s.CheckReorderPoints},
		{"check_stock_discrepancies", s.CheckStockDiscrepancies},
	}
	var errs []error
	for _, step := range steps {
		if _, err := step.run(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", step.name, err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) sweep(operation string, fn func() (SweepResult, error)) (SweepResult, error) {
	start := time.Now()
	res, err := fn()
	if err != nil {
		s.log.Error().Err(err).Str("operation", operation).Msg("operación fallida")
		return res, err
	}
	ev := s.log.Info()
	if res.Failed > 0 {
		ev = s.log.Warn()
	}
	ev.Str("operation", operation).
		Int("processed", res.Processed).
		Int("failed", res.Failed).
		Int("alerts_created", res.AlertsCreated).
		Dur("duration", time.Since(start)).
		Msg("barrido completado")
	return res, nil
}
