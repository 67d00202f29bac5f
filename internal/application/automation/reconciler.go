package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-automation/internal/domain/entity"
	"github.com/jhoicas/stock-automation/internal/domain/inventory"
	"github.com/jhoicas/stock-automation/internal/domain/repository"
	"github.com/rs/zerolog"
)

// StatusReconciler recalcula el estado de stock de cada producto activo y lo escribe en todas sus filas.
type StatusReconciler struct {
	products repository.ProductRepository
	records  repository.StockRecordRepository
	alerts   *AlertManager
	now      func() time.Time
	log      zerolog.Logger
}

// NewStatusReconciler construye el reconciliador.
func NewStatusReconciler(
	products repository.ProductRepository,
	records repository.StockRecordRepository,
	alerts *AlertManager,
	now func() time.Time,
	log zerolog.Logger,
) *StatusReconciler {
	return &StatusReconciler{products: products, records: records, alerts: alerts, now: now, log: log}
}

// Run barre todos los productos activos. Un error en un producto se registra y se salta.
func (r *StatusReconciler) Run(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	products, err := r.products.ListActive(ctx)
	if err != nil {
		return res, fmt.Errorf("listar productos activos: %w", err)
	}
	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		var created int
		err := isolate(func() error {
			var err error
			created, err = r.reconcileProduct(ctx, p)
			return err
		})
		if err != nil {
			res.Failed++
			r.log.Error().Err(err).Str("product_id", p.ID).Msg("reconciliación de producto fallida")
			continue
		}
		res.Processed++
		res.AlertsCreated += created
	}
	return res, nil
}

func (r *StatusReconciler) reconcileProduct(ctx context.Context, p *entity.Product) (int, error) {
	records, err := r.records.ListByProduct(ctx, p.ID)
	if err != nil {
		return 0, fmt.Errorf("listar stock: %w", err)
	}
	total := inventory.Aggregate(records)
	status := inventory.Classify(total, p.MinStock)

	if _, err := r.records.UpdateStatusByProduct(ctx, p.ID, status, r.now()); err != nil {
		return 0, fmt.Errorf("actualizar estado: %w", err)
	}

	var (
		alertType entity.AlertType
		severity  entity.Severity
		message   string
	)
	switch status {
	case entity.StockStatusOutOfStock:
		alertType, severity = entity.AlertTypeOutOfStock, entity.SeverityHigh
		message = fmt.Sprintf("Sin stock: %s (cantidad %s)", p.Name, total.String())
	case entity.StockStatusLowStock:
		alertType, severity = entity.AlertTypeLowStock, entity.SeverityMedium
		message = fmt.Sprintf("Stock bajo: %s tiene %s unidades (mínimo %s)", p.Name, total.String(), p.MinStock.String())
	default:
		return 0, nil
	}

	_, created, err := r.alerts.EnsureAlert(ctx, entity.ProductScoped(p.ID), alertType, severity, message)
	if err != nil {
		return 0, err
	}
	if created {
		return 1, nil
	}
	return 0, nil
}
