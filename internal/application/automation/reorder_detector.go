package automation

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-automation/internal/domain/entity"
	"github.com/jhoicas/stock-automation/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// reorderFraction fracción del stock máximo que define el punto de reorden.
var reorderFraction = decimal.RequireFromString("0.5")

// ReorderDetector detecta productos bajo el punto de reorden y anomalías en los registros de stock.
// Sólo detecta: nunca ajusta cantidades, disponibles ni reservas.
type ReorderDetector struct {
	products repository.ProductRepository
	records  repository.StockRecordRepository
	alerts   *AlertManager
	log      zerolog.Logger
}

// NewReorderDetector construye el detector.
func NewReorderDetector(
	products repository.ProductRepository,
	records repository.StockRecordRepository,
	alerts *AlertManager,
	log zerolog.Logger,
) *ReorderDetector {
	return &ReorderDetector{products: products, records: records, alerts: alerts, log: log}
}

// ReorderPoint punto de reorden de un techo de stock.
func ReorderPoint(maxStock decimal.Decimal) decimal.Decimal {
	return maxStock.Mul(reorderFraction)
}

// CheckReorderPoints alerta REORDER cuando el stock agregado es <= 50% del máximo.
// Severidad alta si además está en o bajo el mínimo.
func (d *ReorderDetector) CheckReorderPoints(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	products, err := d.products.ListActive(ctx)
	if err != nil {
		return res, fmt.Errorf("listar productos activos: %w", err)
	}
	for _, p := range products {
		if !p.HasMaxStock() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return res, err
		}
		var created bool
		err := isolate(func() error {
			var err error
			created, err = d.checkProduct(ctx, p)
			return err
		})
		if err != nil {
			res.Failed++
			d.log.Error().Err(err).Str("product_id", p.ID).Msg("revisión de punto de reorden fallida")
			continue
		}
		res.Processed++
		res.add(created)
	}
	return res, nil
}

func (d *ReorderDetector) checkProduct(ctx context.Context, p *entity.Product) (bool, error) {
	total, err := d.records.TotalQuantity(ctx, p.ID)
	if err != nil {
		return false, fmt.Errorf("sumar stock: %w", err)
	}
	point := ReorderPoint(*p.MaxStock)
	if total.GreaterThan(point) {
		return false, nil
	}
	severity := entity.SeverityMedium
	if total.LessThanOrEqual(p.MinStock) {
		severity = entity.SeverityHigh
	}
	message := fmt.Sprintf("Reordenar %s: stock %s en o bajo el punto de reorden %s (máximo %s)",
		p.Name, total.String(), point.String(), p.MaxStock.String())
	_, created, err := d.alerts.EnsureAlert(ctx, entity.ProductScoped(p.ID), entity.AlertTypeReorder, severity, message)
	return created, err
}

// CheckDiscrepancies alerta sobre registros con stock negativo o con más reservado que disponible.
func (d *ReorderDetector) CheckDiscrepancies(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	anomalies, err := d.records.ListAnomalies(ctx)
	if err != nil {
		return res, fmt.Errorf("listar anomalías de stock: %w", err)
	}
	for _, rec := range anomalies {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		var created int
		err := isolate(func() error {
			var err error
			created, err = d.checkRecord(ctx, rec)
			return err
		})
		if err != nil {
			res.Failed++
			d.log.Error().Err(err).
				Str("stock_record_id", rec.ID).
				Str("product_id", rec.ProductID).
				Msg("alerta de discrepancia fallida")
			continue
		}
		res.Processed++
		res.AlertsCreated += created
	}
	return res, nil
}

// checkRecord devuelve cuántas alertas nuevas abrió para la fila; sólo cuenta si ambas comprobaciones terminan.
func (d *ReorderDetector) checkRecord(ctx context.Context, rec *entity.StockRecord) (int, error) {
	ref := entity.ProductScoped(rec.ProductID)
	n := 0
	if rec.IsNegative() {
		msg := fmt.Sprintf("Stock negativo en ubicación %s: cantidad %s, disponible %s",
			rec.LocationID, rec.Quantity.String(), rec.Available.String())
		_, created, err := d.alerts.EnsureAlert(ctx, ref, entity.AlertTypeNegativeStock, entity.SeverityHigh, msg)
		if err != nil {
			return 0, err
		}
		if created {
			n++
		}
	}
	if rec.IsOverReserved() {
		msg := fmt.Sprintf("Sobre-reserva en ubicación %s: reservado %s, disponible %s",
			rec.LocationID, rec.Reserved.String(), rec.Available.String())
		_, created, err := d.alerts.EnsureAlert(ctx, ref, entity.AlertTypeOverReservation, entity.SeverityHigh, msg)
		if err != nil {
			return 0, err
		}
		if created {
			n++
		}
	}
	return n, nil
}
