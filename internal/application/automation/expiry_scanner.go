package automation

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jhoicas/stock-automation/internal/domain"
	"github.com/jhoicas/stock-automation/internal/domain/entity"
	"github.com/jhoicas/stock-automation/internal/domain/repository"
	"github.com/rs/zerolog"
)

// ExpiryScanner alerta sobre lotes vencidos o por vencer dentro del horizonte.
type ExpiryScanner struct {
	batches repository.BatchRepository
	alerts  *AlertManager
	now     func() time.Time
	log     zerolog.Logger
}

// NewExpiryScanner construye el escáner de vencimientos.
func NewExpiryScanner(batches repository.BatchRepository, alerts *AlertManager, now func() time.Time, log zerolog.Logger) *ExpiryScanner {
	return &ExpiryScanner{batches: batches, alerts: alerts, now: now, log: log}
}

// Scan revisa lotes con vencimiento <= ahora + horizonDays.
// Vencidos: severidad alta; por vencer: media. Varios lotes del mismo producto comparten
// una sola alerta EXPIRY abierta, la del primer lote (el más próximo a vencer).
func (s *ExpiryScanner) Scan(ctx context.Context, horizonDays int) (SweepResult, error) {
	var res SweepResult
	if horizonDays < 0 {
		return res, domain.ErrInvalidInput
	}
	now := s.now()
	list, err := s.batches.ListExpiringBefore(ctx, now.AddDate(0, 0, horizonDays))
	if err != nil {
		return res, fmt.Errorf("listar lotes por vencer: %w", err)
	}
	for _, item := range list {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		var created bool
		err := isolate(func() error {
			severity, message := expiryAlert(item, now)
			var err error
			_, created, err = s.alerts.EnsureAlert(ctx, entity.ProductScoped(item.Batch.ProductID), entity.AlertTypeExpiry, severity, message)
			return err
		})
		if err != nil {
			res.Failed++
			s.log.Error().Err(err).
				Str("batch_id", item.Batch.ID).
				Str("product_id", item.Batch.ProductID).
				Msg("alerta de vencimiento fallida")
			continue
		}
		res.Processed++
		res.add(created)
	}
	return res, nil
}

func expiryAlert(item repository.ExpiringBatch, now time.Time) (entity.Severity, string) {
	b := item.Batch
	date := b.ExpiryDate.Format("2006-01-02")
	if b.IsExpiredAt(now) {
		return entity.SeverityHigh, fmt.Sprintf("Lote %s de %s venció el %s (%s unidades)",
			b.BatchNumber, item.ProductName, date, b.Quantity.String())
	}
	days := int(math.Ceil(b.ExpiryDate.Sub(now).Hours() / 24))
	return entity.SeverityMedium, fmt.Sprintf("Lote %s de %s vence el %s (en %d días, %s unidades)",
		b.BatchNumber, item.ProductName, date, days, b.Quantity.String())
}
