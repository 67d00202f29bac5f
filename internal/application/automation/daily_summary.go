package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-automation/internal/domain/entity"
	"github.com/jhoicas/stock-automation/internal/domain/repository"
	"github.com/rs/zerolog"
)

// DailySummary publica una alerta de sistema con los movimientos de las últimas 24 horas.
type DailySummary struct {
	movements repository.StockMovementRepository
	alertRepo repository.AlertRepository
	alerts    *AlertManager
	now       func() time.Time
	log       zerolog.Logger
}

// NewDailySummary construye la tarea de resumen diario.
func NewDailySummary(
	movements repository.StockMovementRepository,
	alertRepo repository.AlertRepository,
	alerts *AlertManager,
	now func() time.Time,
	log zerolog.Logger,
) *DailySummary {
	return &DailySummary{movements: movements, alertRepo: alertRepo, alerts: alerts, now: now, log: log}
}

// Run reemplaza el resumen abierto del día anterior por uno nuevo.
func (d *DailySummary) Run(ctx context.Context) (*entity.Alert, error) {
	now := d.now()
	sum, err := d.movements.SummarizeSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("resumir movimientos: %w", err)
	}

	ref := entity.SystemScoped()
	prev, err := d.alertRepo.FindOpen(ctx, ref, entity.AlertTypeDailySummary)
	if err != nil {
		return nil, fmt.Errorf("buscar resumen anterior: %w", err)
	}
	if prev != nil {
		if err := d.alerts.Resolve(ctx, prev.ID); err != nil {
			return nil, err
		}
	}

	open, err := d.alertRepo.CountOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("contar alertas abiertas: %w", err)
	}

	message := fmt.Sprintf("Resumen %s: %d movimientos (entradas %s, salidas %s, ajustes %s); %d alertas abiertas",
		now.Format("2006-01-02"), sum.Count, sum.In.String(), sum.Out.String(), sum.Adjustment.String(), open)
	alert, _, err := d.alerts.EnsureAlert(ctx, ref, entity.AlertTypeDailySummary, entity.SeverityLow, message)
	if err != nil {
		return nil, err
	}
	return alert, nil
}
