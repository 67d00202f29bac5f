package automation

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-automation/internal/domain/entity"
	"github.com/jhoicas/stock-automation/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// VelocityAdvisor sugiere un stock mínimo según la velocidad de venta reciente.
// Es puramente consultivo: nunca modifica Product.MinStock.
type VelocityAdvisor struct {
	products   repository.ProductRepository
	sales      repository.SalesRepository
	alerts     *AlertManager
	now        func() time.Time
	windowDays int
	coverDays  int
	tolerance  decimal.Decimal
	log        zerolog.Logger
}

// NewVelocityAdvisor construye el asesor.
func NewVelocityAdvisor(
	products repository.ProductRepository,
	sales repository.SalesRepository,
	alerts *AlertManager,
	now func() time.Time,
	windowDays, coverDays int,
	tolerance float64,
	log zerolog.Logger,
) *VelocityAdvisor {
	return &VelocityAdvisor{
		products:   products,
		sales:      sales,
		alerts:     alerts,
		now:        now,
		windowDays: windowDays,
		coverDays:  coverDays,
		tolerance:  decimal.NewFromFloat(tolerance),
		log:        log,
	}
}

// SuggestMinStock ceil(unidades/ventana × cobertura). Se multiplica antes de dividir
// para que los resultados enteros sean exactos.
func SuggestMinStock(unitsSold decimal.Decimal, windowDays, coverDays int) decimal.Decimal {
	return unitsSold.
		Mul(decimal.NewFromInt(int64(coverDays))).
		Div(decimal.NewFromInt(int64(windowDays))).
		Ceil()
}

// Run evalúa cada producto activo y emite una alerta REORDER de severidad baja cuando
// la sugerencia se aleja más de la tolerancia del mínimo actual.
func (a *VelocityAdvisor) Run(ctx context.Context) (SweepResult, error) {
	var res SweepResult
	products, err := a.products.ListActive(ctx)
	if err != nil {
		return res, fmt.Errorf("listar productos activos: %w", err)
	}
	since := a.now().AddDate(0, 0, -a.windowDays)
	for _, p := range products {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		var created bool
		err := isolate(func() error {
			var err error
			created, err = a.adviseProduct(ctx, p, since)
			return err
		})
		if err != nil {
			res.Failed++
			a.log.Error().Err(err).Str("product_id", p.ID).Msg("cálculo de velocidad fallido")
			continue
		}
		res.Processed++
		res.add(created)
	}
	return res, nil
}

func (a *VelocityAdvisor) adviseProduct(ctx context.Context, p *entity.Product, since time.Time) (bool, error) {
	sold, err := a.sales.UnitsSoldSince(ctx, p.ID, since)
	if err != nil {
		return false, fmt.Errorf("unidades vendidas: %w", err)
	}
	suggested := SuggestMinStock(sold, a.windowDays, a.coverDays)
	diff := suggested.Sub(p.MinStock).Abs()
	if !diff.GreaterThan(p.MinStock.Mul(a.tolerance)) {
		return false, nil
	}
	daily := sold.Div(decimal.NewFromInt(int64(a.windowDays))).Round(2)
	message := fmt.Sprintf("Stock mínimo sugerido para %s: %s (actual %s; promedio diario %s en %d días)",
		p.Name, suggested.String(), p.MinStock.String(), daily.String(), a.windowDays)
	_, created, err := a.alerts.EnsureAlert(ctx, entity.ProductScoped(p.ID), entity.AlertTypeReorder, entity.SeverityLow, message)
	return created, err
}
