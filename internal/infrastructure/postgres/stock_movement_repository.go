package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-automation/internal/domain/entity"
	"github.com/jhoicas/stock-automation/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo lectura del log de movimientos sobre PostgreSQL.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador de movimientos.
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// SummarizeSince totales por tipo desde since. Entradas y salidas se suman en valor absoluto;
// los ajustes conservan el signo.
func (r *StockMovementRepo) SummarizeSince(ctx context.Context, since time.Time) (repository.MovementSummary, error) {
	const query = `
	SELECT
	    COUNT(*),
	    COALESCE(SUM(ABS(quantity)) FILTER (WHERE type = $2), 0),
	    COALESCE(SUM(ABS(quantity)) FILTER (WHERE type = $3), 0),
	    COALESCE(SUM(quantity)      FILTER (WHERE type = $4), 0)
	FROM stock_movements
	WHERE created_at >= $1`

	var sum repository.MovementSummary
	err := r.q.QueryRow(ctx, query, since,
		entity.MovementTypeIn, entity.MovementTypeOut, entity.MovementTypeAdjustment,
	).Scan(&sum.Count, &sum.In, &sum.Out, &sum.Adjustment)
	if err != nil {
		return repository.MovementSummary{}, fmt.Errorf("summarize movements: %w", err)
	}
	return sum, nil
}
