package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// MovementSummary totales del log de movimientos en una ventana.
type MovementSummary struct {
	Count      int64
	In         decimal.Decimal
	Out        decimal.Decimal
	Adjustment decimal.Decimal
}

// StockMovementRepository puerto de lectura del log append-only de movimientos.
type StockMovementRepository interface {
	SummarizeSince(ctx context.Context, since time.Time) (MovementSummary, error)
}
