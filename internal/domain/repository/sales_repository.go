package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalesRepository puerto de lectura de ventas para el cálculo de velocidad.
type SalesRepository interface {
	UnitsSoldSince(ctx context.Context, productID string, since time.Time) (decimal.Decimal, error)
}
