package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-automation/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockRecordRepository puerto sobre los registros de stock por ubicación.
// El motor sólo escribe Status y LastUpdated; nunca cantidades.
type StockRecordRepository interface {
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockRecord, error)
	TotalQuantity(ctx context.Context, productID string) (decimal.Decimal, error)
	// UpdateStatusByProduct escribe el estado en todas las filas del producto y devuelve cuántas tocó.
	UpdateStatusByProduct(ctx context.Context, productID string, status entity.StockStatus, at time.Time) (int64, error)
	// ListAnomalies devuelve filas con cantidad/disponible negativos o reservado > disponible.
	ListAnomalies(ctx context.Context) ([]*entity.StockRecord, error)
}
