package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-automation/internal/domain/entity"
	"github.com/jhoicas/stock-automation/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockRecordRepository = (*StockRecordRepo)(nil)

// StockRecordRepo implementación de StockRecordRepository sobre PostgreSQL (usable con pool o tx).
type StockRecordRepo struct {
	q Querier
}

// NewStockRecordRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRecordRepository(q Querier) *StockRecordRepo {
	return &StockRecordRepo{q: q}
}

const stockRecordColumns = `id, product_id, location_id, batch_id, quantity, available, reserved, status, last_updated`

// ListByProduct filas de stock de un producto en todas sus ubicaciones.
func (r *StockRecordRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockRecord, error) {
	query := `SELECT ` + stockRecordColumns + ` FROM stock_records WHERE product_id = $1 ORDER BY id`
	return r.list(ctx, query, productID)
}

// TotalQuantity suma de cantidades del producto; 0 si no tiene filas.
func (r *StockRecordRepo) TotalQuantity(ctx context.Context, productID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(quantity), 0) FROM stock_records WHERE product_id = $1`
	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, productID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum stock: %w", err)
	}
	return total, nil
}

// UpdateStatusByProduct escribe el estado en todas las filas del producto en una sola sentencia.
func (r *StockRecordRepo) UpdateStatusByProduct(ctx context.Context, productID string, status entity.StockStatus, at time.Time) (int64, error) {
	query := `UPDATE stock_records SET status = $2, last_updated = $3 WHERE product_id = $1`
	tag, err := r.q.Exec(ctx, query, productID, string(status), at)
	if err != nil {
		return 0, fmt.Errorf("update stock status: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListAnomalies filas con cantidad o disponible negativos, o con más reservado que disponible.
func (r *StockRecordRepo) ListAnomalies(ctx context.Context) ([]*entity.StockRecord, error) {
	query := `SELECT ` + stockRecordColumns + ` FROM stock_records
		WHERE quantity < 0 OR available < 0 OR (reserved > 0 AND reserved > available)
		ORDER BY id`
	return r.list(ctx, query)
}

func (r *StockRecordRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockRecord, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock records: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockRecord
	for rows.Next() {
		var (
			s      entity.StockRecord
			status string
		)
		if err := rows.Scan(&s.ID, &s.ProductID, &s.LocationID, &s.BatchID,
			&s.Quantity, &s.Available, &s.Reserved, &status, &s.LastUpdated); err != nil {
			return nil, fmt.Errorf("scan stock record: %w", err)
		}
		s.Status = entity.StockStatus(status)
		list = append(list, &s)
	}
	return list, rows.Err()
}
