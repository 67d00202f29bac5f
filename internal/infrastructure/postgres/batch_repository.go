package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-automation/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo lectura de lotes sobre PostgreSQL.
type BatchRepo struct {
	q Querier
}

// NewBatchRepository construye el adaptador de lotes.
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// ListExpiringBefore lotes con stock que vencen en o antes de cutoff, el más próximo primero.
func (r *BatchRepo) ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]repository.ExpiringBatch, error) {
	const query = `
	SELECT b.id, b.product_id, b.batch_number, b.quantity, b.expiry_date, b.manufacturing_date,
	       COALESCE(p.name, '')
	FROM batches b
	LEFT JOIN products p ON p.id = b.product_id
	WHERE b.expiry_date IS NOT NULL
	  AND b.expiry_date <= $1
	  AND b.quantity > 0
	ORDER BY b.expiry_date ASC, b.id ASC`

	rows, err := r.q.Query(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list expiring batches: %w", err)
	}
	defer rows.Close()

	var list []repository.ExpiringBatch
	for rows.Next() {
		var item repository.ExpiringBatch
		b := &item.Batch
		if err := rows.Scan(&b.ID, &b.ProductID, &b.BatchNumber, &b.Quantity,
			&b.ExpiryDate, &b.ManufacturingDate, &item.ProductName); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, item)
	}
	return list, rows.Err()
}
