package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-automation/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.SalesRepository = (*SalesRepo)(nil)

// SalesRepo unidades vendidas según las líneas de factura emitidas.
type SalesRepo struct {
	q Querier
}

// NewSalesRepository construye el adaptador de ventas.
func NewSalesRepository(q Querier) *SalesRepo {
	return &SalesRepo{q: q}
}

// UnitsSoldSince suma de unidades facturadas del producto desde since (borradores y errores excluidos).
func (r *SalesRepo) UnitsSoldSince(ctx context.Context, productID string, since time.Time) (decimal.Decimal, error) {
	const query = `
	SELECT COALESCE(SUM(d.quantity), 0)
	FROM invoices i
	JOIN invoice_details d ON d.invoice_id = i.id
	WHERE d.product_id = $1
	  AND i.date >= $2
	  AND i.dian_status NOT IN ('DRAFT', 'ERROR_GENERATION')`

	var total decimal.Decimal
	if err := r.q.QueryRow(ctx, query, productID, since).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("units sold: %w", err)
	}
	return total, nil
}
