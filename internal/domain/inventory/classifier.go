package inventory

import (
	"github.com/jhoicas/stock-automation/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Classify deriva el estado de stock a partir de la cantidad agregada y el mínimo del producto.
// Cantidades negativas se tratan como agotado; la anomalía se reporta aparte.
func Classify(quantity, minStock decimal.Decimal) entity.StockStatus {
	switch {
	case quantity.LessThanOrEqual(decimal.Zero):
		return entity.StockStatusOutOfStock
	case quantity.LessThanOrEqual(minStock):
		return entity.StockStatusLowStock
	default:
		return entity.StockStatusInStock
	}
}

// Aggregate suma la cantidad de todos los registros de un producto.
func Aggregate(records []*entity.StockRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Quantity)
	}
	return total
}
