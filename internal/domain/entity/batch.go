package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Batch lote de un producto con vencimiento opcional.
type Batch struct {
	ID                string
	ProductID         string
	BatchNumber       string
	Quantity          decimal.Decimal
	ExpiryDate        *time.Time
	ManufacturingDate *time.Time
}

// IsExpiredAt indica si el lote ya venció en el instante dado.
func (b *Batch) IsExpiredAt(now time.Time) bool {
	return b.ExpiryDate != nil && b.ExpiryDate.Before(now)
}
