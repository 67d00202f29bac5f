package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus estado derivado de un registro de stock.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "IN_STOCK"
	StockStatusLowStock   StockStatus = "LOW_STOCK"
	StockStatusOutOfStock StockStatus = "OUT_OF_STOCK"
	StockStatusExpired    StockStatus = "EXPIRED"
	StockStatusReserved   StockStatus = "RESERVED"
)

// StockRecord fila de inventario de un producto en una ubicación.
// Status lo escribe únicamente el reconciliador; Quantity/Available/Reserved nunca se tocan aquí.
type StockRecord struct {
	ID          string
	ProductID   string
	LocationID  string
	BatchID     *string
	Quantity    decimal.Decimal
	Available   decimal.Decimal
	Reserved    decimal.Decimal
	Status      StockStatus
	LastUpdated time.Time
}

// IsNegative indica cantidad o disponible por debajo de cero.
func (s *StockRecord) IsNegative() bool {
	return s.Quantity.IsNegative() || s.Available.IsNegative()
}

// IsOverReserved indica una reserva positiva mayor que el disponible.
// Un disponible negativo sin reservas es stock negativo, no sobre-reserva.
func (s *StockRecord) IsOverReserved() bool {
	return s.Reserved.IsPositive() && s.Reserved.GreaterThan(s.Available)
}
