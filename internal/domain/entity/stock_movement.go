package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del log de stock.
const (
	MovementTypeIn         = "in"
	MovementTypeOut        = "out"
	MovementTypeAdjustment = "adjustment"
)

// StockMovement registro append-only de un delta de cantidad. El motor sólo lo lee.
type StockMovement struct {
	ID         string
	ProductID  string
	LocationID string
	Type       string
	Quantity   decimal.Decimal
	CreatedAt  time.Time
}
