package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product producto del catálogo externo. El motor sólo lee MinStock/MaxStock.
// MaxStock es opcional: sin techo no hay punto de reorden.
type Product struct {
	ID        string
	SKU       string
	Name      string
	MinStock  decimal.Decimal
	MaxStock  *decimal.Decimal
	IsActive  bool
	UpdatedAt time.Time
}

// HasMaxStock indica si el producto tiene techo de stock definido.
func (p *Product) HasMaxStock() bool {
	return p.MaxStock != nil
}
