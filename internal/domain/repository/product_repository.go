package repository

import (
	"context"

	"github.com/jhoicas/stock-automation/internal/domain/entity"
)

// ProductRepository puerto de lectura de productos (el catálogo es de otro sistema).
type ProductRepository interface {
	ListActive(ctx context.Context) ([]*entity.Product, error)
}
