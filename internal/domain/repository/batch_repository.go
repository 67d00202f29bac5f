package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-automation/internal/domain/entity"
)

// ExpiringBatch resultado crudo: lote con vencimiento dentro del horizonte y el nombre del producto.
type ExpiringBatch struct {
	Batch       entity.Batch
	ProductName string
}

// BatchRepository puerto de lectura de lotes.
type BatchRepository interface {
	// ListExpiringBefore devuelve lotes con stock y vencimiento <= cutoff (incluye vencidos),
	// ordenados por vencimiento ascendente.
	ListExpiringBefore(ctx context.Context, cutoff time.Time) ([]ExpiringBatch, error)
}
