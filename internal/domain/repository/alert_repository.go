package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-automation/internal/domain/entity"
)

// AlertRepository puerto de persistencia de alertas.
// Insert debe devolver domain.ErrDuplicate si ya existe una alerta abierta para (entidad, tipo).
type AlertRepository interface {
	Insert(ctx context.Context, alert *entity.Alert) error
	GetByID(ctx context.Context, id string) (*entity.Alert, error)
	FindOpen(ctx context.Context, ref entity.EntityRef, alertType entity.AlertType) (*entity.Alert, error)
	CountOpen(ctx context.Context) (int64, error)
	// Resolve marca resuelta la alerta sólo si sigue abierta; devuelve si hubo cambio.
	Resolve(ctx context.Context, id string, at time.Time) (bool, error)
	// ResolveOpenCreatedBefore resuelve en bloque las alertas abiertas creadas antes de cutoff.
	ResolveOpenCreatedBefore(ctx context.Context, cutoff, at time.Time) (int64, error)
}
