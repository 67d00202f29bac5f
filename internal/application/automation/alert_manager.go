package automation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-automation/internal/domain"
	"github.com/jhoicas/stock-automation/internal/domain/entity"
	"github.com/jhoicas/stock-automation/internal/domain/repository"
	"github.com/rs/zerolog"
)

// AlertManager crea y resuelve alertas garantizando como máximo una alerta abierta por (entidad, tipo).
//
// La comprobación previa a la inserción se serializa por clave con el KeyedLocker, y el
// repositorio rechaza con domain.ErrDuplicate cualquier segunda alerta abierta; ese rechazo
// se interpreta como "ya existe".
type AlertManager struct {
	repo   repository.AlertRepository
	locker KeyedLocker
	now    func() time.Time
	log    zerolog.Logger
}

// NewAlertManager construye el gestor de alertas.
func NewAlertManager(repo repository.AlertRepository, locker KeyedLocker, now func() time.Time, log zerolog.Logger) *AlertManager {
	if locker == nil {
		locker = NewMutexLocker()
	}
	if now == nil {
		now = time.Now
	}
	return &AlertManager{repo: repo, locker: locker, now: now, log: log}
}

// EnsureAlert crea la alerta sólo si no hay otra abierta para (ref, alertType).
// Devuelve la alerta abierta (nueva o existente) y si fue creada en esta llamada.
// Mientras la alerta siga abierta, llamadas posteriores no la modifican aunque cambie el mensaje.
func (m *AlertManager) EnsureAlert(
	ctx context.Context,
	ref entity.EntityRef,
	alertType entity.AlertType,
	severity entity.Severity,
	message string,
) (*entity.Alert, bool, error) {
	if ref.Kind == entity.EntityKindProduct && ref.ProductID == "" {
		return nil, false, domain.ErrInvalidInput
	}
	if alertType == "" {
		return nil, false, domain.ErrInvalidInput
	}

	key := entity.DedupKey(ref, alertType)
	unlock, err := m.locker.Lock(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("lock alerta: %w", err)
	}
	defer unlock()

	existing, err := m.repo.FindOpen(ctx, ref, alertType)
	if err != nil {
		return nil, false, fmt.Errorf("buscar alerta abierta: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	alert := &entity.Alert{
		ID:        uuid.New().String(),
		Entity:    ref,
		Type:      alertType,
		Severity:  severity,
		Message:   message,
		IsActive:  true,
		CreatedAt: m.now(),
	}
	if err := m.repo.Insert(ctx, alert); err != nil {
		if !errors.Is(err, domain.ErrDuplicate) {
			return nil, false, fmt.Errorf("insertar alerta: %w", err)
		}
		// Otra instancia la creó entre la búsqueda y el insert.
		existing, err = m.repo.FindOpen(ctx, ref, alertType)
		if err != nil {
			return nil, false, fmt.Errorf("buscar alerta abierta: %w", err)
		}
		m.log.Debug().Str("dedup_key", key).Msg("alerta concurrente detectada, se conserva la existente")
		return existing, false, nil
	}

	m.log.Info().
		Str("alert_id", alert.ID).
		Str("entity", ref.Key()).
		Str("type", string(alertType)).
		Str("severity", string(severity)).
		Msg("alerta creada")
	return alert, true, nil
}

// Resolve marca la alerta como resuelta. Resolver una alerta ya resuelta no cambia nada.
func (m *AlertManager) Resolve(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrInvalidInput
	}
	alert, err := m.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("obtener alerta: %w", err)
	}
	if alert == nil {
		return domain.ErrNotFound
	}
	if alert.IsResolved {
		return nil
	}
	changed, err := m.repo.Resolve(ctx, id, m.now())
	if err != nil {
		return fmt.Errorf("resolver alerta: %w", err)
	}
	if changed {
		m.log.Info().Str("alert_id", id).Msg("alerta resuelta")
	}
	return nil
}

// AutoExpire resuelve en bloque las alertas abiertas con más de maxAgeDays días.
// Es higiene, no un mecanismo de corrección.
func (m *AlertManager) AutoExpire(ctx context.Context, maxAgeDays int) (int64, error) {
	if maxAgeDays < 0 {
		return 0, domain.ErrInvalidInput
	}
	now := m.now()
	cutoff := now.AddDate(0, 0, -maxAgeDays)
	n, err := m.repo.ResolveOpenCreatedBefore(ctx, cutoff, now)
	if err != nil {
		return 0, fmt.Errorf("auto-resolver alertas: %w", err)
	}
	return n, nil
}
