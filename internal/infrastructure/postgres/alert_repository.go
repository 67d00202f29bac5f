package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/stock-automation/internal/domain"
	"github.com/jhoicas/stock-automation/internal/domain/entity"
	"github.com/jhoicas/stock-automation/internal/domain/repository"
)

var _ repository.AlertRepository = (*AlertRepo)(nil)

// AlertRepo persistencia de alertas. La unicidad de alerta abierta por (entidad, tipo)
// la garantiza el índice parcial creado por EnsureAlertSchema.
type AlertRepo struct {
	q Querier
}

// NewAlertRepository construye el adaptador de alertas.
func NewAlertRepository(q Querier) *AlertRepo {
	return &AlertRepo{q: q}
}

const alertColumns = `id, entity_kind, product_id, type, severity, message, is_active, is_resolved, created_at, resolved_at`

// Insert persiste una alerta. Devuelve domain.ErrDuplicate si ya hay una abierta para (entidad, tipo).
func (r *AlertRepo) Insert(ctx context.Context, a *entity.Alert) error {
	query := `
		INSERT INTO alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT DO NOTHING`
	tag, err := r.q.Exec(ctx, query,
		a.ID, string(a.Entity.Kind), nullIfEmpty(a.Entity.ProductID), string(a.Type), string(a.Severity),
		a.Message, a.IsActive, a.IsResolved, a.CreatedAt, a.ResolvedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert alert: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicate
	}
	return nil
}

// GetByID obtiene una alerta por ID. Devuelve nil, nil si no existe.
func (r *AlertRepo) GetByID(ctx context.Context, id string) (*entity.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE id = $1`
	a, err := scanAlert(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get alert: %w", err)
	}
	return a, nil
}

// FindOpen alerta abierta para (entidad, tipo), o nil, nil.
func (r *AlertRepo) FindOpen(ctx context.Context, ref entity.EntityRef, alertType entity.AlertType) (*entity.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts
		WHERE entity_kind = $1 AND COALESCE(product_id, '') = $2 AND type = $3
		  AND is_active AND NOT is_resolved
		LIMIT 1`
	a, err := scanAlert(r.q.QueryRow(ctx, query, string(ref.Kind), ref.ProductID, string(alertType)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find open alert: %w", err)
	}
	return a, nil
}

// CountOpen número de alertas abiertas.
func (r *AlertRepo) CountOpen(ctx context.Context) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM alerts WHERE is_active AND NOT is_resolved`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count open alerts: %w", err)
	}
	return n, nil
}

// Resolve marca la alerta resuelta si sigue sin resolver.
func (r *AlertRepo) Resolve(ctx context.Context, id string, at time.Time) (bool, error) {
	query := `UPDATE alerts SET is_resolved = true, is_active = false, resolved_at = $2
		WHERE id = $1 AND NOT is_resolved`
	tag, err := r.q.Exec(ctx, query, id, at)
	if err != nil {
		return false, fmt.Errorf("resolve alert: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ResolveOpenCreatedBefore resuelve en bloque las alertas abiertas anteriores a cutoff.
func (r *AlertRepo) ResolveOpenCreatedBefore(ctx context.Context, cutoff, at time.Time) (int64, error) {
	query := `UPDATE alerts SET is_resolved = true, is_active = false, resolved_at = $2
		WHERE is_active AND NOT is_resolved AND created_at < $1`
	tag, err := r.q.Exec(ctx, query, cutoff, at)
	if err != nil {
		return 0, fmt.Errorf("resolve old alerts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanAlert(row pgxScanner) (*entity.Alert, error) {
	var (
		a                         entity.Alert
		kind, alertType, severity string
		productID                 *string
	)
	err := row.Scan(&a.ID, &kind, &productID, &alertType, &severity, &a.Message,
		&a.IsActive, &a.IsResolved, &a.CreatedAt, &a.ResolvedAt)
	if err != nil {
		return nil, err
	}
	a.Entity = entity.EntityRef{Kind: entity.EntityKind(kind), ProductID: derefStr(productID)}
	a.Type = entity.AlertType(alertType)
	a.Severity = entity.Severity(severity)
	return &a, nil
}
