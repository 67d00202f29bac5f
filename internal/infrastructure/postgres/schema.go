package postgres

import (
	"context"
	"fmt"
)

var alertSchema = []string{
	`CREATE TABLE IF NOT EXISTS alerts (
		id          TEXT PRIMARY KEY,
		entity_kind TEXT NOT NULL CHECK (entity_kind IN ('product', 'system')),
		product_id  TEXT NULL,
		type        TEXT NOT NULL,
		severity    TEXT NOT NULL CHECK (severity IN ('low', 'medium', 'high')),
		message     TEXT NOT NULL,
		is_active   BOOLEAN NOT NULL DEFAULT true,
		is_resolved BOOLEAN NOT NULL DEFAULT false,
		created_at  TIMESTAMPTZ NOT NULL,
		resolved_at TIMESTAMPTZ NULL,
		CHECK ((entity_kind = 'system') = (product_id IS NULL))
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS alerts_open_dedup_idx
		ON alerts (entity_kind, COALESCE(product_id, ''), type)
		WHERE is_active AND NOT is_resolved`,
	`CREATE INDEX IF NOT EXISTS alerts_open_created_idx
		ON alerts (created_at)
		WHERE is_active AND NOT is_resolved`,
}

// EnsureAlertSchema crea la tabla de alertas y el índice único parcial de alertas abiertas.
// Las demás tablas pertenecen a los sistemas que escriben el inventario.
func EnsureAlertSchema(ctx context.Context, tx *TxRunner) error {
	return tx.Run(ctx, func(q Querier) error {
		for _, stmt := range alertSchema {
			if _, err := q.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("ensure alert schema: %w", err)
			}
		}
		return nil
	})
}
