package entity

import "time"

// AlertType tipo de alerta; junto con la entidad forma la clave de deduplicación.
type AlertType string

const (
	AlertTypeLowStock        AlertType = "LOW_STOCK"
	AlertTypeOutOfStock      AlertType = "OUT_OF_STOCK"
	AlertTypeExpiry          AlertType = "EXPIRY"
	AlertTypeReorder         AlertType = "REORDER"
	AlertTypeNegativeStock   AlertType = "NEGATIVE_STOCK"
	AlertTypeOverReservation AlertType = "OVER_RESERVATION"
	AlertTypeDailySummary    AlertType = "DAILY_SUMMARY"
)

// Severity severidad de una alerta.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// EntityKind discrimina el alcance de una alerta.
type EntityKind string

const (
	EntityKindProduct EntityKind = "product"
	EntityKindSystem  EntityKind = "system"
)

// EntityRef referencia a la entidad de una alerta: un producto o el sistema completo.
// Reemplaza el id mágico "system" para no ensuciar la FK a productos.
type EntityRef struct {
	Kind      EntityKind
	ProductID string
}

// ProductScoped referencia a un producto.
func ProductScoped(productID string) EntityRef {
	return EntityRef{Kind: EntityKindProduct, ProductID: productID}
}

// SystemScoped referencia a alertas de todo el proceso (p. ej. resumen diario).
func SystemScoped() EntityRef {
	return EntityRef{Kind: EntityKindSystem}
}

// IsSystem indica si la referencia es de sistema.
func (r EntityRef) IsSystem() bool {
	return r.Kind == EntityKindSystem
}

// Key representación estable de la entidad, usada para locks y logs.
func (r EntityRef) Key() string {
	if r.IsSystem() {
		return string(EntityKindSystem)
	}
	return string(EntityKindProduct) + ":" + r.ProductID
}

// Alert alerta materializada. Nunca se borra, sólo se marca resuelta.
type Alert struct {
	ID         string
	Entity     EntityRef
	Type       AlertType
	Severity   Severity
	Message    string
	IsActive   bool
	IsResolved bool
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

// IsOpen activa y no resuelta.
func (a *Alert) IsOpen() bool {
	return a.IsActive && !a.IsResolved
}

// DedupKey clave (entidad, tipo) para una referencia y un tipo.
func DedupKey(ref EntityRef, t AlertType) string {
	return ref.Key() + "|" + string(t)
}
