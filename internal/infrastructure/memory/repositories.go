package memory

import (
	"context"
	"sort"
	"time"

	"github.com/jhoicas/stock-automation/internal/domain"
	"github.com/jhoicas/stock-automation/internal/domain/entity"
	"github.com/jhoicas/stock-automation/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.StockRecordRepository   = (*StockRecordRepo)(nil)
	_ repository.BatchRepository         = (*BatchRepo)(nil)
	_ repository.AlertRepository         = (*AlertRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
	_ repository.SalesRepository         = (*SalesRepo)(nil)
)

// ProductRepo productos en memoria.
type ProductRepo struct{ s *Store }

// NewProductRepository construye el adaptador.
func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{s: s} }

// ListActive lista los productos activos ordenados por ID.
func (r *ProductRepo) ListActive(_ context.Context) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.Product
	for _, p := range r.s.products {
		if p.IsActive {
			cp := *p
			list = append(list, &cp)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// StockRecordRepo registros de stock en memoria.
type StockRecordRepo struct{ s *Store }

// NewStockRecordRepository construye el adaptador.
func NewStockRecordRepository(s *Store) *StockRecordRepo { return &StockRecordRepo{s: s} }

// ListByProduct filas de stock del producto, ordenadas por ID.
func (r *StockRecordRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockRecord
	for _, rec := range r.s.sortedRecords() {
		if rec.ProductID == productID {
			cp := *rec
			list = append(list, &cp)
		}
	}
	return list, nil
}

// TotalQuantity suma de cantidades del producto en todas las ubicaciones.
func (r *StockRecordRepo) TotalQuantity(_ context.Context, productID string) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := decimal.Zero
	for _, rec := range r.s.records {
		if rec.ProductID == productID {
			total = total.Add(rec.Quantity)
		}
	}
	return total, nil
}

// UpdateStatusByProduct escribe el estado en todas las filas del producto.
func (r *StockRecordRepo) UpdateStatusByProduct(_ context.Context, productID string, status entity.StockStatus, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, rec := range r.s.records {
		if rec.ProductID == productID {
			rec.Status = status
			rec.LastUpdated = at
			n++
		}
	}
	r.s.statusWrites += n
	return n, nil
}

// ListAnomalies filas con stock negativo o sobre-reservadas.
func (r *StockRecordRepo) ListAnomalies(_ context.Context) ([]*entity.StockRecord, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []*entity.StockRecord
	for _, rec := range r.s.sortedRecords() {
		if rec.IsNegative() || rec.IsOverReserved() {
			cp := *rec
			list = append(list, &cp)
		}
	}
	return list, nil
}

// BatchRepo lotes en memoria.
type BatchRepo struct{ s *Store }

// NewBatchRepository construye el adaptador.
func NewBatchRepository(s *Store) *BatchRepo { return &BatchRepo{s: s} }

// ListExpiringBefore lotes con existencias que vencen en o antes de cutoff, el más urgente primero.
func (r *BatchRepo) ListExpiringBefore(_ context.Context, cutoff time.Time) ([]repository.ExpiringBatch, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var list []repository.ExpiringBatch
	for _, b := range r.s.batches {
		if b.ExpiryDate == nil || b.ExpiryDate.After(cutoff) || !b.Quantity.IsPositive() {
			continue
		}
		name := ""
		if p, ok := r.s.products[b.ProductID]; ok {
			name = p.Name
		}
		list = append(list, repository.ExpiringBatch{Batch: *b, ProductName: name})
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i].Batch, list[j].Batch
		if !a.ExpiryDate.Equal(*b.ExpiryDate) {
			return a.ExpiryDate.Before(*b.ExpiryDate)
		}
		return a.ID < b.ID
	})
	return list, nil
}

// AlertRepo alertas en memoria con unicidad de alerta abierta por (entidad, tipo).
type AlertRepo struct{ s *Store }

// NewAlertRepository construye el adaptador.
func NewAlertRepository(s *Store) *AlertRepo { return &AlertRepo{s: s} }

// Insert guarda la alerta. Devuelve domain.ErrDuplicate si ya hay una abierta para (entidad, tipo).
func (r *AlertRepo) Insert(_ context.Context, alert *entity.Alert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if alert.IsOpen() {
		for _, a := range r.s.alerts {
			if a.IsOpen() && a.Entity == alert.Entity && a.Type == alert.Type {
				return domain.ErrDuplicate
			}
		}
	}
	cp := *alert
	r.s.alerts = append(r.s.alerts, &cp)
	return nil
}

// GetByID obtiene una alerta por ID. Devuelve nil, nil si no existe.
func (r *AlertRepo) GetByID(_ context.Context, id string) (*entity.Alert, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.alerts {
		if a.ID == id {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// FindOpen alerta abierta para (entidad, tipo), o nil.
func (r *AlertRepo) FindOpen(_ context.Context, ref entity.EntityRef, alertType entity.AlertType) (*entity.Alert, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, a := range r.s.alerts {
		if a.IsOpen() && a.Entity == ref && a.Type == alertType {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// CountOpen número de alertas abiertas.
func (r *AlertRepo) CountOpen(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var n int64
	for _, a := range r.s.alerts {
		if a.IsOpen() {
			n++
		}
	}
	return n, nil
}

// Resolve marca resuelta la alerta si sigue abierta; devuelve si hubo cambio.
func (r *AlertRepo) Resolve(_ context.Context, id string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.alerts {
		if a.ID == id {
			if a.IsResolved {
				return false, nil
			}
			resolveAlert(a, at)
			return true, nil
		}
	}
	return false, nil
}

// ResolveOpenCreatedBefore resuelve las alertas abiertas creadas antes de cutoff.
func (r *AlertRepo) ResolveOpenCreatedBefore(_ context.Context, cutoff, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, a := range r.s.alerts {
		if a.IsOpen() && a.CreatedAt.Before(cutoff) {
			resolveAlert(a, at)
			n++
		}
	}
	return n, nil
}

func resolveAlert(a *entity.Alert, at time.Time) {
	t := at
	a.IsResolved = true
	a.IsActive = false
	a.ResolvedAt = &t
}

// StockMovementRepo log de movimientos en memoria.
type StockMovementRepo struct{ s *Store }

// NewStockMovementRepository construye el adaptador.
func NewStockMovementRepository(s *Store) *StockMovementRepo { return &StockMovementRepo{s: s} }

// SummarizeSince totales por tipo de los movimientos desde since.
func (r *StockMovementRepo) SummarizeSince(_ context.Context, since time.Time) (repository.MovementSummary, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sum := repository.MovementSummary{In: decimal.Zero, Out: decimal.Zero, Adjustment: decimal.Zero}
	for _, m := range r.s.movements {
		if m.CreatedAt.Before(since) {
			continue
		}
		sum.Count++
		switch m.Type {
		case entity.MovementTypeIn:
			sum.In = sum.In.Add(m.Quantity.Abs())
		case entity.MovementTypeOut:
			sum.Out = sum.Out.Add(m.Quantity.Abs())
		case entity.MovementTypeAdjustment:
			sum.Adjustment = sum.Adjustment.Add(m.Quantity)
		}
	}
	return sum, nil
}

// SalesRepo ventas en memoria.
type SalesRepo struct{ s *Store }

// NewSalesRepository construye el adaptador.
func NewSalesRepository(s *Store) *SalesRepo { return &SalesRepo{s: s} }

// UnitsSoldSince unidades vendidas del producto desde since.
func (r *SalesRepo) UnitsSoldSince(_ context.Context, productID string, since time.Time) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := decimal.Zero
	for _, sl := range r.s.sales {
		if sl.productID == productID && !sl.soldAt.Before(since) {
			total = total.Add(sl.quantity)
		}
	}
	return total, nil
}
