package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/stock-automation/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Store almacén en memoria compartido por los adaptadores de este paquete.
// Pensado para tests y ejecución local; respeta los mismos contratos que PostgreSQL,
// incluida la unicidad de alertas abiertas por (entidad, tipo).
type Store struct {
	mu        sync.RWMutex
	products  map[string]*entity.Product
	records   map[string]*entity.StockRecord
	batches   map[string]*entity.Batch
	alerts    []*entity.Alert
	movements []*entity.StockMovement
	sales     []sale

	statusWrites int64
}

type sale struct {
	productID string
	quantity  decimal.Decimal
	soldAt    time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		products: make(map[string]*entity.Product),
		records:  make(map[string]*entity.StockRecord),
		batches:  make(map[string]*entity.Batch),
	}
}

// AddProduct registra (o reemplaza) un producto.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = &p
}

// AddStockRecord registra (o reemplaza) un registro de stock.
func (s *Store) AddStockRecord(r entity.StockRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.ID] = &r
}

// SetQuantity cambia la cantidad de un registro existente (simula el sistema externo).
func (s *Store) SetQuantity(recordID string, quantity decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.records[recordID]; ok {
		r.Quantity = quantity
		r.Available = quantity.Sub(r.Reserved)
	}
}

// AddBatch registra (o reemplaza) un lote.
func (s *Store) AddBatch(b entity.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[b.ID] = &b
}

// AddMovement agrega un movimiento al log.
func (s *Store) AddMovement(m entity.StockMovement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.movements = append(s.movements, &m)
}

// AddSale agrega unidades vendidas de un producto en una fecha.
func (s *Store) AddSale(productID string, quantity decimal.Decimal, soldAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = append(s.sales, sale{productID: productID, quantity: quantity, soldAt: soldAt})
}

// Alerts copia de todas las alertas en orden de creación.
func (s *Store) Alerts() []entity.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, *a)
	}
	return out
}

// OpenAlerts copia de las alertas abiertas para una entidad y tipo.
func (s *Store) OpenAlerts(ref entity.EntityRef, t entity.AlertType) []entity.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.Alert
	for _, a := range s.alerts {
		if a.Entity == ref && a.Type == t && a.IsOpen() {
			out = append(out, *a)
		}
	}
	return out
}

// StockRecords copia de los registros de un producto ordenados por ID.
func (s *Store) StockRecords(productID string) []entity.StockRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.StockRecord
	for _, r := range s.sortedRecords() {
		if r.ProductID == productID {
			out = append(out, *r)
		}
	}
	return out
}

// Product copia de un producto.
func (s *Store) Product(id string) (entity.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return entity.Product{}, false
	}
	return *p, true
}

// StatusWrites número de filas tocadas por actualizaciones de estado.
func (s *Store) StatusWrites() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.statusWrites
}

func (s *Store) sortedRecords() []*entity.StockRecord {
	list := make([]*entity.StockRecord, 0, len(s.records))
	for _, r := range s.records {
		list = append(list, r)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
