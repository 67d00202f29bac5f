package automation_test

import (
	"sync"
	"testing"
	"time"

	"github.com/jhoicas/stock-automation/internal/application/automation"
	"github.com/jhoicas/stock-automation/internal/domain/entity"
	"github.com/jhoicas/stock-automation/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// fakeClock reloj controlable por los tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	store *memory.Store
	clock *fakeClock
	deps  automation.Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	clock := &fakeClock{t: testNow}
	return &fixture{
		store: store,
		clock: clock,
		deps: automation.Deps{
			Products:     memory.NewProductRepository(store),
			StockRecords: memory.NewStockRecordRepository(store),
			Batches:      memory.NewBatchRepository(store),
			Alerts:       memory.NewAlertRepository(store),
			Movements:    memory.NewStockMovementRepository(store),
			Sales:        memory.NewSalesRepository(store),
			Now:          clock.Now,
			Log:          zerolog.Nop(),
		},
	}
}

func (f *fixture) service() *automation.Service {
	return automation.NewService(f.deps, automation.DefaultOptions())
}

func (f *fixture) alertManager() *automation.AlertManager {
	return automation.NewAlertManager(f.deps.Alerts, nil, f.clock.Now, zerolog.Nop())
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func product(id string, minStock int64) entity.Product {
	return entity.Product{ID: id, SKU: "SKU-" + id, Name: "Producto " + id, MinStock: dec(minStock), IsActive: true}
}

func productWithMax(id string, minStock, maxStock int64) entity.Product {
	p := product(id, minStock)
	m := dec(maxStock)
	p.MaxStock = &m
	return p
}

func record(id, productID string, quantity int64) entity.StockRecord {
	return entity.StockRecord{
		ID:         id,
		ProductID:  productID,
		LocationID: "bodega-1",
		Quantity:   dec(quantity),
		Available:  dec(quantity),
		Reserved:   decimal.Zero,
		Status:     entity.StockStatusInStock,
	}
}
