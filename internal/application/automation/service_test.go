package automation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/stock-automation/internal/application/automation"
	"github.com/jhoicas/stock-automation/internal/domain"
	"github.com/jhoicas/stock-automation/internal/domain/entity"
	"github.com/jhoicas/stock-automation/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenBatches struct{}

func (brokenBatches) ListExpiringBefore(context.Context, time.Time) ([]repository.ExpiringBatch, error) {
	return nil, errors.New("tabla de lotes no disponible")
}

func TestRunStockAutomation_BarridoCompleto(t *testing.T) {
	f := newFixture(t)
	f.store.AddProduct(productWithMax("p1", 10, 100))
	f.store.AddStockRecord(record("r1", "p1", 5))
	f.store.AddBatch(batch("b1", "p1", 5, -time.Hour))
	f.store.AddStockRecord(record("r2", "p1", -1))

	require.NoError(t, f.service().RunStockAutomation(context.Background()))

	ref := entity.ProductScoped("p1")
	assert.Len(t, f.store.OpenAlerts(ref, entity.AlertTypeLowStock), 1)
	assert.Len(t, f.store.OpenAlerts(ref, entity.AlertTypeExpiry), 1)
	assert.Len(t, f.store.OpenAlerts(ref, entity.AlertTypeReorder), 1)
	assert.Len(t, f.store.OpenAlerts(ref, entity.AlertTypeNegativeStock), 1)
}

func TestRunStockAutomation_PasoFallidoNoDetieneLosDemas(t *testing.T) {
	f := newFixture(t)
	f.deps.Batches = brokenBatches{}
	f.store.AddProduct(productWithMax("p1", 10, 100))
	f.store.AddStockRecord(record("r1", "p1", 5))

	err := f.service().RunStockAutomation(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check_expiring_batches")

	ref := entity.ProductScoped("p1")
	assert.Len(t, f.store.OpenAlerts(ref, entity.AlertTypeLowStock), 1)
	assert.Len(t, f.store.OpenAlerts(ref, entity.AlertTypeReorder), 1)
}

func TestAutoResolveExpiredAlerts_UsaAntiguedadConfigurada(t *testing.T) {
	f := newFixture(t)
	svc := automation.NewService(f.deps, automation.Options{
		ExpiryHorizonDays: 30, AlertMaxAgeDays: 7, VelocityWindowDays: 30, VelocityCoverDays: 7, VelocityTolerance: 0.2,
	})
	_, _, err := svc.AlertManager().EnsureAlert(context.Background(), entity.ProductScoped("p1"), entity.AlertTypeLowStock, entity.SeverityMedium, "x")
	require.NoError(t, err)

	f.clock.Advance(8 * 24 * time.Hour)
	n, err := svc.AutoResolveExpiredAlerts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestResolveAlert(t *testing.T) {
	f := newFixture(t)
	svc := f.service()
	a, _, err := svc.AlertManager().EnsureAlert(context.Background(), entity.ProductScoped("p1"), entity.AlertTypeLowStock, entity.SeverityMedium, "x")
	require.NoError(t, err)

	require.NoError(t, svc.ResolveAlert(context.Background(), a.ID))
	assert.ErrorIs(t, svc.ResolveAlert(context.Background(), "nada"), domain.ErrNotFound)
}

func TestTasks_TablaPorDefecto(t *testing.T) {
	f := newFixture(t)
	s := automation.NewScheduler(f.service().Tasks(automation.DefaultCadences()), time.Minute, zerolog.Nop())

	want := []automation.TaskInfo{
		{Name: automation.TaskUpdateStockStatus, Interval: 5 * time.Minute},
		{Name: automation.TaskCheckExpiringBatches, Interval: time.Hour},
		{Name: automation.TaskFullAutomation, Interval: 30 * time.Minute},
		{Name: automation.TaskAutoResolveAlerts, Interval: 24 * time.Hour},
		{Name: automation.TaskOptimizeStockLevels, Interval: 7 * 24 * time.Hour},
		{Name: automation.TaskDailySummary, Interval: 24 * time.Hour},
	}
	assert.Equal(t, want, s.Tasks())
}

func TestCadences_TableCoincideConLasTareas(t *testing.T) {
	f := newFixture(t)
	c := automation.DefaultCadences()
	c.Velocity = time.Hour
	s := automation.NewScheduler(f.service().Tasks(c), time.Minute, zerolog.Nop())

	assert.Equal(t, s.Tasks(), c.Table())
}

func TestTasks_RunTaskEjecutaLaOperacion(t *testing.T) {
	f := newFixture(t)
	f.store.AddProduct(product("p1", 10))
	f.store.AddStockRecord(record("r1", "p1", 0))
	s := automation.NewScheduler(f.service().Tasks(automation.DefaultCadences()), time.Minute, zerolog.Nop())

	require.NoError(t, s.RunTask(context.Background(), automation.TaskUpdateStockStatus))
	assert.Equal(t, entity.StockStatusOutOfStock, f.store.StockRecords("p1")[0].Status)

	results := s.RunAllTasks(context.Background())
	require.Len(t, results, 6)
	for _, r := range results {
		assert.NoError(t, r.Err, r.Name)
	}
	assert.Len(t, f.store.OpenAlerts(entity.SystemScoped(), entity.AlertTypeDailySummary), 1)
}
