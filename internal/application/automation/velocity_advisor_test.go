package automation_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/stock-automation/internal/application/automation"
	"github.com/jhoicas/stock-automation/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuggestMinStock(t *testing.T) {
	cases := []struct {
		sold int64
		want int64
	}{
		{210, 49},
		{0, 0},
		{31, 8},
		{30, 7},
	}
	for _, tc := range cases {
		got := automation.SuggestMinStock(dec(tc.sold), 30, 7)
		assert.True(t, dec(tc.want).Equal(got), "vendidas %d: esperado %d, obtenido %s", tc.sold, tc.want, got)
	}
}

func TestOptimizeStockLevels_RecomiendaSinModificarMinimo(t *testing.T) {
	f := newFixture(t)
	f.store.AddProduct(product("p1", 10))
	f.store.AddSale("p1", dec(200), testNow.Add(-24*time.Hour))
	f.store.AddSale("p1", dec(10), testNow.Add(-29*24*time.Hour))
	f.store.AddSale("p1", dec(500), testNow.Add(-31*24*time.Hour))

	res, err := f.service().OptimizeStockLevels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.AlertsCreated)

	open := f.store.OpenAlerts(entity.ProductScoped("p1"), entity.AlertTypeReorder)
	require.Len(t, open, 1)
	assert.Equal(t, entity.SeverityLow, open[0].Severity)
	assert.Contains(t, open[0].Message, "49")
	assert.Contains(t, open[0].Message, "actual 10")

	p, ok := f.store.Product("p1")
	require.True(t, ok)
	assert.True(t, dec(10).Equal(p.MinStock), "el mínimo nunca se modifica")
}

func TestOptimizeStockLevels_DentroDeTolerancia(t *testing.T) {
	f := newFixture(t)
	f.store.AddProduct(product("p-cerca", 45))
	f.store.AddSale("p-cerca", dec(210), testNow.Add(-time.Hour))
	f.store.AddProduct(product("p-sin-ventas", 0))

	res, err := f.service().OptimizeStockLevels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)
	assert.Zero(t, res.AlertsCreated)
	assert.Empty(t, f.store.Alerts())
}

func TestOptimizeStockLevels_MinimoCeroConVentas(t *testing.T) {
	f := newFixture(t)
	f.store.AddProduct(product("p1", 0))
	f.store.AddSale("p1", dec(30), testNow.Add(-time.Hour))

	_, err := f.service().OptimizeStockLevels(context.Background())
	require.NoError(t, err)
	assert.Len(t, f.store.OpenAlerts(entity.ProductScoped("p1"), entity.AlertTypeReorder), 1)
}
