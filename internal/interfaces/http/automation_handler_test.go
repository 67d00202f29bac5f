package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/stock-automation/internal/application/automation"
	"github.com/jhoicas/stock-automation/internal/application/dto"
	"github.com/jhoicas/stock-automation/internal/domain/entity"
	"github.com/jhoicas/stock-automation/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/stock-automation/internal/interfaces/http"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type opsFixture struct {
	app   *fiber.App
	store *memory.Store
	svc   *automation.Service
	ok    *atomic.Int32
}

func newOpsFixture(t *testing.T) *opsFixture {
	t.Helper()
	store := memory.NewStore()
	svc := automation.NewService(automation.Deps{
		Products:     memory.NewProductRepository(store),
		StockRecords: memory.NewStockRecordRepository(store),
		Batches:      memory.NewBatchRepository(store),
		Alerts:       memory.NewAlertRepository(store),
		Movements:    memory.NewStockMovementRepository(store),
		Sales:        memory.NewSalesRepository(store),
		Log:          zerolog.Nop(),
	}, automation.DefaultOptions())

	var ok atomic.Int32
	scheduler := automation.NewScheduler([]automation.Task{
		{Name: "ok", Interval: time.Minute, Run: func(context.Context) error { ok.Add(1); return nil }},
		{Name: "falla", Interval: time.Hour, Run: func(context.Context) error { return errors.New("boom") }},
	}, time.Second, zerolog.Nop())

	app := apphttp.NewApp(apphttp.RouterDeps{
		AppName:   "stock-automation-test",
		Tasks:     scheduler,
		Alerts:    svc,
		JWTSecret: testJWTSecret,
		Log:       zerolog.Nop(),
	})
	return &opsFixture{app: app, store: store, svc: svc, ok: &ok}
}

func (f *opsFixture) do(t *testing.T, method, path, role string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestHealth_Publico(t *testing.T) {
	f := newOpsFixture(t)
	resp := f.do(t, http.MethodGet, "/health", "")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListTasks(t *testing.T) {
	f := newOpsFixture(t)
	resp := f.do(t, http.MethodGet, "/api/automation/tasks", "admin")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body []dto.TaskResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []dto.TaskResponse{{Name: "ok", Interval: "1m0s"}, {Name: "falla", Interval: "1h0m0s"}}, body)
}

func TestRunTask(t *testing.T) {
	f := newOpsFixture(t)
	resp := f.do(t, http.MethodPost, "/api/automation/tasks/ok/run", "admin")
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body dto.TaskRunResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, int32(1), f.ok.Load())
}

func TestRunTask_Desconocida404(t *testing.T) {
	f := newOpsFixture(t)
	resp := f.do(t, http.MethodPost, "/api/automation/tasks/no-existe/run", "admin")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Zero(t, f.ok.Load())
}

func TestRunTask_Fallida500(t *testing.T) {
	f := newOpsFixture(t)
	resp := f.do(t, http.MethodPost, "/api/automation/tasks/falla/run", "admin")
	defer resp.Body.Close()
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body dto.TaskRunResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "error", body.Status)
	assert.Equal(t, "boom", body.Error)
}

func TestRunAll_ReportaFallos(t *testing.T) {
	f := newOpsFixture(t)
	resp := f.do(t, http.MethodPost, "/api/automation/run-all", "admin")
	defer resp.Body.Close()
	require.Equal(t, http.StatusMultiStatus, resp.StatusCode)

	var body dto.RunAllResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, 1, body.Failed)
	require.Len(t, body.Results, 2)
	assert.Equal(t, int32(1), f.ok.Load())
}

func TestRunAll_ViewerNoPuede(t *testing.T) {
	f := newOpsFixture(t)
	resp := f.do(t, http.MethodPost, "/api/automation/run-all", "viewer")
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Zero(t, f.ok.Load())
}

func TestResolveAlert(t *testing.T) {
	f := newOpsFixture(t)
	a, _, err := f.svc.AlertManager().EnsureAlert(context.Background(),
		entity.ProductScoped("p1"), entity.AlertTypeLowStock, entity.SeverityMedium, "stock bajo")
	require.NoError(t, err)

	resp := f.do(t, http.MethodPost, "/api/alerts/"+a.ID+"/resolve", "admin")
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, f.store.OpenAlerts(a.Entity, a.Type))

	resp = f.do(t, http.MethodPost, "/api/alerts/"+a.ID+"/resolve", "admin")
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode, "resolver dos veces es idempotente")

	resp = f.do(t, http.MethodPost, "/api/alerts/no-existe/resolve", "admin")
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
