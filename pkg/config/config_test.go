package config_test

import (
	"testing"
	"time"

	"github.com/jhoicas/stock-automation/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	a := cfg.Automation
	assert.Equal(t, 5*time.Minute, a.StatusInterval)
	assert.Equal(t, time.Hour, a.ExpiryInterval)
	assert.Equal(t, 30*time.Minute, a.FullSweepInterval)
	assert.Equal(t, 24*time.Hour, a.AlertCleanupInterval)
	assert.Equal(t, 7*24*time.Hour, a.VelocityInterval)
	assert.Equal(t, 24*time.Hour, a.DailySummaryInterval)
	assert.Equal(t, 30, a.ExpiryHorizonDays)
	assert.Equal(t, 30, a.AlertMaxAgeDays)
	assert.Equal(t, 30, a.VelocityWindowDays)
	assert.Equal(t, 7, a.VelocityCoverDays)
	assert.InDelta(t, 0.2, a.VelocityTolerance, 1e-9)
	assert.Equal(t, "memory", a.LockerBackend)
	assert.True(t, cfg.HTTP.Enabled)
	assert.Equal(t, 8081, cfg.HTTP.Port)
}

func TestLoad_EnvSobrescribe(t *testing.T) {
	t.Setenv("AUTOMATION_STATUS_INTERVAL", "90s")
	t.Setenv("AUTOMATION_EXPIRY_HORIZON_DAYS", "14")
	t.Setenv("LOCKER_BACKEND", "redis")
	t.Setenv("REDIS_URL", "redis://cache:6379/1")
	t.Setenv("HTTP_ENABLED", "false")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.Automation.StatusInterval)
	assert.Equal(t, 14, cfg.Automation.ExpiryHorizonDays)
	assert.Equal(t, "redis", cfg.Automation.LockerBackend)
	assert.Equal(t, "redis://cache:6379/1", cfg.Redis.URL)
	assert.False(t, cfg.HTTP.Enabled)
}

func TestLoad_RechazaIntervaloNoPositivo(t *testing.T) {
	t.Setenv("AUTOMATION_EXPIRY_INTERVAL", "0s")
	_, err := config.Load()
	assert.ErrorContains(t, err, "AUTOMATION_EXPIRY_INTERVAL")
}

func TestLoad_RechazaDiasNegativos(t *testing.T) {
	cases := []string{"AUTOMATION_EXPIRY_HORIZON_DAYS", "AUTOMATION_ALERT_MAX_AGE_DAYS"}
	for _, key := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "-1")
			_, err := config.Load()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoad_AceptaDiasEnCero(t *testing.T) {
	t.Setenv("AUTOMATION_EXPIRY_HORIZON_DAYS", "0")
	t.Setenv("AUTOMATION_ALERT_MAX_AGE_DAYS", "0")
	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.Automation.ExpiryHorizonDays)
	assert.Zero(t, cfg.Automation.AlertMaxAgeDays)
}

func TestLoad_RechazaLockerDesconocido(t *testing.T) {
	t.Setenv("LOCKER_BACKEND", "etcd")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestDBConfig_DSNEscapaCredenciales(t *testing.T) {
	c := config.DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss@db:5432/inv?sslmode=disable", c.DSN())
}
