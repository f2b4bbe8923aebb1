package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"LOG_LEVEL", "INITIAL_CAPITAL", "OPTIMIZER_WORKERS", "METRICS_PORT", "BYBIT_TESTNET", "BYBIT_CATEGORY", "DATA_ROOT", "LOG_FILE", "REQUEST_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.LogFile)
	assert.Equal(t, 10000.0, cfg.InitialCapital)
	assert.Equal(t, 0, cfg.OptimizerWorkers)
	assert.Equal(t, 0, cfg.Monitoring.MetricsPort)
	assert.False(t, cfg.Bybit.Testnet)
	assert.Equal(t, "spot", cfg.Bybit.Category)
	assert.Equal(t, "data", cfg.DataRoot)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FILE", "logs/run.log")
	t.Setenv("INITIAL_CAPITAL", "2500.5")
	t.Setenv("OPTIMIZER_WORKERS", "4")
	t.Setenv("METRICS_PORT", "9102")
	t.Setenv("BYBIT_TESTNET", "true")
	t.Setenv("BYBIT_CATEGORY", "linear")
	t.Setenv("DATA_ROOT", "/srv/candles")
	t.Setenv("REQUEST_TIMEOUT", "30s")

	cfg := Load()
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "logs/run.log", cfg.LogFile)
	assert.Equal(t, 2500.5, cfg.InitialCapital)
	assert.Equal(t, 4, cfg.OptimizerWorkers)
	assert.Equal(t, 9102, cfg.Monitoring.MetricsPort)
	assert.True(t, cfg.Bybit.Testnet)
	assert.Equal(t, "linear", cfg.Bybit.Category)
	assert.Equal(t, "/srv/candles", cfg.DataRoot)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.NoError(t, cfg.Validate())
}

func TestLoad_IgnoresMalformedValues(t *testing.T) {
	t.Setenv("INITIAL_CAPITAL", "lots")
	t.Setenv("OPTIMIZER_WORKERS", "many")
	t.Setenv("BYBIT_TESTNET", "maybe")

	cfg := Load()
	assert.Equal(t, 10000.0, cfg.InitialCapital)
	assert.Equal(t, 0, cfg.OptimizerWorkers)
	assert.False(t, cfg.Bybit.Testnet)
}

func TestConfig_Validate(t *testing.T) {
	t.Setenv("BYBIT_CATEGORY", "")
	base := Load()

	cfg := *base
	cfg.InitialCapital = 0
	assert.Error(t, cfg.Validate())

	cfg = *base
	cfg.OptimizerWorkers = -1
	assert.Error(t, cfg.Validate())

	cfg = *base
	cfg.Monitoring.MetricsPort = 70000
	assert.Error(t, cfg.Validate())

	cfg = *base
	cfg.Bybit.Category = "options"
	assert.Error(t, cfg.Validate())
}
