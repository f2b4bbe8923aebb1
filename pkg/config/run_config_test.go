package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/token-strategy-lab/internal/backtest"
	engerrors "github.com/ducminhle1904/token-strategy-lab/internal/errors"
	"github.com/ducminhle1904/token-strategy-lab/internal/strategy"
	"github.com/ducminhle1904/token-strategy-lab/pkg/validation"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultRunConfig_IsValid(t *testing.T) {
	cfg := DefaultRunConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, SourceCSV, cfg.Source)
	assert.Equal(t, DefaultInitialCapital, cfg.InitialCapital)
	assert.Equal(t, 30.0, *cfg.Strategy.Entry.RSIBelow)
}

func TestLoadRunConfig_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `{"symbol": "ETHUSDT", "source": "bybit", "initial_capital": 2500}`)

	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "ETHUSDT", cfg.Symbol)
	assert.Equal(t, SourceBybit, cfg.Source)
	assert.Equal(t, 2500.0, cfg.InitialCapital)
	assert.Equal(t, DefaultInterval, cfg.Interval)
	assert.Equal(t, ResultsDir, cfg.Output.Dir)
	assert.Equal(t, "rsi-reversion", cfg.Strategy.ID)
	require.NoError(t, cfg.Validate())
}

func TestLoadRunConfig_StrategyReplacesDefault(t *testing.T) {
	path := writeConfig(t, `{
		"data_file": "data/btc.csv",
		"strategy": {
			"id": "macd-short",
			"direction": "short",
			"entry": {"macd_bearish": true},
			"exit": {"take_profit_percent": 4, "max_hold_duration": "48h"},
			"position_size_percent": 20,
			"max_positions": 1
		},
		"optimization": {"take_profit": {"min": 2, "max": 6, "step": 2}},
		"output": {"dir": "out", "excel": true}
	}`)

	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	s := cfg.Strategy
	assert.Equal(t, "macd-short", s.ID)
	assert.Equal(t, strategy.DirectionShort, s.Direction)
	assert.True(t, s.Entry.MACDBearish)
	assert.Nil(t, s.Entry.RSIBelow, "default RSI entry is not merged into a file strategy")
	assert.Nil(t, s.Exit.StopLossPercent)
	require.NotNil(t, s.Exit.MaxHoldDuration)
	assert.Equal(t, 48*time.Hour, s.Exit.MaxHoldDuration.Duration)

	require.NotNil(t, cfg.Optimization)
	assert.Nil(t, cfg.Optimization.RSIThreshold)
	assert.Equal(t, []float64{2, 4, 6}, cfg.Optimization.TakeProfit.Values())

	assert.Equal(t, "out", cfg.Output.Dir)
	assert.True(t, cfg.Output.Excel)
	assert.True(t, cfg.Output.JSON, "output keys missing from the file keep their defaults")
}

func TestLoadRunConfig_Errors(t *testing.T) {
	_, err := LoadRunConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	_, err = LoadRunConfig(writeConfig(t, `{"symbol": `))
	require.Error(t, err)
	var engErr *engerrors.EngineError
	require.ErrorAs(t, err, &engErr)
	assert.Equal(t, engerrors.ErrorCategoryConfiguration, engErr.Category)
}

func TestRunConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*RunConfig)
	}{
		{"unknown source", func(c *RunConfig) { c.Source = "ftp" }},
		{"bybit without symbol", func(c *RunConfig) { c.Source = SourceBybit; c.Symbol = "" }},
		{"csv without file or symbol", func(c *RunConfig) { c.Symbol = ""; c.DataFile = "" }},
		{"non-positive capital", func(c *RunConfig) { c.InitialCapital = -5 }},
		{"negative workers", func(c *RunConfig) { c.Workers = -1 }},
		{"bad period", func(c *RunConfig) { c.Period = "fortnight" }},
		{"bad strategy", func(c *RunConfig) { c.Strategy.MaxPositions = 0 }},
		{"inverted range", func(c *RunConfig) {
			c.Optimization = &backtest.OptimizationRanges{StopLoss: &backtest.ParameterRange{Min: 5, Max: 1, Step: 1}}
		}},
		{"walk-forward without ranges", func(c *RunConfig) {
			wf := validation.DefaultWalkForwardConfig()
			c.WalkForward = &wf
		}},
		{"bad walk-forward split", func(c *RunConfig) {
			c.Optimization = DefaultOptimizationRanges()
			c.WalkForward = &validation.WalkForwardConfig{SplitRatio: 0}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRunConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := DefaultRunConfig()
	cfg.Optimization = DefaultOptimizationRanges()
	cfg.Period = "30d"
	wf := validation.DefaultWalkForwardConfig()
	cfg.WalkForward = &wf
	assert.NoError(t, cfg.Validate())
}

func TestSaveRunConfig_RoundTrip(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.Optimization = DefaultOptimizationRanges()
	path := filepath.Join(t.TempDir(), "nested", "best.json")

	require.NoError(t, SaveRunConfig(cfg, path))
	loaded, err := LoadRunConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}
