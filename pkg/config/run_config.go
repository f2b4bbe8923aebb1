package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ducminhle1904/token-strategy-lab/internal/backtest"
	engerrors "github.com/ducminhle1904/token-strategy-lab/internal/errors"
	"github.com/ducminhle1904/token-strategy-lab/internal/strategy"
	"github.com/ducminhle1904/token-strategy-lab/pkg/validation"
)

// RunConfig describes one backtest or optimization run
type RunConfig struct {
	Symbol         string  `json:"symbol"`
	Interval       string  `json:"interval"`
	Source         string  `json:"source"`
	DataFile       string  `json:"data_file,omitempty"`
	Limit          int     `json:"limit,omitempty"`
	Period         string  `json:"period,omitempty"`
	InitialCapital float64 `json:"initial_capital"`

	Strategy     strategy.Strategy            `json:"strategy"`
	Optimization *backtest.OptimizationRanges `json:"optimization,omitempty"`
	Workers      int                          `json:"workers,omitempty"`

	// WalkForward re-optimizes on train windows and replays the winners on
	// the following unseen windows. It needs Optimization.
	WalkForward *validation.WalkForwardConfig `json:"walk_forward,omitempty"`

	Output OutputConfig `json:"output"`
}

// OutputConfig selects which reports are written to Dir
type OutputConfig struct {
	Dir     string `json:"dir"`
	Console bool   `json:"console"`
	Excel   bool   `json:"excel"`
	CSV     bool   `json:"csv"`
	JSON    bool   `json:"json"`
}

// DefaultStrategy buys RSI dips below 30 and exits on 5% profit, 3% loss or
// RSI above 70
func DefaultStrategy() strategy.Strategy {
	return strategy.Strategy{
		ID:        "rsi-reversion",
		Name:      "RSI Reversion",
		Direction: strategy.DirectionLong,
		Entry: strategy.EntryConditions{
			RSIBelow: strategy.Float(30),
		},
		Exit: strategy.ExitConditions{
			TakeProfitPercent: strategy.Float(5),
			StopLossPercent:   strategy.Float(3),
			RSIAbove:          strategy.Float(70),
		},
		PositionSizePercent: 10,
		MaxPositions:        3,
	}
}

// DefaultOptimizationRanges is the grid searched when optimization is
// requested without ranges: 5 RSI thresholds x 5 take-profits x 5 stop-losses
func DefaultOptimizationRanges() *backtest.OptimizationRanges {
	return &backtest.OptimizationRanges{
		RSIThreshold: &backtest.ParameterRange{Min: 20, Max: 40, Step: 5},
		TakeProfit:   &backtest.ParameterRange{Min: 2, Max: 10, Step: 2},
		StopLoss:     &backtest.ParameterRange{Min: 1, Max: 5, Step: 1},
	}
}

// DefaultRunConfig returns a config that runs DefaultStrategy on CSV data
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		Symbol:         "BTCUSDT",
		Interval:       DefaultInterval,
		Source:         SourceCSV,
		Limit:          DefaultLimit,
		InitialCapital: DefaultInitialCapital,
		Strategy:       DefaultStrategy(),
		Output: OutputConfig{
			Dir:     ResultsDir,
			Console: true,
			JSON:    true,
		},
	}
}

// LoadRunConfig reads a JSON run file on top of DefaultRunConfig. Fields the
// file omits keep their defaults; a strategy given in the file replaces the
// default strategy as a whole.
func LoadRunConfig(path string) (*RunConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, engerrors.WrapError(err, engerrors.ErrorCategoryConfiguration, "run_config", "LoadRunConfig").
			WithContext("file", path)
	}

	cfg := DefaultRunConfig()
	var probe struct {
		Strategy json.RawMessage `json:"strategy"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, engerrors.NewConfigurationError("run_config", "LoadRunConfig",
			fmt.Sprintf("could not parse %s: %v", path, err))
	}
	if len(probe.Strategy) > 0 {
		cfg.Strategy = strategy.Strategy{}
	}
	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, engerrors.NewConfigurationError("run_config", "LoadRunConfig",
			fmt.Sprintf("could not parse %s: %v", path, err))
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// SaveRunConfig writes cfg as indented JSON, creating parent directories
func SaveRunConfig(cfg *RunConfig, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	raw, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, raw, 0o644)
}

// ApplyDefaults fills zero values that have a sensible default
func (c *RunConfig) ApplyDefaults() {
	if c.Source == "" {
		c.Source = SourceCSV
	}
	if c.Interval == "" {
		c.Interval = DefaultInterval
	}
	if c.Limit <= 0 {
		c.Limit = DefaultLimit
	}
	if c.InitialCapital == 0 {
		c.InitialCapital = DefaultInitialCapital
	}
	if c.Output.Dir == "" {
		c.Output.Dir = ResultsDir
	}
	if c.Strategy.Direction == "" {
		c.Strategy.Direction = strategy.DirectionLong
	}
}
