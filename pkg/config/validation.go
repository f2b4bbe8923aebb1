package config

import (
	"fmt"

	"github.com/ducminhle1904/token-strategy-lab/internal/backtest"
	engerrors "github.com/ducminhle1904/token-strategy-lab/internal/errors"
	"github.com/ducminhle1904/token-strategy-lab/pkg/data"
)

// Validate checks the run file before any data is loaded
func (c *RunConfig) Validate() error {
	switch c.Source {
	case SourceCSV:
		if c.DataFile == "" && c.Symbol == "" {
			return invalid("csv source needs data_file or symbol")
		}
	case SourceBybit:
		if c.Symbol == "" {
			return invalid("bybit source needs a symbol")
		}
	default:
		return invalid(fmt.Sprintf("unknown source %q (want %s or %s)", c.Source, SourceCSV, SourceBybit))
	}

	if c.InitialCapital <= 0 {
		return invalid(fmt.Sprintf("initial capital must be positive, got: %.2f", c.InitialCapital))
	}
	if c.Limit < 0 {
		return invalid(fmt.Sprintf("limit must not be negative, got: %d", c.Limit))
	}
	if c.Workers < 0 {
		return invalid(fmt.Sprintf("workers must not be negative, got: %d", c.Workers))
	}
	if c.Period != "" {
		if _, ok := data.ParseTrailingPeriod(c.Period); !ok {
			return invalid(fmt.Sprintf("invalid period %q", c.Period))
		}
	}

	if err := c.Strategy.Validate(); err != nil {
		return err
	}

	if opt := c.Optimization; opt != nil {
		for name, r := range map[string]*backtest.ParameterRange{
			"rsi_threshold": opt.RSIThreshold,
			"take_profit":   opt.TakeProfit,
			"stop_loss":     opt.StopLoss,
		} {
			if r == nil {
				continue
			}
			if err := r.Validate(); err != nil {
				return invalid(fmt.Sprintf("optimization.%s: %v", name, err))
			}
		}
	}
	if c.WalkForward != nil {
		if c.Optimization == nil {
			return invalid("walk_forward needs optimization ranges")
		}
		if err := c.WalkForward.Validate(); err != nil {
			return invalid(fmt.Sprintf("walk_forward: %v", err))
		}
	}
	return nil
}

func invalid(msg string) error {
	return engerrors.NewConfigurationError("run_config", "Validate", msg)
}
