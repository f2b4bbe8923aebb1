// Package validation checks optimized strategies out of sample with
// holdout and rolling walk-forward splits
package validation

import (
	"fmt"
	"time"

	"github.com/ducminhle1904/token-strategy-lab/internal/backtest"
	"github.com/ducminhle1904/token-strategy-lab/internal/strategy"
	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

// DataSplitter defines how data is split into train/test sets
type DataSplitter interface {
	SplitByRatio(data []types.OHLCV, ratio float64) ([]types.OHLCV, []types.OHLCV)
	CreateRollingFolds(data []types.OHLCV, cfg WalkForwardConfig) []WalkForwardFold
}

// WalkForwardConfig holds the configuration for walk-forward validation.
// Holdout splits once at SplitRatio; Rolling slides TrainDays/TestDays
// windows forward by RollDays.
type WalkForwardConfig struct {
	Rolling      bool    `json:"rolling"`
	SplitRatio   float64 `json:"split_ratio"`
	TrainDays    int     `json:"train_days"`
	TestDays     int     `json:"test_days"`
	RollDays     int     `json:"roll_days"`
	MinTrainBars int     `json:"min_train_bars"`
	MinTestBars  int     `json:"min_test_bars"`
}

// DefaultWalkForwardConfig returns a 70/30 holdout with 60/14/14 day
// rolling windows when Rolling is switched on
func DefaultWalkForwardConfig() WalkForwardConfig {
	return WalkForwardConfig{
		SplitRatio:   0.7,
		TrainDays:    60,
		TestDays:     14,
		RollDays:     14,
		MinTrainBars: 50,
		MinTestBars:  10,
	}
}

// Validate rejects settings that can never produce a fold
func (c WalkForwardConfig) Validate() error {
	if c.Rolling {
		if c.TrainDays <= 0 || c.TestDays <= 0 || c.RollDays <= 0 {
			return fmt.Errorf("rolling walk-forward needs positive train, test and roll days")
		}
	} else if c.SplitRatio <= 0 || c.SplitRatio >= 1 {
		return fmt.Errorf("split ratio must be between 0 and 1, got: %.2f", c.SplitRatio)
	}
	if c.MinTrainBars < 0 || c.MinTestBars < 0 {
		return fmt.Errorf("minimum bar counts must not be negative")
	}
	return nil
}

// WalkForwardFold is one train/test window pair
type WalkForwardFold struct {
	Train      []types.OHLCV
	Test       []types.OHLCV
	TrainStart time.Time
	TrainEnd   time.Time
	TestStart  time.Time
	TestEnd    time.Time
}

// WalkForwardResult is the outcome of one fold: the best strategy found on
// the train window and its run on the unseen test window
type WalkForwardResult struct {
	Fold         int                      `json:"fold"`
	TrainStart   time.Time                `json:"train_start"`
	TrainEnd     time.Time                `json:"train_end"`
	TestStart    time.Time                `json:"test_start"`
	TestEnd      time.Time                `json:"test_end"`
	Strategy     strategy.Strategy        `json:"strategy"`
	TrainResults *backtest.BacktestResult `json:"-"`
	TestResults  *backtest.BacktestResult `json:"-"`
	TrainReturn  float64                  `json:"train_return_percent"`
	TestReturn   float64                  `json:"test_return_percent"`
	TrainDD      float64                  `json:"train_max_drawdown_percent"`
	TestDD       float64                  `json:"test_max_drawdown_percent"`
}

// OverfittingRisk grades how much return is lost out of sample
type OverfittingRisk string

const (
	RiskLow      OverfittingRisk = "LOW"
	RiskModerate OverfittingRisk = "MODERATE"
	RiskHigh     OverfittingRisk = "HIGH"
)

// WalkForwardSummary aggregates every fold
type WalkForwardSummary struct {
	Mode                 string              `json:"mode"`
	Results              []WalkForwardResult `json:"results"`
	AverageTrainReturn   float64             `json:"average_train_return"`
	AverageTestReturn    float64             `json:"average_test_return"`
	TrainReturnStdDev    float64             `json:"train_return_std_dev"`
	TestReturnStdDev     float64             `json:"test_return_std_dev"`
	AverageTrainDrawdown float64             `json:"average_train_drawdown"`
	AverageTestDrawdown  float64             `json:"average_test_drawdown"`
	ReturnDegradation    float64             `json:"return_degradation"`
	IsRobust             bool                `json:"is_robust"`
	OverfittingRisk      OverfittingRisk     `json:"overfitting_risk"`
}
