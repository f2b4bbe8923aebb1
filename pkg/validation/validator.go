package validation

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/ducminhle1904/token-strategy-lab/internal/backtest"
	engerrors "github.com/ducminhle1904/token-strategy-lab/internal/errors"
	"github.com/ducminhle1904/token-strategy-lab/internal/indicators"
	"github.com/ducminhle1904/token-strategy-lab/internal/strategy"
	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

const (
	ModeHoldout = "holdout"
	ModeRolling = "rolling"
)

// WalkForwardValidator optimizes on each train window and replays the best
// candidate on the following test window
type WalkForwardValidator struct {
	splitter  DataSplitter
	engine    *backtest.Engine
	optimizer *backtest.ParameterOptimizer
	logger    *zap.Logger
}

// NewWalkForwardValidator creates a validator using the default splitter
func NewWalkForwardValidator(engine *backtest.Engine, optimizer *backtest.ParameterOptimizer, logger *zap.Logger) *WalkForwardValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WalkForwardValidator{
		splitter:  NewDefaultDataSplitter(),
		engine:    engine,
		optimizer: optimizer,
		logger:    logger,
	}
}

// SetSplitter replaces the data splitter
func (v *WalkForwardValidator) SetSplitter(s DataSplitter) {
	v.splitter = s
}

// Validate runs holdout or rolling walk-forward validation of ranges
// around base
func (v *WalkForwardValidator) Validate(ctx context.Context, data []types.OHLCV, base strategy.Strategy, ranges backtest.OptimizationRanges, cfg WalkForwardConfig) (*WalkForwardSummary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, engerrors.NewValidationError("walk_forward", "Validate", err.Error())
	}

	folds, err := v.folds(data, cfg)
	if err != nil {
		return nil, err
	}
	mode := ModeHoldout
	if cfg.Rolling {
		mode = ModeRolling
	}
	v.logger.Info("Starting walk-forward validation",
		zap.String("mode", mode),
		zap.Int("folds", len(folds)),
		zap.Int("candles", len(data)))

	// Indicators come from the whole series so a window's first bars carry
	// the history that precedes them.
	bars := indicators.Enrich(data)

	results := make([]WalkForwardResult, 0, len(folds))
	for i, fold := range folds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		opt, err := v.optimizer.OptimizeEnriched(ctx, window(bars, fold.Train), base, ranges)
		if err != nil {
			return nil, engerrors.WrapError(err, engerrors.ErrorCategoryStrategy, "walk_forward", "Validate").
				WithContext("fold", i+1)
		}

		best := opt.Best.Strategy
		test, err := v.engine.RunEnriched(window(bars, fold.Test), best)
		if err != nil {
			return nil, engerrors.WrapError(err, engerrors.ErrorCategoryStrategy, "walk_forward", "Validate").
				WithContext("fold", i+1)
		}

		r := WalkForwardResult{
			Fold:         i + 1,
			TrainStart:   fold.TrainStart,
			TrainEnd:     fold.TrainEnd,
			TestStart:    fold.TestStart,
			TestEnd:      fold.TestEnd,
			Strategy:     best,
			TrainResults: opt.Best.Result,
			TestResults:  test,
			TrainReturn:  opt.Best.Result.TotalReturnPercent,
			TestReturn:   test.TotalReturnPercent,
			TrainDD:      opt.Best.Result.MaxDrawdownPercent,
			TestDD:       test.MaxDrawdownPercent,
		}
		results = append(results, r)

		v.logger.Info("Walk-forward fold finished",
			zap.Int("fold", r.Fold),
			zap.Time("test_start", r.TestStart),
			zap.Float64("train_return_pct", r.TrainReturn),
			zap.Float64("test_return_pct", r.TestReturn))
	}

	summary := Summarize(results)
	summary.Mode = mode
	return summary, nil
}

// window returns the enriched bars covering part, which must be a
// contiguous run of the series bars were built from. A part that cannot be
// located is enriched on its own.
func window(bars []types.PriceBar, part []types.OHLCV) []types.PriceBar {
	if len(part) == 0 {
		return nil
	}
	start := sort.Search(len(bars), func(i int) bool {
		return !bars[i].Timestamp.Before(part[0].Timestamp)
	})
	end := start + len(part)
	if end > len(bars) || !bars[start].Timestamp.Equal(part[0].Timestamp) ||
		!bars[end-1].Timestamp.Equal(part[len(part)-1].Timestamp) {
		return indicators.Enrich(part)
	}
	return bars[start:end]
}

func (v *WalkForwardValidator) folds(data []types.OHLCV, cfg WalkForwardConfig) ([]WalkForwardFold, error) {
	if cfg.Rolling {
		folds := v.splitter.CreateRollingFolds(data, cfg)
		if len(folds) == 0 {
			return nil, engerrors.NewDataError("walk_forward", "Validate",
				fmt.Errorf("not enough data for rolling walk-forward validation: %w", engerrors.ErrNoData))
		}
		return folds, nil
	}

	train, test := v.splitter.SplitByRatio(data, cfg.SplitRatio)
	if len(train) == 0 || len(test) == 0 || len(train) < cfg.MinTrainBars || len(test) < cfg.MinTestBars {
		return nil, engerrors.NewDataError("walk_forward", "Validate",
			fmt.Errorf("not enough data for holdout validation (train %d, test %d): %w", len(train), len(test), engerrors.ErrNoData))
	}
	return []WalkForwardFold{{
		Train:      train,
		Test:       test,
		TrainStart: train[0].Timestamp,
		TrainEnd:   train[len(train)-1].Timestamp,
		TestStart:  test[0].Timestamp,
		TestEnd:    test[len(test)-1].Timestamp,
	}}, nil
}

// Summarize averages fold returns and drawdowns and grades the return lost
// out of sample: above 30% is high risk, above 15% moderate
func Summarize(results []WalkForwardResult) *WalkForwardSummary {
	summary := &WalkForwardSummary{Results: results, OverfittingRisk: RiskLow, IsRobust: true}
	if len(results) == 0 {
		return summary
	}

	trainReturns := make([]float64, len(results))
	testReturns := make([]float64, len(results))
	trainDD := make([]float64, len(results))
	testDD := make([]float64, len(results))
	for i, r := range results {
		trainReturns[i] = r.TrainReturn
		testReturns[i] = r.TestReturn
		trainDD[i] = r.TrainDD
		testDD[i] = r.TestDD
	}

	summary.AverageTrainReturn = average(trainReturns)
	summary.AverageTestReturn = average(testReturns)
	summary.TrainReturnStdDev = stdDev(trainReturns)
	summary.TestReturnStdDev = stdDev(testReturns)
	summary.AverageTrainDrawdown = average(trainDD)
	summary.AverageTestDrawdown = average(testDD)
	summary.ReturnDegradation = (summary.AverageTrainReturn - summary.AverageTestReturn) /
		math.Max(0.01, math.Abs(summary.AverageTrainReturn)) * 100

	switch {
	case summary.ReturnDegradation > 30:
		summary.OverfittingRisk = RiskHigh
		summary.IsRobust = false
	case summary.ReturnDegradation > 15:
		summary.OverfittingRisk = RiskModerate
	}
	return summary
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the sample standard deviation
func stdDev(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}

	avg := average(values)
	sumSquares := 0.0
	for _, v := range values {
		diff := v - avg
		sumSquares += diff * diff
	}

	return math.Sqrt(sumSquares / float64(len(values)-1))
}
