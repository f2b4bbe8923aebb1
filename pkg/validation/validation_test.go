package validation

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/token-strategy-lab/internal/backtest"
	engerrors "github.com/ducminhle1904/token-strategy-lab/internal/errors"
	"github.com/ducminhle1904/token-strategy-lab/internal/indicators"
	"github.com/ducminhle1904/token-strategy-lab/internal/strategy"
	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

func generateHourlyData(n int) []types.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]types.OHLCV, n)
	for i := range out {
		price := 100 + 8*math.Sin(float64(i)/5)
		out[i] = types.OHLCV{
			Timestamp: start.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      price + 0.5,
			Low:       price - 0.5,
			Close:     price,
			Volume:    500,
		}
	}
	return out
}

func testStrategy() strategy.Strategy {
	return strategy.Strategy{
		ID:        "wf",
		Direction: strategy.DirectionLong,
		Entry:     strategy.EntryConditions{RSIBelow: strategy.Float(30)},
		Exit: strategy.ExitConditions{
			TakeProfitPercent: strategy.Float(4),
			StopLossPercent:   strategy.Float(3),
		},
		PositionSizePercent: 10,
		MaxPositions:        2,
	}
}

func newValidator() *WalkForwardValidator {
	engine := backtest.NewEngine(10000)
	return NewWalkForwardValidator(engine, backtest.NewParameterOptimizer(engine, backtest.WithWorkers(2)), nil)
}

func TestSplitByRatio(t *testing.T) {
	data := generateHourlyData(10)

	splitter := NewDefaultDataSplitter()
	train, test := splitter.SplitByRatio(data, 0.7)
	assert.Len(t, train, 7)
	assert.Len(t, test, 3)

	train, test = splitter.SplitByRatio(data, 1.5)
	assert.Len(t, train, 10)
	assert.Nil(t, test)
}

func TestCreateRollingFolds_WindowsDoNotOverlap(t *testing.T) {
	data := generateHourlyData(24 * 10)
	cfg := WalkForwardConfig{Rolling: true, TrainDays: 4, TestDays: 2, RollDays: 2, MinTrainBars: 10, MinTestBars: 5}

	folds := NewDefaultDataSplitter().CreateRollingFolds(data, cfg)
	require.Len(t, folds, 3)

	for i, f := range folds {
		assert.Len(t, f.Train, 96, "fold %d", i)
		assert.Len(t, f.Test, 48, "fold %d", i)
		assert.True(t, f.TestStart.After(f.TrainEnd))
		if i > 0 {
			assert.Equal(t, 48*time.Hour, f.TrainStart.Sub(folds[i-1].TrainStart))
		}
	}
}

func TestCreateRollingFolds_TooLittleData(t *testing.T) {
	cfg := DefaultWalkForwardConfig()
	cfg.Rolling = true
	assert.Empty(t, NewDefaultDataSplitter().CreateRollingFolds(generateHourlyData(48), cfg))
	assert.Empty(t, NewDefaultDataSplitter().CreateRollingFolds(nil, cfg))
}

func TestWalkForwardConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultWalkForwardConfig().Validate())

	bad := DefaultWalkForwardConfig()
	bad.SplitRatio = 1
	assert.Error(t, bad.Validate())

	rolling := DefaultWalkForwardConfig()
	rolling.Rolling = true
	rolling.RollDays = 0
	assert.Error(t, rolling.Validate())
}

func TestSummarize_GradesDegradation(t *testing.T) {
	summary := Summarize([]WalkForwardResult{
		{TrainReturn: 10, TestReturn: 2, TrainDD: 4, TestDD: 6},
		{TrainReturn: 10, TestReturn: 4, TrainDD: 2, TestDD: 2},
	})

	assert.InDelta(t, 10, summary.AverageTrainReturn, 1e-9)
	assert.InDelta(t, 3, summary.AverageTestReturn, 1e-9)
	assert.InDelta(t, 70, summary.ReturnDegradation, 1e-9)
	assert.InDelta(t, 0, summary.TrainReturnStdDev, 1e-9)
	assert.InDelta(t, math.Sqrt2, summary.TestReturnStdDev, 1e-9)
	assert.InDelta(t, 4, summary.AverageTestDrawdown, 1e-9)
	assert.Equal(t, RiskHigh, summary.OverfittingRisk)
	assert.False(t, summary.IsRobust)

	moderate := Summarize([]WalkForwardResult{{TrainReturn: 10, TestReturn: 8}})
	assert.Equal(t, RiskModerate, moderate.OverfittingRisk)
	assert.True(t, moderate.IsRobust)

	better := Summarize([]WalkForwardResult{{TrainReturn: 5, TestReturn: 6}})
	assert.Equal(t, RiskLow, better.OverfittingRisk)
}

func TestValidate_Holdout(t *testing.T) {
	data := generateHourlyData(400)
	ranges := backtest.OptimizationRanges{TakeProfit: &backtest.ParameterRange{Min: 2, Max: 6, Step: 2}}

	summary, err := newValidator().Validate(context.Background(), data, testStrategy(), ranges, DefaultWalkForwardConfig())
	require.NoError(t, err)

	assert.Equal(t, ModeHoldout, summary.Mode)
	require.Len(t, summary.Results, 1)
	r := summary.Results[0]
	assert.Equal(t, data[280].Timestamp, r.TestStart)
	assert.Equal(t, data[399].Timestamp, r.TestEnd)
	assert.Equal(t, r.TestResults.TotalReturnPercent, r.TestReturn)
	assert.Equal(t, r.Strategy.ID, r.TestResults.Strategy.ID)
}

func TestValidate_TestWindowKeepsIndicatorHistory(t *testing.T) {
	data := generateHourlyData(400)
	ranges := backtest.OptimizationRanges{TakeProfit: &backtest.ParameterRange{Min: 2, Max: 6, Step: 2}}

	summary, err := newValidator().Validate(context.Background(), data, testStrategy(), ranges, DefaultWalkForwardConfig())
	require.NoError(t, err)
	require.Len(t, summary.Results, 1)
	r := summary.Results[0]

	full := indicators.Enrich(data)
	want, err := backtest.NewEngine(10000).RunEnriched(full[280:], r.Strategy)
	require.NoError(t, err)
	assert.Equal(t, want.TotalReturnPercent, r.TestReturn)
	assert.Equal(t, want.Trades, r.TestResults.Trades)

	// a test window enriched on its own starts RSI over at 50
	isolated := indicators.Enrich(data[280:])
	assert.Equal(t, 50.0, isolated[0].Indicators.RSI)
	assert.NotEqual(t, 50.0, full[280].Indicators.RSI)
}

func TestWindow(t *testing.T) {
	data := generateHourlyData(50)
	bars := indicators.Enrich(data)

	got := window(bars, data[10:20])
	require.Len(t, got, 10)
	assert.Equal(t, bars[10], got[0])
	assert.Equal(t, bars[19], got[9])

	assert.Nil(t, window(bars, nil))

	foreign := generateHourlyData(5)
	for i := range foreign {
		foreign[i].Timestamp = foreign[i].Timestamp.Add(-time.Hour * 1000)
	}
	assert.Equal(t, indicators.Enrich(foreign), window(bars, foreign))
}

func TestValidate_Rolling(t *testing.T) {
	data := generateHourlyData(24 * 12)
	cfg := WalkForwardConfig{Rolling: true, TrainDays: 5, TestDays: 2, RollDays: 2, MinTrainBars: 50, MinTestBars: 10}
	ranges := backtest.OptimizationRanges{StopLoss: &backtest.ParameterRange{Min: 1, Max: 3, Step: 1}}

	summary, err := newValidator().Validate(context.Background(), data, testStrategy(), ranges, cfg)
	require.NoError(t, err)

	assert.Equal(t, ModeRolling, summary.Mode)
	// Starts at days 0, 2, 4 and 6; the last test window is the 24 bars left
	require.Len(t, summary.Results, 4)
	assert.Len(t, summary.Results[3].TestResults.EquityCurve, 24)
	for i, r := range summary.Results {
		assert.Equal(t, i+1, r.Fold)
	}
}

func TestValidate_NotEnoughData(t *testing.T) {
	_, err := newValidator().Validate(context.Background(), generateHourlyData(20), testStrategy(),
		backtest.OptimizationRanges{}, DefaultWalkForwardConfig())
	require.Error(t, err)
	assert.ErrorIs(t, err, engerrors.ErrNoData)
}

func TestValidate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newValidator().Validate(ctx, generateHourlyData(400), testStrategy(),
		backtest.OptimizationRanges{}, DefaultWalkForwardConfig())
	assert.ErrorIs(t, err, context.Canceled)
}
