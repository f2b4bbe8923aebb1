package backtest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestCalculateSharpeRatio_EmptyTrades tests Sharpe ratio calculation with no trades
func TestCalculateSharpeRatio_EmptyTrades(t *testing.T) {
	results := &BacktestResult{Trades: []Trade{}}
	assert.Equal(t, 0.0, results.CalculateSharpeRatio())
}

func TestCalculateSharpeRatio_ProfitableTrades(t *testing.T) {
	results := &BacktestResult{
		Trades: []Trade{
			{ProfitPercent: 10},
			{ProfitPercent: 5},
			{ProfitPercent: 8},
		},
	}
	assert.Greater(t, results.CalculateSharpeRatio(), 0.0)
}

func TestCalculateSharpeRatio_LosingTrades(t *testing.T) {
	results := &BacktestResult{
		Trades: []Trade{
			{ProfitPercent: -10},
			{ProfitPercent: -2},
			{ProfitPercent: -4},
		},
	}
	assert.Less(t, results.CalculateSharpeRatio(), 0.0)
}

func TestCalculateSharpeRatio_KnownValue(t *testing.T) {
	// mean 2, population std-dev 2
	results := &BacktestResult{
		Trades: []Trade{{ProfitPercent: 4}, {ProfitPercent: 0}},
	}
	assert.InDelta(t, 1.0, results.CalculateSharpeRatio(), 1e-12)
}

// TestCalculateSharpeRatio_ZeroVolatility tests Sharpe ratio with identical returns
func TestCalculateSharpeRatio_ZeroVolatility(t *testing.T) {
	results := &BacktestResult{
		Trades: []Trade{{ProfitPercent: 5}, {ProfitPercent: 5}, {ProfitPercent: 5}},
	}
	assert.Equal(t, 0.0, results.CalculateSharpeRatio())
}

func TestCalculateSharpeRatio_TinyDeviationIsNotZeroed(t *testing.T) {
	// mean 1+5e-13, population std-dev 5e-13
	results := &BacktestResult{
		Trades: []Trade{{ProfitPercent: 1}, {ProfitPercent: 1 + 1e-12}},
	}
	assert.Greater(t, results.CalculateSharpeRatio(), 1e11)
}

func TestCalculateProfitFactor_EmptyTrades(t *testing.T) {
	results := &BacktestResult{}
	assert.Equal(t, 0.0, results.CalculateProfitFactor())
}

func TestCalculateProfitFactor_AllProfitableTrades(t *testing.T) {
	results := &BacktestResult{
		Trades: []Trade{{Profit: 10}, {Profit: 5}},
	}
	assert.True(t, math.IsInf(results.CalculateProfitFactor(), 1))
}

func TestCalculateProfitFactor_AllLosingTrades(t *testing.T) {
	results := &BacktestResult{
		Trades: []Trade{{Profit: -10}, {Profit: -5}},
	}
	assert.Equal(t, 0.0, results.CalculateProfitFactor())
}

func TestCalculateProfitFactor_MixedTrades(t *testing.T) {
	results := &BacktestResult{
		Trades: []Trade{{Profit: 30}, {Profit: -10}, {Profit: 10}, {Profit: -10}},
	}
	assert.InDelta(t, 2.0, results.CalculateProfitFactor(), 1e-12)
}

func TestCalculateWinRate(t *testing.T) {
	assert.Equal(t, 0.0, (&BacktestResult{}).CalculateWinRate())

	results := &BacktestResult{
		Trades: []Trade{{Profit: 1}, {Profit: 0}, {Profit: -1}, {Profit: 2}},
	}
	// a break-even trade counts as a loss
	assert.Equal(t, 50.0, results.CalculateWinRate())
}

func TestUpdateMetrics(t *testing.T) {
	results := &BacktestResult{
		InitialCapital: 1000,
		FinalCapital:   1030,
		Trades: []Trade{
			{Profit: 40, ProfitPercent: 4},
			{Profit: -10, ProfitPercent: -1},
			{Profit: 0, ProfitPercent: 0},
		},
	}
	results.UpdateMetrics()

	assert.Equal(t, 3, results.TotalTrades)
	assert.Equal(t, 1, results.WinningTrades)
	assert.Equal(t, 2, results.LosingTrades)
	assert.Equal(t, results.TotalTrades, results.WinningTrades+results.LosingTrades)
	assert.InDelta(t, 100.0/3.0, results.WinRate, 1e-9)
	assert.Equal(t, 40.0, results.AverageProfit)
	assert.Equal(t, 5.0, results.AverageLoss)
	assert.Equal(t, 4.0, results.ProfitFactor)
	assert.Equal(t, 30.0, results.TotalReturn)
	assert.InDelta(t, 3.0, results.TotalReturnPercent, 1e-12)
	assert.Greater(t, results.SharpeRatio, 0.0)
}

func TestUpdateMetrics_EmptyTrades(t *testing.T) {
	results := &BacktestResult{InitialCapital: 1000, FinalCapital: 1000}
	results.UpdateMetrics()

	assert.Equal(t, 0, results.TotalTrades)
	assert.Equal(t, 0.0, results.WinRate)
	assert.Equal(t, 0.0, results.ProfitFactor)
	assert.Equal(t, 0.0, results.TotalReturnPercent)
}

func TestUpdateMetrics_ZeroInitialCapital(t *testing.T) {
	results := &BacktestResult{FinalCapital: 10}
	results.UpdateMetrics()
	assert.Equal(t, 0.0, results.TotalReturnPercent)
}

func BenchmarkUpdateMetrics(b *testing.B) {
	results := &BacktestResult{
		InitialCapital: 10000,
		FinalCapital:   12000,
		Trades:         generateBenchmarkTrades(1000),
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		results.UpdateMetrics()
	}
}

func generateBenchmarkTrades(count int) []Trade {
	trades := make([]Trade, count)
	for i := range trades {
		pct := float64(i%7) - 3
		trades[i] = Trade{Profit: pct * 10, ProfitPercent: pct}
	}
	return trades
}
