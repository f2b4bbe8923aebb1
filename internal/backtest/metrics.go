package backtest

import "math"

// CalculateSharpeRatio is the mean per-trade percentage return divided by the
// population standard deviation of those returns. It is not annualized and
// is 0 only when the deviation is exactly 0.
func (b *BacktestResult) CalculateSharpeRatio() float64 {
	if len(b.Trades) == 0 {
		return 0
	}

	avgReturn := 0.0
	for _, trade := range b.Trades {
		avgReturn += trade.ProfitPercent
	}
	avgReturn /= float64(len(b.Trades))

	variance := 0.0
	for _, trade := range b.Trades {
		variance += math.Pow(trade.ProfitPercent-avgReturn, 2)
	}
	variance /= float64(len(b.Trades))
	stdDev := math.Sqrt(variance)

	if stdDev == 0 {
		return 0
	}

	return avgReturn / stdDev
}

// CalculateProfitFactor divides gross profit by gross loss. It is +Inf when
// there are profits but no losses and 0 when there is neither.
func (b *BacktestResult) CalculateProfitFactor() float64 {
	totalProfit := 0.0
	totalLoss := 0.0
	for _, trade := range b.Trades {
		if trade.Profit > 0 {
			totalProfit += trade.Profit
		} else {
			totalLoss += math.Abs(trade.Profit)
		}
	}

	if totalLoss == 0 {
		if totalProfit > 0 {
			return math.Inf(1)
		}
		return 0
	}

	return totalProfit / totalLoss
}

// CalculateWinRate calculates the win rate percentage
func (b *BacktestResult) CalculateWinRate() float64 {
	if len(b.Trades) == 0 {
		return 0
	}
	wins := 0
	for _, trade := range b.Trades {
		if trade.Profit > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(b.Trades)) * 100
}

// UpdateMetrics derives every statistic from the closed trades and the
// capital fields. Drawdown is tracked by the ledger and left as is.
func (b *BacktestResult) UpdateMetrics() {
	b.TotalTrades = len(b.Trades)
	b.WinningTrades = 0
	b.LosingTrades = 0

	grossProfit, grossLoss := 0.0, 0.0
	for _, trade := range b.Trades {
		if trade.Profit > 0 {
			b.WinningTrades++
			grossProfit += trade.Profit
		} else {
			b.LosingTrades++
			grossLoss += math.Abs(trade.Profit)
		}
	}

	b.AverageProfit = 0
	if b.WinningTrades > 0 {
		b.AverageProfit = grossProfit / float64(b.WinningTrades)
	}
	b.AverageLoss = 0
	if b.LosingTrades > 0 {
		b.AverageLoss = grossLoss / float64(b.LosingTrades)
	}

	b.TotalReturn = b.FinalCapital - b.InitialCapital
	b.TotalReturnPercent = 0
	if b.InitialCapital != 0 {
		b.TotalReturnPercent = b.TotalReturn / b.InitialCapital * 100
	}

	b.WinRate = b.CalculateWinRate()
	b.ProfitFactor = b.CalculateProfitFactor()
	b.SharpeRatio = b.CalculateSharpeRatio()
}
