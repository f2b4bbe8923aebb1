package backtest

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ducminhle1904/token-strategy-lab/internal/indicators"
	"github.com/ducminhle1904/token-strategy-lab/internal/monitoring"
	"github.com/ducminhle1904/token-strategy-lab/internal/strategy"
	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

// Engine replays a strategy over a bar series. It holds no per-run state, so
// one Engine can serve concurrent runs.
type Engine struct {
	initialCapital float64
	signalWeights  indicators.SignalWeights
	logger         *zap.Logger
}

// BacktestResult is the outcome of one run
type BacktestResult struct {
	Strategy           strategy.Strategy `json:"strategy"`
	StartDate          time.Time         `json:"start_date"`
	EndDate            time.Time         `json:"end_date"`
	InitialCapital     float64           `json:"initial_capital"`
	FinalCapital       float64           `json:"final_capital"`
	TotalReturn        float64           `json:"total_return"`
	TotalReturnPercent float64           `json:"total_return_percent"`
	TotalTrades        int               `json:"total_trades"`
	WinningTrades      int               `json:"winning_trades"`
	LosingTrades       int               `json:"losing_trades"`
	WinRate            float64           `json:"win_rate"`
	AverageProfit      float64           `json:"average_profit"`
	AverageLoss        float64           `json:"average_loss"`
	ProfitFactor       float64           `json:"profit_factor"`
	MaxDrawdown        float64           `json:"max_drawdown"`
	MaxDrawdownPercent float64           `json:"max_drawdown_percent"`
	SharpeRatio        float64           `json:"sharpe_ratio"`
	Trades             []Trade           `json:"trades"`
	EquityCurve        []EquityPoint     `json:"equity_curve"`
	FinalMarket        *MarketState      `json:"final_market,omitempty"`
}

// MarketState is the indicator reading of the last bar and the signal it
// scores to
type MarketState struct {
	Timestamp time.Time         `json:"timestamp"`
	Close     float64           `json:"close"`
	RSI       float64           `json:"rsi"`
	PercentB  float64           `json:"percent_b"`
	Trend     types.Trend       `json:"trend"`
	Strength  float64           `json:"strength"`
	Signal    indicators.Signal `json:"signal"`
}

// EquityPoint is cash plus open positions marked at the bar's close
type EquityPoint struct {
	Timestamp     time.Time `json:"timestamp"`
	Equity        float64   `json:"equity"`
	Cash          float64   `json:"cash"`
	OpenPositions int       `json:"open_positions"`
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for trade and run events
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithSignalWeights replaces the scoring table used for the final market signal
func WithSignalWeights(w indicators.SignalWeights) Option {
	return func(e *Engine) { e.signalWeights = w }
}

// NewEngine creates an engine starting every run with initialCapital in cash
func NewEngine(initialCapital float64, opts ...Option) *Engine {
	e := &Engine{
		initialCapital: initialCapital,
		signalWeights:  indicators.DefaultSignalWeights(),
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InitialCapital returns the cash every run starts with
func (e *Engine) InitialCapital() float64 {
	return e.initialCapital
}

// Run enriches the candles and runs the strategy over them
func (e *Engine) Run(data []types.OHLCV, strat strategy.Strategy) (*BacktestResult, error) {
	return e.RunEnriched(indicators.Enrich(data), strat)
}

// RunEnriched runs the strategy over bars that already carry indicators.
// The bars are only read.
func (e *Engine) RunEnriched(bars []types.PriceBar, strat strategy.Strategy) (*BacktestResult, error) {
	started := time.Now()

	if err := strat.Validate(); err != nil {
		monitoring.RecordBacktest(false, time.Since(started))
		return nil, err
	}

	result := &BacktestResult{
		Strategy:       strat.Clone(),
		InitialCapital: e.initialCapital,
		FinalCapital:   e.initialCapital,
		Trades:         []Trade{},
		EquityCurve:    []EquityPoint{},
	}
	if len(bars) == 0 {
		monitoring.RecordBacktest(true, time.Since(started))
		return result, nil
	}

	result.StartDate = bars[0].Timestamp
	result.EndDate = bars[len(bars)-1].Timestamp
	result.FinalMarket = marketState(bars[len(bars)-1], e.signalWeights)

	ledger := NewLedger(e.initialCapital)
	tradeType := TradeLong
	if strat.Side() == strategy.DirectionShort {
		tradeType = TradeShort
	}

	seq := 0
	result.EquityCurve = append(result.EquityCurve, e.equityPoint(ledger, bars[0]))

	for i := 1; i < len(bars); i++ {
		prev, bar := bars[i-1], bars[i]

		if ledger.OpenCount() < strat.MaxPositions && bar.Close > 0 && strat.Entry.Met(prev, bar) {
			notional := ledger.Capital() * strat.PositionSizePercent / 100
			if notional > 0 {
				seq++
				trade := ledger.Open(tradeID(strat, seq), tradeType, bar, i, notional)
				e.logger.Debug("Opened trade",
					zap.String("trade_id", trade.ID),
					zap.Time("time", trade.EntryTime),
					zap.Float64("price", trade.EntryPrice),
					zap.Float64("notional", notional))
			}
		}

		closed := ledger.CloseWhere(bar, i, func(t Trade) (string, TradeStatus, bool) {
			return exitDecision(strat.Exit, t, prev, bar)
		})
		e.logClosed(closed)

		result.EquityCurve = append(result.EquityCurve, e.equityPoint(ledger, bar))
	}

	last := bars[len(bars)-1]
	e.logClosed(ledger.CloseAll(last, ReasonEndOfBacktest))
	result.EquityCurve[len(result.EquityCurve)-1] = e.equityPoint(ledger, last)

	result.FinalCapital = ledger.Capital()
	result.Trades = ledger.ClosedTrades()
	result.MaxDrawdown = ledger.MaxDrawdown()
	result.MaxDrawdownPercent = ledger.MaxDrawdownPercent()
	result.UpdateMetrics()

	monitoring.RecordBacktest(true, time.Since(started))
	e.logger.Info("Backtest finished",
		zap.String("strategy", strat.ID),
		zap.Int("bars", len(bars)),
		zap.Int("trades", result.TotalTrades),
		zap.Float64("return_pct", result.TotalReturnPercent),
		zap.Duration("elapsed", time.Since(started)))

	return result, nil
}

// exitDecision applies the exit priority: take profit, stop loss, indicator
// rule, max hold duration. The first match wins.
func exitDecision(exit strategy.ExitConditions, t Trade, prev, bar types.PriceBar) (string, TradeStatus, bool) {
	move := t.ReturnPercentAt(bar.Close)

	if exit.TakeProfitPercent != nil && move >= *exit.TakeProfitPercent {
		return ReasonTakeProfit, TradeClosed, true
	}
	if exit.StopLossPercent != nil && move <= -*exit.StopLossPercent {
		return ReasonStopLoss, TradeStopped, true
	}
	if exit.IndicatorRuleMet(prev, bar) {
		return ReasonExitConditions, TradeClosed, true
	}
	if exit.MaxHoldDuration != nil && bar.Timestamp.Sub(t.EntryTime) > exit.MaxHoldDuration.Duration {
		return ReasonMaxHold, TradeClosed, true
	}
	return "", TradeOpen, false
}

func marketState(bar types.PriceBar, w indicators.SignalWeights) *MarketState {
	if bar.Indicators == nil {
		return nil
	}
	ind := *bar.Indicators
	return &MarketState{
		Timestamp: bar.Timestamp,
		Close:     bar.Close,
		RSI:       ind.RSI,
		PercentB:  indicators.PercentB(bar.Close, ind.BollingerBands),
		Trend:     ind.Trend,
		Strength:  ind.Strength,
		Signal:    indicators.GenerateSignals(bar.Close, ind, w),
	}
}

func (e *Engine) equityPoint(ledger *Ledger, bar types.PriceBar) EquityPoint {
	return EquityPoint{
		Timestamp:     bar.Timestamp,
		Equity:        ledger.Equity(bar.Close),
		Cash:          ledger.Capital(),
		OpenPositions: ledger.OpenCount(),
	}
}

func (e *Engine) logClosed(trades []Trade) {
	for _, t := range trades {
		monitoring.RecordTrade(string(t.Type), string(t.Status), t.ProfitPercent)
		e.logger.Debug("Closed trade",
			zap.String("trade_id", t.ID),
			zap.String("reason", t.Reason),
			zap.Float64("exit_price", t.ExitPrice),
			zap.Float64("profit", t.Profit))
	}
}

func tradeID(strat strategy.Strategy, seq int) string {
	prefix := strat.ID
	if prefix == "" {
		prefix = "trade"
	}
	return fmt.Sprintf("%s-%d", prefix, seq)
}
