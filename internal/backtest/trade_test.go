package backtest

import (
	"testing"
	"time"

	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTrade(tradeType TradeType) Trade {
	return Trade{
		ID:         "t-1",
		Type:       tradeType,
		Status:     TradeOpen,
		EntryTime:  time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EntryPrice: 100,
		Amount:     2,
		Notional:   200,
	}
}

func exitBar(price float64) types.PriceBar {
	return types.PriceBar{OHLCV: types.OHLCV{
		Close:     price,
		Timestamp: time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC),
	}}
}

func TestApplyExit_Long(t *testing.T) {
	trade := openTrade(TradeLong)
	closed := ApplyExit(trade, exitBar(110), ReasonTakeProfit, TradeClosed)

	assert.Equal(t, TradeClosed, closed.Status)
	assert.Equal(t, 110.0, closed.ExitPrice)
	assert.Equal(t, 20.0, closed.Profit)
	assert.InDelta(t, 10.0, closed.ProfitPercent, 1e-12)
	assert.Equal(t, ReasonTakeProfit, closed.Reason)
	assert.Equal(t, exitBar(110).Timestamp, closed.ExitTime)

	// the input record is not touched
	assert.True(t, trade.IsOpen())
	assert.True(t, trade.ExitTime.IsZero())
}

func TestApplyExit_Short(t *testing.T) {
	closed := ApplyExit(openTrade(TradeShort), exitBar(90), ReasonExitConditions, TradeClosed)
	assert.Equal(t, 20.0, closed.Profit)
	assert.InDelta(t, 10.0, closed.ProfitPercent, 1e-12)

	stopped := ApplyExit(openTrade(TradeShort), exitBar(105), ReasonStopLoss, TradeStopped)
	assert.Equal(t, TradeStopped, stopped.Status)
	assert.Equal(t, -10.0, stopped.Profit)
}

func TestApplyExit_AlreadyClosed(t *testing.T) {
	closed := ApplyExit(openTrade(TradeLong), exitBar(110), ReasonTakeProfit, TradeClosed)
	again := ApplyExit(closed, exitBar(50), ReasonStopLoss, TradeStopped)
	assert.Equal(t, closed, again)
}

func TestApplyExit_OpenStatusBecomesClosed(t *testing.T) {
	closed := ApplyExit(openTrade(TradeLong), exitBar(100), ReasonEndOfBacktest, TradeOpen)
	assert.Equal(t, TradeClosed, closed.Status)
}

func TestLedger_CreditTracksDrawdown(t *testing.T) {
	l := NewLedger(1000)

	l.Open("a", TradeLong, exitBar(100), 1, 500)
	assert.Equal(t, 500.0, l.Capital())
	assert.Equal(t, 1, l.OpenCount())

	// win: capital 1100, new peak
	closed := l.CloseWhere(exitBar(120), 2, func(Trade) (string, TradeStatus, bool) {
		return ReasonTakeProfit, TradeClosed, true
	})
	require.Len(t, closed, 1)
	assert.InDelta(t, 1100.0, l.Capital(), 1e-9)
	assert.Equal(t, 0.0, l.MaxDrawdown())

	// loss of 110 from the 1100 peak
	l.Open("b", TradeLong, exitBar(100), 3, 550)
	l.CloseAll(exitBar(80), ReasonEndOfBacktest)
	assert.InDelta(t, 990.0, l.Capital(), 1e-9)
	assert.InDelta(t, 110.0, l.MaxDrawdown(), 1e-9)
	assert.InDelta(t, 10.0, l.MaxDrawdownPercent(), 1e-9)
	assert.Len(t, l.ClosedTrades(), 2)
}

func TestLedger_SkipsTradesOpenedThisBar(t *testing.T) {
	l := NewLedger(1000)
	l.Open("a", TradeLong, exitBar(100), 5, 100)

	calls := 0
	closed := l.CloseWhere(exitBar(200), 5, func(Trade) (string, TradeStatus, bool) {
		calls++
		return ReasonTakeProfit, TradeClosed, true
	})
	assert.Empty(t, closed)
	assert.Equal(t, 0, calls)
	assert.Equal(t, 1, l.OpenCount())
}

func TestLedger_Equity(t *testing.T) {
	l := NewLedger(1000)
	l.Open("a", TradeLong, exitBar(100), 1, 500)
	assert.InDelta(t, 1100.0, l.Equity(120), 1e-9)

	l.Open("b", TradeShort, exitBar(100), 1, 250)
	assert.InDelta(t, 1050.0, l.Equity(120), 1e-9)
}
