package backtest

import (
	"time"

	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

type TradeStatus string

const (
	TradeOpen    TradeStatus = "open"
	TradeClosed  TradeStatus = "closed"
	TradeStopped TradeStatus = "stopped"
)

type TradeType string

const (
	TradeLong  TradeType = "long"
	TradeShort TradeType = "short"
)

// Exit reasons recorded on closed trades
const (
	ReasonTakeProfit     = "Take profit"
	ReasonStopLoss       = "Stop loss"
	ReasonExitConditions = "Exit conditions met"
	ReasonMaxHold        = "Max hold duration exceeded"
	ReasonEndOfBacktest  = "End of backtest"
)

// Trade is one position from entry to exit. Open trades have a zero ExitTime.
type Trade struct {
	ID            string      `json:"id"`
	Type          TradeType   `json:"type"`
	Status        TradeStatus `json:"status"`
	EntryTime     time.Time   `json:"entry_time"`
	EntryPrice    float64     `json:"entry_price"`
	Amount        float64     `json:"amount"`
	Notional      float64     `json:"notional"`
	ExitTime      time.Time   `json:"exit_time,omitempty"`
	ExitPrice     float64     `json:"exit_price,omitempty"`
	Profit        float64     `json:"profit"`
	ProfitPercent float64     `json:"profit_percent"`
	Reason        string      `json:"reason,omitempty"`
}

// IsOpen reports whether the trade is still waiting for an exit
func (t Trade) IsOpen() bool {
	return t.Status == TradeOpen
}

// ProfitAt is the profit the trade would realize if closed at price
func (t Trade) ProfitAt(price float64) float64 {
	if t.Type == TradeShort {
		return t.Amount * (t.EntryPrice - price)
	}
	return t.Amount * (price - t.EntryPrice)
}

// ReturnPercentAt is the price move in the trade's favour, in percent of entry
func (t Trade) ReturnPercentAt(price float64) float64 {
	if t.EntryPrice == 0 {
		return 0
	}
	if t.Type == TradeShort {
		return (t.EntryPrice - price) / t.EntryPrice * 100
	}
	return (price - t.EntryPrice) / t.EntryPrice * 100
}

// ApplyExit closes trade at the bar's close and returns the closed record.
// The input is left untouched; a trade that is already closed is returned as is.
func ApplyExit(trade Trade, bar types.PriceBar, reason string, status TradeStatus) Trade {
	if !trade.IsOpen() {
		return trade
	}
	if status == TradeOpen || status == "" {
		status = TradeClosed
	}

	closed := trade
	closed.ExitTime = bar.Timestamp
	closed.ExitPrice = bar.Close
	closed.Profit = trade.ProfitAt(bar.Close)
	closed.ProfitPercent = trade.ReturnPercentAt(bar.Close)
	closed.Status = status
	closed.Reason = reason
	return closed
}
