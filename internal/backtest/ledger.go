package backtest

import (
	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

type position struct {
	trade    Trade
	openedAt int
}

// Ledger owns the trades and the cash of a single run. Capital is debited by
// the notional on entry and credited by notional plus profit on exit; peak
// capital and drawdown are re-evaluated on every credit.
type Ledger struct {
	initialCapital     float64
	capital            float64
	peakCapital        float64
	maxDrawdown        float64
	maxDrawdownPercent float64

	open   []position
	closed []Trade
}

// NewLedger creates an empty ledger holding initialCapital in cash
func NewLedger(initialCapital float64) *Ledger {
	return &Ledger{
		initialCapital: initialCapital,
		capital:        initialCapital,
		peakCapital:    initialCapital,
	}
}

// Open records a new trade entered at the bar's close and debits its notional
func (l *Ledger) Open(id string, tradeType TradeType, bar types.PriceBar, barIndex int, notional float64) Trade {
	trade := Trade{
		ID:         id,
		Type:       tradeType,
		Status:     TradeOpen,
		EntryTime:  bar.Timestamp,
		EntryPrice: bar.Close,
		Amount:     notional / bar.Close,
		Notional:   notional,
	}
	l.capital -= notional
	l.open = append(l.open, position{trade: trade, openedAt: barIndex})
	return trade
}

// CloseWhere closes every open trade opened before barIndex for which decide
// returns a reason. Trades are visited in entry order.
func (l *Ledger) CloseWhere(bar types.PriceBar, barIndex int, decide func(Trade) (string, TradeStatus, bool)) []Trade {
	var closedNow []Trade
	remaining := l.open[:0]
	for _, p := range l.open {
		if p.openedAt >= barIndex {
			remaining = append(remaining, p)
			continue
		}
		reason, status, ok := decide(p.trade)
		if !ok {
			remaining = append(remaining, p)
			continue
		}
		closedNow = append(closedNow, l.settle(ApplyExit(p.trade, bar, reason, status)))
	}
	l.open = remaining
	return closedNow
}

// CloseAll force-closes every open trade at the bar's close
func (l *Ledger) CloseAll(bar types.PriceBar, reason string) []Trade {
	var closedNow []Trade
	for _, p := range l.open {
		closedNow = append(closedNow, l.settle(ApplyExit(p.trade, bar, reason, TradeClosed)))
	}
	l.open = nil
	return closedNow
}

func (l *Ledger) settle(trade Trade) Trade {
	l.closed = append(l.closed, trade)
	l.credit(trade.Notional + trade.Profit)
	return trade
}

func (l *Ledger) credit(amount float64) {
	l.capital += amount
	if l.capital > l.peakCapital {
		l.peakCapital = l.capital
	}
	drawdown := l.peakCapital - l.capital
	if drawdown > l.maxDrawdown {
		l.maxDrawdown = drawdown
		if l.peakCapital > 0 {
			l.maxDrawdownPercent = drawdown / l.peakCapital * 100
		}
	}
}

// Equity is cash plus every open trade marked to price
func (l *Ledger) Equity(price float64) float64 {
	equity := l.capital
	for _, p := range l.open {
		equity += p.trade.Notional + p.trade.ProfitAt(price)
	}
	return equity
}

func (l *Ledger) Capital() float64            { return l.capital }
func (l *Ledger) OpenCount() int              { return len(l.open) }
func (l *Ledger) MaxDrawdown() float64        { return l.maxDrawdown }
func (l *Ledger) MaxDrawdownPercent() float64 { return l.maxDrawdownPercent }

// ClosedTrades returns a copy of the closed trades in close order
func (l *Ledger) ClosedTrades() []Trade {
	out := make([]Trade, len(l.closed))
	copy(out, l.closed)
	return out
}
