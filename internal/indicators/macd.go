package indicators

import "github.com/ducminhle1904/token-strategy-lab/pkg/types"

const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// MACD tracks the Moving Average Convergence Divergence over a growing series.
//
// The signal line is the EMA of the MACD history, where the history holds
// one MACD value per prefix starting at the prefix of length min(slow, n).
// While fewer than slow prices have been seen the history is a single value,
// so the signal equals the MACD line and the histogram is zero.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int

	fastEMA   *EMA
	slowEMA   *EMA
	signalEMA *EMA

	count     int
	lastValue types.MACDValue
}

// NewMACD creates a MACD tracker; non-positive periods fall back to 12/26/9
func NewMACD(fast, slow, signal int) *MACD {
	if fast <= 0 {
		fast = DefaultMACDFast
	}
	if slow <= 0 {
		slow = DefaultMACDSlow
	}
	if signal <= 0 {
		signal = DefaultMACDSignal
	}
	return &MACD{
		fastPeriod:   fast,
		slowPeriod:   slow,
		signalPeriod: signal,
		fastEMA:      NewEMA(fast),
		slowEMA:      NewEMA(slow),
		signalEMA:    NewEMA(signal),
	}
}

// Update consumes the next price and returns MACD, signal and histogram
func (m *MACD) Update(price float64) types.MACDValue {
	fast := m.fastEMA.Update(price)
	slow := m.slowEMA.Update(price)
	line := fast - slow
	m.count++

	if m.count < m.slowPeriod {
		m.lastValue = types.MACDValue{MACD: line, Signal: line}
		return m.lastValue
	}

	signal := m.signalEMA.Update(line)
	m.lastValue = types.MACDValue{
		MACD:      line,
		Signal:    signal,
		Histogram: line - signal,
	}
	return m.lastValue
}

// Value returns the last computed MACD triple
func (m *MACD) Value() types.MACDValue {
	return m.lastValue
}

// ResetState clears every inner EMA
func (m *MACD) ResetState() {
	m.fastEMA.ResetState()
	m.slowEMA.ResetState()
	m.signalEMA.ResetState()
	m.count = 0
	m.lastValue = types.MACDValue{}
}

// CalculateMACD returns the 12/26/9 MACD of the full series
func CalculateMACD(prices []float64) types.MACDValue {
	m := NewMACD(DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
	for _, p := range prices {
		m.Update(p)
	}
	return m.Value()
}

// MACDSeries returns the 12/26/9 MACD of every prefix of prices
func MACDSeries(prices []float64) []types.MACDValue {
	m := NewMACD(DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
	out := make([]types.MACDValue, len(prices))
	for i, p := range prices {
		out[i] = m.Update(p)
	}
	return out
}
