package indicators

import "math"

const (
	DefaultRSIPeriod = 14

	// NeutralRSI is reported while there are fewer than period+1 prices
	NeutralRSI = 50.0
)

// CalculateRSI computes the Relative Strength Index using Wilder's smoothing.
// The averages are seeded with the mean gain/loss of the first period deltas
// and then smoothed as avg = (avg*(period-1) + new) / period.
func CalculateRSI(prices []float64, period int) float64 {
	if period <= 0 {
		period = DefaultRSIPeriod
	}
	if len(prices) < period+1 {
		return NeutralRSI
	}

	avgGain, avgLoss := 0.0, 0.0
	for i := 1; i <= period; i++ {
		gain, loss := splitChange(prices[i] - prices[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(prices); i++ {
		gain, loss := splitChange(prices[i] - prices[i-1])
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	return rsiFromAverages(avgGain, avgLoss)
}

// RSI is the rolling form of CalculateRSI. Each Update returns the value
// CalculateRSI would return for every price seen so far.
type RSI struct {
	period    int
	count     int
	lastPrice float64
	avgGain   float64
	avgLoss   float64
	lastValue float64
}

// NewRSI creates a new RSI instance with the given period
func NewRSI(period int) *RSI {
	if period <= 0 {
		period = DefaultRSIPeriod
	}
	return &RSI{
		period:    period,
		lastValue: NeutralRSI,
	}
}

// Update consumes the next price and returns the current RSI
func (r *RSI) Update(price float64) float64 {
	r.count++
	if r.count == 1 {
		r.lastPrice = price
		return r.lastValue
	}

	gain, loss := splitChange(price - r.lastPrice)
	r.lastPrice = price

	deltas := r.count - 1
	switch {
	case deltas < r.period:
		r.avgGain += gain
		r.avgLoss += loss
		return r.lastValue
	case deltas == r.period:
		r.avgGain = (r.avgGain + gain) / float64(r.period)
		r.avgLoss = (r.avgLoss + loss) / float64(r.period)
	default:
		r.avgGain = (r.avgGain*float64(r.period-1) + gain) / float64(r.period)
		r.avgLoss = (r.avgLoss*float64(r.period-1) + loss) / float64(r.period)
	}

	r.lastValue = rsiFromAverages(r.avgGain, r.avgLoss)
	return r.lastValue
}

// Value returns the last computed RSI
func (r *RSI) Value() float64 {
	return r.lastValue
}

// GetRequiredPeriods returns the minimum number of prices before the value leaves neutral
func (r *RSI) GetRequiredPeriods() int {
	return r.period + 1
}

// ResetState clears the smoothing state
func (r *RSI) ResetState() {
	*r = RSI{period: r.period, lastValue: NeutralRSI}
}

// RSISeries returns the RSI of every prefix of prices
func RSISeries(prices []float64, period int) []float64 {
	rsi := NewRSI(period)
	out := make([]float64, len(prices))
	for i, p := range prices {
		out[i] = rsi.Update(p)
	}
	return out
}

func splitChange(change float64) (gain, loss float64) {
	if change > 0 {
		return change, 0
	}
	return 0, math.Abs(change)
}

func rsiFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	rsi := 100 - (100 / (1 + rs))
	return math.Max(0, math.Min(100, rsi))
}
