package indicators

// CalculateEMA computes the Exponential Moving Average of prices. The
// average is seeded with the SMA of the first period values and then
// smoothed with alpha = 2/(period+1). With fewer than period prices the
// plain average of everything available is returned (0 for no prices).
func CalculateEMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if period <= 0 {
		period = 1
	}
	if len(prices) < period {
		return average(prices)
	}

	alpha := emaAlpha(period)
	ema := average(prices[:period])
	for _, price := range prices[period:] {
		ema = emaStep(ema, price, alpha)
	}
	return ema
}

// EMA represents the Exponential Moving Average as a rolling recurrence.
// After n updates Value equals CalculateEMA over those n prices.
type EMA struct {
	period    int
	alpha     float64
	count     int
	sum       float64
	lastValue float64
}

// NewEMA creates a new EMA indicator
func NewEMA(period int) *EMA {
	if period <= 0 {
		period = 1
	}
	return &EMA{
		period: period,
		alpha:  emaAlpha(period),
	}
}

// Update consumes the next price and returns the current EMA
func (e *EMA) Update(price float64) float64 {
	e.count++
	if e.count <= e.period {
		e.sum += price
		e.lastValue = e.sum / float64(e.count)
		return e.lastValue
	}

	e.lastValue = emaStep(e.lastValue, price, e.alpha)
	return e.lastValue
}

// Value returns the last computed EMA
func (e *EMA) Value() float64 {
	return e.lastValue
}

// IsInitialized reports whether the seed window has been filled
func (e *EMA) IsInitialized() bool {
	return e.count >= e.period
}

// ResetState clears the recurrence
func (e *EMA) ResetState() {
	*e = EMA{period: e.period, alpha: e.alpha}
}

// EMASeries returns the EMA of every prefix of prices
func EMASeries(prices []float64, period int) []float64 {
	ema := NewEMA(period)
	out := make([]float64, len(prices))
	for i, p := range prices {
		out[i] = ema.Update(p)
	}
	return out
}

func emaAlpha(period int) float64 {
	return 2.0 / float64(period+1)
}

func emaStep(prev, price, alpha float64) float64 {
	return price*alpha + prev*(1-alpha)
}

// average sums left to right; the rolling EMA seed depends on this order.
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
