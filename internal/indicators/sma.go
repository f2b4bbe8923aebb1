package indicators

// CalculateSMA averages the trailing window of period prices. When the
// window is longer than the series, or period is not positive, every price
// is averaged.
func CalculateSMA(prices []float64, period int) float64 {
	if len(prices) == 0 {
		return 0
	}
	if period <= 0 || period > len(prices) {
		return average(prices)
	}
	return average(prices[len(prices)-period:])
}

// SMA represents the Simple Moving Average technical indicator
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator
func NewSMA(period int) *SMA {
	return &SMA{period: period}
}

// Calculate calculates the SMA value
func (s *SMA) Calculate(prices []float64) float64 {
	return CalculateSMA(prices, s.period)
}

// GetRequiredPeriods returns the full window length
func (s *SMA) GetRequiredPeriods() int {
	return s.period
}
