package indicators

import (
	"math"

	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

const (
	DefaultBollingerPeriod = 20
	DefaultBollingerStdDev = 2.0

	// fallbackBandWidth is the fraction of price used while the window is short
	fallbackBandWidth = 0.10
)

// BollingerBands represents the Bollinger Bands indicator
type BollingerBands struct {
	period         int
	stdDevMultiple float64
}

// NewBollingerBands creates a new BollingerBands instance with the given period and standard deviation multiplier
func NewBollingerBands(period int, stdDev float64) *BollingerBands {
	if period <= 0 {
		period = DefaultBollingerPeriod
	}
	return &BollingerBands{
		period:         period,
		stdDevMultiple: stdDev,
	}
}

// Calculate computes the upper, middle and lower bands over the trailing window.
// The deviation is the population standard deviation of that window.
func (bb *BollingerBands) Calculate(prices []float64) types.BollingerValue {
	if len(prices) == 0 {
		return types.BollingerValue{}
	}

	current := prices[len(prices)-1]
	if len(prices) < bb.period {
		return types.BollingerValue{
			Upper:  current * (1 + fallbackBandWidth),
			Middle: current,
			Lower:  current * (1 - fallbackBandWidth),
		}
	}

	recent := prices[len(prices)-bb.period:]
	middle := average(recent)
	stdDev := populationStdDev(recent, middle)

	return types.BollingerValue{
		Upper:  middle + bb.stdDevMultiple*stdDev,
		Middle: middle,
		Lower:  middle - bb.stdDevMultiple*stdDev,
	}
}

// PercentB returns where price sits inside the bands, 50 when they collapse
func PercentB(price float64, bands types.BollingerValue) float64 {
	if bands.Upper == bands.Lower {
		return 50
	}
	return (price - bands.Lower) / (bands.Upper - bands.Lower) * 100
}

// CalculateBollingerBands is a shortcut for NewBollingerBands(period, mult).Calculate(prices)
func CalculateBollingerBands(prices []float64, period int, mult float64) types.BollingerValue {
	return NewBollingerBands(period, mult).Calculate(prices)
}

func populationStdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(values)))
}
