package types

import "time"

type OHLCV struct {
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64
	Timestamp time.Time
}

// PriceBar is one sampled interval with the indicator snapshot computed
// from the price window ending at that bar.
type PriceBar struct {
	OHLCV
	Indicators *TechnicalIndicators
}

// Closes extracts the close prices of a series
func Closes(data []OHLCV) []float64 {
	out := make([]float64, len(data))
	for i, c := range data {
		out[i] = c.Close
	}
	return out
}

// Volumes extracts the volumes of a series
func Volumes(data []OHLCV) []float64 {
	out := make([]float64, len(data))
	for i, c := range data {
		out[i] = c.Volume
	}
	return out
}
