package indicators

import (
	"testing"

	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
	"github.com/stretchr/testify/assert"
)

// replayMACD rebuilds the MACD history by recomputing both EMAs for every prefix
func replayMACD(prices []float64) types.MACDValue {
	n := len(prices)
	macdAt := func(k int) float64 {
		return CalculateEMA(prices[:k], DefaultMACDFast) - CalculateEMA(prices[:k], DefaultMACDSlow)
	}

	var history []float64
	for k := min(DefaultMACDSlow, n); k <= n; k++ {
		history = append(history, macdAt(k))
	}

	line := macdAt(n)
	signal := CalculateEMA(history, DefaultMACDSignal)
	return types.MACDValue{MACD: line, Signal: signal, Histogram: line - signal}
}

func TestMACDSeries_MatchesReplay(t *testing.T) {
	for seed := int64(1); seed <= 3; seed++ {
		prices := generatePrices(120, seed)
		series := MACDSeries(prices)
		for i := range prices {
			assert.Equal(t, replayMACD(prices[:i+1]), series[i], "prefix %d", i+1)
		}
	}
}

func TestCalculateMACD_HistogramIdentity(t *testing.T) {
	for seed := int64(1); seed <= 10; seed++ {
		for _, n := range []int{0, 1, 10, 25, 26, 27, 80} {
			v := CalculateMACD(generatePrices(n, seed))
			assert.Equal(t, v.MACD-v.Signal, v.Histogram)
		}
	}
}

func TestCalculateMACD_ShortSeries(t *testing.T) {
	v := CalculateMACD(rising(10))
	assert.Equal(t, v.MACD, v.Signal)
	assert.Equal(t, 0.0, v.Histogram)
}

func TestCalculateMACD_UptrendIsPositive(t *testing.T) {
	v := CalculateMACD(rising(60))
	assert.Greater(t, v.MACD, 0.0)
}

func TestMACD_ResetState(t *testing.T) {
	m := NewMACD(0, 0, 0)
	for _, p := range rising(40) {
		m.Update(p)
	}
	m.ResetState()
	assert.Equal(t, types.MACDValue{}, m.Value())

	for _, p := range rising(5) {
		m.Update(p)
	}
	assert.Equal(t, CalculateMACD(rising(5)), m.Value())
}
