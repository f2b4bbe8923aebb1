package indicators

import "github.com/ducminhle1904/token-strategy-lab/pkg/types"

// Snapshot computes the full indicator set for the window ending at the last
// price. It recomputes everything from scratch; Enricher produces the same
// snapshots for every prefix in a single pass.
func Snapshot(prices, volumes []float64, weights TrendWeights) types.TechnicalIndicators {
	support, resistance := CalculateSupportResistance(prices)
	ind := types.TechnicalIndicators{
		RSI:            CalculateRSI(prices, DefaultRSIPeriod),
		MACD:           CalculateMACD(prices),
		BollingerBands: CalculateBollingerBands(prices, DefaultBollingerPeriod, DefaultBollingerStdDev),
		EMA: types.EMASet{
			EMA9:   CalculateEMA(prices, 9),
			EMA21:  CalculateEMA(prices, 21),
			EMA50:  CalculateEMA(prices, 50),
			EMA200: CalculateEMA(prices, 200),
		},
		SMA:        smaSet(prices),
		Volume:     CalculateVolumeStats(volumes),
		Support:    support,
		Resistance: resistance,
	}
	ind.Trend, ind.Strength = ClassifyTrend(lastOf(prices), ind, weights)
	return ind
}

// Enricher attaches indicator snapshots to a series of bars
type Enricher struct {
	weights TrendWeights
}

// NewEnricher creates an enricher using the given trend vote weights
func NewEnricher(weights TrendWeights) *Enricher {
	return &Enricher{weights: weights}
}

// Enrich runs an Enricher with DefaultTrendWeights
func Enrich(data []types.OHLCV) []types.PriceBar {
	return NewEnricher(DefaultTrendWeights()).Enrich(data)
}

// Enrich returns one PriceBar per input candle. Each snapshot depends only
// on the candles up to and including its own.
func (e *Enricher) Enrich(data []types.OHLCV) []types.PriceBar {
	n := len(data)
	bars := make([]types.PriceBar, n)
	if n == 0 {
		return bars
	}

	closes := types.Closes(data)
	volumes := types.Volumes(data)

	rsi := NewRSI(DefaultRSIPeriod)
	macd := NewMACD(DefaultMACDFast, DefaultMACDSlow, DefaultMACDSignal)
	ema9, ema21, ema50, ema200 := NewEMA(9), NewEMA(21), NewEMA(50), NewEMA(200)
	bands := NewBollingerBands(DefaultBollingerPeriod, DefaultBollingerStdDev)
	levels := NewLevelTracker(n)

	for i, candle := range data {
		price := candle.Close
		window := closes[:i+1]
		levels.Add(price)
		support, resistance := levels.Levels()

		ind := &types.TechnicalIndicators{
			RSI:            rsi.Update(price),
			MACD:           macd.Update(price),
			BollingerBands: bands.Calculate(window),
			EMA: types.EMASet{
				EMA9:   ema9.Update(price),
				EMA21:  ema21.Update(price),
				EMA50:  ema50.Update(price),
				EMA200: ema200.Update(price),
			},
			SMA:        smaSet(window),
			Volume:     CalculateVolumeStats(volumes[:i+1]),
			Support:    support,
			Resistance: resistance,
		}
		ind.Trend, ind.Strength = ClassifyTrend(price, *ind, e.weights)

		bars[i] = types.PriceBar{OHLCV: candle, Indicators: ind}
	}

	return bars
}

func smaSet(prices []float64) types.SMASet {
	return types.SMASet{
		SMA20:  CalculateSMA(prices, 20),
		SMA50:  CalculateSMA(prices, 50),
		SMA200: CalculateSMA(prices, 200),
	}
}
