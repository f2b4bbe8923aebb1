package indicators

import (
	"math"

	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

// TrendWeights sets the vote each comparison casts in ClassifyTrend
type TrendWeights struct {
	PriceVsSMA20  float64 `json:"price_vs_sma20"`
	PriceVsSMA50  float64 `json:"price_vs_sma50"`
	PriceVsEMA21  float64 `json:"price_vs_ema21"`
	RSIMidline    float64 `json:"rsi_midline"`
	RSIExtreme    float64 `json:"rsi_extreme"`
	MACDHistogram float64 `json:"macd_histogram"`

	RSIOversold   float64 `json:"rsi_oversold"`
	RSIOverbought float64 `json:"rsi_overbought"`
}

// DefaultTrendWeights gives every comparison a single vote
func DefaultTrendWeights() TrendWeights {
	return TrendWeights{
		PriceVsSMA20:  1,
		PriceVsSMA50:  1,
		PriceVsEMA21:  1,
		RSIMidline:    1,
		RSIExtreme:    1,
		MACDHistogram: 1,
		RSIOversold:   30,
		RSIOverbought: 70,
	}
}

// ClassifyTrend tallies bullish and bearish votes and returns the majority
// direction with its share of all votes as strength (0-100, rounded).
// Equal comparisons cast no vote; a tie or no votes at all is neutral.
func ClassifyTrend(price float64, ind types.TechnicalIndicators, w TrendWeights) (types.Trend, float64) {
	var bull, bear float64

	vote := func(value, reference, weight float64) {
		switch {
		case value > reference:
			bull += weight
		case value < reference:
			bear += weight
		}
	}

	vote(price, ind.SMA.SMA20, w.PriceVsSMA20)
	vote(price, ind.SMA.SMA50, w.PriceVsSMA50)
	vote(price, ind.EMA.EMA21, w.PriceVsEMA21)
	vote(ind.RSI, NeutralRSI, w.RSIMidline)
	if ind.RSI < w.RSIOversold {
		bull += w.RSIExtreme
	} else if ind.RSI > w.RSIOverbought {
		bear += w.RSIExtreme
	}
	vote(ind.MACD.Histogram, 0, w.MACDHistogram)

	total := bull + bear
	if total == 0 {
		return types.TrendNeutral, 0
	}

	strength := math.Round(math.Max(bull, bear) / total * 100)
	switch {
	case bull > bear:
		return types.TrendBullish, strength
	case bear > bull:
		return types.TrendBearish, strength
	default:
		return types.TrendNeutral, strength
	}
}
