package indicators

import (
	"math"

	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

// SignalAction is the recommendation produced by GenerateSignals
type SignalAction string

const (
	ActionBuy  SignalAction = "buy"
	ActionSell SignalAction = "sell"
	ActionHold SignalAction = "hold"
)

// Signal carries the additive scores behind a recommendation
type Signal struct {
	Action     SignalAction `json:"action"`
	BuyScore   float64      `json:"buy_score"`
	SellScore  float64      `json:"sell_score"`
	Confidence float64      `json:"confidence"`
	Reasons    []string     `json:"reasons,omitempty"`
}

// SignalWeights holds the score each condition adds and the thresholds
// the totals must reach.
type SignalWeights struct {
	RSIOversold   float64 `json:"rsi_oversold"`
	RSIOverbought float64 `json:"rsi_overbought"`
	RSIExtreme    float64 `json:"rsi_extreme"`

	MACDCross        float64 `json:"macd_cross"`
	BollingerTouch   float64 `json:"bollinger_touch"`
	EMAAlignment     float64 `json:"ema_alignment"`
	StrongTrend      float64 `json:"strong_trend"`
	StrongTrendLevel float64 `json:"strong_trend_level"`

	BuyThreshold  float64 `json:"buy_threshold"`
	SellThreshold float64 `json:"sell_threshold"`
	MaxConfidence float64 `json:"max_confidence"`
}

// DefaultSignalWeights returns the stock scoring table
func DefaultSignalWeights() SignalWeights {
	return SignalWeights{
		RSIOversold:      30,
		RSIOverbought:    70,
		RSIExtreme:       3,
		MACDCross:        2,
		BollingerTouch:   2,
		EMAAlignment:     1,
		StrongTrend:      1,
		StrongTrendLevel: 70,
		BuyThreshold:     3,
		SellThreshold:    2,
		MaxConfidence:    100,
	}
}

// GenerateSignals scores the snapshot for buy and sell pressure.
// Buy requires buy > sell and buy >= BuyThreshold, sell the mirror with
// SellThreshold; anything else is a hold.
func GenerateSignals(price float64, ind types.TechnicalIndicators, w SignalWeights) Signal {
	var s Signal

	buy := func(weight float64, reason string) {
		s.BuyScore += weight
		s.Reasons = append(s.Reasons, reason)
	}
	sell := func(weight float64, reason string) {
		s.SellScore += weight
		s.Reasons = append(s.Reasons, reason)
	}

	switch {
	case ind.RSI < w.RSIOversold:
		buy(w.RSIExtreme, "RSI oversold")
	case ind.RSI > w.RSIOverbought:
		sell(w.RSIExtreme, "RSI overbought")
	}

	switch {
	case ind.MACD.MACD > ind.MACD.Signal && ind.MACD.Histogram > 0:
		buy(w.MACDCross, "MACD above signal")
	case ind.MACD.MACD < ind.MACD.Signal && ind.MACD.Histogram < 0:
		sell(w.MACDCross, "MACD below signal")
	}

	switch {
	case price <= ind.BollingerBands.Lower:
		buy(w.BollingerTouch, "price at lower band")
	case price >= ind.BollingerBands.Upper:
		sell(w.BollingerTouch, "price at upper band")
	}

	ema := ind.EMA
	switch {
	case ema.EMA9 > ema.EMA21 && ema.EMA21 > ema.EMA50:
		buy(w.EMAAlignment, "EMAs aligned up")
	case ema.EMA9 < ema.EMA21 && ema.EMA21 < ema.EMA50:
		sell(w.EMAAlignment, "EMAs aligned down")
	}

	if ind.Strength > w.StrongTrendLevel {
		switch ind.Trend {
		case types.TrendBullish:
			buy(w.StrongTrend, "strong bullish trend")
		case types.TrendBearish:
			sell(w.StrongTrend, "strong bearish trend")
		}
	}

	s.Action = ActionHold
	switch {
	case s.BuyScore > s.SellScore && s.BuyScore >= w.BuyThreshold:
		s.Action = ActionBuy
	case s.SellScore > s.BuyScore && s.SellScore >= w.SellThreshold:
		s.Action = ActionSell
	}

	s.Confidence = math.Min(s.BuyScore+s.SellScore, w.MaxConfidence)
	return s
}
