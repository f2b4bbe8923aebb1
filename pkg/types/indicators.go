package types

// Trend is the direction reported by the trend classifier
type Trend string

const (
	TrendBullish Trend = "bullish"
	TrendBearish Trend = "bearish"
	TrendNeutral Trend = "neutral"
)

type MACDValue struct {
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

type BollingerValue struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

type EMASet struct {
	EMA9   float64 `json:"ema9"`
	EMA21  float64 `json:"ema21"`
	EMA50  float64 `json:"ema50"`
	EMA200 float64 `json:"ema200"`
}

type SMASet struct {
	SMA20  float64 `json:"sma20"`
	SMA50  float64 `json:"sma50"`
	SMA200 float64 `json:"sma200"`
}

type VolumeStats struct {
	VolumeMA    float64 `json:"volume_ma"`
	VolumeRatio float64 `json:"volume_ratio"`
}

// TechnicalIndicators is the per-bar indicator snapshot
type TechnicalIndicators struct {
	RSI            float64        `json:"rsi"`
	MACD           MACDValue      `json:"macd"`
	BollingerBands BollingerValue `json:"bollinger_bands"`
	EMA            EMASet         `json:"ema"`
	SMA            SMASet         `json:"sma"`
	Volume         VolumeStats    `json:"volume"`
	Support        float64        `json:"support"`
	Resistance     float64        `json:"resistance"`
	Trend          Trend          `json:"trend"`
	Strength       float64        `json:"strength"`
}
