package strategy

import "github.com/ducminhle1904/token-strategy-lab/pkg/types"

// EntryConditions are ANDed together. A nil or false field is not checked.
type EntryConditions struct {
	RSIBelow    *float64 `json:"rsi_below,omitempty"`
	RSIAbove    *float64 `json:"rsi_above,omitempty"`
	MACDBullish bool     `json:"macd_bullish,omitempty"`
	MACDBearish bool     `json:"macd_bearish,omitempty"`
	PriceAbove  *float64 `json:"price_above,omitempty"`
	PriceBelow  *float64 `json:"price_below,omitempty"`
	VolumeAbove *float64 `json:"volume_above,omitempty"`
}

// ExitConditions hold the price targets and the indicator exit rule
type ExitConditions struct {
	TakeProfitPercent *float64 `json:"take_profit_percent,omitempty"`
	StopLossPercent   *float64 `json:"stop_loss_percent,omitempty"`

	RSIAbove    *float64 `json:"rsi_above,omitempty"`
	RSIBelow    *float64 `json:"rsi_below,omitempty"`
	MACDBullish bool     `json:"macd_bullish,omitempty"`
	MACDBearish bool     `json:"macd_bearish,omitempty"`
	PriceAbove  *float64 `json:"price_above,omitempty"`
	PriceBelow  *float64 `json:"price_below,omitempty"`

	MaxHoldDuration *Duration `json:"max_hold_duration,omitempty"`
}

// HasConditions reports whether any entry predicate is configured
func (e EntryConditions) HasConditions() bool {
	return e.RSIBelow != nil || e.RSIAbove != nil ||
		e.MACDBullish || e.MACDBearish ||
		e.PriceAbove != nil || e.PriceBelow != nil ||
		e.VolumeAbove != nil
}

// Met evaluates the entry predicates against the current bar. prev is the
// previous bar and is needed for the MACD crossover checks.
func (e EntryConditions) Met(prev, cur types.PriceBar) bool {
	if !e.HasConditions() || cur.Indicators == nil {
		return false
	}
	ind := cur.Indicators

	if e.RSIBelow != nil && !(ind.RSI < *e.RSIBelow) {
		return false
	}
	if e.RSIAbove != nil && !(ind.RSI > *e.RSIAbove) {
		return false
	}
	if e.MACDBullish && !BullishCrossover(prev, cur) {
		return false
	}
	if e.MACDBearish && !BearishCrossover(prev, cur) {
		return false
	}
	if e.PriceAbove != nil && !(cur.Close > *e.PriceAbove) {
		return false
	}
	if e.PriceBelow != nil && !(cur.Close < *e.PriceBelow) {
		return false
	}
	if e.VolumeAbove != nil && !(cur.Volume > *e.VolumeAbove) {
		return false
	}
	return true
}

// HasIndicatorRule reports whether any indicator exit predicate is configured
func (x ExitConditions) HasIndicatorRule() bool {
	return x.RSIAbove != nil || x.RSIBelow != nil ||
		x.MACDBullish || x.MACDBearish ||
		x.PriceAbove != nil || x.PriceBelow != nil
}

// IndicatorRuleMet is true when every configured indicator exit predicate
// holds. With none configured it is never met.
func (x ExitConditions) IndicatorRuleMet(prev, cur types.PriceBar) bool {
	if !x.HasIndicatorRule() || cur.Indicators == nil {
		return false
	}
	ind := cur.Indicators

	if x.RSIAbove != nil && !(ind.RSI > *x.RSIAbove) {
		return false
	}
	if x.RSIBelow != nil && !(ind.RSI < *x.RSIBelow) {
		return false
	}
	if x.MACDBullish && !BullishCrossover(prev, cur) {
		return false
	}
	if x.MACDBearish && !BearishCrossover(prev, cur) {
		return false
	}
	if x.PriceAbove != nil && !(cur.Close > *x.PriceAbove) {
		return false
	}
	if x.PriceBelow != nil && !(cur.Close < *x.PriceBelow) {
		return false
	}
	return true
}

// BullishCrossover is true when the MACD line crosses above the signal line
// between prev and cur.
func BullishCrossover(prev, cur types.PriceBar) bool {
	if prev.Indicators == nil || cur.Indicators == nil {
		return false
	}
	p, c := prev.Indicators.MACD, cur.Indicators.MACD
	return p.MACD <= p.Signal && c.MACD > c.Signal
}

// BearishCrossover is true when the MACD line crosses below the signal line
func BearishCrossover(prev, cur types.PriceBar) bool {
	if prev.Indicators == nil || cur.Indicators == nil {
		return false
	}
	p, c := prev.Indicators.MACD, cur.Indicators.MACD
	return p.MACD >= p.Signal && c.MACD < c.Signal
}

func (e EntryConditions) clone() EntryConditions {
	out := e
	out.RSIBelow = cloneFloat(e.RSIBelow)
	out.RSIAbove = cloneFloat(e.RSIAbove)
	out.PriceAbove = cloneFloat(e.PriceAbove)
	out.PriceBelow = cloneFloat(e.PriceBelow)
	out.VolumeAbove = cloneFloat(e.VolumeAbove)
	return out
}

func (x ExitConditions) clone() ExitConditions {
	out := x
	out.TakeProfitPercent = cloneFloat(x.TakeProfitPercent)
	out.StopLossPercent = cloneFloat(x.StopLossPercent)
	out.RSIAbove = cloneFloat(x.RSIAbove)
	out.RSIBelow = cloneFloat(x.RSIBelow)
	out.PriceAbove = cloneFloat(x.PriceAbove)
	out.PriceBelow = cloneFloat(x.PriceBelow)
	if x.MaxHoldDuration != nil {
		d := *x.MaxHoldDuration
		out.MaxHoldDuration = &d
	}
	return out
}
