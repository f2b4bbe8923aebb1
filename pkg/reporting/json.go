package reporting

import (
	"encoding/json"
	"math"
	"os"
	"time"

	"github.com/ducminhle1904/token-strategy-lab/internal/backtest"
)

// JSONFloat encodes infinities as "Infinity"/"-Infinity" and NaN as null,
// which encoding/json rejects for plain float64
type JSONFloat float64

func (f JSONFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"Infinity"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Infinity"`), nil
	case math.IsNaN(v):
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

func (f *JSONFloat) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"Infinity"`:
		*f = JSONFloat(math.Inf(1))
		return nil
	case `"-Infinity"`:
		*f = JSONFloat(math.Inf(-1))
		return nil
	case "null":
		*f = JSONFloat(math.NaN())
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = JSONFloat(v)
	return nil
}

// resultDocument shadows the result's profit factor so the whole result can
// be encoded
type resultDocument struct {
	*backtest.BacktestResult
	ProfitFactor JSONFloat `json:"profit_factor"`
}

// CandidateSummary is one optimization candidate without its trade list
type CandidateSummary struct {
	Rank               int       `json:"rank"`
	Index              int       `json:"index"`
	StrategyID         string    `json:"strategy_id"`
	RSIThreshold       *float64  `json:"rsi_threshold,omitempty"`
	TakeProfit         *float64  `json:"take_profit,omitempty"`
	StopLoss           *float64  `json:"stop_loss,omitempty"`
	TotalReturnPercent float64   `json:"total_return_percent"`
	TotalTrades        int       `json:"total_trades"`
	WinRate            float64   `json:"win_rate"`
	ProfitFactor       JSONFloat `json:"profit_factor"`
	MaxDrawdownPercent float64   `json:"max_drawdown_percent"`
	SharpeRatio        float64   `json:"sharpe_ratio"`
}

// OptimizationDocument is the JSON form of an optimization run
type OptimizationDocument struct {
	Best       *CandidateSummary  `json:"best,omitempty"`
	Candidates []CandidateSummary `json:"candidates"`
	Evaluated  int                `json:"evaluated"`
	Failed     int                `json:"failed"`
	Duration   string             `json:"duration"`
}

// MarshalResult encodes a result as indented JSON
func MarshalResult(result *backtest.BacktestResult) ([]byte, error) {
	return json.MarshalIndent(resultDocument{
		BacktestResult: result,
		ProfitFactor:   JSONFloat(result.ProfitFactor),
	}, "", "  ")
}

// WriteResultJSON writes the full result including trades and equity curve
func WriteResultJSON(result *backtest.BacktestResult, path string) error {
	data, err := MarshalResult(result)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// NewOptimizationDocument ranks the successful candidates by return
func NewOptimizationDocument(opt *backtest.OptimizationResult) OptimizationDocument {
	doc := OptimizationDocument{
		Candidates: []CandidateSummary{},
		Evaluated:  len(opt.Candidates),
		Failed:     opt.Failed,
		Duration:   opt.Duration.Round(time.Millisecond).String(),
	}
	for i, c := range opt.Ranked() {
		r := c.Result
		doc.Candidates = append(doc.Candidates, CandidateSummary{
			Rank:               i + 1,
			Index:              c.Index,
			StrategyID:         c.Strategy.ID,
			RSIThreshold:       c.RSIThreshold,
			TakeProfit:         c.TakeProfit,
			StopLoss:           c.StopLoss,
			TotalReturnPercent: r.TotalReturnPercent,
			TotalTrades:        r.TotalTrades,
			WinRate:            r.WinRate,
			ProfitFactor:       JSONFloat(r.ProfitFactor),
			MaxDrawdownPercent: r.MaxDrawdownPercent,
			SharpeRatio:        r.SharpeRatio,
		})
	}
	if opt.Best != nil {
		for i := range doc.Candidates {
			if doc.Candidates[i].Index == opt.Best.Index {
				best := doc.Candidates[i]
				doc.Best = &best
				break
			}
		}
	}
	return doc
}

// WriteOptimizationJSON writes the ranked candidate table
func WriteOptimizationJSON(opt *backtest.OptimizationResult, path string) error {
	data, err := json.MarshalIndent(NewOptimizationDocument(opt), "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// WriteBestConfigJSON writes any config value as indented JSON
func WriteBestConfigJSON(config interface{}, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if err := EnsureParentDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
