package backtest

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	engerrors "github.com/ducminhle1904/token-strategy-lab/internal/errors"
	"github.com/ducminhle1904/token-strategy-lab/internal/indicators"
	"github.com/ducminhle1904/token-strategy-lab/internal/monitoring"
	"github.com/ducminhle1904/token-strategy-lab/internal/strategy"
	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

const (
	// maxGridValues caps the values one range may expand to
	maxGridValues = 1000
	// maxCandidates caps the size of the full grid
	maxCandidates = 100000
)

// ParameterRange is an inclusive grid Min, Min+Step, ... <= Max
type ParameterRange struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// Validate rejects ranges that would produce no values
func (r ParameterRange) Validate() error {
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsNaN(r.Step) {
		return fmt.Errorf("range contains NaN")
	}
	if math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) || math.IsInf(r.Step, 0) {
		return fmt.Errorf("range must be finite")
	}
	if r.Max < r.Min {
		return fmt.Errorf("range max %.4f is below min %.4f", r.Max, r.Min)
	}
	if r.Max > r.Min && r.Step <= 0 {
		return fmt.Errorf("range step must be positive when max exceeds min")
	}
	if r.Step > 0 && (r.Max-r.Min)/r.Step+1 > maxGridValues {
		return fmt.Errorf("range expands to more than %d values", maxGridValues)
	}
	return nil
}

// Values expands the range. Values are computed from the index rather than
// by repeated addition so the grid does not drift; a non-positive step
// yields only Min.
func (r ParameterRange) Values() []float64 {
	if r.Step <= 0 {
		return []float64{r.Min}
	}
	n := int(math.Floor((r.Max-r.Min)/r.Step + 1e-9))
	values := make([]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		values = append(values, r.Min+float64(i)*r.Step)
	}
	return values
}

// OptimizationRanges selects the rule thresholds to search. A nil range
// keeps the base strategy's value.
type OptimizationRanges struct {
	RSIThreshold *ParameterRange `json:"rsi_threshold,omitempty"`
	TakeProfit   *ParameterRange `json:"take_profit,omitempty"`
	StopLoss     *ParameterRange `json:"stop_loss,omitempty"`
}

// Candidate is one point of the parameter grid
type Candidate struct {
	Index        int               `json:"index"`
	RSIThreshold *float64          `json:"rsi_threshold,omitempty"`
	TakeProfit   *float64          `json:"take_profit,omitempty"`
	StopLoss     *float64          `json:"stop_loss,omitempty"`
	Strategy     strategy.Strategy `json:"strategy"`
}

// CandidateResult pairs a candidate with its run
type CandidateResult struct {
	Candidate
	Result   *BacktestResult `json:"result,omitempty"`
	Duration time.Duration   `json:"duration"`
	Err      error           `json:"-"`
}

// OptimizationResult holds every candidate in grid order and the best one
type OptimizationResult struct {
	Best       *CandidateResult  `json:"best"`
	Candidates []CandidateResult `json:"candidates"`
	Failed     int               `json:"failed"`
	Duration   time.Duration     `json:"duration"`
}

// Ranked returns the successful candidates by descending total return.
// Equal returns keep grid order.
func (o *OptimizationResult) Ranked() []CandidateResult {
	ranked := make([]CandidateResult, 0, len(o.Candidates))
	for _, c := range o.Candidates {
		if c.Err == nil && c.Result != nil {
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Result.TotalReturnPercent > ranked[j].Result.TotalReturnPercent
	})
	return ranked
}

// ParameterOptimizer grid-searches strategy thresholds
type ParameterOptimizer struct {
	engine  *Engine
	workers int
	logger  *zap.Logger
}

// OptimizerOption configures a ParameterOptimizer
type OptimizerOption func(*ParameterOptimizer)

// WithWorkers sets the worker count; non-positive means runtime.NumCPU()
func WithWorkers(n int) OptimizerOption {
	return func(o *ParameterOptimizer) { o.workers = n }
}

// WithOptimizerLogger sets the logger for progress reporting
func WithOptimizerLogger(logger *zap.Logger) OptimizerOption {
	return func(o *ParameterOptimizer) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewParameterOptimizer creates an optimizer running candidates on engine
func NewParameterOptimizer(engine *Engine, opts ...OptimizerOption) *ParameterOptimizer {
	o := &ParameterOptimizer{
		engine: engine,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Candidates expands the grid in RSI (outer), take-profit, stop-loss (inner) order
func (o *ParameterOptimizer) Candidates(base strategy.Strategy, ranges OptimizationRanges) ([]Candidate, error) {
	for name, r := range map[string]*ParameterRange{
		"rsi_threshold": ranges.RSIThreshold,
		"take_profit":   ranges.TakeProfit,
		"stop_loss":     ranges.StopLoss,
	} {
		if r == nil {
			continue
		}
		if err := r.Validate(); err != nil {
			return nil, engerrors.NewValidationError("optimizer", "Candidates", name+": "+err.Error())
		}
	}

	rsiValues := axis(ranges.RSIThreshold, base.Entry.RSIBelow)
	tpValues := axis(ranges.TakeProfit, base.Exit.TakeProfitPercent)
	slValues := axis(ranges.StopLoss, base.Exit.StopLossPercent)
	if total := len(rsiValues) * len(tpValues) * len(slValues); total > maxCandidates {
		return nil, engerrors.NewValidationError("optimizer", "Candidates",
			fmt.Sprintf("grid has %d candidates, the limit is %d", total, maxCandidates))
	}

	candidates := make([]Candidate, 0, len(rsiValues)*len(tpValues)*len(slValues))
	for _, rsi := range rsiValues {
		for _, tp := range tpValues {
			for _, sl := range slValues {
				strat := base.Clone()
				strat.Entry.RSIBelow = rsi
				strat.Exit.TakeProfitPercent = tp
				strat.Exit.StopLossPercent = sl
				strat.ID = candidateID(base.ID, rsi, tp, sl)
				strat.Name = candidateName(base.Name, rsi, tp, sl)

				candidates = append(candidates, Candidate{
					Index:        len(candidates),
					RSIThreshold: rsi,
					TakeProfit:   tp,
					StopLoss:     sl,
					Strategy:     strat,
				})
			}
		}
	}
	return candidates, nil
}

// Optimize enriches data once and evaluates every candidate on the worker
// pool. All candidates start with the engine's initial capital. The best
// candidate has the highest TotalReturnPercent; ties go to the earlier one.
func (o *ParameterOptimizer) Optimize(ctx context.Context, data []types.OHLCV, base strategy.Strategy, ranges OptimizationRanges) (*OptimizationResult, error) {
	return o.OptimizeEnriched(ctx, indicators.Enrich(data), base, ranges)
}

// OptimizeEnriched is Optimize for bars that already carry indicators
func (o *ParameterOptimizer) OptimizeEnriched(ctx context.Context, bars []types.PriceBar, base strategy.Strategy, ranges OptimizationRanges) (*OptimizationResult, error) {
	started := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	candidates, err := o.Candidates(base, ranges)
	if err != nil {
		return nil, err
	}

	pool := NewWorkerPool(ctx, o.workers, len(candidates), func(s strategy.Strategy) (*BacktestResult, error) {
		return o.engine.RunEnriched(bars, s)
	})
	o.logger.Info("Starting optimization",
		zap.String("base_strategy", base.ID),
		zap.Int("candidates", len(candidates)),
		zap.Int("workers", pool.WorkerCount()),
		zap.Int("bars", len(bars)))

	pool.Start()
	for _, c := range candidates {
		if err := pool.SubmitJob(BacktestJob{Index: c.Index, Strategy: c.Strategy}); err != nil {
			pool.Stop()
			return nil, err
		}
	}

	results := make([]CandidateResult, len(candidates))
	progress := NewProgressTracker(len(candidates))
	logEvery := max(1, len(candidates)/10)

	for received := 0; received < len(candidates); received++ {
		select {
		case jr := <-pool.GetResults():
			results[jr.Index] = CandidateResult{
				Candidate: candidates[jr.Index],
				Result:    jr.Result,
				Duration:  jr.Duration,
				Err:       jr.Error,
			}
			monitoring.RecordCandidate(jr.Error == nil)
			progress.Increment()

			done, total, pct, elapsed := progress.GetProgress()
			monitoring.UpdateOptimizerProgress(pct)
			if done%logEvery == 0 || done == total {
				o.logger.Info("Optimization progress",
					zap.Int("completed", done),
					zap.Int("total", total),
					zap.Duration("elapsed", elapsed),
					zap.Duration("eta", progress.EstimateTimeRemaining()))
			}
		case <-ctx.Done():
			pool.Stop()
			return nil, ctx.Err()
		}
	}
	pool.Stop()

	out := &OptimizationResult{Candidates: results}
	for i := range results {
		r := &results[i]
		if r.Err != nil || r.Result == nil {
			out.Failed++
			o.logger.Warn("Candidate failed", zap.String("strategy", r.Strategy.ID), zap.Error(r.Err))
			continue
		}
		if out.Best == nil || r.Result.TotalReturnPercent > out.Best.Result.TotalReturnPercent {
			out.Best = r
		}
	}
	out.Duration = time.Since(started)

	if out.Best == nil {
		if len(results) > 0 && results[0].Err != nil {
			return out, results[0].Err
		}
		return out, engerrors.NewValidationError("optimizer", "Optimize", "no candidate produced a result")
	}

	monitoring.UpdateBestReturn(base.ID, out.Best.Result.TotalReturnPercent)
	o.logger.Info("Optimization finished",
		zap.String("best_strategy", out.Best.Strategy.ID),
		zap.Float64("best_return_pct", out.Best.Result.TotalReturnPercent),
		zap.Int("failed", out.Failed),
		zap.Duration("elapsed", out.Duration))

	return out, nil
}

func axis(r *ParameterRange, base *float64) []*float64 {
	if r == nil {
		return []*float64{base}
	}
	values := r.Values()
	out := make([]*float64, len(values))
	for i, v := range values {
		out[i] = strategy.Float(v)
	}
	return out
}

func formatParam(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// candidateID is a name-based UUID so the same grid point always gets the same ID
func candidateID(baseID string, rsi, tp, sl *float64) string {
	name := fmt.Sprintf("%s|%s|%s|%s", baseID, formatParam(rsi), formatParam(tp), formatParam(sl))
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

func candidateName(baseName string, rsi, tp, sl *float64) string {
	if baseName == "" {
		baseName = "candidate"
	}
	return fmt.Sprintf("%s rsi<%s tp=%s%% sl=%s%%", baseName, formatParam(rsi), formatParam(tp), formatParam(sl))
}
