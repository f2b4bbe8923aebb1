package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Backtest metrics
	backtestRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strategy_lab_backtest_runs_total",
			Help: "Total number of backtest runs",
		},
		[]string{"result"},
	)

	backtestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "strategy_lab_backtest_duration_seconds",
			Help:    "Wall time of a single backtest run",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
	)

	tradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strategy_lab_trades_total",
			Help: "Total number of simulated trades closed",
		},
		[]string{"side", "status"},
	)

	tradeReturn = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "strategy_lab_trade_return_percent",
			Help:    "Distribution of per-trade returns in percent",
			Buckets: prometheus.LinearBuckets(-20, 5, 9),
		},
	)

	// Optimizer metrics
	optimizerCandidatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strategy_lab_optimizer_candidates_total",
			Help: "Total number of optimizer candidates evaluated",
		},
		[]string{"result"},
	)

	optimizerProgress = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "strategy_lab_optimizer_progress_percent",
			Help: "Completion of the running optimization",
		},
	)

	bestReturn = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "strategy_lab_best_return_percent",
			Help: "Best total return found by the optimizer",
		},
		[]string{"strategy"},
	)

	// Data metrics
	candlesLoaded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strategy_lab_candles_loaded_total",
			Help: "Candles loaded from data providers",
		},
		[]string{"source", "symbol"},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strategy_lab_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	prometheus.MustRegister(backtestRunsTotal)
	prometheus.MustRegister(backtestDuration)
	prometheus.MustRegister(tradesTotal)
	prometheus.MustRegister(tradeReturn)
	prometheus.MustRegister(optimizerCandidatesTotal)
	prometheus.MustRegister(optimizerProgress)
	prometheus.MustRegister(bestReturn)
	prometheus.MustRegister(candlesLoaded)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordBacktest records a finished (ok) or rejected (error) run
func RecordBacktest(ok bool, elapsed time.Duration) {
	result := "ok"
	if !ok {
		result = "error"
	}
	backtestRunsTotal.WithLabelValues(result).Inc()
	backtestDuration.Observe(elapsed.Seconds())
}

// RecordTrade records a closed simulated trade
func RecordTrade(side, status string, returnPercent float64) {
	tradesTotal.WithLabelValues(side, status).Inc()
	tradeReturn.Observe(returnPercent)
}

// RecordCandidate counts an evaluated optimizer candidate
func RecordCandidate(ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	optimizerCandidatesTotal.WithLabelValues(result).Inc()
}

// UpdateOptimizerProgress sets the completion percentage of the current optimization
func UpdateOptimizerProgress(percent float64) {
	optimizerProgress.Set(percent)
}

// UpdateBestReturn publishes the best return found for a base strategy
func UpdateBestReturn(strategy string, returnPercent float64) {
	bestReturn.WithLabelValues(strategy).Set(returnPercent)
}

// RecordCandles counts candles loaded from a provider
func RecordCandles(source, symbol string, count int) {
	candlesLoaded.WithLabelValues(source, symbol).Add(float64(count))
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
