package monitoring

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordBacktest(t *testing.T) {
	before := testutil.ToFloat64(backtestRunsTotal.WithLabelValues("error"))
	RecordBacktest(false, time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(backtestRunsTotal.WithLabelValues("error")))
}

func TestRecordCandidateAndProgress(t *testing.T) {
	before := testutil.ToFloat64(optimizerCandidatesTotal.WithLabelValues("ok"))
	RecordCandidate(true)
	assert.Equal(t, before+1, testutil.ToFloat64(optimizerCandidatesTotal.WithLabelValues("ok")))

	UpdateOptimizerProgress(42)
	assert.Equal(t, 42.0, testutil.ToFloat64(optimizerProgress))

	UpdateBestReturn("rsi-test", 12.5)
	assert.Equal(t, 12.5, testutil.ToFloat64(bestReturn.WithLabelValues("rsi-test")))
}

func TestRecordCandles(t *testing.T) {
	RecordCandles("csv", "METRICSTEST", 7)
	assert.Equal(t, 7.0, testutil.ToFloat64(candlesLoaded.WithLabelValues("csv", "METRICSTEST")))
}

func TestMetricsHandler(t *testing.T) {
	RecordError("metrics_test")

	rec := httptest.NewRecorder()
	NewMetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "strategy_lab_errors_total")
}
