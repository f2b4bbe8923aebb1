package data

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

func hourly(n int) []types.OHLCV {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]types.OHLCV, n)
	for i := range out {
		p := 100 + float64(i)
		out[i] = types.OHLCV{Timestamp: start.Add(time.Duration(i) * time.Hour), Open: p, High: p + 1, Low: p - 1, Close: p, Volume: 1}
	}
	return out
}

func TestFilterByPeriod(t *testing.T) {
	f := NewDefaultDataFilter()
	data := hourly(48)

	got := f.FilterByPeriod(data, 24*time.Hour)
	require.Len(t, got, 25, "cutoff candle is inclusive")
	assert.Equal(t, data[23].Timestamp, got[0].Timestamp)

	assert.Len(t, f.FilterByPeriod(data, 0), 48)
	assert.Len(t, f.FilterByPeriod(data, 1000*time.Hour), 48)
}

func TestFilterByDateRange(t *testing.T) {
	f := NewDefaultDataFilter()
	data := hourly(10)
	got := f.FilterByDateRange(data, data[2].Timestamp, data[5].Timestamp)
	require.Len(t, got, 4)
	assert.Equal(t, data[2], got[0])
	assert.Equal(t, data[5], got[3])
	assert.Empty(t, f.FilterByDateRange(nil, data[0].Timestamp, data[1].Timestamp))
}

func TestSortAndDeduplicate(t *testing.T) {
	f := NewDefaultDataFilter()
	data := hourly(5)
	shuffled := []types.OHLCV{data[3], data[0], data[4], data[1], data[2], data[1]}

	assert.Error(t, f.ValidateTimeSequence(shuffled))

	sorted := f.SortByTimestamp(shuffled)
	assert.Equal(t, data[3], shuffled[0], "input is not modified")
	assert.Error(t, f.ValidateTimeSequence(sorted), "duplicate remains after sorting")

	unique := f.RemoveDuplicates(sorted)
	assert.Equal(t, data, unique)
	assert.NoError(t, f.ValidateTimeSequence(unique))
}

func TestFilterOutliers(t *testing.T) {
	f := NewDefaultDataFilter()
	data := hourly(4)
	data[2].Open = data[1].Close * 1.5

	got := f.FilterOutliers(data, 10)
	require.Len(t, got, 3)
	assert.Equal(t, data[3], got[2])
	assert.Len(t, f.FilterOutliers(data, 0), 4)
}

func TestParseTrailingPeriod(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"7d", 7 * 24 * time.Hour, true},
		{"30days", 30 * 24 * time.Hour, true},
		{"168h", 168 * time.Hour, true},
		{"0d", 0, false},
		{"d", 0, false},
		{"soon", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseTrailingPeriod(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
