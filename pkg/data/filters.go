package data

import (
	"fmt"
	"sort"
	"time"

	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

// DefaultDataFilter implements DataFilter for common filtering operations
type DefaultDataFilter struct{}

// NewDefaultDataFilter creates a new default data filter
func NewDefaultDataFilter() *DefaultDataFilter {
	return &DefaultDataFilter{}
}

// FilterByPeriod keeps candles no older than period before the last candle
func (f *DefaultDataFilter) FilterByPeriod(data []types.OHLCV, period time.Duration) []types.OHLCV {
	if period <= 0 || len(data) == 0 {
		return data
	}

	cutoff := data[len(data)-1].Timestamp.Add(-period)
	startIdx := sort.Search(len(data), func(i int) bool {
		return !data[i].Timestamp.Before(cutoff)
	})
	return data[startIdx:]
}

// FilterByDateRange filters data to a specific date range, both ends inclusive
func (f *DefaultDataFilter) FilterByDateRange(data []types.OHLCV, start, end time.Time) []types.OHLCV {
	filtered := []types.OHLCV{}
	for _, candle := range data {
		if !candle.Timestamp.Before(start) && !candle.Timestamp.After(end) {
			filtered = append(filtered, candle)
		}
	}
	return filtered
}

// ValidateTimeSequence rejects out-of-order and duplicate timestamps
func (f *DefaultDataFilter) ValidateTimeSequence(data []types.OHLCV) error {
	for i := 1; i < len(data); i++ {
		if data[i].Timestamp.Before(data[i-1].Timestamp) {
			return fmt.Errorf("data not in chronological order at index %d: %s comes after %s",
				i, data[i].Timestamp.Format(time.RFC3339), data[i-1].Timestamp.Format(time.RFC3339))
		}
		if data[i].Timestamp.Equal(data[i-1].Timestamp) {
			return fmt.Errorf("duplicate timestamp at index %d: %s",
				i, data[i].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}

// SortByTimestamp returns an ascending copy; equal timestamps keep their order
func (f *DefaultDataFilter) SortByTimestamp(data []types.OHLCV) []types.OHLCV {
	sorted := make([]types.OHLCV, len(data))
	copy(sorted, data)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})
	return sorted
}

// RemoveDuplicates removes duplicate timestamps, keeping the first occurrence
func (f *DefaultDataFilter) RemoveDuplicates(data []types.OHLCV) []types.OHLCV {
	filtered := make([]types.OHLCV, 0, len(data))
	seen := make(map[int64]struct{}, len(data))
	for _, candle := range data {
		key := candle.Timestamp.UnixNano()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		filtered = append(filtered, candle)
	}
	return filtered
}

// FilterOutliers drops candles whose open gaps more than maxPercentChange
// from the previous close
func (f *DefaultDataFilter) FilterOutliers(data []types.OHLCV, maxPercentChange float64) []types.OHLCV {
	if len(data) <= 1 || maxPercentChange <= 0 {
		return data
	}

	filtered := []types.OHLCV{data[0]}
	for i := 1; i < len(data); i++ {
		prevClose := data[i-1].Close
		if prevClose == 0 {
			filtered = append(filtered, data[i])
			continue
		}
		change := (data[i].Open - prevClose) / prevClose * 100
		if change <= maxPercentChange && change >= -maxPercentChange {
			filtered = append(filtered, data[i])
		}
	}
	return filtered
}
