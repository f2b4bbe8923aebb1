package indicators

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateSupportResistance_ShortSeries(t *testing.T) {
	support, resistance := CalculateSupportResistance([]float64{80, 100})
	assert.InDelta(t, 95.0, support, 1e-9)
	assert.InDelta(t, 105.0, resistance, 1e-9)
}

func TestCalculateSupportResistance_Percentiles(t *testing.T) {
	prices := rising(100)
	sort.Sort(sort.Reverse(sort.Float64Slice(prices)))

	support, resistance := CalculateSupportResistance(prices)
	assert.Equal(t, 11.0, support)
	assert.Equal(t, 91.0, resistance)
	// input must not be reordered
	assert.Equal(t, 100.0, prices[0])
}

func TestLevelTracker_MatchesSortedCopy(t *testing.T) {
	prices := generatePrices(200, 11)
	tracker := NewLevelTracker(len(prices))
	for i, p := range prices {
		tracker.Add(p)
		s, r := tracker.Levels()
		wantS, wantR := CalculateSupportResistance(prices[:i+1])
		assert.Equal(t, wantS, s, "prefix %d", i+1)
		assert.Equal(t, wantR, r, "prefix %d", i+1)
	}
}

func TestCalculateVolumeStats_Spike(t *testing.T) {
	assert.Equal(t, 1.0, CalculateVolumeStats(nil).VolumeRatio)
	assert.Equal(t, 1.0, CalculateVolumeStats([]float64{0, 0, 0}).VolumeRatio)

	volumes := make([]float64, 25)
	for i := range volumes {
		volumes[i] = 10
	}
	volumes[24] = 30

	stats := CalculateVolumeStats(volumes)
	assert.InDelta(t, 11.0, stats.VolumeMA, 1e-12)
	assert.InDelta(t, 30.0/11.0, stats.VolumeRatio, 1e-12)
}
