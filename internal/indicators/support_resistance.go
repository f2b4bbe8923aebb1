package indicators

import "sort"

const (
	minLevelSamples  = 20
	supportQuantile  = 0.10
	resistQuantile   = 0.90
	fallbackLevelGap = 0.05
)

// CalculateSupportResistance takes the 10th and 90th percentile of the
// observed closes. Short series fall back to +/-5% of the current price.
func CalculateSupportResistance(prices []float64) (support, resistance float64) {
	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)
	return levelsFromSorted(sorted, lastOf(prices))
}

// LevelTracker keeps a sorted copy of every price seen so that levels for a
// growing prefix cost one binary insertion per bar.
type LevelTracker struct {
	sorted []float64
	last   float64
}

// NewLevelTracker creates an empty tracker with room for capacity prices
func NewLevelTracker(capacity int) *LevelTracker {
	return &LevelTracker{sorted: make([]float64, 0, capacity)}
}

// Add inserts a price keeping the slice ordered
func (t *LevelTracker) Add(price float64) {
	i := sort.SearchFloat64s(t.sorted, price)
	t.sorted = append(t.sorted, 0)
	copy(t.sorted[i+1:], t.sorted[i:])
	t.sorted[i] = price
	t.last = price
}

// Levels returns support and resistance for every price added so far
func (t *LevelTracker) Levels() (support, resistance float64) {
	return levelsFromSorted(t.sorted, t.last)
}

func levelsFromSorted(sorted []float64, current float64) (float64, float64) {
	n := len(sorted)
	if n < minLevelSamples {
		return current * (1 - fallbackLevelGap), current * (1 + fallbackLevelGap)
	}
	return sorted[int(float64(n)*supportQuantile)], sorted[int(float64(n)*resistQuantile)]
}

func lastOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}
