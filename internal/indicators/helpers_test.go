package indicators

import (
	"math"
	"math/rand"
	"time"

	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

// generateTestData returns a noisy oscillating uptrend, reproducible per seed
func generateTestData(count int, seed int64) []types.OHLCV {
	rng := rand.New(rand.NewSource(seed))
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	data := make([]types.OHLCV, count)
	for i := range data {
		price := 100 + 10*math.Sin(float64(i)/7) + 0.3*float64(i) + rng.Float64()*2 - 1
		data[i] = types.OHLCV{
			Open:      price - 0.5,
			High:      price + 1,
			Low:       price - 1,
			Close:     price,
			Volume:    1000 + rng.Float64()*500,
			Timestamp: start.Add(time.Duration(i) * time.Hour),
		}
	}
	return data
}

func generatePrices(count int, seed int64) []float64 {
	return types.Closes(generateTestData(count, seed))
}

func rising(count int) []float64 {
	out := make([]float64, count)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}
