package validation

import (
	"time"

	"github.com/ducminhle1904/token-strategy-lab/pkg/types"
)

// DefaultDataSplitter implements the DataSplitter interface
type DefaultDataSplitter struct{}

// NewDefaultDataSplitter creates a new default data splitter
func NewDefaultDataSplitter() *DefaultDataSplitter {
	return &DefaultDataSplitter{}
}

// SplitByRatio splits data into train/test by ratio. A ratio outside (0,1)
// or one that leaves either side empty returns all data as train.
func (s *DefaultDataSplitter) SplitByRatio(data []types.OHLCV, ratio float64) ([]types.OHLCV, []types.OHLCV) {
	if ratio <= 0 || ratio >= 1 {
		return data, nil
	}

	n := int(float64(len(data)) * ratio)
	if n < 1 || n >= len(data) {
		return data, nil
	}

	return data[:n], data[n:]
}

// CreateRollingFolds slides a train window followed by a test window across
// data. Folds whose windows hold fewer than MinTrainBars/MinTestBars candles
// end the walk.
func (s *DefaultDataSplitter) CreateRollingFolds(data []types.OHLCV, cfg WalkForwardConfig) []WalkForwardFold {
	var folds []WalkForwardFold
	if len(data) == 0 || cfg.TrainDays <= 0 || cfg.TestDays <= 0 || cfg.RollDays <= 0 {
		return folds
	}

	trainDur := time.Duration(cfg.TrainDays) * 24 * time.Hour
	testDur := time.Duration(cfg.TestDays) * 24 * time.Hour
	rollDur := time.Duration(cfg.RollDays) * 24 * time.Hour
	minTrain := max(1, cfg.MinTrainBars)
	minTest := max(1, cfg.MinTestBars)

	start := 0
	for {
		trainEndTs := data[start].Timestamp.Add(trainDur)
		trainEnd := advance(data, start, trainEndTs)

		testEndTs := trainEndTs.Add(testDur)
		testEnd := advance(data, trainEnd, testEndTs)

		if trainEnd-start < minTrain || testEnd-trainEnd < minTest {
			break
		}

		folds = append(folds, WalkForwardFold{
			Train:      data[start:trainEnd],
			Test:       data[trainEnd:testEnd],
			TrainStart: data[start].Timestamp,
			TrainEnd:   data[trainEnd-1].Timestamp,
			TestStart:  data[trainEnd].Timestamp,
			TestEnd:    data[testEnd-1].Timestamp,
		})

		nextStart := advance(data, start, data[start].Timestamp.Add(rollDur))
		if nextStart <= start {
			nextStart = start + 1
		}
		if nextStart >= len(data) {
			break
		}
		start = nextStart
	}

	return folds
}

// advance returns the first index at or after from whose timestamp is not
// before ts
func advance(data []types.OHLCV, from int, ts time.Time) int {
	i := from
	for i < len(data) && data[i].Timestamp.Before(ts) {
		i++
	}
	return i
}
