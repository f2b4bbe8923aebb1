package backtest

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ducminhle1904/token-strategy-lab/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool_ProcessesEveryJob(t *testing.T) {
	var calls atomic.Int32
	pool := NewWorkerPool(context.Background(), 3, 10, func(s strategy.Strategy) (*BacktestResult, error) {
		calls.Add(1)
		if s.ID == "bad" {
			return nil, fmt.Errorf("boom")
		}
		return &BacktestResult{Strategy: s}, nil
	})
	assert.Equal(t, 3, pool.WorkerCount())

	pool.Start()
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("s%d", i)
		if i == 7 {
			id = "bad"
		}
		require.NoError(t, pool.SubmitJob(BacktestJob{Index: i, Strategy: strategy.Strategy{ID: id}}))
	}

	got := make(map[int]JobResult)
	for len(got) < 10 {
		r := <-pool.GetResults()
		got[r.Index] = r
	}
	pool.Stop()

	assert.Equal(t, int32(10), calls.Load())
	assert.Error(t, got[7].Error)
	assert.Equal(t, "s3", got[3].Result.Strategy.ID)

	_, open := <-pool.GetResults()
	assert.False(t, open)
}

func TestWorkerPool_DefaultsToNumCPU(t *testing.T) {
	pool := NewWorkerPool(context.Background(), 0, 1, nil)
	assert.Greater(t, pool.WorkerCount(), 0)
}

func TestWorkerPool_SubmitAfterCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewWorkerPool(ctx, 1, 0, func(strategy.Strategy) (*BacktestResult, error) {
		return &BacktestResult{}, nil
	})
	cancel()

	// unbuffered queue and no workers started: only cancellation can unblock
	err := pool.SubmitJob(BacktestJob{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProgressTracker(t *testing.T) {
	pt := NewProgressTracker(4)
	assert.Equal(t, time.Duration(0), pt.EstimateTimeRemaining())

	pt.Increment()
	pt.Increment()
	done, total, pct, _ := pt.GetProgress()
	assert.Equal(t, 2, done)
	assert.Equal(t, 4, total)
	assert.Equal(t, 50.0, pct)
	assert.GreaterOrEqual(t, pt.EstimateTimeRemaining(), time.Duration(0))

	_, _, pct, _ = NewProgressTracker(0).GetProgress()
	assert.Equal(t, 100.0, pct)
}
