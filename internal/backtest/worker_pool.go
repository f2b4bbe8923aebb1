package backtest

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/ducminhle1904/token-strategy-lab/internal/strategy"
)

// RunFunc executes one backtest; the pool calls it from its workers
type RunFunc func(strategy.Strategy) (*BacktestResult, error)

// WorkerPool manages parallel backtest execution
type WorkerPool struct {
	workerCount int
	run         RunFunc
	jobQueue    chan BacktestJob
	resultQueue chan JobResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// BacktestJob is a single strategy to evaluate. Index identifies the job's
// position in the caller's candidate list.
type BacktestJob struct {
	Index    int
	Strategy strategy.Strategy
}

// JobResult is the outcome of a BacktestJob
type JobResult struct {
	Index    int
	Result   *BacktestResult
	Duration time.Duration
	Error    error
}

// NewWorkerPool creates a pool of workerCount workers (runtime.NumCPU() when
// not positive) whose queues hold bufferSize jobs and results.
func NewWorkerPool(ctx context.Context, workerCount, bufferSize int, run RunFunc) *WorkerPool {
	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	poolCtx, cancel := context.WithCancel(ctx)

	return &WorkerPool{
		workerCount: workerCount,
		run:         run,
		jobQueue:    make(chan BacktestJob, bufferSize),
		resultQueue: make(chan JobResult, bufferSize),
		ctx:         poolCtx,
		cancel:      cancel,
	}
}

// WorkerCount returns the number of workers started by Start
func (wp *WorkerPool) WorkerCount() int {
	return wp.workerCount
}

// Start starts the worker pool
func (wp *WorkerPool) Start() {
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

// Stop closes the job queue, waits for the workers and closes the results.
// It must be called once, after the last SubmitJob.
func (wp *WorkerPool) Stop() {
	close(wp.jobQueue)
	wp.wg.Wait()
	close(wp.resultQueue)
	wp.cancel()
}

// SubmitJob submits a backtest job to the pool
func (wp *WorkerPool) SubmitJob(job BacktestJob) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return wp.ctx.Err()
	}
}

// GetResults returns the result channel for collecting completed jobs
func (wp *WorkerPool) GetResults() <-chan JobResult {
	return wp.resultQueue
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for {
		select {
		case job, ok := <-wp.jobQueue:
			if !ok {
				return
			}

			result := wp.processJob(job)

			select {
			case wp.resultQueue <- result:
			case <-wp.ctx.Done():
				return
			}

		case <-wp.ctx.Done():
			return
		}
	}
}

func (wp *WorkerPool) processJob(job BacktestJob) JobResult {
	startTime := time.Now()
	res, err := wp.run(job.Strategy)
	return JobResult{
		Index:    job.Index,
		Result:   res,
		Error:    err,
		Duration: time.Since(startTime),
	}
}

// ProgressTracker tracks the progress of batch processing
type ProgressTracker struct {
	total     int
	completed int
	startTime time.Time
	mutex     sync.RWMutex
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(total int) *ProgressTracker {
	return &ProgressTracker{
		total:     total,
		startTime: time.Now(),
	}
}

// Increment increments the completion count
func (pt *ProgressTracker) Increment() {
	pt.mutex.Lock()
	defer pt.mutex.Unlock()
	pt.completed++
}

// GetProgress returns completed, total, percent done and elapsed time
func (pt *ProgressTracker) GetProgress() (int, int, float64, time.Duration) {
	pt.mutex.RLock()
	defer pt.mutex.RUnlock()

	elapsed := time.Since(pt.startTime)
	progress := 100.0
	if pt.total > 0 {
		progress = float64(pt.completed) / float64(pt.total) * 100
	}

	return pt.completed, pt.total, progress, elapsed
}

// EstimateTimeRemaining estimates the remaining time based on current progress
func (pt *ProgressTracker) EstimateTimeRemaining() time.Duration {
	pt.mutex.RLock()
	defer pt.mutex.RUnlock()

	if pt.completed == 0 {
		return 0
	}

	elapsed := time.Since(pt.startTime)
	avgTimePerItem := elapsed / time.Duration(pt.completed)
	remaining := pt.total - pt.completed

	return avgTimePerItem * time.Duration(remaining)
}
