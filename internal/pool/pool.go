package pool

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"feedscraper/pkg/logger"
	"feedscraper/pkg/ratelimit"
)

// Job is one unit of work. Index is the job's position in dispatch order.
type Job[T any] struct {
	Index   int
	Payload T
}

// Result is the outcome of one job
type Result[T, R any] struct {
	Job      Job[T]
	Value    R
	Err      error
	Duration time.Duration
	WorkerID int
}

// Handler processes one job payload
type Handler[T, R any] func(ctx context.Context, payload T) (R, error)

// WorkerPool runs a fixed number of workers over a job queue
type WorkerPool[T, R any] struct {
	numWorkers  int
	jobQueue    chan Job[T]
	resultQueue chan Result[T, R]
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	handler     Handler[T, R]
	logger      logger.Logger
	stopOnce    sync.Once
}

// NewWorkerPool creates a pool of numWorkers workers. Jobs run with a
// context derived from ctx.
func NewWorkerPool[T, R any](ctx context.Context, numWorkers int, handler Handler[T, R], log logger.Logger) *WorkerPool[T, R] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	ctx, cancel := context.WithCancel(ctx)

	return &WorkerPool[T, R]{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job[T], numWorkers*2),
		resultQueue: make(chan Result[T, R], numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		handler:     handler,
		logger:      log,
	}
}

// Start launches the workers
func (wp *WorkerPool[T, R]) Start() {
	wp.logger.DebugWithFields("Starting worker pool", map[string]interface{}{
		"num_workers": wp.numWorkers,
	})

	for i := 0; i < wp.numWorkers; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop closes the queue, waits for queued jobs to finish and closes the
// result channel. Results must be drained concurrently.
func (wp *WorkerPool[T, R]) Stop() {
	wp.stopOnce.Do(func() {
		close(wp.jobQueue)
		wp.wg.Wait()
		close(wp.resultQueue)
		wp.cancel()
		wp.logger.Debug("Worker pool stopped")
	})
}

// Submit queues a job, blocking while the queue is full
func (wp *WorkerPool[T, R]) Submit(job Job[T]) error {
	select {
	case wp.jobQueue <- job:
		return nil
	case <-wp.ctx.Done():
		return fmt.Errorf("worker pool is shutting down: %w", wp.ctx.Err())
	}
}

// Results returns the result channel
func (wp *WorkerPool[T, R]) Results() <-chan Result[T, R] {
	return wp.resultQueue
}

// worker drains the job queue. Jobs queued after cancellation still
// produce a result carrying the context error so no index goes missing.
func (wp *WorkerPool[T, R]) worker(id int) {
	defer wp.wg.Done()

	for job := range wp.jobQueue {
		wp.resultQueue <- wp.processJob(job, id)
	}
}

func (wp *WorkerPool[T, R]) processJob(job Job[T], workerID int) (result Result[T, R]) {
	start := time.Now()
	result = Result[T, R]{Job: job, WorkerID: workerID}

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("job %d panicked: %v", job.Index, r)
			wp.logger.ErrorWithFields("Worker recovered from panic", map[string]interface{}{
				"worker_id": workerID,
				"job":       job.Index,
				"stack":     string(debug.Stack()),
			})
		}
		result.Duration = time.Since(start)
	}()

	if err := wp.ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	result.Value, result.Err = wp.handler(wp.ctx, job.Payload)
	return result
}

// Run processes payloads on numWorkers workers, dispatching them in order
// and spacing dispatches with pacer when it is non-nil. The returned
// results are indexed like payloads.
func Run[T, R any](ctx context.Context, numWorkers int, payloads []T, pacer ratelimit.Limiter, handler Handler[T, R], log logger.Logger) []Result[T, R] {
	wp := NewWorkerPool(ctx, numWorkers, handler, log)
	wp.Start()

	results := make([]Result[T, R], len(payloads))
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for r := range wp.Results() {
			results[r.Job.Index] = r
		}
	}()

	dispatched := 0
	for i, payload := range payloads {
		if pacer != nil {
			if err := pacer.Wait(ctx); err != nil {
				break
			}
		}
		if err := wp.Submit(Job[T]{Index: i, Payload: payload}); err != nil {
			break
		}
		dispatched++
	}

	wp.Stop()
	<-collected

	for i := dispatched; i < len(payloads); i++ {
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		results[i] = Result[T, R]{Job: Job[T]{Index: i, Payload: payloads[i]}, Err: err}
	}
	return results
}
