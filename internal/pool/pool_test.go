package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"feedscraper/pkg/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPoolBasicFunctionality(t *testing.T) {
	var calls int32
	handler := func(ctx context.Context, account string) (string, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(5 * time.Millisecond)
		return "done:" + account, nil
	}

	pool := NewWorkerPool(context.Background(), 3, Handler[string, string](handler), nil)
	pool.Start()

	var results []Result[string, string]
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for result := range pool.Results() {
			results = append(results, result)
		}
	}()

	numJobs := 10
	for i := 0; i < numJobs; i++ {
		if err := pool.Submit(Job[string]{Index: i, Payload: fmt.Sprintf("account%d", i)}); err != nil {
			t.Errorf("Failed to submit job %d: %v", i, err)
		}
	}

	pool.Stop()
	wg.Wait()

	if len(results) != numJobs {
		t.Errorf("Expected %d results, got %d", numJobs, len(results))
	}
	for _, result := range results {
		if result.Err != nil {
			t.Errorf("Unexpected error for job %d: %v", result.Job.Index, result.Err)
		}
		if result.Value != "done:"+result.Job.Payload {
			t.Errorf("Unexpected value %q for job %d", result.Value, result.Job.Index)
		}
	}
	if int(atomic.LoadInt32(&calls)) != numJobs {
		t.Errorf("Expected %d handler calls, got %d", numJobs, calls)
	}
}

func TestWorkerPoolConcurrencyLimit(t *testing.T) {
	var active, peak int32
	handler := Handler[int, int](func(ctx context.Context, n int) (int, error) {
		cur := atomic.AddInt32(&active, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&active, -1)
		return n * n, nil
	})

	payloads := []int{0, 1, 2, 3, 4, 5, 6, 7, 8}
	results := Run(context.Background(), 3, payloads, nil, handler, nil)

	require.Len(t, results, len(payloads))
	for i, r := range results {
		assert.Equal(t, i, r.Job.Index)
		assert.Equal(t, i*i, r.Value)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
	assert.Greater(t, atomic.LoadInt32(&peak), int32(1))
}

func TestRunKeepsOrderWhenJobsFinishOutOfOrder(t *testing.T) {
	handler := Handler[time.Duration, string](func(ctx context.Context, d time.Duration) (string, error) {
		time.Sleep(d)
		return d.String(), nil
	})

	payloads := []time.Duration{30 * time.Millisecond, time.Millisecond, 10 * time.Millisecond}
	results := Run(context.Background(), 3, payloads, nil, handler, nil)

	assert.Equal(t, "30ms", results[0].Value)
	assert.Equal(t, "1ms", results[1].Value)
	assert.Equal(t, "10ms", results[2].Value)
}

func TestRunIsolatesFailuresAndPanics(t *testing.T) {
	handler := Handler[string, int](func(ctx context.Context, account string) (int, error) {
		switch account {
		case "broken":
			return 0, fmt.Errorf("page crashed")
		case "panics":
			panic("nil selection")
		}
		return 1, nil
	})

	results := Run(context.Background(), 2, []string{"ok", "broken", "panics", "fine"}, nil, handler, nil)

	require.Len(t, results, 4)
	assert.NoError(t, results[0].Err)
	assert.EqualError(t, results[1].Err, "page crashed")
	require.Error(t, results[2].Err)
	assert.Contains(t, results[2].Err.Error(), "panicked")
	assert.NoError(t, results[3].Err)
	assert.Equal(t, 1, results[3].Value)
}

func TestRunPacesDispatches(t *testing.T) {
	var mu sync.Mutex
	var starts []time.Time
	handler := Handler[int, struct{}](func(ctx context.Context, _ int) (struct{}, error) {
		mu.Lock()
		starts = append(starts, time.Now())
		mu.Unlock()
		return struct{}{}, nil
	})

	pacer := ratelimit.NewPacer(30 * time.Millisecond)
	begin := time.Now()
	Run(context.Background(), 3, []int{1, 2, 3}, pacer, handler, nil)

	require.Len(t, starts, 3)
	assert.GreaterOrEqual(t, time.Since(begin), 55*time.Millisecond)
}

func TestRunCancelledBeforeDispatch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	handler := Handler[int, int](func(ctx context.Context, n int) (int, error) {
		atomic.AddInt32(&calls, 1)
		return n, nil
	})

	results := Run(ctx, 2, []int{1, 2, 3}, ratelimit.NewPacer(time.Second), handler, nil)

	require.Len(t, results, 3)
	for i, r := range results {
		assert.Equal(t, i, r.Job.Index)
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}
