// Package harness executes fixed-size request batches for timing- and
// race-sensitive probes. It supports two dispatch modes: a true
// concurrent burst where every worker is released at once, and a rapid
// sequential burst paced at a fixed inter-request interval.
package harness

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Outcome is the result of one request issued by the harness.
type Outcome struct {
	Status  int
	Elapsed time.Duration
	Err     error
}

// Success reports an HTTP 2xx outcome with no transport error.
func (o Outcome) Success() bool {
	return o.Err == nil && o.Status >= 200 && o.Status < 300
}

// RateLimited reports an HTTP 429 outcome.
func (o Outcome) RateLimited() bool {
	return o.Err == nil && o.Status == 429
}

// Task issues one request and reports its outcome. A failed request is
// an unsuccessful outcome, never a harness fault.
type Task func(ctx context.Context, attempt int) Outcome

// RunConcurrent starts n workers and releases them simultaneously
// through a shared start gate, so all requests hit the target as close
// together as the scheduler allows. Outcomes are returned in worker
// order.
func RunConcurrent(ctx context.Context, n int, task Task) []Outcome {
	if n <= 0 {
		return nil
	}

	outcomes := make([]Outcome, n)
	start := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			outcomes[idx] = task(ctx, idx)
		}(i)
	}

	close(start)
	wg.Wait()
	return outcomes
}

// RunBurst issues n requests sequentially, pacing starts at the given
// interval. It stops early when the context expires; outcomes already
// collected are returned.
func RunBurst(ctx context.Context, n int, interval time.Duration, task Task) []Outcome {
	if n <= 0 {
		return nil
	}

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	if interval <= 0 {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}

	outcomes := make([]Outcome, 0, n)
	for i := 0; i < n; i++ {
		if err := limiter.Wait(ctx); err != nil {
			break
		}
		outcomes = append(outcomes, task(ctx, i))
	}
	return outcomes
}

// Summary reduces a batch of outcomes to the counts the interpretation
// logic consumes.
type Summary struct {
	Total       int
	Successes   int
	RateLimited int
	Failures    int
}

// Summarize counts successes, rate-limited responses, and everything
// else across a batch.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes)}
	for _, o := range outcomes {
		switch {
		case o.Success():
			s.Successes++
		case o.RateLimited():
			s.RateLimited++
		default:
			s.Failures++
		}
	}
	return s
}
