package batch

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Result holds the outcome for one input item, keyed by its input index so
// callers re-associate results with candidates deterministically, independent
// of completion order.
type Result[Out any] struct {
	Index int
	Value Out
	Err   error
}

// Options bounds a batch run.
type Options struct {
	// Workers caps concurrent tasks. Defaults to 8.
	Workers int
	// RateLimit is a global requests-per-second limit shared by all workers.
	// Zero or negative disables it.
	RateLimit float64
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 8
	}
	return o
}

// Run executes fn once per item with bounded concurrency and gather-all
// semantics: a failed task never cancels its siblings, and every item gets a
// result slot. The returned slice is ordered by input index. Context
// cancellation surfaces as per-item errors for items not yet processed.
func Run[In any, Out any](ctx context.Context, items []In, opts Options, fn func(context.Context, In) (Out, error)) []Result[Out] {
	opts = opts.withDefaults()

	out := make([]Result[Out], len(items))
	if len(items) == 0 {
		return out
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	type job struct {
		idx  int
		item In
	}

	jobs := make(chan job)

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				out[j.idx] = runOne(ctx, j.idx, j.item, limiter, fn)
			}
		}()
	}

	for i, item := range items {
		jobs <- job{idx: i, item: item}
	}
	close(jobs)

	wg.Wait()
	return out
}

func runOne[In any, Out any](ctx context.Context, idx int, item In, limiter *rate.Limiter, fn func(context.Context, In) (Out, error)) Result[Out] {
	res := Result[Out]{Index: idx}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			res.Err = err
			return res
		}
	}

	res.Value, res.Err = fn(ctx, item)
	return res
}
