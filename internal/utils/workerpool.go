package utils

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// WorkerPool maps a function over a slice with bounded concurrency, keeping
// output order aligned with input order. The jobs here are I/O bound (one
// HTTP request per item), so the limit is a courtesy to the remote side, not
// a CPU concern.
type WorkerPool[I any, O any] struct {
	maxWorkers int
	f          func(ctx context.Context, value I) (O, error)
	onProgress func(done int, total int)
}

func NewWorkerPool[I any, O any](f func(ctx context.Context, value I) (O, error), maxWorkers int) *WorkerPool[I, O] {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &WorkerPool[I, O]{
		maxWorkers: maxWorkers,
		f:          f,
	}
}

// OnProgress registers a callback invoked after each completed item.
func (wp *WorkerPool[I, O]) OnProgress(f func(done int, total int)) {
	wp.onProgress = f
}

// Map runs f over every input. The first error cancels the remaining work and
// is returned; partial results are discarded.
func (wp *WorkerPool[I, O]) Map(ctx context.Context, input []I) ([]O, error) {
	output := make([]O, len(input))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(wp.maxWorkers)

	var done atomic.Int64
	total := len(input)

	for i := range input {
		i := i
		group.Go(func() error {
			result, err := wp.f(ctx, input[i])
			if err != nil {
				return err
			}
			output[i] = result

			if wp.onProgress != nil {
				wp.onProgress(int(done.Add(1)), total)
			}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return output, nil
}
