// Package worker runs batches of independent jobs under a fixed concurrency ceiling.
package worker

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Run calls fn once per input with at most size calls in flight and returns
// the outputs indexed by input position, regardless of completion order.
//
// Run is fail-fast: the first error returned by fn (in completion order)
// becomes the batch error and no further inputs are started. Calls already
// in flight are not cancelled; Run waits for them and discards their outputs.
// If ctx is done before every input was started, Run returns ctx.Err().
func Run[I, O any](ctx context.Context, inputs []I, size int, fn func(context.Context, I) (O, error)) ([]O, error) {
	if size < 1 {
		size = 1
	}
	outputs := make([]O, len(inputs))

	var g errgroup.Group
	g.SetLimit(size)

	var failed atomic.Bool
	for i, in := range inputs {
		if failed.Load() || ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// A slot may free up only after another job failed.
			if failed.Load() {
				return nil
			}
			out, err := fn(ctx, in)
			if err != nil {
				failed.Store(true)
				return err
			}
			outputs[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outputs, nil
}
