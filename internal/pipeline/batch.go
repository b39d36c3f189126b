package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is the number of tasks run concurrently when no limit is given.
const DefaultBatchSize = 3

// Task is one unit of work run by RunBounded.
type Task[T any] func(ctx context.Context) (T, error)

// Result is the outcome of one task.
type Result[T any] struct {
	// Index is the position of the task in the input slice.
	Index int

	Value T

	Err error
}

// RunBounded runs tasks in consecutive batches of at most limit tasks.
// A batch starts only after every task of the previous batch has
// returned. A failing task never cancels its siblings; its error is
// recorded in its Result.
//
// Results are in input order. When ctx is cancelled no further batch is
// started, and the results of the batches that did run are returned
// together with ctx.Err().
func RunBounded[T any](ctx context.Context, tasks []Task[T], limit int) ([]Result[T], error) {
	if limit < 1 {
		limit = DefaultBatchSize
	}

	results := make([]Result[T], 0, len(tasks))
	for start := 0; start < len(tasks); start += limit {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		end := min(start+limit, len(tasks))
		batch := make([]Result[T], end-start)

		var g errgroup.Group
		for i := start; i < end; i++ {
			g.Go(func() error {
				value, err := tasks[i](ctx)
				batch[i-start] = Result[T]{Index: i, Value: value, Err: err}
				return nil
			})
		}
		_ = g.Wait() //nolint:errcheck // tasks report through their Result

		results = append(results, batch...)
	}

	return results, ctx.Err()
}

// Failures returns the errors of failed results in input order.
func Failures[T any](results []Result[T]) []error {
	errs := make([]error, 0)
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errs
}
