package fanout

import (
	"context"

	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"
	"golang.org/x/sync/errgroup"
)

// Task is one unit of concurrent work.
type Task func(ctx context.Context) error

// All runs every task concurrently and waits for all of them. The returned
// slice holds each task's error at the task's index. A failing task never
// cancels its siblings; a panicking task reports the panic as its error.
func All(ctx context.Context, tasks ...Task) []error {
	errs := make([]error, len(tasks))

	var wg conc.WaitGroup
	for i, task := range tasks {
		wg.Go(func() {
			if r := panics.Try(func() { errs[i] = task(ctx) }); r != nil {
				errs[i] = r.AsError()
			}
		})
	}
	wg.Wait()

	return errs
}

// First runs every task concurrently and returns the first error. The
// context passed to tasks is cancelled as soon as one fails, so siblings
// can abandon their requests.
func First(ctx context.Context, tasks ...Task) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, task := range tasks {
		g.Go(func() error { return task(gctx) })
	}
	return g.Wait()
}

// Limit runs tasks with at most n in flight (n <= 0 means unbounded) and
// otherwise behaves like All.
func Limit(ctx context.Context, n int, tasks ...Task) []error {
	if n <= 0 || n >= len(tasks) {
		return All(ctx, tasks...)
	}

	errs := make([]error, len(tasks))
	g := new(errgroup.Group)
	g.SetLimit(n)
	for i, task := range tasks {
		g.Go(func() error {
			if r := panics.Try(func() { errs[i] = task(ctx) }); r != nil {
				errs[i] = r.AsError()
			}
			return nil
		})
	}
	g.Wait()

	return errs
}
