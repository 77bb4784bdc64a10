// Package parallel provides the bounded worker pool the parser pipeline runs
// its CPU-bound per-file jobs on (§5 Concurrency & Resource Model).
package parallel

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool runs a bounded number of concurrent tasks, grounded on the teacher's
// pervasive golang.org/x/sync/errgroup usage across internal/world's file
// scanning code.
type Pool struct {
	limit int
}

// NewPool returns a Pool capped at limit concurrent goroutines. A limit <= 0
// defaults to runtime.NumCPU(), matching §4.1's "thread pool of size =
// detected CPU count (configurable)".
func NewPool(limit int) *Pool {
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	return &Pool{limit: limit}
}

// Run executes fn(item) for every item, bounded to p.limit concurrent
// invocations. It returns the first non-nil error but lets already-started
// tasks finish (errgroup's default behavior with SetLimit).
func Run[T any](ctx context.Context, p *Pool, items []T, fn func(context.Context, T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)
	for _, item := range items {
		item := item
		g.Go(func() error {
			return fn(gctx, item)
		})
	}
	return g.Wait()
}

// RunCollect is like Run but collects a per-item result alongside any error,
// so a partial failure (one file's parse error) doesn't discard the
// successful results around it — the parser pipeline's failure semantics
// require every file to report independently (§4.1 Failure semantics).
func RunCollect[T any, R any](ctx context.Context, p *Pool, items []T, fn func(context.Context, T) (R, error)) []Result[R] {
	results := make([]Result[R], len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.limit)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			r, err := fn(gctx, item)
			results[i] = Result[R]{Value: r, Err: err}
			return nil // never abort the whole batch on one item's error
		})
	}
	_ = g.Wait()
	return results
}

// Result pairs a per-item value with its error for RunCollect.
type Result[R any] struct {
	Value R
	Err   error
}
