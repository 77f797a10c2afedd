package concurrent

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
)

// ForEach runs action for every item with at most workers goroutines in
// flight, waiting for all of them. The first error cancels the shared
// context and is returned. A workers value below one means unbounded.
func ForEach[T any](ctx context.Context, workers int, items []T, action func(ctx context.Context, item T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for _, item := range items {
		item := item
		g.Go(func() error {
			return action(gctx, item)
		})
	}
	return g.Wait()
}

// Map applies mapFn to every item in parallel, preserving order. The
// workers parameter controls the number of goroutines; values below one
// mean one goroutine per item.
func Map[T any, R any](workers int, items []T, mapFn func(T) R) []R {
	if workers < 1 {
		workers = len(items)
	}
	out := make([]R, len(items))
	var wg sync.WaitGroup
	sem := make(chan struct{}, max(workers, 1))

	for idx, val := range items {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, v T) {
			defer wg.Done()
			out[i] = mapFn(v)
			<-sem
		}(idx, val)
	}
	wg.Wait()
	return out
}
