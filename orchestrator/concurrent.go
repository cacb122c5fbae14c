package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Gather runs every fn concurrently and returns their results by position.
// One branch's failure never cancels its siblings; a failed branch leaves
// the zero value of T in its slot, and its error is not returned. No other
// code calls it: hybrid retrieval uses errgroup directly, and the creator
// agent's RAG lookups and the MCP service's parallel mode use
// sync.WaitGroup.
func Gather[T any](ctx context.Context, fns ...func(ctx context.Context) (T, error)) []T {
	results := make([]T, len(fns))
	g, gctx := errgroup.WithContext(ctx)
	for i, fn := range fns {
		g.Go(func() error {
			res, err := fn(gctx)
			if err != nil {
				var zero T
				results[i] = zero
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait() // branches never return a non-nil error; failures are captured as zero values
	return results
}
