package analyze

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/arjunmahishi/tsls/cst"
	"github.com/arjunmahishi/tsls/types"
)

// runWorkers processes files in parallel and collects the results that
// process keeps. Each worker owns its parser. Result order is not defined.
func runWorkers[T any](ctx context.Context, language cst.Language, files []types.FileJob, jobs int, process func(ctx context.Context, p *cst.Parser, job types.FileJob) (T, bool)) ([]T, error) {
	if len(files) == 0 {
		return nil, nil
	}

	workerCount := jobs
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > len(files) {
		workerCount = len(files)
	}

	g, ctx := errgroup.WithContext(ctx)
	jobQueue := make(chan types.FileJob, 128)
	results := make(chan T, 128)

	g.Go(func() error {
		defer close(jobQueue)
		for _, f := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			select {
			case jobQueue <- f:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < workerCount; i++ {
		g.Go(func() error {
			parser := cst.NewParser(language)
			for job := range jobQueue {
				if ctx.Err() != nil {
					continue
				}
				if r, ok := process(ctx, parser, job); ok {
					results <- r
				}
			}
			return nil
		})
	}

	var out []T
	done := make(chan struct{})
	go func() {
		for r := range results {
			out = append(out, r)
		}
		close(done)
	}()

	err := g.Wait()
	close(results)
	<-done
	if err != nil {
		return nil, err
	}
	return out, nil
}
