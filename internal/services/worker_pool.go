package services

import (
	"context"
	"sync"
)

// RunPool executes independent units of work with at most `workers` in flight
// and collects one result per job. Results arrive in completion order, which
// callers must not rely on.
func RunPool[J any, R any](ctx context.Context, workers int, jobs []J, fn func(context.Context, J) R) []R {
	if len(jobs) == 0 || fn == nil {
		return nil
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobCh := make(chan J)
	resultCh := make(chan R)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				resultCh <- fn(ctx, job)
			}
		}()
	}

	go func() {
		defer close(jobCh)
		for _, job := range jobs {
			jobCh <- job
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	results := make([]R, 0, len(jobs))
	for result := range resultCh {
		results = append(results, result)
	}

	return results
}
