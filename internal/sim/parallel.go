package sim

import (
	"context"
	"sync"
)

// Ensemble runs many independent simulations concurrently. Because a
// Simulator (and a skeleton behind it) is stateful, the ensemble builds a
// fresh simulator per run from the supplied factory.
type Ensemble struct {
	build     func() *Simulator
	numRuns   int
	seedStart int64
}

func NewEnsemble(build func() *Simulator, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{build: build, numRuns: numRuns, seedStart: seedStart}
}

func (e *Ensemble) Run(ctx context.Context, x0 State, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(idx)

			results[idx], errs[idx] = e.build().Run(ctx, x0, cfgCopy)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// ParallelFor splits [0, n) across goroutines in chunks of at least
// minChunk.
func ParallelFor(n, minChunk, workers int, fn func(start, end int)) {
	if workers < 1 {
		workers = 1
	}
	if n <= minChunk || workers == 1 {
		fn(0, n)
		return
	}
	if n/minChunk < workers {
		workers = n / minChunk
	}
	if workers < 1 {
		workers = 1
	}

	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if start >= n {
			break
		}
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}
