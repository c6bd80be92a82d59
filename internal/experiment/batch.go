package experiment

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/musaraza08/ant-colony-optimisation/internal/colony"
)

// BatchResult is the outcome of one parameter set within a batch.
type BatchResult struct {
	Params Params
	Points []DataPoint
	Err    error
}

// RunBatch executes one experiment per parameter set across a pool of
// worker goroutines. Every worker builds its own simulation, so no mutable
// state is ever shared between concurrent runs; results come back in the
// same order as paramSets. workers <= 0 means one per CPU.
func RunBatch(base colony.Config, paramSets []Params, opts Options, workers int, logger colony.Logger) []BatchResult {
	if logger == nil {
		logger = colony.NewNoOpLogger()
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paramSets) {
		workers = len(paramSets)
	}

	results := make([]BatchResult, len(paramSets))
	jobs := make(chan int)

	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				points, err := Run(base, paramSets[i], opts)
				results[i] = BatchResult{Params: paramSets[i], Points: points, Err: err}

				mu.Lock()
				completed++
				logger.Infof("completed %d/%d experiments (%.1f%%)",
					completed, len(paramSets), float64(completed)/float64(len(paramSets))*100)
				mu.Unlock()
			}
		}()
	}

	for i := range paramSets {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// CollectPoints flattens batch results into one data point slice, returning
// the first error encountered alongside whatever succeeded.
func CollectPoints(results []BatchResult) ([]DataPoint, error) {
	var points []DataPoint
	var firstErr error
	for _, r := range results {
		if r.Err != nil && firstErr == nil {
			firstErr = fmt.Errorf("experiment %v: %w", r.Params, r.Err)
			continue
		}
		points = append(points, r.Points...)
	}
	return points, firstErr
}
