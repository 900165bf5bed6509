// Package parallel runs independent units of work, such as the per-worker transition
// stages of an epoch, on a bounded number of goroutines.
package parallel

import (
	"sync"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Number of worker goroutines to use.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// WithWorkers returns a config running exactly n items at a time.
func WithWorkers(n int) Config {
	return Config{
		Enabled:      n > 1,
		NumWorkers:   max(n, 1),
		MinChunkSize: 1,
	}
}

// ForErr executes f(i) for i in [0, n) using at most cfg.NumWorkers goroutines and returns
// the error of the lowest index that failed. Every index runs even if some fail.
func ForErr(n int, f func(i int) error, cfg Config) error {
	errs := make([]error, n)
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < max(cfg.MinChunkSize, 2) {
		// Sequential fallback.
		for i := 0; i < n; i++ {
			errs[i] = f(i)
		}
		return firstErr(errs)
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, cfg.NumWorkers)
	for i := 0; i < n; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer func() {
				<-sem
				wg.Done()
			}()
			errs[i] = f(i)
		}(i)
	}
	wg.Wait()
	return firstErr(errs)
}

func firstErr(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
