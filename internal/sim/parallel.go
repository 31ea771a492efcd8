package sim

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/partsim/internal/particle"
)

// Ensemble runs independent pools built from one emitter config, each with
// its own seed. Every pool stays on the goroutine that created it.
type Ensemble struct {
	emitter   particle.Config
	numRuns   int
	seedStart uint64
	metrics   func() []Metric
}

// NewEnsemble creates an ensemble. metrics, if non-nil, is called once per
// run so no metric instance is shared between goroutines.
func NewEnsemble(emitter particle.Config, numRuns int, seedStart uint64, metrics func() []Metric) *Ensemble {
	return &Ensemble{emitter: emitter, numRuns: numRuns, seedStart: seedStart, metrics: metrics}
}

func (e *Ensemble) Run(ctx context.Context, cfg Config) ([]*Result, error) {
	if cfg.Dt <= 0 {
		return nil, fmt.Errorf("ensemble runs need an explicit dt, got %f", cfg.Dt)
	}
	if err := e.emitter.Validate(); err != nil {
		return nil, err
	}

	results := make([]*Result, e.numRuns)
	errs := make([]error, e.numRuns)

	var wg sync.WaitGroup
	for i := 0; i < e.numRuns; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + uint64(idx)

			pool, err := particle.New(e.emitter, particle.NewRand(cfgCopy.Seed), &particle.ManualClock{})
			if err != nil {
				errs[idx] = err
				return
			}
			r := New(pool)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					r.AddMetric(m)
				}
			}

			results[idx], errs[idx] = r.Run(ctx, cfgCopy)
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
