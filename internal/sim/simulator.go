package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/partsim/internal/particle"
)

type Runner struct {
	pool      *particle.Pool
	buffers   *BufferPool
	metrics   []Metric
	observers []Observer
}

func New(pool *particle.Pool) *Runner {
	return &Runner{
		pool:      pool,
		buffers:   NewBufferPool(pool.Capacity() * particle.FloatsPerParticle),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (r *Runner) Pool() *particle.Pool { return r.pool }

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

// Run drives the pool for cfg.Frames updates. On cancellation the partial
// result is returned along with ctx.Err().
func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Alive:   make([]int, 0, cfg.Frames),
		Births:  make([]int, 0, cfg.Frames),
		Deaths:  make([]int, 0, cfg.Frames),
		Dt:      make([]float32, 0, cfg.Frames),
		Metrics: make(map[string]float64),
		Seed:    cfg.Seed,
	}

	for _, m := range r.metrics {
		m.Reset()
	}

	t := 0.0
	for i := 0; i < cfg.Frames; i++ {
		select {
		case <-ctx.Done():
			r.finish(result)
			return result, ctx.Err()
		default:
		}

		var stats particle.FrameStats
		if cfg.Dt > 0 {
			stats = r.pool.Step(cfg.Dt)
		} else {
			stats = r.pool.Update()
		}
		t += float64(stats.Dt)

		result.Alive = append(result.Alive, stats.Alive)
		result.Births = append(result.Births, stats.Births)
		result.Deaths = append(result.Deaths, stats.Deaths)
		result.Dt = append(result.Dt, stats.Dt)
		if stats.Saturated {
			result.Saturated++
		}
		result.FramesRun++
		result.SimTime = t

		if len(r.metrics) > 0 || len(r.observers) > 0 {
			buf := r.pool.AppendRenderBuffer(r.buffers.Get())
			f := Frame{Index: i, Time: t, Stats: stats, Buffer: buf}
			for _, m := range r.metrics {
				m.Observe(f)
			}
			for _, o := range r.observers {
				o.OnFrame(f)
			}
			r.buffers.Put(buf)
		}
	}

	r.finish(result)
	return result, nil
}

func (r *Runner) finish(result *Result) {
	result.Final = r.pool.RenderBuffer()
	result.FinalAlive = r.pool.AliveCount()
	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func validateConfig(cfg Config) error {
	if cfg.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", cfg.Frames)
	}
	if cfg.Dt < 0 {
		return fmt.Errorf("dt must not be negative, got %f", cfg.Dt)
	}
	return nil
}
