package sim

import "github.com/san-kum/partsim/internal/particle"

// Frame is what observers and metrics see after each update. Buffer is only
// valid for the duration of the callback.
type Frame struct {
	Index  int
	Time   float64
	Stats  particle.FrameStats
	Buffer []float32
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }

type Config struct {
	Frames int
	// Dt is the explicit timestep. Zero means the pool's clock drives it.
	Dt float32
	// Seed is the seed the pool's Rand was built from. It is copied into
	// Result so a run can be reproduced.
	Seed uint64
}

func DefaultConfig() Config {
	return Config{Frames: 600, Dt: 1.0 / 60}
}

type Result struct {
	Alive      []int
	Births     []int
	Deaths     []int
	Dt         []float32
	Metrics    map[string]float64
	Saturated  int
	FramesRun  int
	SimTime    float64
	Final      []float32
	FinalAlive int
	Seed       uint64
}
