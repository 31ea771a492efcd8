package particle

import (
	"math/rand/v2"
	"time"
)

// Rand is the uniform random source consumed by a pool.
type Rand interface {
	// Float32 returns a value in [0, 1).
	Float32() float32
	// IntN returns a value in [0, n). n is always > 0.
	IntN(n int) int
}

// NewRand returns a PCG-backed Rand seeded with seed.
func NewRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Clock is a monotonic time source.
type Clock interface {
	Now() time.Duration
}

// SystemClock reads the process monotonic clock.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Now() time.Duration {
	return time.Since(c.start)
}

// ManualClock only moves when told to.
type ManualClock struct {
	now time.Duration
}

func (c *ManualClock) Now() time.Duration { return c.now }

func (c *ManualClock) Advance(d time.Duration) { c.now += d }

func (c *ManualClock) Set(d time.Duration) { c.now = d }
