package particle

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	DefaultCapacity    = 2000
	DefaultMaxAlive    = 100
	DefaultSpawnBudget = 10
	DefaultMinLife     = 100
	DefaultMaxLife     = 500
	DefaultSpread      = 5.5
)

var (
	DefaultGravity = mgl32.Vec4{0, -9.81, 0, 0}
	// DefaultEmitDir is the upward bias added to every birth direction.
	// w carries the historical size channel.
	DefaultEmitDir = mgl32.Vec4{0, 1, 0, 0.1}
)

// Config holds every construction parameter of a Pool. Nothing here can be
// changed once the pool exists.
type Config struct {
	Capacity    int
	Position    mgl32.Vec4
	MaxAlive    int
	SpawnBudget int
	// Life of a newborn is drawn from [MinLife, MinLife+MaxLife) ticks.
	MinLife int
	MaxLife int
	Gravity mgl32.Vec4
	EmitDir mgl32.Vec4
	Spread  float32
}

func DefaultConfig() Config {
	return Config{
		Capacity:    DefaultCapacity,
		MaxAlive:    DefaultMaxAlive,
		SpawnBudget: DefaultSpawnBudget,
		MinLife:     DefaultMinLife,
		MaxLife:     DefaultMaxLife,
		Gravity:     DefaultGravity,
		EmitDir:     DefaultEmitDir,
		Spread:      DefaultSpread,
	}
}

// Validate reports the first invalid field as a *ConfigError.
func (c Config) Validate() error {
	switch {
	case c.Capacity <= 0:
		return configErr("capacity", "must be positive, got %d", c.Capacity)
	case c.MaxAlive < 0:
		return configErr("max_alive", "must not be negative, got %d", c.MaxAlive)
	case c.MaxAlive > c.Capacity:
		return configErr("max_alive", "%d exceeds capacity %d", c.MaxAlive, c.Capacity)
	case c.SpawnBudget < 0:
		return configErr("spawn_budget", "must not be negative, got %d", c.SpawnBudget)
	case c.MinLife < 1:
		return configErr("min_life", "must be at least 1, got %d", c.MinLife)
	case c.MaxLife < 1:
		return configErr("max_life", "must be at least 1, got %d", c.MaxLife)
	case c.MinLife > math.MaxInt32-c.MaxLife:
		return configErr("max_life", "life range overflows int32")
	case c.Spread < 0 || !finite(c.Spread):
		return configErr("spread", "must be finite and non-negative, got %v", c.Spread)
	case !finiteVec(c.Position):
		return configErr("position", "must be finite, got %v", c.Position)
	case !finiteVec(c.Gravity):
		return configErr("gravity", "must be finite, got %v", c.Gravity)
	case !finiteVec(c.EmitDir):
		return configErr("emit_dir", "must be finite, got %v", c.EmitDir)
	}
	return nil
}

func finite(f float32) bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteVec(v mgl32.Vec4) bool {
	for _, f := range v {
		if !finite(f) {
			return false
		}
	}
	return true
}
