package particle

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRand always returns f for floats and the largest value for ints, so
// every birth draw asks for the full spawn budget.
type stubRand struct{ f float32 }

func (s stubRand) Float32() float32 { return s.f }
func (s stubRand) IntN(n int) int   { return n - 1 }

func testConfig(capacity, maxAlive, budget, minLife, maxLife int) Config {
	cfg := DefaultConfig()
	cfg.Capacity = capacity
	cfg.MaxAlive = maxAlive
	cfg.SpawnBudget = budget
	cfg.MinLife = minLife
	cfg.MaxLife = maxLife
	return cfg
}

func aliveIndices(p *Pool) []int {
	var idx []int
	for i, s := range p.Slots() {
		if s.State == Alive {
			idx = append(idx, i)
		}
	}
	return idx
}

func TestNewInvalidConfig(t *testing.T) {
	tests := []struct {
		name  string
		mod   func(*Config)
		field string
	}{
		{"zero capacity", func(c *Config) { c.Capacity = 0 }, "capacity"},
		{"max alive above capacity", func(c *Config) { c.MaxAlive = c.Capacity + 1 }, "max_alive"},
		{"negative max alive", func(c *Config) { c.MaxAlive = -1 }, "max_alive"},
		{"negative spawn budget", func(c *Config) { c.SpawnBudget = -2 }, "spawn_budget"},
		{"zero min life", func(c *Config) { c.MinLife = 0 }, "min_life"},
		{"zero max life", func(c *Config) { c.MaxLife = 0 }, "max_life"},
		{"negative spread", func(c *Config) { c.Spread = -1 }, "spread"},
		{"nan gravity", func(c *Config) { c.Gravity[1] = float32(math.NaN()) }, "gravity"},
		{"inf position", func(c *Config) { c.Position[0] = float32(math.Inf(1)) }, "position"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(&cfg)

			p, err := New(cfg, NewRand(1), &ManualClock{})
			require.Error(t, err)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, ErrConfig)

			var cerr *ConfigError
			require.True(t, errors.As(err, &cerr))
			assert.Equal(t, tt.field, cerr.Field)
		})
	}
}

func TestNewStartsAllDead(t *testing.T) {
	p, err := New(testConfig(50, 10, 5, 10, 20), NewRand(3), &ManualClock{})
	require.NoError(t, err)

	assert.Equal(t, 50, p.Capacity())
	assert.Zero(t, p.AliveCount())
	assert.Empty(t, p.RenderBuffer())

	for i, s := range p.Slots() {
		assert.Equal(t, Dead, s.State, "slot %d", i)
		assert.True(t, finiteVec(s.Position) && finiteVec(s.Velocity) && finiteVec(s.Colour), "slot %d", i)
	}
}

func TestStepInvariants(t *testing.T) {
	cfg := testConfig(100, 20, 5, 20, 60)
	cfg.Position = mgl32.Vec4{0, 1, 0, 1}
	p, err := New(cfg, NewRand(11), &ManualClock{})
	require.NoError(t, err)

	for tick := 0; tick < 1000; tick++ {
		stats := p.Step(1.0 / 60)
		require.LessOrEqual(t, p.AliveCount(), cfg.MaxAlive, "tick %d", tick)
		require.Equal(t, p.AliveCount(), stats.Alive)

		alive := 0
		for _, s := range p.Slots() {
			if s.State == Alive {
				alive++
				require.Positive(t, s.Life, "tick %d", tick)
			}
		}
		require.Equal(t, alive, p.AliveCount())

		buf := p.RenderBuffer()
		require.Len(t, buf, FloatsPerParticle*alive)
		for g := 0; g < len(buf); g += FloatsPerParticle {
			for _, f := range buf[g : g+3] {
				require.False(t, math.IsNaN(float64(f)) || math.IsInf(float64(f), 0))
			}
			for _, c := range buf[g+4 : g+8] {
				require.GreaterOrEqual(t, c, float32(0))
				require.LessOrEqual(t, c, float32(1))
			}
		}
	}
}

func TestStepDeterministic(t *testing.T) {
	cfg := testConfig(100, 20, 5, 20, 60)
	a, err := New(cfg, NewRand(99), &ManualClock{})
	require.NoError(t, err)
	b, err := New(cfg, NewRand(99), &ManualClock{})
	require.NoError(t, err)

	for tick := 0; tick < 1000; tick++ {
		dt := float32(0.01 + 0.001*float64(tick%7))
		a.Step(dt)
		b.Step(dt)
		require.Equal(t, a.RenderBuffer(), b.RenderBuffer(), "tick %d", tick)
	}
}

func TestStepSingleTickLife(t *testing.T) {
	p, err := New(testConfig(10, 3, 10, 1, 1), stubRand{f: 0.5}, &ManualClock{})
	require.NoError(t, err)

	stats := p.Step(0.01)
	assert.Equal(t, 3, stats.Births)
	assert.Equal(t, 7, stats.Dropped)
	assert.Equal(t, []int{0, 1, 2}, aliveIndices(p))

	stats = p.Step(0.01)
	assert.Equal(t, 3, stats.Deaths)
	assert.Equal(t, 3, stats.Births)
	assert.Equal(t, []int{3, 4, 5}, aliveIndices(p))

	p.Step(0.01)
	assert.Equal(t, []int{0, 1, 2}, aliveIndices(p))
}

func TestStepMaxAliveZero(t *testing.T) {
	p, err := New(testConfig(10, 0, 10, 5, 5), NewRand(5), &ManualClock{})
	require.NoError(t, err)

	for i := 0; i < 200; i++ {
		stats := p.Step(0.016)
		require.Zero(t, stats.Births)
		require.Empty(t, p.RenderBuffer())
	}
}

func TestStepHugeDtKillsSameTick(t *testing.T) {
	p, err := New(testConfig(20, 10, 5, 1000, 10), stubRand{f: 0.5}, &ManualClock{})
	require.NoError(t, err)

	p.Step(0.01)
	before := aliveIndices(p)
	require.Len(t, before, 5)

	stats := p.Step(1000)
	assert.Equal(t, len(before), stats.Deaths)
	for _, i := range before {
		s := p.Slot(i)
		assert.Equal(t, Dead, s.State, "slot %d", i)
		assert.Equal(t, p.Config().Position, s.Position, "slot %d should be reset", i)
	}
}

func TestStepGroundDeathIgnoresLife(t *testing.T) {
	cfg := testConfig(8, 4, 4, 10000, 10)
	cfg.Gravity = mgl32.Vec4{0, -1000, 0, 0}
	p, err := New(cfg, stubRand{f: 0.5}, &ManualClock{})
	require.NoError(t, err)

	p.Step(0.1)
	require.Equal(t, 4, p.AliveCount())

	stats := p.Step(0.1)
	assert.Equal(t, 4, stats.Deaths)
	for _, i := range []int{0, 1, 2, 3} {
		assert.Equal(t, Dead, p.Slot(i).State)
	}
}

func TestNewbornsStartAtEmitterMovingUp(t *testing.T) {
	cfg := testConfig(200, 200, 50, 5, 3)
	cfg.Position = mgl32.Vec4{1, 2, 3, 1}
	p, err := New(cfg, NewRand(21), &ManualClock{})
	require.NoError(t, err)

	// the first frame that births anything holds only newborns
	for i := 0; i < 100 && p.AliveCount() == 0; i++ {
		p.Step(0.02)
	}
	require.NotZero(t, p.AliveCount())
	for _, i := range aliveIndices(p) {
		s := p.Slot(i)
		assert.Equal(t, cfg.Position, s.Position)
		assert.GreaterOrEqual(t, s.Velocity.Y(), float32(0))
		assert.GreaterOrEqual(t, s.Life, int32(5))
		assert.Less(t, s.Life, int32(8))
	}
}

func TestUpdateClampsClockDt(t *testing.T) {
	clock := &ManualClock{}
	p, err := New(testConfig(10, 5, 2, 5, 5), NewRand(2), clock)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	assert.Equal(t, MaxFrameDt, p.Update().Dt)

	clock.Advance(10 * time.Millisecond)
	assert.InDelta(t, 0.01, p.Update().Dt, 1e-6)

	assert.Equal(t, float32(3), p.Step(3).Dt)
}

func TestUpdateClockRunningBackwards(t *testing.T) {
	clock := &ManualClock{}
	p, err := New(testConfig(20, 20, 5, 50, 10), NewRand(4), clock)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		clock.Advance(20 * time.Millisecond)
		p.Update()
	}

	before := p.Slots()
	clock.Set(10 * time.Millisecond)
	stats := p.Update()
	assert.Zero(t, stats.Dt)

	after := p.Slots()
	for i := range before {
		if before[i].State == Alive && after[i].State == Alive {
			assert.Equal(t, before[i].Position, after[i].Position, "slot %d moved on a zero step", i)
			assert.Equal(t, before[i].Velocity, after[i].Velocity, "slot %d accelerated on a zero step", i)
		}
	}

	clock.Advance(10 * time.Millisecond)
	assert.InDelta(t, 0.01, p.Update().Dt, 1e-6)
}

func TestRenderBufferIsPure(t *testing.T) {
	p, err := New(testConfig(30, 30, 10, 50, 10), NewRand(8), &ManualClock{})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		p.Step(0.01)
	}

	first := p.RenderBuffer()
	assert.Equal(t, first, p.RenderBuffer())

	prefix := []float32{42}
	appended := p.AppendRenderBuffer(prefix)
	assert.Equal(t, float32(42), appended[0])
	assert.Equal(t, first, appended[1:])
}

func TestSaturationIsLoggedAtDebug(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p, err := New(testConfig(3, 3, 10, 1, 1), stubRand{f: 0.5}, &ManualClock{}, WithLogger(logger))
	require.NoError(t, err)

	stats := p.Step(0.01)
	assert.Equal(t, 3, stats.Births)
	assert.False(t, stats.Saturated)

	// every slot died this frame, so none is eligible yet
	stats = p.Step(0.01)
	assert.Equal(t, 3, stats.Deaths)
	assert.Zero(t, stats.Births)
	assert.True(t, stats.Saturated)
	assert.Equal(t, 10, stats.Dropped)
	assert.Contains(t, logs.String(), "level=DEBUG")
	assert.Contains(t, logs.String(), "particle pool saturated")
	assert.NotContains(t, logs.String(), "level=ERROR")
}

func TestDebugDump(t *testing.T) {
	p, err := New(testConfig(2, 1, 1, 5, 5), stubRand{f: 0.25}, &ManualClock{})
	require.NoError(t, err)
	p.Step(0.01)

	var sb strings.Builder
	require.NoError(t, p.DebugDump(&sb))
	out := sb.String()
	assert.Contains(t, out, "particle 0: state=ALIVE life=9")
	assert.Contains(t, out, "particle 1: state=DEAD")
	assert.Equal(t, 1, p.AliveCount())
}
