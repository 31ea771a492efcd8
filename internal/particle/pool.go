package particle

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxFrameDt caps the clock-derived timestep so a stalled frame cannot blow
// up the integration.
const MaxFrameDt float32 = 0.05

// FloatsPerParticle is the stride of a render buffer: xyzw position then rgba.
const FloatsPerParticle = 8

type State uint8

const (
	Dead State = iota
	Alive
)

func (s State) String() string {
	if s == Alive {
		return "ALIVE"
	}
	return "DEAD"
}

// Slot is a copy of one pool entry.
type Slot struct {
	Position mgl32.Vec4
	Velocity mgl32.Vec4
	Colour   mgl32.Vec4
	Life     int32
	State    State
}

// FrameStats describes what one update did.
type FrameStats struct {
	Dt     float32
	Births int
	Deaths int
	// Dropped counts drawn births that were not placed, either because of
	// the alive ceiling or because no eligible dead slot was left.
	Dropped int
	// Saturated is set when births ran out of dead slots.
	Saturated bool
	Alive     int
}

type Option func(*Pool)

// WithLogger routes pool diagnostics to l. Pools log nothing by default.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.log = l
		}
	}
}

// Pool is a fixed set of particle slots stored as parallel arrays indexed
// by slot id.
type Pool struct {
	cfg   Config
	rng   Rand
	clock Clock
	log   *slog.Logger

	pos    []mgl32.Vec4
	vel    []mgl32.Vec4
	colour []mgl32.Vec4
	life   []int32
	state  []State
	// reapedAt holds the frame a slot last died on. A slot that died in the
	// current frame is not eligible for birth until the next one.
	reapedAt []uint64

	alive     int
	frame     uint64
	lastFrame time.Duration
}

// New allocates cfg.Capacity dead slots. A nil rng is replaced by a
// time-seeded source and a nil clock by the system clock.
func New(cfg Config, rng Rand, clock Clock, opts ...Option) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = NewRand(uint64(time.Now().UnixNano()))
	}
	if clock == nil {
		clock = NewSystemClock()
	}

	n := cfg.Capacity
	p := &Pool{
		cfg:      cfg,
		rng:      rng,
		clock:    clock,
		log:      slog.New(discardHandler{}),
		pos:      make([]mgl32.Vec4, n),
		vel:      make([]mgl32.Vec4, n),
		colour:   make([]mgl32.Vec4, n),
		life:     make([]int32, n),
		state:    make([]State, n),
		reapedAt: make([]uint64, n),
	}
	for _, opt := range opts {
		opt(p)
	}
	for i := range n {
		p.reset(i)
	}
	p.lastFrame = clock.Now()
	return p, nil
}

func (p *Pool) Config() Config  { return p.cfg }
func (p *Pool) Capacity() int   { return len(p.state) }
func (p *Pool) AliveCount() int { return p.alive }

// Frame returns the number of updates performed so far.
func (p *Pool) Frame() uint64 { return p.frame }

func (p *Pool) Slot(i int) Slot {
	return Slot{
		Position: p.pos[i],
		Velocity: p.vel[i],
		Colour:   p.colour[i],
		Life:     p.life[i],
		State:    p.state[i],
	}
}

func (p *Pool) Slots() []Slot {
	out := make([]Slot, len(p.state))
	for i := range out {
		out[i] = p.Slot(i)
	}
	return out
}

// Update advances the pool by the wall-clock time since the previous
// Update, clamped to [0, MaxFrameDt]. A clock that runs backwards yields a
// zero step.
func (p *Pool) Update() FrameStats {
	now := p.clock.Now()
	dt := float32((now - p.lastFrame).Seconds())
	p.lastFrame = now
	switch {
	case dt < 0:
		dt = 0
	case dt > MaxFrameDt:
		dt = MaxFrameDt
	}
	return p.advance(dt)
}

// Step advances the pool by exactly dt seconds. dt is not clamped.
func (p *Pool) Step(dt float32) FrameStats {
	return p.advance(dt)
}

func (p *Pool) advance(dt float32) FrameStats {
	p.frame++
	stats := FrameStats{Dt: dt}

	// Everything alive right now was alive before this frame's births, so
	// integrate and reap before placing newborns.
	h := dt * 0.5
	dv := p.cfg.Gravity.Mul(h)
	for i, st := range p.state {
		if st != Alive {
			continue
		}
		p.vel[i] = p.vel[i].Add(dv)
		p.pos[i] = p.pos[i].Add(p.vel[i].Mul(h))
		p.life[i]--
		if p.life[i] <= 0 || p.pos[i].Y() < 0 {
			p.reset(i)
			p.reapedAt[i] = p.frame
			p.alive--
			stats.Deaths++
		}
	}

	if p.alive < p.cfg.MaxAlive {
		births := p.rng.IntN(p.cfg.SpawnBudget + 1)
		want := min(births, p.cfg.MaxAlive-p.alive)
		stats.Births, stats.Saturated = p.birth(want)
		stats.Dropped = births - stats.Births
		if stats.Saturated {
			p.log.Debug("particle pool saturated",
				slog.Int("requested", births),
				slog.Int("born", stats.Births),
				slog.Uint64("frame", p.frame))
		}
	}

	stats.Alive = p.alive
	return stats
}

// birth activates up to n dead slots, scanning from slot 0. It reports
// whether it ran out of eligible slots before placing all n.
func (p *Pool) birth(n int) (int, bool) {
	born := 0
	next := 0
	for born < n {
		for next < len(p.state) && (p.state[next] != Dead || p.reapedAt[next] == p.frame) {
			next++
		}
		if next == len(p.state) {
			return born, true
		}
		p.reset(next)
		p.state[next] = Alive
		p.alive++
		born++
		next++
	}
	return born, false
}

// reset re-randomizes slot i and leaves it dead.
func (p *Pool) reset(i int) {
	p.pos[i] = p.cfg.Position
	dir := p.cfg.EmitDir.Mul(p.rng.Float32()).Add(p.onSphere().Mul(p.cfg.Spread))
	dir[1] = float32(math.Abs(float64(dir[1])))
	p.vel[i] = dir
	p.colour[i] = mgl32.Vec4{p.rng.Float32(), p.rng.Float32(), p.rng.Float32(), p.rng.Float32()}
	p.life[i] = int32(p.cfg.MinLife + p.rng.IntN(p.cfg.MaxLife))
	p.state[i] = Dead
}

// onSphere samples a point on the unit sphere from uniform spherical angles.
func (p *Pool) onSphere() mgl32.Vec4 {
	theta := 2 * math.Pi * float64(p.rng.Float32())
	phi := math.Pi * float64(p.rng.Float32())
	sinPhi := math.Sin(phi)
	return mgl32.Vec4{
		float32(sinPhi * math.Cos(theta)),
		float32(sinPhi * math.Sin(theta)),
		float32(math.Cos(phi)),
		0,
	}
}

// RenderBuffer returns position and colour of every alive slot in slot
// order, FloatsPerParticle floats each.
func (p *Pool) RenderBuffer() []float32 {
	return p.AppendRenderBuffer(make([]float32, 0, p.alive*FloatsPerParticle))
}

// AppendRenderBuffer appends the render buffer to dst so a renderer can
// reuse its upload slice across frames.
func (p *Pool) AppendRenderBuffer(dst []float32) []float32 {
	for i, st := range p.state {
		if st != Alive {
			continue
		}
		dst = append(dst, p.pos[i][:]...)
		dst = append(dst, p.colour[i][:]...)
	}
	return dst
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }
