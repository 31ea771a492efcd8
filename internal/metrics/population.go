package metrics

import (
	"github.com/san-kum/partsim/internal/particle"
	"github.com/san-kum/partsim/internal/sim"
)

type PeakAlive struct {
	name string
	peak int
}

func NewPeakAlive() *PeakAlive {
	return &PeakAlive{name: "peak_alive"}
}

func (p *PeakAlive) Name() string { return p.name }

func (p *PeakAlive) Observe(f sim.Frame) {
	if f.Stats.Alive > p.peak {
		p.peak = f.Stats.Alive
	}
}

func (p *PeakAlive) Value() float64 { return float64(p.peak) }

func (p *PeakAlive) Reset() { p.peak = 0 }

type MeanAlive struct {
	name    string
	sum     float64
	samples int
}

func NewMeanAlive() *MeanAlive {
	return &MeanAlive{name: "mean_alive"}
}

func (m *MeanAlive) Name() string { return m.name }

func (m *MeanAlive) Observe(f sim.Frame) {
	m.sum += float64(f.Stats.Alive)
	m.samples++
}

func (m *MeanAlive) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanAlive) Reset() {
	m.sum = 0
	m.samples = 0
}

// MeanHeight averages the y coordinate of every alive particle across all
// observed frames.
type MeanHeight struct {
	name  string
	sum   float64
	count int
}

func NewMeanHeight() *MeanHeight {
	return &MeanHeight{name: "mean_height"}
}

func (m *MeanHeight) Name() string { return m.name }

func (m *MeanHeight) Observe(f sim.Frame) {
	for i := 1; i < len(f.Buffer); i += particle.FloatsPerParticle {
		m.sum += float64(f.Buffer[i])
		m.count++
	}
}

func (m *MeanHeight) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}

func (m *MeanHeight) Reset() {
	m.sum = 0
	m.count = 0
}
