package metrics

import "github.com/san-kum/partsim/internal/sim"

// Turnover is the mean number of deaths per frame.
type Turnover struct {
	name    string
	deaths  int
	samples int
}

func NewTurnover() *Turnover {
	return &Turnover{name: "turnover"}
}

func (t *Turnover) Name() string { return t.name }

func (t *Turnover) Observe(f sim.Frame) {
	t.deaths += f.Stats.Deaths
	t.samples++
}

func (t *Turnover) Value() float64 {
	if t.samples == 0 {
		return 0
	}
	return float64(t.deaths) / float64(t.samples)
}

func (t *Turnover) Reset() {
	t.deaths = 0
	t.samples = 0
}

// Saturation is the fraction of frames whose births ran out of dead slots.
type Saturation struct {
	name      string
	saturated int
	samples   int
}

func NewSaturation() *Saturation {
	return &Saturation{name: "saturation"}
}

func (s *Saturation) Name() string { return s.name }

func (s *Saturation) Observe(f sim.Frame) {
	s.samples++
	if f.Stats.Saturated {
		s.saturated++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.saturated) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.saturated = 0
	s.samples = 0
}

// All returns a fresh instance of every metric.
func All() []sim.Metric {
	return []sim.Metric{NewPeakAlive(), NewMeanAlive(), NewMeanHeight(), NewTurnover(), NewSaturation()}
}
