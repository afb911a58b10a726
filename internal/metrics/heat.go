package metrics

import (
	"math"

	"github.com/san-kum/gridlog/internal/gridlog"
)

// Metric accumulates one scalar over the timesteps of a series.
type Metric interface {
	Name() string
	Observe(t int64, g gridlog.Grid)
	Value() float64
	Reset()
}

// TotalHeat is the mean grid sum over all observed timesteps.
type TotalHeat struct {
	name    string
	total   float64
	samples int
}

func NewTotalHeat() *TotalHeat {
	return &TotalHeat{name: "total_heat"}
}

func (h *TotalHeat) Name() string { return h.name }

func (h *TotalHeat) Observe(t int64, g gridlog.Grid) {
	h.total += float64(gridSum(g))
	h.samples++
}

func (h *TotalHeat) Value() float64 {
	if h.samples == 0 {
		return 0
	}
	return h.total / float64(h.samples)
}

func (h *TotalHeat) Reset() {
	h.total = 0
	h.samples = 0
}

// PeakValue is the largest cell seen.
type PeakValue struct {
	name string
	peak float64
	seen bool
}

func NewPeakValue() *PeakValue {
	return &PeakValue{name: "peak_value"}
}

func (p *PeakValue) Name() string { return p.name }

func (p *PeakValue) Observe(t int64, g gridlog.Grid) {
	for _, v := range g.Values {
		if !p.seen || float64(v) > p.peak {
			p.peak = float64(v)
			p.seen = true
		}
	}
}

func (p *PeakValue) Value() float64 { return p.peak }

func (p *PeakValue) Reset() {
	p.peak = 0
	p.seen = false
}

// HeatDrift is the largest relative change of the grid sum against the
// first observed timestep. A zero initial sum yields zero drift.
type HeatDrift struct {
	name     string
	initial  float64
	maxDrift float64
	samples  int
}

func NewHeatDrift() *HeatDrift {
	return &HeatDrift{name: "heat_drift"}
}

func (d *HeatDrift) Name() string { return d.name }

func (d *HeatDrift) Observe(t int64, g gridlog.Grid) {
	sum := float64(gridSum(g))
	if d.samples == 0 {
		d.initial = sum
	}
	d.samples++

	if d.initial != 0 {
		drift := math.Abs(sum-d.initial) / math.Abs(d.initial)
		d.maxDrift = math.Max(d.maxDrift, drift)
	}
}

func (d *HeatDrift) Value() float64 { return d.maxDrift }

func (d *HeatDrift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}

func DefaultMetrics() []Metric {
	return []Metric{NewTotalHeat(), NewPeakValue(), NewHeatDrift()}
}

// Evaluate resets ms, feeds every timestep of s in order and returns the
// values keyed by metric name.
func Evaluate(s *gridlog.Series, ms []Metric) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		m.Reset()
	}
	for i := 0; i < s.Len(); i++ {
		g := s.Grid(i)
		for _, m := range ms {
			m.Observe(s.Timesteps[i], g)
		}
	}
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}

func gridSum(g gridlog.Grid) int64 {
	var sum int64
	for _, v := range g.Values {
		sum += v
	}
	return sum
}
