package metrics

import (
	"math"

	"github.com/chewxy/math32"
	"github.com/san-kum/inksim/internal/grid"
)

// Stability is the fraction of observed ticks whose grid was finite with
// every speed at or below the limit.
type Stability struct {
	limit      float32
	violations int
	samples    int
}

func NewStability(limit float32) *Stability {
	return &Stability{limit: limit}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(g *grid.Grid, _ uint64) {
	s.samples++
	if !g.Valid() || maxSpeed(g) > s.limit {
		s.violations++
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}

// MaxSpeed is the peak cell speed seen.
type MaxSpeed struct {
	peak float32
}

func NewMaxSpeed() *MaxSpeed { return &MaxSpeed{} }

func (m *MaxSpeed) Name() string { return "max_speed" }

func (m *MaxSpeed) Observe(g *grid.Grid, _ uint64) {
	m.peak = max(m.peak, maxSpeed(g))
}

func (m *MaxSpeed) Value() float64 { return float64(m.peak) }
func (m *MaxSpeed) Reset()         { m.peak = 0 }

func maxSpeed(g *grid.Grid) float32 {
	var peak float32
	for i := 0; i < g.N; i++ {
		ux, uy := g.Ux[i], g.Uy[i]
		peak = max(peak, ux*ux+uy*uy)
	}
	return math32.Sqrt(peak)
}

// DensityDeviation is the largest mean |rho - rest| seen over the grid.
type DensityDeviation struct {
	peak float64
}

func NewDensityDeviation() *DensityDeviation { return &DensityDeviation{} }

func (d *DensityDeviation) Name() string { return "density_deviation" }

func (d *DensityDeviation) Observe(g *grid.Grid, _ uint64) {
	sum := 0.0
	for _, rho := range g.Rho {
		sum += math.Abs(float64(rho - grid.RhoRef))
	}
	d.peak = math.Max(d.peak, sum/float64(g.N))
}

func (d *DensityDeviation) Value() float64 { return d.peak }
func (d *DensityDeviation) Reset()         { d.peak = 0 }
