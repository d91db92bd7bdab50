package metrics

import (
	"math"

	"github.com/san-kum/inksim/internal/grid"
)

// KineticEnergy is the mean over observed ticks of the total kinetic energy
// of the water layer, sum of 0.5 rho |u|^2.
type KineticEnergy struct {
	total   float64
	samples int
}

func NewKineticEnergy() *KineticEnergy { return &KineticEnergy{} }

func (e *KineticEnergy) Name() string { return "kinetic_energy" }

func (e *KineticEnergy) Observe(g *grid.Grid, _ uint64) {
	e.total += kinetic(g)
	e.samples++
}

func (e *KineticEnergy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.total / float64(e.samples)
}

func (e *KineticEnergy) Reset() {
	e.total = 0
	e.samples = 0
}

func kinetic(g *grid.Grid) float64 {
	sum := 0.0
	for i := 0; i < g.N; i++ {
		ux, uy := float64(g.Ux[i]), float64(g.Uy[i])
		sum += 0.5 * float64(g.Rho[i]) * (ux*ux + uy*uy)
	}
	return sum
}

// PigmentDrift is the largest relative change of total pigment, floating
// plus fixed over all channels, from the first observed tick. Evaporation
// makes it grow slowly; anything large means mass is leaking.
type PigmentDrift struct {
	initial  float64
	maxDrift float64
	samples  int
}

func NewPigmentDrift() *PigmentDrift { return &PigmentDrift{} }

func (d *PigmentDrift) Name() string { return "pigment_drift" }

func (d *PigmentDrift) Observe(g *grid.Grid, _ uint64) {
	m := totalPigment(g)
	if d.samples == 0 {
		d.initial = m
	}
	d.samples++
	if d.initial != 0 {
		d.maxDrift = math.Max(d.maxDrift, math.Abs(m-d.initial)/d.initial)
	}
}

func (d *PigmentDrift) Value() float64 { return d.maxDrift }

func (d *PigmentDrift) Reset() {
	d.initial = 0
	d.maxDrift = 0
	d.samples = 0
}

func totalPigment(g *grid.Grid) float64 {
	sum := 0.0
	for c := grid.Channel(0); c < grid.NumChannels; c++ {
		fl, fx := g.PigmentMass(c)
		sum += fl + fx
	}
	return sum
}
