package metrics

import (
	"github.com/san-kum/inksim/internal/grid"
	"github.com/san-kum/inksim/internal/physics"
)

// WetThreshold is the wetness above which a cell counts as wet.
const WetThreshold = 0.05

// FixedFraction is the share of pigment already bound to the paper at the
// last observed tick.
type FixedFraction struct {
	value float64
}

func NewFixedFraction() *FixedFraction { return &FixedFraction{} }

func (f *FixedFraction) Name() string { return "fixed_fraction" }

func (f *FixedFraction) Observe(g *grid.Grid, _ uint64) {
	var floating, fixed float64
	for c := grid.Channel(0); c < grid.NumChannels; c++ {
		fl, fx := g.PigmentMass(c)
		floating += fl
		fixed += fx
	}
	if total := floating + fixed; total > 0 {
		f.value = fixed / total
	} else {
		f.value = 0
	}
}

func (f *FixedFraction) Value() float64 { return f.value }
func (f *FixedFraction) Reset()         { f.value = 0 }

// WetArea is the share of cells wetter than WetThreshold at the last
// observed tick.
type WetArea struct {
	value float64
}

func NewWetArea() *WetArea { return &WetArea{} }

func (w *WetArea) Name() string { return "wet_area" }

func (w *WetArea) Observe(g *grid.Grid, _ uint64) {
	w.value = wetArea(g)
}

func (w *WetArea) Value() float64 { return w.value }
func (w *WetArea) Reset()         { w.value = 0 }

func wetArea(g *grid.Grid) float64 {
	wet := 0
	for _, rho := range g.Rho {
		if physics.Wetness(rho) > WetThreshold {
			wet++
		}
	}
	return float64(wet) / float64(g.N)
}
