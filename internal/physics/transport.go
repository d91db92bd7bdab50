package physics

import (
	"github.com/san-kum/inksim/internal/grid"
)

const (
	diffuseMin = 0.01
	diffuseMax = 0.12
	// fiberPin is how much dense fibre narrows the bleed.
	fiberPin = 0.8
	// evaporation is the bounded per-tick loss of floating pigment.
	evaporation = 2e-5
	maxFixRate  = 0.5
)

// Wetness maps density above rest to [0, 1]; 1 at the brush water cap.
func Wetness(rho float32) float32 {
	return clamp((rho-grid.RhoRef)/(grid.RhoWetMax-grid.RhoRef), 0, 1)
}

// Anisotropy turns the paper's fibre alignment into the x/y diffusion bias.
func Anisotropy(align float32) float32 {
	return 0.6 * clamp(align, 0, 100) / 100
}

// StepPigment moves floating pigment for one tick, channel by channel:
// conservative upwind advection along (ux, uy), wetness- and fibre-dependent
// diffusion, fixation into the paper and a small evaporation loss. Fixed
// pigment only ever grows here. It does not allocate.
func StepPigment(g *grid.Grid, p Params, align float32) {
	prepareCoefficients(g)
	a := Anisotropy(align)
	for c := grid.Channel(0); c < grid.NumChannels; c++ {
		sanitize(g.Floating[c])
		advect(g, g.Floating[c])
		diffuse(g, g.Floating[c], 1+a, 1-a)
		fixate(g, p, g.Floating[c], g.Fixed[c])
	}
}

// prepareCoefficients fills g.Coef with the per-cell diffusion coefficient
// shared by all three channels.
func prepareCoefficients(g *grid.Grid) {
	for i := 0; i < g.N; i++ {
		wet := Wetness(g.Rho[i])
		d := diffuseMin + (diffuseMax-diffuseMin)*wet
		g.Coef[i] = d * (1 - fiberPin*g.Fibers[i])
	}
}

// sanitize zeroes negative and non-finite pigment so it cannot spread.
func sanitize(c []float32) {
	for i, v := range c {
		if !(v > 0) || !grid.Finite(v) {
			c[i] = 0
		}
	}
}

// advect applies donor-cell fluxes on every interior face. Boundary faces
// carry nothing. With |u| <= MaxSpeed at most 4*MaxSpeed of a cell can leave
// per tick, so the result stays non-negative.
func advect(g *grid.Grid, c []float32) {
	w, h := g.W, g.H
	out := g.Tmp
	copy(out, c)
	ux, uy := g.Ux, g.Uy

	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w-1; x++ {
			i := row + x
			v := 0.5 * (ux[i] + ux[i+1])
			var flux float32
			if v > 0 {
				flux = v * c[i]
			} else {
				flux = v * c[i+1]
			}
			out[i] -= flux
			out[i+1] += flux
		}
	}
	for y := 0; y < h-1; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			i := row + x
			j := i + w
			v := 0.5 * (uy[i] + uy[j])
			var flux float32
			if v > 0 {
				flux = v * c[i]
			} else {
				flux = v * c[j]
			}
			out[i] -= flux
			out[j] += flux
		}
	}
	copy(c, out)
}

// diffuse exchanges pigment across faces proportionally to the concentration
// difference. kx and ky weight the fibre direction.
func diffuse(g *grid.Grid, c []float32, kx, ky float32) {
	w, h := g.W, g.H
	out := g.Tmp
	copy(out, c)
	coef := g.Coef

	for y := 0; y < h; y++ {
		row := y * w
		for x := 0; x < w-1; x++ {
			i := row + x
			flux := 0.5 * (coef[i] + coef[i+1]) * kx * (c[i] - c[i+1])
			out[i] -= flux
			out[i+1] += flux
		}
	}
	for y := 0; y < h-1; y++ {
		row := y * w
		for x := 0; x < w; x++ {
			i := row + x
			j := i + w
			flux := 0.5 * (coef[i] + coef[j]) * ky * (c[i] - c[j])
			out[i] -= flux
			out[j] += flux
		}
	}
	copy(c, out)
}

// fixate moves a fraction of floating pigment into the paper. Drier cells,
// denser fibre, faster drying and more paper resist all fix faster.
func fixate(g *grid.Grid, p Params, floating, fixed []float32) {
	base := p.fixBase() * (0.5 + p.PaperResist/100)
	keep := float32(1 - evaporation)
	for i := range floating {
		v := floating[i]
		if !(v > 0) || !grid.Finite(v) {
			floating[i] = 0
			continue
		}
		wet := Wetness(g.Rho[i])
		k := base * (0.3 + g.Fibers[i]) * (1.2 - 0.7*wet)
		if k > maxFixRate {
			k = maxFixRate
		}
		moved := k * v
		fixed[i] += moved
		floating[i] = (v - moved) * keep
	}
}
