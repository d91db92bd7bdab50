package grid

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Q is the number of discrete lattice directions (D2Q9).
const Q = 9

const (
	// RhoRef is the resting fluid density every cell starts at.
	RhoRef float32 = 1
	// RhoMin and RhoMax bound the density band a cell is kept inside.
	RhoMin float32 = 0.5
	RhoMax float32 = 2
	// RhoWetMax caps how far brush water may raise the local density.
	RhoWetMax float32 = 1.6
	// MaxSpeed is the velocity magnitude clamp in lattice units per tick.
	MaxSpeed float32 = 0.2
)

// Channel indexes one of the subtractive pigment channels.
type Channel int

const (
	Cyan Channel = iota
	Magenta
	Yellow
	NumChannels
)

func (c Channel) String() string {
	switch c {
	case Cyan:
		return "cyan"
	case Magenta:
		return "magenta"
	case Yellow:
		return "yellow"
	}
	return fmt.Sprintf("channel(%d)", int(c))
}

// Lattice velocities, weights and opposite directions. Direction 0 is rest,
// 1-4 are axis aligned (E, N, W, S), 5-8 diagonal (NE, NW, SW, SE).
var (
	CX  = [Q]int{0, 1, 0, -1, 0, 1, -1, -1, 1}
	CY  = [Q]int{0, 0, 1, 0, -1, 1, 1, -1, -1}
	Opp = [Q]int{0, 3, 4, 1, 2, 7, 8, 5, 6}
	W   = [Q]float32{4.0 / 9, 1.0 / 9, 1.0 / 9, 1.0 / 9, 1.0 / 9, 1.0 / 36, 1.0 / 36, 1.0 / 36, 1.0 / 36}

	cxf = [Q]float32{0, 1, 0, -1, 0, 1, -1, -1, 1}
	cyf = [Q]float32{0, 0, 1, 0, -1, 1, 1, -1, -1}
)

// Sizes lists the supported square resolutions.
var Sizes = []int{256, 512, 1024}

// ValidSize reports whether w x h is a supported resolution.
func ValidSize(w, h int) bool {
	if w != h {
		return false
	}
	for _, s := range Sizes {
		if w == s {
			return true
		}
	}
	return false
}

// Grid owns every field buffer of one simulation instance.
type Grid struct {
	W, H, N int

	F      []float32
	Rho    []float32
	Ux, Uy []float32
	Fibers []float32

	Floating [NumChannels][]float32
	Fixed    [NumChannels][]float32

	// Scratch buffers for the hot paths; never part of a snapshot.
	FTmp []float32
	Tmp  []float32
	Coef []float32
}

// New allocates a zeroed grid at rest: rho = RhoRef, no velocity, no pigment
// and no fibers.
func New(w, h int) (*Grid, error) {
	if !ValidSize(w, h) {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, w, h)
	}
	n := w * h
	g := &Grid{
		W: w, H: h, N: n,
		F:      make([]float32, Q*n),
		FTmp:   make([]float32, Q*n),
		Rho:    make([]float32, n),
		Ux:     make([]float32, n),
		Uy:     make([]float32, n),
		Fibers: make([]float32, n),
		Tmp:    make([]float32, n),
		Coef:   make([]float32, n),
	}
	for c := range g.Floating {
		g.Floating[c] = make([]float32, n)
		g.Fixed[c] = make([]float32, n)
	}
	g.ResetDynamic()
	return g, nil
}

// Idx returns the flat index of cell (x, y).
func (g *Grid) Idx(x, y int) int { return y*g.W + x }

// Contains reports whether (x, y) is a cell of the grid.
func (g *Grid) Contains(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.W && y < g.H
}

// ResetDynamic zeroes pigment and velocity and puts the fluid back at rest.
// Fibers are kept.
func (g *Grid) ResetDynamic() {
	for c := range g.Floating {
		clear(g.Floating[c])
		clear(g.Fixed[c])
	}
	clear(g.Ux)
	clear(g.Uy)
	for i := range g.Rho {
		g.Rho[i] = RhoRef
	}
	for d := 0; d < Q; d++ {
		fd := g.F[d*g.N : (d+1)*g.N]
		for i := range fd {
			fd[i] = W[d] * RhoRef
		}
	}
}

// Equilibrium is the second-order D2Q9 equilibrium for direction d.
func Equilibrium(d int, rho, ux, uy float32) float32 {
	eu := cxf[d]*ux + cyf[d]*uy
	return W[d] * rho * (1 + 3*eu + 4.5*eu*eu - 1.5*(ux*ux+uy*uy))
}

// SetEquilibrium overwrites cell i with the equilibrium of (rho, ux, uy) and
// stores the macroscopic values.
func (g *Grid) SetEquilibrium(i int, rho, ux, uy float32) {
	usq := 1.5 * (ux*ux + uy*uy)
	for d := 0; d < Q; d++ {
		eu := cxf[d]*ux + cyf[d]*uy
		g.F[d*g.N+i] = W[d] * rho * (1 + 3*eu + 4.5*eu*eu - usq)
	}
	g.Rho[i], g.Ux[i], g.Uy[i] = rho, ux, uy
}

// Moments computes density and momentum of cell i from F.
func (g *Grid) Moments(i int) (rho, mx, my float32) {
	n := g.N
	for d := 0; d < Q; d++ {
		fd := g.F[d*n+i]
		rho += fd
		mx += cxf[d] * fd
		my += cyf[d] * fd
	}
	return rho, mx, my
}

// ClampSpeed scales (ux, uy) down to at most MaxSpeed.
func ClampSpeed(ux, uy float32) (float32, float32) {
	s2 := ux*ux + uy*uy
	if s2 > MaxSpeed*MaxSpeed {
		k := MaxSpeed / math32.Sqrt(s2)
		return ux * k, uy * k
	}
	return ux, uy
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

// Valid reports whether every field is finite and every pigment and density
// value is non-negative.
func (g *Grid) Valid() bool {
	for _, buf := range [][]float32{g.F, g.Ux, g.Uy, g.Fibers} {
		for _, v := range buf {
			if !Finite(v) {
				return false
			}
		}
	}
	if !nonNegative(g.Rho) {
		return false
	}
	for c := range g.Floating {
		if !nonNegative(g.Floating[c]) || !nonNegative(g.Fixed[c]) {
			return false
		}
	}
	return true
}

func nonNegative(buf []float32) bool {
	for _, v := range buf {
		if !Finite(v) || v < 0 {
			return false
		}
	}
	return true
}

// Sum integrates a field over the grid in float64.
func Sum(buf []float32) float64 {
	s := 0.0
	for _, v := range buf {
		s += float64(v)
	}
	return s
}

// PigmentMass returns the floating and fixed mass of one channel.
func (g *Grid) PigmentMass(c Channel) (floating, fixed float64) {
	return Sum(g.Floating[c]), Sum(g.Fixed[c])
}
