package physics

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/san-kum/inksim/internal/grid"
)

// BrushType selects the footprint used by ApplyBrush.
type BrushType string

const (
	BrushRound BrushType = "round"
	BrushFlat  BrushType = "flat"
	BrushSumi  BrushType = "sumi"
	BrushSpray BrushType = "spray"
	BrushWater BrushType = "water"
)

var BrushTypes = []BrushType{BrushRound, BrushFlat, BrushSumi, BrushSpray, BrushWater}

func ParseBrushType(s string) (BrushType, error) {
	for _, b := range BrushTypes {
		if string(b) == s {
			return b, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBrush, s)
}

// BrushInput is one dab of the brush at a grid position. Colour is RGB in
// 0..255; water and ink are dimensionless amounts.
type BrushInput struct {
	X      float32   `json:"x"`
	Y      float32   `json:"y"`
	Radius float32   `json:"radius"`
	Water  float32   `json:"water"`
	Ink    float32   `json:"ink"`
	R      float32   `json:"r"`
	G      float32   `json:"g"`
	B      float32   `json:"b"`
	VX     float32   `json:"vx"`
	VY     float32   `json:"vy"`
	Brush  BrushType `json:"brush,omitempty"`
}

// Finite reports whether every numeric field is finite.
func (in BrushInput) Finite() bool {
	for _, v := range [...]float32{in.X, in.Y, in.Radius, in.Water, in.Ink, in.R, in.G, in.B, in.VX, in.VY} {
		if !grid.Finite(v) {
			return false
		}
	}
	return true
}

// CMY converts the input colour to subtractive channel weights in [0, 1].
func (in BrushInput) CMY() [grid.NumChannels]float32 {
	return [grid.NumChannels]float32{
		1 - clamp(in.R, 0, 255)/255,
		1 - clamp(in.G, 0, 255)/255,
		1 - clamp(in.B, 0, 255)/255,
	}
}

const (
	inkScale   = 0.35
	waterScale = 0.12
	velScale   = 0.02

	flatMinor     = 0.35
	dilutionAlpha = 0.6
)

type brushShape struct {
	radius, ink, water float32
	sharp              bool
}

var brushShapes = map[BrushType]brushShape{
	BrushRound: {radius: 1, ink: 1, water: 1},
	BrushFlat:  {radius: 1, ink: 1, water: 1},
	BrushSumi:  {radius: 0.6, ink: 2.2, water: 0.3, sharp: true},
	BrushSpray: {radius: 1, ink: 1, water: 0.5},
	BrushWater: {radius: 1.8, ink: 0.1, water: 1.6},
}

// footprint is one weighted stamp. Distances are measured along a unit
// major axis (ax, ay) and a minor axis scaled by minor.
type footprint struct {
	cx, cy, r  float32
	ax, ay     float32
	minor      float32
	sharp      bool
	ink, water float32
	vx, vy     float32
	cmy        [grid.NumChannels]float32
}

func (fp *footprint) weight(x, y int) float32 {
	dx, dy := float32(x)+0.5-fp.cx, float32(y)+0.5-fp.cy
	u := dx*fp.ax + dy*fp.ay
	v := (dy*fp.ax - dx*fp.ay) / fp.minor
	d2 := (u*u + v*v) / (fp.r * fp.r)
	if d2 >= 1 {
		return 0
	}
	w := 1 - d2
	if fp.sharp {
		return w * w * w
	}
	return w * w
}

// bounds returns the clipped cell rectangle covered by fp; ok is false when
// it misses the grid.
func (fp *footprint) bounds(g *grid.Grid) (x0, y0, x1, y1 int, ok bool) {
	if fp.cx+fp.r < 0 || fp.cy+fp.r < 0 || fp.cx-fp.r > float32(g.W) || fp.cy-fp.r > float32(g.H) {
		return 0, 0, 0, 0, false
	}
	x0 = max(0, int(math32.Floor(fp.cx-fp.r)))
	y0 = max(0, int(math32.Floor(fp.cy-fp.r)))
	x1 = min(g.W-1, int(math32.Ceil(fp.cx+fp.r)))
	y1 = min(g.H-1, int(math32.Ceil(fp.cy+fp.r)))
	return x0, y0, x1, y1, true
}

// ApplyBrush deposits one dab of water and pigment. The footprint is clipped
// to the grid; repeated calls accumulate. Cells under the brush are reset to
// equilibrium at the wetter density and the stroke-biased velocity.
func ApplyBrush(g *grid.Grid, in BrushInput) error {
	if !in.Finite() {
		return ErrInvalidInput
	}
	brush := in.Brush
	if brush == "" {
		brush = BrushRound
	}
	shape, ok := brushShapes[brush]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownBrush, brush)
	}

	water := max(in.Water, 0) * shape.water
	ink := max(in.Ink, 0) * shape.ink
	amount := 0.5 + 0.5*water
	fp := footprint{
		cx: in.X, cy: in.Y,
		r:     clamp(in.Radius*shape.radius, 0.5, float32(g.W)/4),
		ax:    1,
		minor: 1,
		sharp: shape.sharp,
		ink:   inkScale * ink,
		water: waterScale * water,
		vx:    in.VX * velScale * amount,
		vy:    in.VY * velScale * amount,
		cmy:   in.CMY(),
	}

	switch brush {
	case BrushFlat:
		if s := math32.Hypot(in.VX, in.VY); s > 1e-6 {
			fp.ax, fp.ay = in.VX/s, in.VY/s
		}
		fp.minor = flatMinor
		stamp(g, &fp)
	case BrushSpray:
		spray(g, fp, in)
	case BrushWater:
		dilute(g, &fp)
		stamp(g, &fp)
	default:
		stamp(g, &fp)
	}
	return nil
}

func stamp(g *grid.Grid, fp *footprint) {
	x0, y0, x1, y1, ok := fp.bounds(g)
	if !ok {
		return
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			w := fp.weight(x, y)
			if w <= 0 {
				continue
			}
			i := g.Idx(x, y)
			for c := range g.Floating {
				g.Floating[c][i] += fp.ink * w * fp.cmy[c]
			}

			rho, mx, my := g.Moments(i)
			if !(rho > 0) || !grid.Finite(rho) || !grid.Finite(mx) || !grid.Finite(my) {
				rho, mx, my = grid.RhoRef, 0, 0
			}
			ux, uy := mx/rho, my/rho
			if rho < grid.RhoWetMax {
				rho = min(rho+fp.water*w, grid.RhoWetMax)
			}
			ux, uy = grid.ClampSpeed(ux+fp.vx*w, uy+fp.vy*w)
			g.SetEquilibrium(i, rho, ux, uy)
		}
	}
}

// spray scatters small droplets inside the radius. The scatter is seeded from
// the input itself so the same call always lands the same way.
func spray(g *grid.Grid, fp footprint, in BrushInput) {
	rng := splitmix(inputHash(in))
	r := fp.r
	count := 4 + int(3*r)
	fp.r = max(1, r/6)
	cx, cy := fp.cx, fp.cy
	for k := 0; k < count; k++ {
		angle := rng.float() * 2 * math32.Pi
		dist := math32.Sqrt(rng.float()) * r
		fp.cx = cx + dist*math32.Cos(angle)
		fp.cy = cy + dist*math32.Sin(angle)
		stamp(g, &fp)
	}
}

func inputHash(in BrushInput) uint64 {
	h := uint64(0xcbf29ce484222325)
	for _, v := range [...]float32{in.X, in.Y, in.Radius, in.Water, in.Ink, in.R, in.G, in.B, in.VX, in.VY} {
		h ^= uint64(math32.Float32bits(v))
		h *= 0x100000001b3
	}
	return h
}

// dilute mixes floating pigment under the footprint toward its weighted mean.
// Each channel's total is unchanged.
func dilute(g *grid.Grid, fp *footprint) {
	x0, y0, x1, y1, ok := fp.bounds(g)
	if !ok {
		return
	}
	for c := range g.Floating {
		buf := g.Floating[c]
		var sw, swc float32
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				if w := fp.weight(x, y); w > 0 {
					sw += w
					swc += w * buf[g.Idx(x, y)]
				}
			}
		}
		if sw == 0 {
			continue
		}
		mean := swc / sw
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				if w := fp.weight(x, y); w > 0 {
					i := g.Idx(x, y)
					buf[i] += dilutionAlpha * w * (mean - buf[i])
				}
			}
		}
	}
}
