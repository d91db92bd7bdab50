package physics

import (
	"fmt"
	"math/rand"

	"github.com/chewxy/math32"
	"github.com/san-kum/inksim/internal/grid"
)

// PaperType selects the fibre character of the generated paper.
type PaperType string

const (
	PaperSmooth PaperType = "smooth"
	PaperHot    PaperType = "hot"
	PaperCold   PaperType = "cold"
	PaperRough  PaperType = "rough"
	PaperRice   PaperType = "rice"
)

// PaperTypes lists the supported paper types.
var PaperTypes = []PaperType{PaperSmooth, PaperHot, PaperCold, PaperRough, PaperRice}

// ParsePaperType validates a paper type name.
func ParsePaperType(s string) (PaperType, error) {
	for _, t := range PaperTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPaper, s)
}

// PaperConfig describes one generated fibre field. Seed makes a generation
// reproducible; zero asks the caller to draw a fresh one.
type PaperConfig struct {
	Type      PaperType `json:"type" yaml:"type" toml:"type"`
	Roughness float32   `json:"roughness" yaml:"roughness" toml:"roughness"`
	Contrast  float32   `json:"contrast" yaml:"contrast" toml:"contrast"`
	Align     float32   `json:"align" yaml:"align" toml:"align"`
	Seed      int64     `json:"seed,omitempty" yaml:"seed,omitempty" toml:"seed,omitempty"`
}

func DefaultPaper() PaperConfig {
	return PaperConfig{Type: PaperCold, Roughness: 50, Contrast: 50, Align: 10}
}

// Normalize clamps the numeric controls to [0, 100] and replaces an unknown
// type with cold press. ok is false when the type had to be replaced.
func (c PaperConfig) Normalize() (PaperConfig, bool) {
	d := DefaultPaper()
	out := PaperConfig{
		Type:      c.Type,
		Roughness: clampSlider(c.Roughness, d.Roughness),
		Contrast:  clampSlider(c.Contrast, d.Contrast),
		Align:     clampSlider(c.Align, d.Align),
		Seed:      c.Seed,
	}
	if _, err := ParsePaperType(string(c.Type)); err != nil {
		out.Type = PaperCold
		return out, false
	}
	return out, true
}

type paperProfile struct {
	freq    float32 // base cycles across the sheet
	octaves int
	base    float32 // mean fibre level
	amp     float32
	strands int
}

var paperProfiles = map[PaperType]paperProfile{
	PaperSmooth: {freq: 6, octaves: 3, base: 0.30, amp: 0.25},
	PaperHot:    {freq: 10, octaves: 4, base: 0.38, amp: 0.35},
	PaperCold:   {freq: 16, octaves: 5, base: 0.48, amp: 0.50},
	PaperRough:  {freq: 24, octaves: 6, base: 0.55, amp: 0.70},
	PaperRice:   {freq: 12, octaves: 4, base: 0.42, amp: 0.40, strands: 140},
}

// GeneratePaper fills g.Fibers from cfg. Noise is sampled in coordinates
// normalized to the sheet, so the same config gives the same character at
// every resolution. cfg must already be normalized and carry its seed.
func GeneratePaper(g *grid.Grid, cfg PaperConfig) {
	prof, ok := paperProfiles[cfg.Type]
	if !ok {
		prof = paperProfiles[PaperCold]
	}
	freq := prof.freq * (1 + cfg.Roughness/40)
	amp := prof.amp * cfg.Contrast / 50
	// fibres run along x; align stretches features up to 6:1
	stretch := 1 + 5*cfg.Align/100
	seed := uint64(cfg.Seed)

	invW, invH := 1/float32(g.W), 1/float32(g.H)
	for y := 0; y < g.H; y++ {
		v := (float32(y) + 0.5) * invH * freq
		for x := 0; x < g.W; x++ {
			u := (float32(x) + 0.5) * invW * freq / stretch
			n := fbm(u, v, prof.octaves, seed)
			g.Fibers[g.Idx(x, y)] = clamp(prof.base+amp*(n-0.5)*2, 0, 1)
		}
	}
	if prof.strands > 0 {
		drawStrands(g, cfg, prof.strands)
	}
}

// drawStrands lays long fibres over the noise. Counts, lengths and widths are
// fractions of the sheet so they scale with the resolution.
func drawStrands(g *grid.Grid, cfg PaperConfig, count int) {
	rng := rand.New(rand.NewSource(cfg.Seed ^ 0x5DEECE66D))
	spread := (1 - cfg.Align/100) * math32.Pi / 2
	size := float32(g.W)
	halfWidth := 0.5 * size / 256
	if halfWidth < 0.5 {
		halfWidth = 0.5
	}
	level := clamp(0.6+0.35*cfg.Contrast/100, 0, 1)

	for s := 0; s < count; s++ {
		x0 := rng.Float32() * size
		y0 := rng.Float32() * size
		length := (0.04 + 0.12*rng.Float32()) * size
		angle := (rng.Float32()*2 - 1) * spread
		dx, dy := math32.Cos(angle), math32.Sin(angle)
		bend := (rng.Float32()*2 - 1) * 0.3

		for t := float32(0); t < length; t += 0.5 {
			frac := t / length
			cx := x0 + dx*t - dy*bend*frac*frac*length*0.2
			cy := y0 + dy*t + dx*bend*frac*frac*length*0.2
			stampStrand(g, cx, cy, halfWidth, level)
		}
	}
}

func stampStrand(g *grid.Grid, cx, cy, r, level float32) {
	x0, x1 := int(math32.Floor(cx-r)), int(math32.Ceil(cx+r))
	y0, y1 := int(math32.Floor(cy-r)), int(math32.Ceil(cy+r))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if !g.Contains(x, y) {
				continue
			}
			ddx, ddy := float32(x)+0.5-cx, float32(y)+0.5-cy
			if ddx*ddx+ddy*ddy > r*r {
				continue
			}
			i := g.Idx(x, y)
			if g.Fibers[i] < level {
				g.Fibers[i] = level
			}
		}
	}
}
