package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/inksim/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fiberStats(g *grid.Grid) (mean, std float64) {
	mean = grid.Sum(g.Fibers) / float64(g.N)
	var ss float64
	for _, v := range g.Fibers {
		d := float64(v) - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(g.N))
}

func TestGeneratePaper_Range(t *testing.T) {
	g := newTestGrid(t, 256)
	for _, typ := range PaperTypes {
		t.Run(string(typ), func(t *testing.T) {
			GeneratePaper(g, PaperConfig{Type: typ, Roughness: 100, Contrast: 100, Align: 50, Seed: 3})
			for i, v := range g.Fibers {
				if v < 0 || v > 1 || !grid.Finite(v) {
					t.Fatalf("fiber %d = %v outside [0, 1]", i, v)
				}
			}
		})
	}
}

func TestGeneratePaper_ResolutionInvariant(t *testing.T) {
	small := newTestGrid(t, 256)
	large := newTestGrid(t, 512)

	for _, typ := range PaperTypes {
		t.Run(string(typ), func(t *testing.T) {
			cfg := PaperConfig{Type: typ, Roughness: 50, Contrast: 50, Align: 10, Seed: 11}
			GeneratePaper(small, cfg)
			GeneratePaper(large, cfg)

			m1, s1 := fiberStats(small)
			m2, s2 := fiberStats(large)
			assert.InDelta(t, m1, m2, 0.03, "mean fibre level")
			assert.InDelta(t, s1, s2, 0.03, "fibre contrast")
		})
	}
}

func TestGeneratePaper_SeedDeterminism(t *testing.T) {
	a := newTestGrid(t, 256)
	b := newTestGrid(t, 256)
	cfg := PaperConfig{Type: PaperRice, Roughness: 40, Contrast: 60, Align: 30, Seed: 99}

	GeneratePaper(a, cfg)
	GeneratePaper(b, cfg)
	assert.Equal(t, a.Fibers, b.Fibers)

	cfg.Seed = 100
	GeneratePaper(b, cfg)
	assert.NotEqual(t, a.Fibers, b.Fibers)
}

func TestGeneratePaper_ContrastControlsAmplitude(t *testing.T) {
	g := newTestGrid(t, 256)

	GeneratePaper(g, PaperConfig{Type: PaperSmooth, Contrast: 0, Seed: 1})
	_, flat := fiberStats(g)
	assert.InDelta(t, 0, flat, 1e-6)

	GeneratePaper(g, PaperConfig{Type: PaperRough, Contrast: 20, Roughness: 50, Seed: 1})
	_, low := fiberStats(g)
	GeneratePaper(g, PaperConfig{Type: PaperRough, Contrast: 90, Roughness: 50, Seed: 1})
	_, high := fiberStats(g)
	assert.Greater(t, high, low)
}

func TestGeneratePaper_AlignStretchesAlongX(t *testing.T) {
	g := newTestGrid(t, 256)
	GeneratePaper(g, PaperConfig{Type: PaperCold, Roughness: 50, Contrast: 80, Align: 100, Seed: 5})

	// neighbouring cells along a fibre differ less than across it
	var dx, dy float64
	for y := 0; y < g.H-1; y++ {
		for x := 0; x < g.W-1; x++ {
			i := g.Idx(x, y)
			dx += math.Abs(float64(g.Fibers[i+1] - g.Fibers[i]))
			dy += math.Abs(float64(g.Fibers[i+g.W] - g.Fibers[i]))
		}
	}
	assert.Less(t, dx, dy)
}

func TestPaperConfig_Normalize(t *testing.T) {
	cfg, ok := PaperConfig{Type: "papyrus", Roughness: 140, Contrast: -3, Align: 20, Seed: 4}.Normalize()
	assert.False(t, ok)
	assert.Equal(t, PaperCold, cfg.Type)
	assert.Equal(t, float32(100), cfg.Roughness)
	assert.Equal(t, float32(0), cfg.Contrast)
	assert.Equal(t, int64(4), cfg.Seed)

	cfg, ok = PaperConfig{Type: PaperHot, Roughness: 10}.Normalize()
	assert.True(t, ok)
	assert.Equal(t, PaperHot, cfg.Type)
}

func TestParsePaperType(t *testing.T) {
	for _, typ := range PaperTypes {
		got, err := ParsePaperType(string(typ))
		require.NoError(t, err)
		assert.Equal(t, typ, got)
	}
	_, err := ParsePaperType("vellum")
	assert.True(t, errors.Is(err, ErrUnknownPaper))
}
