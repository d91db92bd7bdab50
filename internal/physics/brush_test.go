package physics

import (
	"errors"
	"testing"

	"github.com/chewxy/math32"
	"github.com/san-kum/inksim/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dab(brush BrushType) BrushInput {
	return BrushInput{X: 128, Y: 128, Radius: 8, Water: 1.5, Ink: 2, R: 50, G: 50, B: 200, Brush: brush}
}

func footprintExtent(g *grid.Grid, c grid.Channel) (wx, wy int) {
	cx, cy := 128, 128
	for x := 0; x < g.W; x++ {
		if g.Floating[c][g.Idx(x, cy)] > 0 {
			wx++
		}
	}
	for y := 0; y < g.H; y++ {
		if g.Floating[c][g.Idx(cx, y)] > 0 {
			wy++
		}
	}
	return wx, wy
}

func TestApplyBrush_RoundDeposit(t *testing.T) {
	g := newTestGrid(t, 256)
	require.NoError(t, ApplyBrush(g, dab(BrushRound)))

	center := g.Idx(128, 128)
	assert.Greater(t, g.Floating[grid.Cyan][center], float32(0))
	assert.Greater(t, g.Floating[grid.Cyan][center], g.Floating[grid.Yellow][center], "blue ink is mostly cyan and magenta")
	assert.InDelta(t, g.Floating[grid.Cyan][center], g.Floating[grid.Magenta][center], 1e-6)
	assert.Zero(t, g.Floating[grid.Cyan][g.Idx(10, 10)])

	assert.Greater(t, g.Rho[center], grid.RhoRef)
	assert.LessOrEqual(t, g.Rho[center], grid.RhoWetMax)

	wx, wy := footprintExtent(g, grid.Cyan)
	assert.Equal(t, wx, wy)
	for c := range g.Fixed {
		_, fx := g.PigmentMass(grid.Channel(c))
		assert.Zero(t, fx)
	}
}

func TestApplyBrush_Accumulates(t *testing.T) {
	g := newTestGrid(t, 256)
	require.NoError(t, ApplyBrush(g, dab(BrushRound)))
	once, _ := g.PigmentMass(grid.Cyan)
	require.NoError(t, ApplyBrush(g, dab(BrushRound)))
	twice, _ := g.PigmentMass(grid.Cyan)

	assert.InDelta(t, 2*once, twice, once*1e-5)
}

func TestApplyBrush_FlatFollowsStroke(t *testing.T) {
	g := newTestGrid(t, 256)
	in := dab(BrushFlat)
	in.VX = 5
	require.NoError(t, ApplyBrush(g, in))
	wx, wy := footprintExtent(g, grid.Cyan)
	assert.Greater(t, wx, wy)

	g = newTestGrid(t, 256)
	in.VX, in.VY = 0, 5
	require.NoError(t, ApplyBrush(g, in))
	wx, wy = footprintExtent(g, grid.Cyan)
	assert.Greater(t, wy, wx)
}

func TestApplyBrush_SumiIsSmallAndDense(t *testing.T) {
	round := newTestGrid(t, 256)
	sumi := newTestGrid(t, 256)
	require.NoError(t, ApplyBrush(round, dab(BrushRound)))
	require.NoError(t, ApplyBrush(sumi, dab(BrushSumi)))

	rw, _ := footprintExtent(round, grid.Cyan)
	sw, _ := footprintExtent(sumi, grid.Cyan)
	assert.Less(t, sw, rw)

	center := round.Idx(128, 128)
	assert.Greater(t, sumi.Floating[grid.Cyan][center], round.Floating[grid.Cyan][center])
	assert.Less(t, sumi.Rho[center], round.Rho[center], "sumi carries little water")
}

func TestApplyBrush_SprayIsDeterministic(t *testing.T) {
	a := newTestGrid(t, 256)
	b := newTestGrid(t, 256)
	require.NoError(t, ApplyBrush(a, dab(BrushSpray)))
	require.NoError(t, ApplyBrush(b, dab(BrushSpray)))
	assert.Equal(t, a.Floating[grid.Cyan], b.Floating[grid.Cyan])

	mass, _ := a.PigmentMass(grid.Cyan)
	assert.Greater(t, mass, 0.0)

	in := dab(BrushSpray)
	in.X = 129
	c := newTestGrid(t, 256)
	require.NoError(t, ApplyBrush(c, in))
	assert.NotEqual(t, a.Floating[grid.Cyan], c.Floating[grid.Cyan])
}

func TestApplyBrush_WaterDilutesConservatively(t *testing.T) {
	g := newTestGrid(t, 256)
	for y := 100; y < 156; y++ {
		for x := 100; x < 156; x++ {
			g.Floating[grid.Magenta][g.Idx(x, y)] = float32(x-100) / 10
		}
	}
	before, _ := g.PigmentMass(grid.Magenta)
	peakBefore := g.Floating[grid.Magenta][g.Idx(140, 128)]

	in := dab(BrushWater)
	in.Ink = 0
	require.NoError(t, ApplyBrush(g, in))

	after, _ := g.PigmentMass(grid.Magenta)
	assert.InDelta(t, before, after, before*1e-5)
	assert.Less(t, g.Floating[grid.Magenta][g.Idx(140, 128)], peakBefore)
	assert.True(t, g.Valid())
}

func TestApplyBrush_ClipsAtEdges(t *testing.T) {
	g := newTestGrid(t, 256)
	in := dab(BrushRound)
	in.X, in.Y = 0, 255
	require.NoError(t, ApplyBrush(g, in))
	mass, _ := g.PigmentMass(grid.Cyan)
	assert.Greater(t, mass, 0.0)

	g = newTestGrid(t, 256)
	in.X, in.Y = -5000, 1e9
	require.NoError(t, ApplyBrush(g, in))
	mass, _ = g.PigmentMass(grid.Cyan)
	assert.Zero(t, mass)
}

func TestApplyBrush_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name string
		in   BrushInput
		want error
	}{
		{"nan position", BrushInput{X: math32.NaN(), Y: 1, Radius: 3}, ErrInvalidInput},
		{"inf ink", BrushInput{X: 1, Y: 1, Radius: 3, Ink: math32.Inf(1)}, ErrInvalidInput},
		{"unknown brush", BrushInput{X: 1, Y: 1, Radius: 3, Brush: "fan"}, ErrUnknownBrush},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGrid(t, 256)
			err := ApplyBrush(g, tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("ApplyBrush() error = %v, want %v", err, tt.want)
			}
			assert.True(t, g.Valid())
		})
	}
}

func TestApplyBrush_StrokeVelocityBiasesFlow(t *testing.T) {
	g := newTestGrid(t, 256)
	in := dab(BrushRound)
	in.VX = 4
	require.NoError(t, ApplyBrush(g, in))

	i := g.Idx(128, 128)
	assert.Greater(t, g.Ux[i], float32(0))
	assert.InDelta(t, 0, g.Uy[i], 1e-6)
}

func TestParseBrushType(t *testing.T) {
	for _, b := range BrushTypes {
		got, err := ParseBrushType(string(b))
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}
	_, err := ParseBrushType("fan")
	assert.ErrorIs(t, err, ErrUnknownBrush)
}
