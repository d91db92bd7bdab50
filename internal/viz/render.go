package viz

import (
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/chewxy/math32"
	"github.com/crazy3lf/colorconv"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/inksim/internal/grid"
	"github.com/san-kum/inksim/internal/physics"
	"github.com/san-kum/inksim/internal/sim"
	"github.com/san-kum/inksim/internal/studio"
)

const (
	// inkDensity scales pigment concentration into optical depth.
	inkDensity = 1.6
	// floatingShade is how much less floating pigment darkens than fixed.
	floatingShade = 0.6
	paperWhite    = 250
	paperShade    = 28
)

// Pixel returns the colour of cell i in view.
func Pixel(s *sim.Sim, view studio.View, i int) color.RGBA {
	g := s.Grid()
	switch view {
	case studio.ViewVelocity:
		ux, uy := g.Ux[i], g.Uy[i]
		speed := math32.Hypot(ux, uy) / grid.MaxSpeed
		hue := math.Mod(float64(math32.Atan2(uy, ux))*180/math.Pi+360, 360)
		r, gr, b, _ := colorconv.HSVToRGB(hue, 1, float64(min(speed, 1)))
		return color.RGBA{r, gr, b, 255}
	case studio.ViewDensity:
		return gray(128 + (g.Rho[i]-grid.RhoRef)*255)
	case studio.ViewFibers:
		return gray(255 * (1 - g.Fibers[i]))
	}
	base := paperWhite - paperShade*g.Fibers[i]
	var out [grid.NumChannels]uint8
	for c := grid.Channel(0); c < grid.NumChannels; c++ {
		conc := g.Fixed[c][i] + floatingShade*g.Floating[c][i]
		out[c] = clampByte(base * math32.Exp(-inkDensity*conc))
	}
	return color.RGBA{out[grid.Cyan], out[grid.Magenta], out[grid.Yellow], 255}
}

func gray(v float32) color.RGBA {
	b := clampByte(v)
	return color.RGBA{b, b, b, 255}
}

func clampByte(v float32) uint8 {
	return uint8(min(max(v, 0), 255))
}

// Image renders view at grid resolution.
func Image(s *sim.Sim, view studio.View) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, s.Width(), s.Height()))
	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			img.SetRGBA(x, y, Pixel(s, view, y*s.Width()+x))
		}
	}
	return img
}

// Cursor marks a grid position in a render.
type Cursor struct {
	X, Y float32
	On   bool
}

// Render draws view into cols x rows terminal cells. Each cell shows two
// vertically stacked samples with the upper half block.
func Render(s *sim.Sim, view studio.View, cols, rows int, cursor Cursor) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	w, h := s.Width(), s.Height()
	cx, cy := -1, -1
	if cursor.On {
		cx = int(cursor.X) * cols / w
		cy = int(cursor.Y) * rows / h
	}

	var b strings.Builder
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := (2*col + 1) * w / (2 * cols)
			top := (4*row + 1) * h / (4 * rows)
			bottom := (4*row + 3) * h / (4 * rows)
			up, down := Pixel(s, view, top*w+x), Pixel(s, view, bottom*w+x)
			style := lipgloss.NewStyle().Foreground(hex(up)).Background(hex(down))
			glyph := "▀"
			if col == cx && row == cy {
				style = style.Foreground(lipgloss.Color("#ff3030")).Bold(true)
				glyph = "◉"
			}
			b.WriteString(style.Render(glyph))
		}
		if row < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func hex(c color.RGBA) lipgloss.Color {
	col, _ := colorful.MakeColor(c)
	return lipgloss.Color(col.Hex())
}

// WetMap draws the cells wetter than threshold as a Braille mask of cols x
// rows characters.
func WetMap(g *grid.Grid, cols, rows int, threshold float32) string {
	return WetCanvas(g, cols, rows, threshold).String()
}

// WetCanvas is WetMap before it is turned into text.
func WetCanvas(g *grid.Grid, cols, rows int, threshold float32) *Canvas {
	c := NewCanvas(cols, rows)
	sw, sh := 2*cols, 4*rows
	for py := 0; py < sh; py++ {
		y := (2*py + 1) * g.H / (2 * sh)
		for px := 0; px < sw; px++ {
			x := (2*px + 1) * g.W / (2 * sw)
			if physics.Wetness(g.Rho[g.Idx(x, y)]) > threshold {
				c.Set(px, py)
			}
		}
	}
	return c
}
