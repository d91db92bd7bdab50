package sim

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/san-kum/inksim/internal/grid"
)

// sketchInk is the floating pigment laid down by a fully dark, opaque pixel.
const sketchInk = 0.6

var ErrBadSketch = errors.New("sim: malformed sketch buffer")

// DrawSketch seeds floating pigment from an RGBA pixel buffer of the given
// size, resampled to the grid. Darker, more opaque pixels deposit more of
// their subtractive colour. Existing pigment is kept.
func (s *Sim) DrawSketch(pix []uint8, width, height int) error {
	if width <= 0 || height <= 0 || len(pix) != 4*width*height {
		return fmt.Errorf("%w: %d bytes for %dx%d", ErrBadSketch, len(pix), width, height)
	}
	src := &image.RGBA{Pix: pix, Stride: 4 * width, Rect: image.Rect(0, 0, width, height)}
	return s.DrawImage(src)
}

// DrawImage is DrawSketch for an already decoded image.
func (s *Sim) DrawImage(img image.Image) error {
	b := img.Bounds()
	if b.Empty() {
		return fmt.Errorf("%w: empty image", ErrBadSketch)
	}
	g := s.g
	var scaled *image.RGBA
	if b.Dx() == g.W && b.Dy() == g.H {
		scaled = clone.AsRGBA(img)
	} else {
		scaled = transform.Resize(img, g.W, g.H, transform.Linear)
	}

	for y := 0; y < g.H; y++ {
		row := scaled.Pix[y*scaled.Stride:]
		for x := 0; x < g.W; x++ {
			p := row[4*x : 4*x+4]
			a := float32(p[3]) / 255
			if a == 0 {
				continue
			}
			i := g.Idx(x, y)
			// RGBA is alpha-premultiplied; compositing over white paper
			for c := grid.Channel(0); c < grid.NumChannels; c++ {
				lit := float32(p[c])/255 + (1 - a)
				if ink := 1 - lit; ink > 0 {
					g.Floating[c][i] += sketchInk * ink
				}
			}
		}
	}
	s.log.Debug("sketch drawn", "src_w", b.Dx(), "src_h", b.Dy())
	return nil
}
