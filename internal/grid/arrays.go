package grid

import "fmt"

// Arrays is a deep copy of every persistent field of a Grid. It never aliases
// live buffers.
type Arrays struct {
	Width    int                    `json:"width"`
	Height   int                    `json:"height"`
	F        []float32              `json:"f"`
	Rho      []float32              `json:"rho"`
	Ux       []float32              `json:"ux"`
	Uy       []float32              `json:"uy"`
	Fibers   []float32              `json:"fibers"`
	Floating [NumChannels][]float32 `json:"floating"`
	Fixed    [NumChannels][]float32 `json:"fixed"`
}

// NewArrays allocates empty arrays for a w x h grid.
func NewArrays(w, h int) *Arrays {
	n := w * h
	a := &Arrays{
		Width: w, Height: h,
		F:      make([]float32, Q*n),
		Rho:    make([]float32, n),
		Ux:     make([]float32, n),
		Uy:     make([]float32, n),
		Fibers: make([]float32, n),
	}
	for c := range a.Floating {
		a.Floating[c] = make([]float32, n)
		a.Fixed[c] = make([]float32, n)
	}
	return a
}

// Arrays returns a fresh deep copy of the grid fields.
func (g *Grid) Arrays() *Arrays {
	a := NewArrays(g.W, g.H)
	g.CopyTo(a)
	return a
}

// CopyTo writes the grid fields into a, reusing its buffers when they have
// the right size.
func (g *Grid) CopyTo(a *Arrays) {
	if a.Width != g.W || a.Height != g.H || len(a.F) != len(g.F) {
		*a = *NewArrays(g.W, g.H)
	}
	copy(a.F, g.F)
	copy(a.Rho, g.Rho)
	copy(a.Ux, g.Ux)
	copy(a.Uy, g.Uy)
	copy(a.Fibers, g.Fibers)
	for c := range g.Floating {
		copy(a.Floating[c], g.Floating[c])
		copy(a.Fixed[c], g.Fixed[c])
	}
}

// Restore copies a back into the live buffers.
func (g *Grid) Restore(a *Arrays) error {
	if err := a.check(g.W, g.H); err != nil {
		return err
	}
	copy(g.F, a.F)
	copy(g.Rho, a.Rho)
	copy(g.Ux, a.Ux)
	copy(g.Uy, a.Uy)
	copy(g.Fibers, a.Fibers)
	for c := range g.Floating {
		copy(g.Floating[c], a.Floating[c])
		copy(g.Fixed[c], a.Fixed[c])
	}
	return nil
}

func (a *Arrays) check(w, h int) error {
	if a == nil {
		return fmt.Errorf("%w: nil arrays", ErrSizeMismatch)
	}
	if a.Width != w || a.Height != h {
		return fmt.Errorf("%w: have %dx%d, want %dx%d", ErrSizeMismatch, a.Width, a.Height, w, h)
	}
	n := w * h
	if len(a.F) != Q*n || len(a.Rho) != n || len(a.Ux) != n || len(a.Uy) != n || len(a.Fibers) != n {
		return fmt.Errorf("%w: truncated field buffers", ErrSizeMismatch)
	}
	for c := range a.Floating {
		if len(a.Floating[c]) != n || len(a.Fixed[c]) != n {
			return fmt.Errorf("%w: truncated %s buffers", ErrSizeMismatch, Channel(c))
		}
	}
	return nil
}

// Clone returns an independent copy of a.
func (a *Arrays) Clone() *Arrays {
	c := NewArrays(a.Width, a.Height)
	copy(c.F, a.F)
	copy(c.Rho, a.Rho)
	copy(c.Ux, a.Ux)
	copy(c.Uy, a.Uy)
	copy(c.Fibers, a.Fibers)
	for ch := range a.Floating {
		copy(c.Floating[ch], a.Floating[ch])
		copy(c.Fixed[ch], a.Fixed[ch])
	}
	return c
}

// Equal reports bitwise equality of all fields.
func (a *Arrays) Equal(b *Arrays) bool {
	if a.Width != b.Width || a.Height != b.Height {
		return false
	}
	if !equal(a.F, b.F) || !equal(a.Rho, b.Rho) || !equal(a.Ux, b.Ux) ||
		!equal(a.Uy, b.Uy) || !equal(a.Fibers, b.Fibers) {
		return false
	}
	for c := range a.Floating {
		if !equal(a.Floating[c], b.Floating[c]) || !equal(a.Fixed[c], b.Fixed[c]) {
			return false
		}
	}
	return true
}

func equal(x, y []float32) bool {
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}
