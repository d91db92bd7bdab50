package sim

import (
	"github.com/san-kum/inksim/internal/grid"
	"github.com/san-kum/inksim/internal/physics"
)

// Metric accumulates one scalar over the ticks it observes. Observe runs
// inside Step and must not allocate.
type Metric interface {
	Name() string
	Observe(g *grid.Grid, tick uint64)
	Value() float64
	Reset()
}

// Observer is told about every completed tick. The grid is read-only.
type Observer interface {
	OnTick(g *grid.Grid, tick uint64)
}

// Snapshot is a full copy of a simulation: every field plus the controls
// needed to keep simulating it the same way.
type Snapshot struct {
	Arrays *grid.Arrays        `json:"arrays"`
	Params physics.Params      `json:"params"`
	Paper  physics.PaperConfig `json:"paper"`
	Brush  physics.BrushType   `json:"brush"`
}

// Width and Height report the resolution the snapshot was taken at.
func (s *Snapshot) Width() int  { return s.Arrays.Width }
func (s *Snapshot) Height() int { return s.Arrays.Height }

// Clone returns an independent deep copy.
func (s *Snapshot) Clone() *Snapshot {
	c := *s
	c.Arrays = s.Arrays.Clone()
	return &c
}

// Equal reports whether both snapshots hold bitwise identical fields and
// the same controls.
func (s *Snapshot) Equal(o *Snapshot) bool {
	return s.Params == o.Params && s.Paper == o.Paper && s.Brush == o.Brush && s.Arrays.Equal(o.Arrays)
}
