package sim

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/san-kum/inksim/internal/grid"
	"github.com/san-kum/inksim/internal/logx"
	"github.com/san-kum/inksim/internal/physics"
)

// Sim owns one live grid and the controls that drive it. It is not safe
// for concurrent use; the host calls it from a single loop.
type Sim struct {
	g      *grid.Grid
	params physics.Params
	paper  physics.PaperConfig
	brush  physics.BrushType

	seed  int64
	rng   *rand.Rand
	ticks uint64

	metrics   []Metric
	observers []Observer
	log       *slog.Logger
}

type Option func(*Sim)

func WithLogger(l *slog.Logger) Option {
	return func(s *Sim) { s.log = logx.OrNop(l) }
}

// WithSeed fixes the source of fresh paper seeds.
func WithSeed(seed int64) Option {
	return func(s *Sim) { s.seed = seed }
}

func WithParams(p physics.Params) Option {
	return func(s *Sim) { s.params = p.Clamp() }
}

func WithBrush(b physics.BrushType) Option {
	return func(s *Sim) { s.brush = b }
}

// Create allocates a w x h simulation at rest with blank paper.
func Create(w, h int, opts ...Option) (*Sim, error) {
	g, err := grid.New(w, h)
	if err != nil {
		return nil, err
	}
	s := &Sim{
		g:      g,
		params: physics.DefaultParams(),
		paper:  physics.DefaultPaper(),
		brush:  physics.BrushRound,
		seed:   time.Now().UnixNano(),
		log:    logx.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if _, err := physics.ParseBrushType(string(s.brush)); err != nil {
		return nil, err
	}
	s.rng = rand.New(rand.NewSource(s.seed))
	return s, nil
}

func (s *Sim) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Sim) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Sim) Metrics() map[string]float64 {
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

// SetParams replaces the physical controls, clamped to 0..100. They take
// effect on the next tick.
func (s *Sim) SetParams(p physics.Params) { s.params = p.Clamp() }

func (s *Sim) Params() physics.Params { return s.params }

// SetBrush selects the footprint for subsequent inputs.
func (s *Sim) SetBrush(b physics.BrushType) error {
	if _, err := physics.ParseBrushType(string(b)); err != nil {
		return err
	}
	s.brush = b
	return nil
}

func (s *Sim) Brush() physics.BrushType { return s.brush }

// AddInput applies one dab with the current brush.
func (s *Sim) AddInput(x, y, radius, water, ink, r, g, b, vx, vy float32) error {
	return s.Apply(physics.BrushInput{
		X: x, Y: y, Radius: radius, Water: water, Ink: ink,
		R: r, G: g, B: b, VX: vx, VY: vy,
	})
}

// Apply applies a dab. An input without a brush type uses the current one.
func (s *Sim) Apply(in physics.BrushInput) error {
	if in.Brush == "" {
		in.Brush = s.brush
	}
	if err := physics.ApplyBrush(s.g, in); err != nil {
		return fmt.Errorf("add input: %w", err)
	}
	return nil
}

// Step advances exactly one tick and returns the number of cells that had to
// be recovered from non-finite values.
func (s *Sim) Step() int {
	recovered := physics.StepFluid(s.g, s.params)
	physics.StepPigment(s.g, s.params, s.paper.Align)
	s.ticks++
	if recovered > 0 {
		s.log.Debug("recovered cells", "count", recovered, "tick", s.ticks)
	}
	for _, m := range s.metrics {
		m.Observe(s.g, s.ticks)
	}
	for _, o := range s.observers {
		o.OnTick(s.g, s.ticks)
	}
	return recovered
}

// Ticks is the number of ticks run since Create.
func (s *Sim) Ticks() uint64 { return s.ticks }

// GeneratePaper rebuilds the fibre field and returns the config actually
// used. A zero seed draws a fresh one; an unknown type becomes cold press.
func (s *Sim) GeneratePaper(cfg physics.PaperConfig) physics.PaperConfig {
	requested := cfg.Type
	cfg, ok := cfg.Normalize()
	if !ok {
		s.log.Warn("unknown paper type, using cold press", "type", requested)
	}
	for cfg.Seed == 0 {
		cfg.Seed = s.rng.Int63()
	}
	physics.GeneratePaper(s.g, cfg)
	s.paper = cfg
	s.log.Debug("paper generated", "type", cfg.Type, "seed", cfg.Seed)
	return cfg
}

func (s *Sim) Paper() physics.PaperConfig { return s.paper }

// HasPaper reports whether a fibre field has been generated. Generated
// papers always carry a non-zero seed.
func (s *Sim) HasPaper() bool { return s.paper.Seed != 0 }

// Clear removes all pigment and motion. The paper is kept.
func (s *Sim) Clear() { s.g.ResetDynamic() }

// GetSnapshotArrays returns a deep copy of the whole simulation.
func (s *Sim) GetSnapshotArrays() *Snapshot {
	snap := &Snapshot{Arrays: grid.NewArrays(s.g.W, s.g.H)}
	s.SnapshotInto(snap)
	return snap
}

// SnapshotInto copies the simulation into dst, reusing its buffers.
func (s *Sim) SnapshotInto(dst *Snapshot) {
	if dst.Arrays == nil {
		dst.Arrays = grid.NewArrays(s.g.W, s.g.H)
	}
	s.g.CopyTo(dst.Arrays)
	dst.Params = s.params
	dst.Paper = s.paper
	dst.Brush = s.brush
}

// RestoreSnapshotArrays copies snap back into the live buffers. Snapshots of
// another resolution are rejected.
func (s *Sim) RestoreSnapshotArrays(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("restore snapshot: %w: nil snapshot", grid.ErrSizeMismatch)
	}
	if err := s.g.Restore(snap.Arrays); err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	s.params = snap.Params.Clamp()
	s.paper = snap.Paper
	if snap.Brush != "" {
		s.brush = snap.Brush
	}
	return nil
}

func (s *Sim) Seed() int64 { return s.seed }

// Read-only views of the live fields. Callers must not write to them and
// should read only between ticks.
func (s *Sim) Width() int                        { return s.g.W }
func (s *Sim) Height() int                       { return s.g.H }
func (s *Sim) Fibers() []float32                 { return s.g.Fibers }
func (s *Sim) Rho() []float32                    { return s.g.Rho }
func (s *Sim) Ux() []float32                     { return s.g.Ux }
func (s *Sim) Uy() []float32                     { return s.g.Uy }
func (s *Sim) Floating(c grid.Channel) []float32 { return s.g.Floating[c] }
func (s *Sim) Fixed(c grid.Channel) []float32    { return s.g.Fixed[c] }
func (s *Sim) Grid() *grid.Grid                  { return s.g }
