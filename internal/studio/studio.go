// Package studio is the host-facing controller of a painting session. It
// wires the simulation handle, scheduler, undo history and recorder so that
// every destructive action is snapshotted first and every action is logged
// while recording. Playback drives the same methods.
package studio

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/chewxy/math32"
	"github.com/san-kum/inksim/internal/history"
	"github.com/san-kum/inksim/internal/logx"
	"github.com/san-kum/inksim/internal/physics"
	"github.com/san-kum/inksim/internal/record"
	"github.com/san-kum/inksim/internal/sim"
)

// maxStrokeDabs bounds the dabs one StrokeTo may queue.
const maxStrokeDabs = 64

type Studio struct {
	sim   *sim.Sim
	sched *sim.Scheduler
	hist  *history.History

	rec     *record.Recorder
	started time.Time
	clock   time.Duration

	view     View
	stroking bool
	last     physics.BrushInput

	seed      int64
	metrics   []sim.Metric
	observers []sim.Observer
	log       *slog.Logger
}

var _ record.Target = (*Studio)(nil)

type Option func(*options)

type options struct {
	seed   int64
	depth  int
	params *physics.Params
	log    *slog.Logger
}

func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

func WithHistoryDepth(n int) Option {
	return func(o *options) { o.depth = n }
}

func WithParams(p physics.Params) Option {
	return func(o *options) { o.params = &p }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// New creates a studio with a size x size canvas and blank paper.
func New(size int, opts ...Option) (*Studio, error) {
	o := options{seed: time.Now().UnixNano(), depth: history.DefaultDepth}
	for _, opt := range opts {
		opt(&o)
	}
	log := logx.OrNop(o.log)

	simOpts := []sim.Option{sim.WithSeed(o.seed), sim.WithLogger(log)}
	if o.params != nil {
		simOpts = append(simOpts, sim.WithParams(*o.params))
	}
	s, err := sim.Create(size, size, simOpts...)
	if err != nil {
		return nil, fmt.Errorf("new studio: %w", err)
	}
	return &Studio{
		sim:   s,
		sched: sim.NewScheduler(s, log),
		hist:  history.New(history.WithDepth(o.depth), history.WithLogger(log)),
		view:  ViewPigment,
		seed:  o.seed,
		log:   log,
	}, nil
}

// Frame is called once per render callback with the time since the last
// one. It returns the ticks run.
func (st *Studio) Frame(elapsed time.Duration) int {
	n := st.sched.Advance(elapsed)
	if elapsed > 0 {
		st.clock += elapsed
	}
	return n
}

// Input queues one dab for the next tick. A stroke start snapshots the
// canvas for undo first.
func (st *Studio) Input(ev record.InputEvent) error {
	if !ev.Finite() {
		return fmt.Errorf("input: %w", physics.ErrInvalidInput)
	}
	if ev.Brush == "" {
		ev.Brush = st.sim.Brush()
	}
	if ev.StrokeStart {
		st.sched.Flush()
		if err := st.hist.Capture(st.sim); err != nil {
			return fmt.Errorf("input: %w", err)
		}
	}
	st.sched.Enqueue(ev.BrushInput)
	st.record(record.InputAction(st.clock, ev))
	return nil
}

// BeginStroke starts a stroke at in.
func (st *Studio) BeginStroke(in physics.BrushInput) error {
	if err := st.Input(record.InputEvent{BrushInput: in, StrokeStart: true}); err != nil {
		return err
	}
	st.stroking = true
	st.last = in
	return nil
}

// StrokeTo continues the stroke to in, laying dabs at most half a radius
// apart. Without an open stroke it begins one.
func (st *Studio) StrokeTo(in physics.BrushInput) error {
	if !st.stroking {
		return st.BeginStroke(in)
	}
	dx, dy := in.X-st.last.X, in.Y-st.last.Y
	if in.VX == 0 && in.VY == 0 {
		in.VX, in.VY = dx, dy
	}
	spacing := max(in.Radius/2, 0.5)
	n := int(math32.Ceil(math32.Hypot(dx, dy) / spacing))
	n = min(max(n, 1), maxStrokeDabs)

	from := st.last
	for k := 1; k <= n; k++ {
		t := float32(k) / float32(n)
		dab := in
		dab.X = from.X + dx*t
		dab.Y = from.Y + dy*t
		if err := st.Input(record.InputEvent{BrushInput: dab}); err != nil {
			return err
		}
	}
	st.last = in
	return nil
}

func (st *Studio) EndStroke() { st.stroking = false }

func (st *Studio) SetParams(p physics.Params) {
	st.sim.SetParams(p)
	st.record(record.ParamAction(st.clock, st.sim.Params()))
}

func (st *Studio) Params() physics.Params { return st.sim.Params() }

func (st *Studio) SetBrush(b physics.BrushType) error { return st.sim.SetBrush(b) }

func (st *Studio) Brush() physics.BrushType { return st.sim.Brush() }

// SetPaper regenerates the paper from cfg and returns the config used.
func (st *Studio) SetPaper(cfg physics.PaperConfig) physics.PaperConfig {
	eff := st.paper(cfg)
	st.record(record.PaperAction(st.clock, eff))
	return eff
}

// RegeneratePaper is SetPaper logged as a regeneration.
func (st *Studio) RegeneratePaper(cfg physics.PaperConfig) physics.PaperConfig {
	eff := st.paper(cfg)
	st.record(record.RegenAction(st.clock, eff))
	return eff
}

// RegenPaper rebuilds the current paper with a fresh seed.
func (st *Studio) RegenPaper() physics.PaperConfig {
	cfg := st.sim.Paper()
	cfg.Seed = 0
	return st.RegeneratePaper(cfg)
}

func (st *Studio) paper(cfg physics.PaperConfig) physics.PaperConfig {
	st.sched.Flush()
	st.capture("paper")
	return st.sim.GeneratePaper(cfg)
}

func (st *Studio) Paper() physics.PaperConfig { return st.sim.Paper() }

// Clear removes all pigment and motion, keeping the paper.
func (st *Studio) Clear() {
	st.sched.Flush()
	st.capture("clear")
	st.sim.Clear()
	st.record(record.ClearAction(st.clock))
}

// Import seeds the canvas from RGBA pixels. It is undoable but not recorded.
func (st *Studio) Import(pix []uint8, width, height int) error {
	st.sched.Flush()
	st.capture("import")
	if err := st.sim.DrawSketch(pix, width, height); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return nil
}

func (st *Studio) SetView(view string) error {
	v, err := ParseView(view)
	if err != nil {
		return err
	}
	st.view = v
	st.record(record.ToggleViewAction(st.clock, string(v)))
	return nil
}

// ToggleView switches to the next view and returns it.
func (st *Studio) ToggleView() View {
	st.view = st.view.Next()
	st.record(record.ToggleViewAction(st.clock, string(st.view)))
	return st.view
}

func (st *Studio) View() View { return st.view }

// Undo restores the state before the last destructive action. Pending
// inputs are dropped.
func (st *Studio) Undo() error {
	st.sched.Discard()
	st.stroking = false
	if err := st.hist.Undo(st.sim); err != nil {
		return err
	}
	st.record(record.UndoAction(st.clock))
	return nil
}

func (st *Studio) Redo() error {
	st.sched.Discard()
	st.stroking = false
	if err := st.hist.Redo(st.sim); err != nil {
		return err
	}
	st.record(record.RedoAction(st.clock))
	return nil
}

// Resize replaces the canvas with a blank one of the new size, keeping the
// controls and paper settings. History is discarded and an active recording
// ends, since neither can span resolutions.
func (st *Studio) Resize(size int) error {
	if size == st.sim.Width() {
		return nil
	}
	s, err := sim.Create(size, size,
		sim.WithSeed(st.seed),
		sim.WithLogger(st.log),
		sim.WithParams(st.sim.Params()),
		sim.WithBrush(st.sim.Brush()),
	)
	if err != nil {
		return fmt.Errorf("resize: %w", err)
	}
	s.GeneratePaper(st.sim.Paper())
	for _, m := range st.metrics {
		m.Reset()
		s.AddMetric(m)
	}
	for _, o := range st.observers {
		s.AddObserver(o)
	}
	if st.rec != nil {
		st.log.Warn("resolution changed, recording stopped")
		st.rec = nil
	}
	st.sim = s
	st.sched = sim.NewScheduler(s, st.log)
	st.hist.Invalidate()
	st.stroking = false
	st.log.Info("canvas resized", "size", size)
	return nil
}

// StartRecording begins a new session from a blank canvas on the current
// paper, generating one first if none exists yet. History is dropped so undo
// cannot reach back before the start.
func (st *Studio) StartRecording() error {
	if st.rec != nil {
		return ErrRecording
	}
	if !st.sim.HasPaper() {
		st.sim.GeneratePaper(st.sim.Paper())
	}
	st.hist.Invalidate()
	st.sched.Reset()
	st.sim.Clear()
	st.stroking = false
	st.clock = 0
	st.started = time.Now().UTC()
	st.rec = record.NewRecorder(st.sim.Params(), st.sim.Paper())
	st.log.Info("recording started")
	return nil
}

// StopRecording ends the session and returns it.
func (st *Studio) StopRecording() (*record.Session, error) {
	if st.rec == nil {
		return nil, ErrNotRecording
	}
	s := st.rec.Session(st.sim.Width(), st.sim.Height(), st.seed, st.started, st.clock)
	st.rec = nil
	st.log.Info("recording stopped", "actions", len(s.Actions), "duration", st.clock)
	return s, nil
}

func (st *Studio) Recording() bool { return st.rec != nil }

// Clock is the session time: the sum of frame times since creation or the
// start of recording.
func (st *Studio) Clock() time.Duration { return st.clock }

// AddMetric attaches m to the simulation; it survives resizes.
func (st *Studio) AddMetric(m sim.Metric) {
	st.metrics = append(st.metrics, m)
	st.sim.AddMetric(m)
}

func (st *Studio) AddObserver(o sim.Observer) {
	st.observers = append(st.observers, o)
	st.sim.AddObserver(o)
}

func (st *Studio) Sim() *sim.Sim             { return st.sim }
func (st *Studio) Scheduler() *sim.Scheduler { return st.sched }
func (st *Studio) History() *history.History { return st.hist }
func (st *Studio) Size() int                 { return st.sim.Width() }
func (st *Studio) Seed() int64               { return st.seed }

func (st *Studio) capture(reason string) {
	if err := st.hist.Capture(st.sim); err != nil {
		st.log.Warn("snapshot failed", "reason", reason, "err", err)
	}
}

func (st *Studio) record(a record.Action) {
	if st.rec != nil {
		st.rec.Record(a)
	}
}
