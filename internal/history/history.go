// Package history keeps bounded, linear undo and redo stacks of simulation
// snapshots. Every entry is an independent copy; nothing aliases the live
// grid.
package history

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/inksim/internal/grid"
	"github.com/san-kum/inksim/internal/logx"
	"github.com/san-kum/inksim/internal/sim"
)

// DefaultDepth is the number of undo steps kept.
const DefaultDepth = 10

// Target is the live simulation history reads from and restores into.
type Target interface {
	Width() int
	Height() int
	SnapshotInto(dst *sim.Snapshot)
	RestoreSnapshotArrays(snap *sim.Snapshot) error
}

type History struct {
	depth int
	undo  []*sim.Snapshot
	redo  []*sim.Snapshot

	width, height int
	pool          *grid.Pool
	log           *slog.Logger
}

type Option func(*History)

// WithDepth bounds the undo stack. Values below one keep the default.
func WithDepth(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.depth = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(h *History) { h.log = logx.OrNop(l) }
}

func New(opts ...Option) *History {
	h := &History{depth: DefaultDepth, log: logx.Nop()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Capture copies t onto the undo stack and clears redo. Call it before any
// destructive action.
func (h *History) Capture(t Target) error {
	if err := h.bind(t.Width(), t.Height()); err != nil {
		return err
	}
	snap := h.get()
	t.SnapshotInto(snap)
	h.pushUndo(snap)
	h.clearRedo()
	return nil
}

// Push adds an existing snapshot and clears redo. History takes ownership of
// snap and may recycle its buffers.
func (h *History) Push(snap *sim.Snapshot) error {
	if snap == nil || snap.Arrays == nil {
		return fmt.Errorf("%w: empty snapshot", ErrResolutionMismatch)
	}
	if err := h.bind(snap.Width(), snap.Height()); err != nil {
		return err
	}
	h.pushUndo(snap)
	h.clearRedo()
	return nil
}

// Undo restores the most recent snapshot into t and keeps t's current state
// for Redo.
func (h *History) Undo(t Target) error {
	if len(h.undo) == 0 {
		return ErrNothingToUndo
	}
	if err := h.check(t); err != nil {
		return err
	}
	var err error
	h.undo, h.redo, err = h.swap(t, h.undo, h.redo)
	return err
}

// Redo re-applies the state most recently undone.
func (h *History) Redo(t Target) error {
	if len(h.redo) == 0 {
		return ErrNothingToRedo
	}
	if err := h.check(t); err != nil {
		return err
	}
	var err error
	h.redo, h.undo, err = h.swap(t, h.redo, h.undo)
	return err
}

// swap pops from, saves t onto to and restores the popped snapshot into t.
func (h *History) swap(t Target, from, to []*sim.Snapshot) ([]*sim.Snapshot, []*sim.Snapshot, error) {
	last := len(from) - 1
	prev := from[last]

	cur := h.get()
	t.SnapshotInto(cur)
	if err := t.RestoreSnapshotArrays(prev); err != nil {
		h.put(cur)
		return from, to, fmt.Errorf("restore: %w", err)
	}
	from[last] = nil
	h.put(prev)
	return from[:last], append(to, cur), nil
}

// Invalidate drops every snapshot. The next capture may use any resolution.
func (h *History) Invalidate() {
	h.undo, h.redo = nil, nil
	h.width, h.height = 0, 0
	h.pool = nil
	h.log.Debug("history invalidated")
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }
func (h *History) UndoLen() int  { return len(h.undo) }
func (h *History) RedoLen() int  { return len(h.redo) }
func (h *History) Depth() int    { return h.depth }

// Peek returns the snapshot Undo would restore, or nil. It must not be
// modified.
func (h *History) Peek() *sim.Snapshot {
	if len(h.undo) == 0 {
		return nil
	}
	return h.undo[len(h.undo)-1]
}

func (h *History) bind(w, ht int) error {
	if h.pool == nil {
		h.width, h.height = w, ht
		h.pool = grid.NewPool(w, ht)
		return nil
	}
	if w != h.width || ht != h.height {
		return fmt.Errorf("%w: history holds %dx%d, got %dx%d", ErrResolutionMismatch, h.width, h.height, w, ht)
	}
	return nil
}

func (h *History) check(t Target) error {
	if t.Width() != h.width || t.Height() != h.height {
		return fmt.Errorf("%w: history holds %dx%d, grid is %dx%d", ErrResolutionMismatch, h.width, h.height, t.Width(), t.Height())
	}
	return nil
}

func (h *History) pushUndo(snap *sim.Snapshot) {
	h.undo = append(h.undo, snap)
	if over := len(h.undo) - h.depth; over > 0 {
		for _, old := range h.undo[:over] {
			h.put(old)
		}
		h.undo = append(h.undo[:0], h.undo[over:]...)
		h.log.Debug("history evicted", "count", over)
	}
}

func (h *History) clearRedo() {
	for i, s := range h.redo {
		h.put(s)
		h.redo[i] = nil
	}
	h.redo = h.redo[:0]
}

func (h *History) get() *sim.Snapshot {
	return &sim.Snapshot{Arrays: h.pool.Get()}
}

func (h *History) put(s *sim.Snapshot) {
	if s != nil && h.pool != nil {
		h.pool.Put(s.Arrays)
	}
}
