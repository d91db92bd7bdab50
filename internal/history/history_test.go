package history_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/inksim/internal/history"
	"github.com/san-kum/inksim/internal/physics"
	"github.com/san-kum/inksim/internal/sim"
)

func newSim(size int) *sim.Sim {
	s, err := sim.Create(size, size, sim.WithSeed(3))
	Expect(err).NotTo(HaveOccurred())
	s.GeneratePaper(physics.PaperConfig{Type: physics.PaperSmooth, Roughness: 50, Contrast: 50, Align: 10})
	return s
}

func paint(s *sim.Sim, x float32) {
	Expect(s.AddInput(x, 128, 6, 1.7, 2.5, 50, 50, 200, 0, 0)).To(Succeed())
	s.Step()
}

type brokenTarget struct {
	*sim.Sim
}

func (brokenTarget) RestoreSnapshotArrays(*sim.Snapshot) error {
	return errors.New("disk on fire")
}

var _ = Describe("History", func() {
	var (
		h *history.History
		s *sim.Sim
	)

	BeforeEach(func() {
		h = history.New()
		s = newSim(256)
	})

	Describe("undo and redo", func() {
		It("undo restores the captured state and redo brings the change back", func() {
			before := s.GetSnapshotArrays()
			Expect(h.Capture(s)).To(Succeed())
			paint(s, 128)
			after := s.GetSnapshotArrays()

			Expect(h.Undo(s)).To(Succeed())
			Expect(s.GetSnapshotArrays().Equal(before)).To(BeTrue())

			Expect(h.Redo(s)).To(Succeed())
			Expect(s.GetSnapshotArrays().Equal(after)).To(BeTrue())
		})

		It("restores the third pre-action snapshot after three strokes", func() {
			var third *sim.Snapshot
			for i, x := range []float32{60, 128, 190} {
				Expect(h.Capture(s)).To(Succeed())
				if i == 2 {
					third = s.GetSnapshotArrays()
				}
				paint(s, x)
			}

			Expect(h.Undo(s)).To(Succeed())
			Expect(s.GetSnapshotArrays().Equal(third)).To(BeTrue())
			Expect(h.UndoLen()).To(Equal(2))
			Expect(h.RedoLen()).To(Equal(1))
		})

		It("walks all the way back and forward", func() {
			states := []*sim.Snapshot{s.GetSnapshotArrays()}
			for _, x := range []float32{40, 80, 120, 160} {
				Expect(h.Capture(s)).To(Succeed())
				paint(s, x)
				states = append(states, s.GetSnapshotArrays())
			}

			for i := len(states) - 2; i >= 0; i-- {
				Expect(h.Undo(s)).To(Succeed())
				Expect(s.GetSnapshotArrays().Equal(states[i])).To(BeTrue(), "undo to state %d", i)
			}
			Expect(h.Undo(s)).To(MatchError(history.ErrNothingToUndo))

			for i := 1; i < len(states); i++ {
				Expect(h.Redo(s)).To(Succeed())
				Expect(s.GetSnapshotArrays().Equal(states[i])).To(BeTrue(), "redo to state %d", i)
			}
			Expect(h.Redo(s)).To(MatchError(history.ErrNothingToRedo))
		})

		It("reports empty stacks", func() {
			Expect(h.Undo(s)).To(MatchError(history.ErrNothingToUndo))
			Expect(h.Redo(s)).To(MatchError(history.ErrNothingToRedo))
			Expect(h.CanUndo()).To(BeFalse())
			Expect(h.Peek()).To(BeNil())
		})
	})

	Describe("linear history", func() {
		It("clears redo on a new capture", func() {
			Expect(h.Capture(s)).To(Succeed())
			paint(s, 100)
			Expect(h.Undo(s)).To(Succeed())
			Expect(h.CanRedo()).To(BeTrue())

			Expect(h.Capture(s)).To(Succeed())
			Expect(h.CanRedo()).To(BeFalse())
			Expect(h.Redo(s)).To(MatchError(history.ErrNothingToRedo))
		})

		It("clears redo on a pushed snapshot", func() {
			Expect(h.Capture(s)).To(Succeed())
			Expect(h.Undo(s)).To(Succeed())
			Expect(h.Push(s.GetSnapshotArrays())).To(Succeed())
			Expect(h.RedoLen()).To(Equal(0))
			Expect(h.UndoLen()).To(Equal(1))
		})
	})

	Describe("bounds", func() {
		It("evicts the oldest entries beyond the depth", func() {
			h = history.New(history.WithDepth(3))
			var kept []*sim.Snapshot
			for i := 0; i < 5; i++ {
				Expect(h.Capture(s)).To(Succeed())
				kept = append(kept, s.GetSnapshotArrays())
				paint(s, float32(30+40*i))
			}
			Expect(h.UndoLen()).To(Equal(3))

			for i := 4; i >= 2; i-- {
				Expect(h.Undo(s)).To(Succeed())
				Expect(s.GetSnapshotArrays().Equal(kept[i])).To(BeTrue())
			}
			Expect(h.Undo(s)).To(MatchError(history.ErrNothingToUndo))
		})

		It("defaults to ten entries", func() {
			Expect(h.Depth()).To(Equal(history.DefaultDepth))
			for i := 0; i < 12; i++ {
				Expect(h.Capture(s)).To(Succeed())
			}
			Expect(h.UndoLen()).To(Equal(10))
		})

		It("ignores a non-positive depth", func() {
			Expect(history.New(history.WithDepth(0)).Depth()).To(Equal(history.DefaultDepth))
		})
	})

	Describe("independence", func() {
		It("does not alias the live grid", func() {
			Expect(h.Capture(s)).To(Succeed())
			saved := h.Peek().Clone()
			paint(s, 128)
			Expect(h.Peek().Equal(saved)).To(BeTrue())
		})
	})

	Describe("resolution changes", func() {
		It("rejects undo into a grid of another size", func() {
			Expect(h.Capture(s)).To(Succeed())
			large := newSim(512)

			Expect(errors.Is(h.Undo(large), history.ErrResolutionMismatch)).To(BeTrue())
			Expect(errors.Is(h.Capture(large), history.ErrResolutionMismatch)).To(BeTrue())
			Expect(h.UndoLen()).To(Equal(1))
		})

		It("starts over after Invalidate", func() {
			Expect(h.Capture(s)).To(Succeed())
			h.Invalidate()
			Expect(h.Undo(s)).To(MatchError(history.ErrNothingToUndo))

			large := newSim(512)
			Expect(h.Capture(large)).To(Succeed())
			Expect(h.Undo(large)).To(Succeed())
		})
	})

	Describe("failed restore", func() {
		It("leaves both stacks untouched", func() {
			Expect(h.Capture(s)).To(Succeed())
			err := h.Undo(brokenTarget{s})
			Expect(err).To(HaveOccurred())
			Expect(h.UndoLen()).To(Equal(1))
			Expect(h.RedoLen()).To(Equal(0))
		})
	})
})
