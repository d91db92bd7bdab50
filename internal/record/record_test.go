package record_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/inksim/internal/logx"
	"github.com/san-kum/inksim/internal/physics"
	"github.com/san-kum/inksim/internal/record"
)

type call struct {
	at   time.Duration
	what string
}

// fakeTarget logs every entry point it receives with the playback time.
type fakeTarget struct {
	clock   time.Duration
	calls   []call
	failing bool
}

func (f *fakeTarget) add(what string) { f.calls = append(f.calls, call{f.clock, what}) }

func (f *fakeTarget) Input(ev record.InputEvent) error {
	f.add(fmt.Sprintf("input %.0f,%.0f start=%v", ev.X, ev.Y, ev.StrokeStart))
	return nil
}
func (f *fakeTarget) SetParams(p physics.Params) { f.add(fmt.Sprintf("params %.0f", p.DryingSpeed)) }
func (f *fakeTarget) SetPaper(cfg physics.PaperConfig) physics.PaperConfig {
	f.add("paper " + string(cfg.Type))
	return cfg
}
func (f *fakeTarget) RegeneratePaper(cfg physics.PaperConfig) physics.PaperConfig {
	f.add(fmt.Sprintf("regen %d", cfg.Seed))
	return cfg
}
func (f *fakeTarget) Clear() { f.add("clear") }
func (f *fakeTarget) SetView(view string) error {
	f.add("view " + view)
	return nil
}
func (f *fakeTarget) Undo() error {
	f.add("undo")
	if f.failing {
		return errors.New("nothing to undo")
	}
	return nil
}
func (f *fakeTarget) Redo() error {
	f.add("redo")
	return nil
}
func (f *fakeTarget) Frame(elapsed time.Duration) int {
	f.clock += elapsed
	return int(elapsed / (10 * time.Millisecond))
}

func (f *fakeTarget) names() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.what
	}
	return out
}

func dab(x, y float32, start bool) record.InputEvent {
	return record.InputEvent{
		BrushInput:  physics.BrushInput{X: x, Y: y, Radius: 6, Water: 1.7, Ink: 2.5, R: 50, G: 50, B: 200},
		StrokeStart: start,
	}
}

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

var _ = Describe("Recorder", func() {
	var rec *record.Recorder

	BeforeEach(func() {
		rec = record.NewRecorder(physics.DefaultParams(), physics.PaperConfig{Type: physics.PaperHot, Seed: 5})
	})

	It("bootstraps with the current params and paper at t=0", func() {
		actions := rec.Actions()
		Expect(actions).To(HaveLen(2))
		Expect(actions[0].Kind).To(Equal(record.KindParamChange))
		Expect(*actions[0].Params).To(Equal(physics.DefaultParams()))
		Expect(actions[1].Kind).To(Equal(record.KindPaperChange))
		Expect(actions[1].Paper.Seed).To(Equal(int64(5)))
		Expect(actions[0].T).To(BeZero())
		Expect(actions[1].T).To(BeZero())
	})

	It("keeps timestamps non-decreasing", func() {
		rec.Record(record.ClearAction(ms(500)))
		rec.Record(record.UndoAction(ms(200)))

		actions := rec.Actions()
		Expect(actions[3].At()).To(Equal(ms(500)))
	})

	It("returns copies of the log", func() {
		actions := rec.Actions()
		actions[0].Kind = record.KindClear
		Expect(rec.Actions()[0].Kind).To(Equal(record.KindParamChange))
	})

	It("stretches the session to cover the last action", func() {
		rec.Record(record.ClearAction(2 * time.Second))
		s := rec.Session(256, 256, 9, time.Unix(0, 0), time.Second)
		Expect(s.Length()).To(Equal(2 * time.Second))
		Expect(s.Version).To(Equal(record.Version))
		Expect(s.Counts()).To(HaveKeyWithValue(record.KindClear, 1))
	})
})

var _ = Describe("Action validation", func() {
	DescribeTable("rejects malformed actions",
		func(a record.Action) {
			Expect(errors.Is(a.Validate(), record.ErrMalformedAction)).To(BeTrue())
		},
		Entry("input without payload", record.Action{Kind: record.KindInput}),
		Entry("negative time", record.ClearAction(-time.Second)),
		Entry("unknown kind", record.Action{Kind: "teleport"}),
		Entry("params missing", record.Action{Kind: record.KindParamChange}),
		Entry("paper missing", record.Action{Kind: record.KindRegenPaper}),
		Entry("view missing", record.Action{Kind: record.KindToggleView}),
		Entry("unknown brush", record.InputAction(0, record.InputEvent{BrushInput: physics.BrushInput{Brush: "fan"}})),
	)

	It("accepts every constructor", func() {
		for _, a := range []record.Action{
			record.InputAction(ms(1), dab(1, 2, true)),
			record.ParamAction(ms(2), physics.DefaultParams()),
			record.PaperAction(ms(3), physics.DefaultPaper()),
			record.RegenAction(ms(4), physics.DefaultPaper()),
			record.ClearAction(ms(5)),
			record.ToggleViewAction(ms(6), "velocity"),
			record.UndoAction(ms(7)),
			record.RedoAction(ms(8)),
		} {
			Expect(a.Validate()).To(Succeed(), string(a.Kind))
		}
	})
})

var _ = Describe("Session encoding", func() {
	It("round trips through JSON", func() {
		rec := record.NewRecorder(physics.DefaultParams(), physics.DefaultPaper())
		rec.Record(record.InputAction(ms(100), dab(128, 128, true)))
		rec.Record(record.ToggleViewAction(ms(150), "fibers"))
		in := rec.Session(512, 512, 77, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), ms(300))

		var buf bytes.Buffer
		Expect(record.Encode(&buf, in)).To(Succeed())
		Expect(buf.String()).To(ContainSubstring(`"stroke_start": true`))
		Expect(buf.String()).To(ContainSubstring(`"type": "input"`))

		out, skipped, err := record.Decode(&buf, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(skipped).To(BeZero())
		Expect(out.CreatedAt).To(BeTemporally("==", in.CreatedAt))
		out.CreatedAt = in.CreatedAt
		Expect(out).To(Equal(in))
	})

	It("skips malformed actions with a warning", func() {
		raw := `{"version":1,"width":256,"height":256,"seed":1,"duration":1,
			"actions":[
				{"t":0,"type":"clear"},
				{"t":0.1,"type":"input"},
				"garbage",
				{"t":0.2,"type":"warp"},
				{"t":0.3,"type":"input","input":{"x":5,"y":6,"radius":2,"water":1,"ink":1,"r":0,"g":0,"b":0,"vx":0,"vy":0}}
			]}`
		var logs bytes.Buffer
		s, skipped, err := record.Decode(strings.NewReader(raw), logx.New(&logs, 0))

		Expect(err).NotTo(HaveOccurred())
		Expect(skipped).To(Equal(3))
		Expect(s.Actions).To(HaveLen(2))
		Expect(s.Actions[1].Input.X).To(BeNumerically("==", 5))
		Expect(logs.String()).To(ContainSubstring("skipping recorded action"))
	})

	It("sorts actions by time", func() {
		raw := `{"version":1,"width":256,"height":256,"actions":[{"t":0.5,"type":"redo"},{"t":0.1,"type":"undo"}]}`
		s, _, err := record.Decode(strings.NewReader(raw), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Actions[0].Kind).To(Equal(record.KindUndo))
	})

	DescribeTable("rejects unusable sessions",
		func(raw string, want error) {
			_, _, err := record.Decode(strings.NewReader(raw), nil)
			Expect(err).To(HaveOccurred())
			if want != nil {
				Expect(errors.Is(err, want)).To(BeTrue())
			}
		},
		Entry("future version", `{"version":99,"width":256,"height":256}`, record.ErrUnsupportedVersion),
		Entry("missing version", `{"width":256,"height":256}`, record.ErrUnsupportedVersion),
		Entry("bad size", `{"version":1,"width":300,"height":300}`, nil),
		Entry("not json", `{{`, nil),
	)
})

var _ = Describe("Player", func() {
	var (
		target  *fakeTarget
		session *record.Session
	)

	BeforeEach(func() {
		target = &fakeTarget{}
		rec := record.NewRecorder(physics.Params{DryingSpeed: 25}, physics.PaperConfig{Type: physics.PaperRice, Seed: 3})
		rec.Record(record.InputAction(ms(0), dab(10, 10, true)))
		rec.Record(record.InputAction(ms(20), dab(12, 10, false)))
		rec.Record(record.RegenAction(ms(40), physics.PaperConfig{Type: physics.PaperRice, Seed: 8}))
		rec.Record(record.ClearAction(ms(60)))
		session = rec.Session(256, 256, 1, time.Time{}, ms(100))
	})

	It("dispatches actions before the frame that follows them", func() {
		p := record.NewPlayer(session, target, nil)
		for !p.Done() {
			p.Advance(ms(20))
		}

		Expect(target.names()).To(Equal([]string{
			"params 25", "paper rice", "input 10,10 start=true",
			"input 12,10 start=false", "regen 8", "clear",
		}))
		for _, c := range target.calls {
			Expect(c.at).To(Equal(map[string]time.Duration{
				"params 25": 0, "paper rice": 0, "input 10,10 start=true": 0,
				"input 12,10 start=false": ms(20), "regen 8": ms(40), "clear": ms(60),
			}[c.what]))
		}
		Expect(p.Elapsed()).To(Equal(ms(100)))
		Expect(p.Ticks()).To(Equal(10))
		Expect(p.Remaining()).To(BeZero())
	})

	It("dispatches an action stamped at the end without another frame", func() {
		rec := record.NewRecorder(physics.Params{DryingSpeed: 25}, physics.PaperConfig{Type: physics.PaperRice, Seed: 3})
		rec.Record(record.InputAction(ms(30), dab(20, 20, true)))
		trailing := rec.Session(256, 256, 1, time.Time{}, ms(30))

		p, err := record.Replay(context.Background(), target, trailing, ms(10), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Ticks()).To(Equal(3))
		Expect(p.Elapsed()).To(Equal(ms(30)))
		Expect(target.clock).To(Equal(ms(30)))
		Expect(target.calls[len(target.calls)-1]).To(Equal(call{ms(30), "input 20,20 start=true"}))
		Expect(p.Remaining()).To(BeZero())
		Expect(p.Advance(ms(10))).To(BeZero())
	})

	It("stops between frames", func() {
		p := record.NewPlayer(session, target, nil)
		p.Advance(ms(20))
		p.Stop()

		Expect(p.Advance(ms(20))).To(BeZero())
		Expect(p.Done()).To(BeTrue())
		Expect(target.names()).To(HaveLen(3))
	})

	It("counts failed actions and keeps going", func() {
		target.failing = true
		rec := record.NewRecorder(physics.DefaultParams(), physics.DefaultPaper())
		rec.Record(record.UndoAction(ms(10)))
		rec.Record(record.ClearAction(ms(20)))

		p, err := record.Replay(context.Background(), target, rec.Session(256, 256, 1, time.Time{}, ms(40)), ms(10), nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Skipped()).To(Equal(1))
		Expect(target.names()).To(ContainElement("clear"))
	})

	It("honours cancellation", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		p, err := record.Replay(ctx, target, session, ms(10), nil)
		Expect(err).To(MatchError(context.Canceled))
		Expect(p.Done()).To(BeTrue())
		Expect(target.calls).To(BeEmpty())
	})

	It("rejects a non-positive frame", func() {
		_, err := record.Replay(context.Background(), target, session, 0, nil)
		Expect(errors.Is(err, record.ErrInvalidFrame)).To(BeTrue())
	})
})
