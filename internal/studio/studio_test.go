package studio

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/chewxy/math32"
	"github.com/san-kum/inksim/internal/grid"
	"github.com/san-kum/inksim/internal/history"
	"github.com/san-kum/inksim/internal/physics"
	"github.com/san-kum/inksim/internal/record"
	"github.com/san-kum/inksim/internal/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 16 * time.Millisecond

func newStudio(t *testing.T, opts ...Option) *Studio {
	t.Helper()
	st, err := New(256, append([]Option{WithSeed(7)}, opts...)...)
	require.NoError(t, err)
	st.SetPaper(physics.PaperConfig{Type: physics.PaperSmooth, Roughness: 50, Contrast: 50, Align: 10, Seed: 3})
	return st
}

func dab(x, y float32) physics.BrushInput {
	return physics.BrushInput{X: x, Y: y, Radius: 6, Water: 1.7, Ink: 2.5, R: 50, G: 50, B: 200}
}

func frames(st *Studio, n int) {
	for i := 0; i < n; i++ {
		st.Frame(frame)
	}
}

func fixedMass(s *sim.Sim) [grid.NumChannels]float64 {
	var out [grid.NumChannels]float64
	for c := grid.Channel(0); c < grid.NumChannels; c++ {
		_, out[c] = s.Grid().PigmentMass(c)
	}
	return out
}

func TestScenario_RecordAndReplay(t *testing.T) {
	st := newStudio(t)
	require.NoError(t, st.StartRecording())

	require.NoError(t, st.Input(record.InputEvent{BrushInput: dab(100, 100), StrokeStart: true}))
	frames(st, 5)
	require.NoError(t, st.Input(record.InputEvent{BrushInput: dab(140, 120)}))
	frames(st, 5)
	st.SetPaper(physics.PaperConfig{Type: physics.PaperRough, Roughness: 70, Contrast: 60, Align: 30, Seed: 11})
	frames(st, 3)
	require.NoError(t, st.Input(record.InputEvent{BrushInput: dab(160, 90), StrokeStart: true}))
	frames(st, 20)

	sess, err := st.StopRecording()
	require.NoError(t, err)
	assert.Equal(t, 33*frame, sess.Length())
	assert.Equal(t, 3, sess.Counts()[record.KindInput])
	assert.Equal(t, 2, sess.Counts()[record.KindPaperChange])

	var buf bytes.Buffer
	require.NoError(t, record.Encode(&buf, sess))
	decoded, skipped, err := record.Decode(&buf, nil)
	require.NoError(t, err)
	require.Zero(t, skipped)

	replayed, p, err := Replay(context.Background(), decoded, frame)
	require.NoError(t, err)
	assert.Zero(t, p.Skipped())
	assert.Equal(t, st.Sim().Ticks(), uint64(p.Ticks()))
	assert.Equal(t, st.Sim().Ticks(), replayed.Sim().Ticks())

	want, got := fixedMass(st.Sim()), fixedMass(replayed.Sim())
	for c := range want {
		require.Greater(t, want[c], 0.0)
		assert.InDelta(t, want[c], got[c], 1e-6*want[c])
	}
	assert.Equal(t, st.Paper(), replayed.Paper())
	assert.True(t, st.Sim().GetSnapshotArrays().Equal(replayed.Sim().GetSnapshotArrays()))
}

func TestRecordAndReplay_OnUngeneratedPaper(t *testing.T) {
	st, err := New(256, WithSeed(7))
	require.NoError(t, err)
	require.False(t, st.Sim().HasPaper())

	require.NoError(t, st.StartRecording())
	require.True(t, st.Sim().HasPaper())
	require.NoError(t, st.Input(record.InputEvent{BrushInput: dab(128, 128), StrokeStart: true}))
	frames(st, 10)
	sess, err := st.StopRecording()
	require.NoError(t, err)
	assert.Equal(t, st.Paper(), *sess.Actions[1].Paper)

	replayed, _, err := Replay(context.Background(), sess, frame)
	require.NoError(t, err)
	assert.Equal(t, st.Paper(), replayed.Paper())
	assert.True(t, st.Sim().GetSnapshotArrays().Equal(replayed.Sim().GetSnapshotArrays()))
}

func TestScenario_UndoRestoresPreActionState(t *testing.T) {
	st := newStudio(t)
	tick := st.Scheduler().TickDuration()

	var before []*sim.Snapshot
	for i := 0; i < 3; i++ {
		before = append(before, st.Sim().GetSnapshotArrays())
		require.NoError(t, st.BeginStroke(dab(float32(80+40*i), 128)))
		st.EndStroke()
		require.Equal(t, 1, st.Frame(tick))
	}

	require.NoError(t, st.Undo())
	assert.True(t, st.Sim().GetSnapshotArrays().Equal(before[2]))

	require.NoError(t, st.Undo())
	assert.True(t, st.Sim().GetSnapshotArrays().Equal(before[1]))
}

func TestUndoRedo(t *testing.T) {
	st := newStudio(t)
	assert.ErrorIs(t, st.Redo(), history.ErrNothingToRedo)

	require.NoError(t, st.BeginStroke(dab(128, 128)))
	frames(st, 3)
	after := st.Sim().GetSnapshotArrays()

	require.NoError(t, st.Undo())
	require.NoError(t, st.Redo())
	assert.True(t, st.Sim().GetSnapshotArrays().Equal(after))

	// a new action drops the redo branch
	require.NoError(t, st.Undo())
	st.Clear()
	assert.ErrorIs(t, st.Redo(), history.ErrNothingToRedo)
}

func TestUndo_DiscardsPendingInputs(t *testing.T) {
	st := newStudio(t)
	require.NoError(t, st.BeginStroke(dab(128, 128)))
	require.NoError(t, st.StrokeTo(dab(150, 128)))
	require.NotZero(t, st.Scheduler().Pending())

	require.NoError(t, st.Undo())
	assert.Zero(t, st.Scheduler().Pending())
}

func TestUndoRedo_AreRecorded(t *testing.T) {
	st := newStudio(t)
	require.NoError(t, st.StartRecording())
	require.NoError(t, st.BeginStroke(dab(128, 128)))
	frames(st, 2)
	require.NoError(t, st.Undo())
	require.NoError(t, st.Redo())
	// a failed undo leaves no trace
	require.NoError(t, st.Undo())
	assert.Error(t, st.Undo())

	sess, err := st.StopRecording()
	require.NoError(t, err)
	assert.Equal(t, 2, sess.Counts()[record.KindUndo])
	assert.Equal(t, 1, sess.Counts()[record.KindRedo])
}

func TestStrokeTo_Interpolates(t *testing.T) {
	st := newStudio(t)
	base := st.History().UndoLen()
	require.NoError(t, st.BeginStroke(dab(100, 100)))
	require.NoError(t, st.StrokeTo(dab(130, 100)))

	// radius 6 spaces dabs 3 cells apart
	assert.Equal(t, 1+10, st.Scheduler().Pending())
	assert.Equal(t, base+1, st.History().UndoLen(), "only the stroke start snapshots")

	st.EndStroke()
	require.NoError(t, st.StrokeTo(dab(10, 10)))
	assert.Equal(t, base+2, st.History().UndoLen())
}

func TestStrokeTo_CapsDabs(t *testing.T) {
	st := newStudio(t)
	require.NoError(t, st.BeginStroke(dab(0, 0)))
	require.NoError(t, st.StrokeTo(physics.BrushInput{X: 255, Y: 255, Radius: 1, Water: 1, Ink: 1}))
	assert.Equal(t, 1+maxStrokeDabs, st.Scheduler().Pending())
}

func TestInput_RejectsNonFinite(t *testing.T) {
	st := newStudio(t)
	in := dab(1, 1)
	in.Radius = math32.Inf(1)
	assert.ErrorIs(t, st.Input(record.InputEvent{BrushInput: in}), physics.ErrInvalidInput)
	assert.Zero(t, st.Scheduler().Pending())
}

func TestResize(t *testing.T) {
	st := newStudio(t)
	require.NoError(t, st.BeginStroke(dab(128, 128)))
	frames(st, 2)
	require.NoError(t, st.StartRecording())
	paper := st.Paper()

	require.NoError(t, st.Resize(512))

	assert.Equal(t, 512, st.Size())
	assert.False(t, st.Recording())
	assert.False(t, st.History().CanUndo())
	assert.ErrorIs(t, st.Undo(), history.ErrNothingToUndo)
	assert.Equal(t, paper, st.Paper())
	assert.Equal(t, sim.TickDuration(512), st.Scheduler().TickDuration())

	assert.ErrorIs(t, st.Resize(300), grid.ErrInvalidSize)
	assert.Equal(t, 512, st.Size())
}

func TestViews(t *testing.T) {
	st := newStudio(t)
	assert.Equal(t, ViewPigment, st.View())

	seen := []View{st.View()}
	for i := 0; i < len(Views); i++ {
		seen = append(seen, st.ToggleView())
	}
	assert.Equal(t, []View{ViewPigment, ViewVelocity, ViewDensity, ViewFibers, ViewPigment}, seen)

	require.NoError(t, st.SetView("fibers"))
	assert.Equal(t, ViewFibers, st.View())
	assert.ErrorIs(t, st.SetView("xray"), ErrUnknownView)
	assert.Equal(t, ViewFibers, st.View())

	require.NoError(t, st.StartRecording())
	assert.Equal(t, ViewPigment, st.ToggleView())
	sess, err := st.StopRecording()
	require.NoError(t, err)
	last := sess.Actions[len(sess.Actions)-1]
	assert.Equal(t, record.KindToggleView, last.Kind)
	assert.Equal(t, string(ViewPigment), last.View)
}

func TestImport_IsUndoableButNotRecorded(t *testing.T) {
	st := newStudio(t)
	require.NoError(t, st.StartRecording())
	blank := st.Sim().GetSnapshotArrays()

	pix := make([]uint8, 4*256*256)
	for i := 0; i < len(pix); i += 4 {
		pix[i+3] = 255
	}
	require.NoError(t, st.Import(pix, 256, 256))
	assert.False(t, st.Sim().GetSnapshotArrays().Equal(blank))

	require.NoError(t, st.Undo())
	assert.True(t, st.Sim().GetSnapshotArrays().Equal(blank))

	sess, err := st.StopRecording()
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Counts()[record.KindUndo])
	assert.Len(t, sess.Actions, 3)
}

func TestRecordingLifecycle(t *testing.T) {
	st := newStudio(t)
	_, err := st.StopRecording()
	assert.ErrorIs(t, err, ErrNotRecording)

	require.NoError(t, st.BeginStroke(dab(128, 128)))
	frames(st, 4)
	require.NoError(t, st.StartRecording())
	assert.ErrorIs(t, st.StartRecording(), ErrRecording)

	assert.Zero(t, st.Clock())
	assert.False(t, st.History().CanUndo())
	_, fixed := st.Sim().Grid().PigmentMass(grid.Cyan)
	assert.Zero(t, fixed)

	p := st.Params()
	p.Viscosity = 80
	st.SetParams(p)
	frames(st, 2)
	st.Clear()

	sess, err := st.StopRecording()
	require.NoError(t, err)
	require.Len(t, sess.Actions, 4)
	assert.Equal(t, record.KindParamChange, sess.Actions[0].Kind)
	assert.Equal(t, record.KindPaperChange, sess.Actions[1].Kind)
	assert.Equal(t, st.Paper(), *sess.Actions[1].Paper)
	assert.Equal(t, record.KindClear, sess.Actions[3].Kind)
	assert.Equal(t, 2*frame, sess.Actions[3].At())
	assert.Equal(t, 256, sess.Width)
	assert.Equal(t, int64(7), sess.Seed)
}

type tickCounter struct{ n int }

func (c *tickCounter) OnTick(*grid.Grid, uint64) { c.n++ }

func TestObserversSurviveResize(t *testing.T) {
	st := newStudio(t)
	c := &tickCounter{}
	st.AddObserver(c)
	st.Frame(st.Scheduler().TickDuration())
	st.Frame(st.Scheduler().TickDuration())
	require.NoError(t, st.Resize(512))
	st.Frame(st.Scheduler().TickDuration())
	assert.Equal(t, 3, c.n)
}
