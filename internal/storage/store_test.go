package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/inksim/internal/grid"
	"github.com/san-kum/inksim/internal/metrics"
	"github.com/san-kum/inksim/internal/physics"
	"github.com/san-kum/inksim/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() *record.Session {
	r := record.NewRecorder(physics.DefaultParams(), physics.DefaultPaper())
	r.Record(record.InputAction(100*time.Millisecond, record.InputEvent{
		BrushInput:  physics.BrushInput{X: 10, Y: 10, Radius: 4, Water: 1, Ink: 1},
		StrokeStart: true,
	}))
	r.Record(record.ClearAction(200 * time.Millisecond))
	return r.Session(256, 256, 5, time.Now(), 300*time.Millisecond)
}

func TestSaveAndLoad(t *testing.T) {
	s := New(t.TempDir(), nil)
	require.NoError(t, s.Init())

	tr := metrics.NewTrace(1)
	g, err := grid.New(256, 256)
	require.NoError(t, err)
	tr.OnTick(g, 1)
	tr.OnTick(g, 2)

	id, err := s.Save(Run{
		Name:    "demo",
		Session: testSession(),
		Ticks:   18,
		Metrics: map[string]float64{"wet_area": 0.25},
		Trace:   tr,
	})
	require.NoError(t, err)

	meta, err := s.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "demo", meta.Name)
	assert.Equal(t, 256, meta.Size)
	assert.Equal(t, int64(5), meta.Seed)
	assert.Equal(t, 4, meta.Actions)
	assert.Equal(t, uint64(18), meta.Ticks)
	assert.Equal(t, 0.25, meta.Metrics["wet_area"])

	sess, err := s.LoadSession(id)
	require.NoError(t, err)
	assert.Len(t, sess.Actions, 4)
	assert.Equal(t, 300*time.Millisecond, sess.Length())

	samples, err := s.LoadTrace(id)
	require.NoError(t, err)
	assert.Len(t, samples, 2)

	raw, err := s.SessionJSON(id)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"stroke_start": true`)
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, nil)

	runs, err := s.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	first, err := s.Save(Run{Name: "a", Session: testSession()})
	require.NoError(t, err)
	second, err := s.Save(Run{Name: "b", Session: testSession()})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "junk"), 0755))

	runs, err = s.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second, runs[0].ID)
	assert.Equal(t, first, runs[1].ID)
}

func TestMissingRun(t *testing.T) {
	s := New(t.TempDir(), nil)
	_, err := s.Load("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.LoadSession("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.LoadTrace("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Save(Run{Name: "x"})
	assert.Error(t, err)
}
