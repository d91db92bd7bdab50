package record

import (
	"time"

	"github.com/san-kum/inksim/internal/physics"
)

// Recorder is an append-only action log. It starts with the controls in
// force when recording began, both at t = 0.
type Recorder struct {
	actions []Action
	last    time.Duration
}

func NewRecorder(params physics.Params, paper physics.PaperConfig) *Recorder {
	r := &Recorder{}
	r.actions = append(r.actions, ParamAction(0, params), PaperAction(0, paper))
	return r
}

// Record appends a. Timestamps never go backwards; an earlier one is moved
// up to the last recorded time.
func (r *Recorder) Record(a Action) {
	if at := a.At(); at < r.last {
		a.T = seconds(r.last)
	} else {
		r.last = at
	}
	r.actions = append(r.actions, a)
}

func (r *Recorder) Len() int { return len(r.actions) }

// Actions returns a copy of the log.
func (r *Recorder) Actions() []Action {
	return append([]Action(nil), r.actions...)
}

// Session packages the log for persistence.
func (r *Recorder) Session(width, height int, seed int64, created time.Time, duration time.Duration) *Session {
	if duration < r.last {
		duration = r.last
	}
	return &Session{
		Version:   Version,
		Width:     width,
		Height:    height,
		Seed:      seed,
		CreatedAt: created,
		Duration:  duration.Seconds(),
		Actions:   r.Actions(),
	}
}
