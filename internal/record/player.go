package record

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/san-kum/inksim/internal/logx"
	"github.com/san-kum/inksim/internal/physics"
)

// Target receives replayed actions through the same entry points a live
// host uses.
type Target interface {
	Input(ev InputEvent) error
	SetParams(p physics.Params)
	SetPaper(cfg physics.PaperConfig) physics.PaperConfig
	RegeneratePaper(cfg physics.PaperConfig) physics.PaperConfig
	Clear()
	SetView(view string) error
	Undo() error
	Redo() error
	Frame(elapsed time.Duration) int
}

// Player feeds a session to a target by elapsed playback time. Before each
// frame it dispatches every action stamped at or before the time already
// played, so a replay with the recorded frame times reproduces the input
// sequence exactly.
type Player struct {
	session *Session
	target  Target
	log     *slog.Logger

	next    int
	elapsed time.Duration
	stopped bool
	skipped int
	ticks   int
}

func NewPlayer(s *Session, target Target, log *slog.Logger) *Player {
	return &Player{session: s, target: target, log: logx.OrNop(log)}
}

// Advance dispatches due actions and then runs one frame of the given length
// on the target. It returns the ticks the frame ran. Once the recorded length
// has been played, the remaining actions are dispatched without a frame.
func (p *Player) Advance(elapsed time.Duration) int {
	if p.stopped || p.Done() {
		return 0
	}
	end := p.elapsed >= p.session.Length()
	actions := p.session.Actions
	for p.next < len(actions) && (end || actions[p.next].At() <= p.elapsed) {
		if err := p.dispatch(actions[p.next]); err != nil {
			p.skipped++
			p.log.Warn("replayed action failed", "err", &ActionError{Index: p.next, Kind: actions[p.next].Kind, Wrapped: err})
		}
		p.next++
	}
	if end {
		return 0
	}
	n := p.target.Frame(elapsed)
	p.elapsed += elapsed
	p.ticks += n
	return n
}

func (p *Player) dispatch(a Action) error {
	if err := a.Validate(); err != nil {
		return err
	}
	t := p.target
	switch a.Kind {
	case KindInput:
		return t.Input(*a.Input)
	case KindParamChange:
		t.SetParams(*a.Params)
	case KindPaperChange:
		t.SetPaper(*a.Paper)
	case KindRegenPaper:
		t.RegeneratePaper(*a.Paper)
	case KindClear:
		t.Clear()
	case KindToggleView:
		return t.SetView(a.View)
	case KindUndo:
		return t.Undo()
	case KindRedo:
		return t.Redo()
	}
	return nil
}

// Stop ends playback; later Advance calls do nothing.
func (p *Player) Stop() { p.stopped = true }

// Done reports whether every action has been dispatched and the recorded
// length has been played.
func (p *Player) Done() bool {
	return p.stopped || (p.next >= len(p.session.Actions) && p.elapsed >= p.session.Length())
}

func (p *Player) Elapsed() time.Duration { return p.elapsed }
func (p *Player) Skipped() int           { return p.skipped }
func (p *Player) Ticks() int             { return p.ticks }
func (p *Player) Remaining() int         { return len(p.session.Actions) - p.next }

// Replay plays s into target with fixed frame times until done, checking ctx
// between frames.
func Replay(ctx context.Context, target Target, s *Session, frame time.Duration, log *slog.Logger) (*Player, error) {
	if frame <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrame, frame)
	}
	p := NewPlayer(s, target, log)
	for !p.Done() {
		select {
		case <-ctx.Done():
			p.Stop()
			return p, ctx.Err()
		default:
		}
		p.Advance(frame)
	}
	return p, nil
}
