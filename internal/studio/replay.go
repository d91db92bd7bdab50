package studio

import (
	"context"
	"fmt"
	"time"

	"github.com/san-kum/inksim/internal/record"
)

// Replay plays a recorded session into a fresh studio of the session's size
// and seed, with fixed frame times. The returned studio holds the final
// canvas.
func Replay(ctx context.Context, s *record.Session, frame time.Duration, opts ...Option) (*Studio, *record.Player, error) {
	st, err := New(s.Width, append(opts, WithSeed(s.Seed))...)
	if err != nil {
		return nil, nil, fmt.Errorf("replay: %w", err)
	}
	st.log.Info("replaying session", "actions", len(s.Actions), "length", s.Length())
	p, err := record.Replay(ctx, st, s, frame, st.log)
	if err != nil {
		return st, p, fmt.Errorf("replay: %w", err)
	}
	if n := p.Skipped(); n > 0 {
		st.log.Warn("replay finished with skipped actions", "skipped", n)
	}
	return st, p, nil
}
