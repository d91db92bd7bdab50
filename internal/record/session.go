package record

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/san-kum/inksim/internal/grid"
	"github.com/san-kum/inksim/internal/logx"
)

// Version is the session format written by Encode.
const Version = 1

// Session is a recorded painting session: enough to replay it from a blank
// canvas of the same size.
type Session struct {
	Version   int       `json:"version"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Seed      int64     `json:"seed"`
	CreatedAt time.Time `json:"created_at"`
	Duration  float64   `json:"duration"`
	Actions   []Action  `json:"actions"`
}

// Length is the session clock at the end of recording.
func (s *Session) Length() time.Duration {
	return time.Duration(math.Round(s.Duration * float64(time.Second)))
}

// Counts tallies actions by kind.
func (s *Session) Counts() map[Kind]int {
	out := make(map[Kind]int)
	for _, a := range s.Actions {
		out[a.Kind]++
	}
	return out
}

// sessionFile mirrors Session but leaves actions undecoded so one bad entry
// does not lose the rest.
type sessionFile struct {
	Version   int               `json:"version"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Seed      int64             `json:"seed"`
	CreatedAt time.Time         `json:"created_at"`
	Duration  float64           `json:"duration"`
	Actions   []json.RawMessage `json:"actions"`
}

func Encode(w io.Writer, s *Session) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}

// Decode reads a session. Actions that fail to parse or validate are skipped
// with a warning and reported in the returned count.
func Decode(r io.Reader, log *slog.Logger) (*Session, int, error) {
	log = logx.OrNop(log)

	var f sessionFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return nil, 0, fmt.Errorf("decode session: %w", err)
	}
	if f.Version < 1 || f.Version > Version {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, f.Version)
	}
	if !grid.ValidSize(f.Width, f.Height) {
		return nil, 0, fmt.Errorf("decode session: %w: %dx%d", grid.ErrInvalidSize, f.Width, f.Height)
	}

	s := &Session{
		Version:   f.Version,
		Width:     f.Width,
		Height:    f.Height,
		Seed:      f.Seed,
		CreatedAt: f.CreatedAt,
		Duration:  f.Duration,
		Actions:   make([]Action, 0, len(f.Actions)),
	}
	skipped := 0
	for i, raw := range f.Actions {
		var a Action
		err := json.Unmarshal(raw, &a)
		if err == nil {
			err = a.Validate()
		}
		if err != nil {
			skipped++
			log.Warn("skipping recorded action", "err", &ActionError{Index: i, Kind: a.Kind, Wrapped: err})
			continue
		}
		s.Actions = append(s.Actions, a)
	}
	sort.SliceStable(s.Actions, func(i, j int) bool { return s.Actions[i].T < s.Actions[j].T })
	return s, skipped, nil
}
