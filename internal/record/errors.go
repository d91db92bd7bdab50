package record

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedAction indicates an action whose payload does not match its kind.
	ErrMalformedAction = errors.New("record: malformed action")

	// ErrUnsupportedVersion indicates a session written by an unknown format version.
	ErrUnsupportedVersion = errors.New("record: unsupported session version")

	// ErrInvalidFrame indicates a non-positive playback frame duration.
	ErrInvalidFrame = errors.New("record: frame duration must be positive")
)

// ActionError wraps a failure with the position of the action that caused it.
type ActionError struct {
	Index   int
	Kind    Kind
	Wrapped error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("action %d (%s): %v", e.Index, e.Kind, e.Wrapped)
}

func (e *ActionError) Unwrap() error {
	return e.Wrapped
}
