package history

import "errors"

var (
	ErrNothingToUndo      = errors.New("history: nothing to undo")
	ErrNothingToRedo      = errors.New("history: nothing to redo")
	ErrResolutionMismatch = errors.New("history: snapshot resolution does not match")
)
