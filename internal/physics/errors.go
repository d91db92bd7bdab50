package physics

import "errors"

var (
	ErrInvalidInput = errors.New("physics: invalid brush input")
	ErrUnknownBrush = errors.New("physics: unknown brush type")
	ErrUnknownPaper = errors.New("physics: unknown paper type")
)
