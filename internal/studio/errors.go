package studio

import "errors"

var (
	ErrUnknownView  = errors.New("studio: unknown view")
	ErrNotRecording = errors.New("studio: not recording")
	ErrRecording    = errors.New("studio: already recording")
)
