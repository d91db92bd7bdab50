package grid

import "errors"

var (
	// ErrInvalidSize indicates a resolution other than 256, 512 or 1024 square.
	ErrInvalidSize = errors.New("grid: invalid size (want square 256, 512 or 1024)")

	// ErrSizeMismatch indicates arrays captured at a different resolution.
	ErrSizeMismatch = errors.New("grid: arrays size does not match grid")
)
