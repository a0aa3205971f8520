package schedule

import "errors"

var (
	ErrTableNotFound   = errors.New("table not found")
	ErrTableOccupied   = errors.New("table already occupied")
	ErrMatchNotFound   = errors.New("match not found")
	ErrMatchNotReady   = errors.New("match is not ready to play")
	ErrDoubleAssigned  = errors.New("match already on a table")
	ErrNoPositiveCount = errors.New("table count must be positive")
)
