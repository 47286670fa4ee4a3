package state

import (
	"errors"
	"fmt"
)

var (
	// ErrIndex is returned for out-of-range point or stroke access.
	ErrIndex = errors.New("index out of range")
	// ErrIO is returned when a stroke file cannot be written or read.
	ErrIO = errors.New("io error")
	// ErrFormat is returned when bytes are not a valid stroke encoding.
	ErrFormat = errors.New("format error")
	// ErrReleased is returned by a PointRef whose stroke has been released.
	ErrReleased = errors.New("stroke released")
	// ErrStep is returned by Slice for a zero step.
	ErrStep = errors.New("slice step cannot be zero")
)

// IndexError names the offending index and the valid range [0,Len).
type IndexError struct {
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %d not in [0,%d)", e.Index, e.Len)
}

// Is makes errors.Is(err, ErrIndex) hold for any *IndexError.
func (e *IndexError) Is(target error) bool {
	return target == ErrIndex
}
