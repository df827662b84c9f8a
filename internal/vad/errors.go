package vad

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFrameLength reports a frame whose sample count differs from the
	// configured frame size. Callers zero-pad the final partial frame.
	ErrInvalidFrameLength = errors.New("invalid frame length")
	// ErrDetectorInit reports a detector that could not be created or configured.
	ErrDetectorInit = errors.New("detector init failed")
)

// FrameLengthError carries the mismatched sizes of a rejected frame.
type FrameLengthError struct {
	Got  int
	Want int
}

func (e *FrameLengthError) Error() string {
	return fmt.Sprintf("%s: got %d samples, want %d", ErrInvalidFrameLength, e.Got, e.Want)
}

func (e *FrameLengthError) Unwrap() error {
	return ErrInvalidFrameLength
}
