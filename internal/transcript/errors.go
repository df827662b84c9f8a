package transcript

import (
	"errors"
	"fmt"
)

// ErrMalformedUnit reports a unit with missing bounds or disordered words.
var ErrMalformedUnit = errors.New("malformed unit")

// UnitError describes why a unit was rejected.
type UnitError struct {
	Index  int
	Reason string
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("%s %d: %s", ErrMalformedUnit, e.Index, e.Reason)
}

func (e *UnitError) Unwrap() error {
	return ErrMalformedUnit
}
