package transcript

import (
	"fmt"
	"math"
)

// wordTolerance allows rounding noise between adjacent word boundaries.
const wordTolerance = 1e-6

// Validate checks that a unit has finite ordered bounds and that its words are
// time ordered and non-overlapping. The returned error wraps ErrMalformedUnit.
func Validate(index int, u Unit) error {
	if !finite(u.Start) || !finite(u.End) {
		return &UnitError{Index: index, Reason: "missing start or end"}
	}
	if u.End < u.Start {
		return &UnitError{Index: index, Reason: fmt.Sprintf("end %.3f before start %.3f", u.End, u.Start)}
	}
	for i, w := range u.Words {
		if !finite(w.Start) || !finite(w.End) {
			return &UnitError{Index: index, Reason: fmt.Sprintf("word %d has missing timestamps", i)}
		}
		if w.End < w.Start {
			return &UnitError{Index: index, Reason: fmt.Sprintf("word %d ends before it starts", i)}
		}
		if i > 0 && w.Start+wordTolerance < u.Words[i-1].End {
			return &UnitError{Index: index, Reason: fmt.Sprintf("word %d overlaps word %d", i, i-1)}
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
