package recognize

import (
	"math"
	"strings"

	"vadscribe/internal/transcript"
)

// RawWord is a backend word before offsetting. Missing timestamps are nil.
type RawWord struct {
	Text  string
	Start *float64
	End   *float64
}

// BuildUnit converts backend output into a Unit. Timestamps are shifted by
// offset and rounded to milliseconds. Words with missing or non-finite
// timestamps, an end before the start, or blank text are dropped. The unit
// text prefers the model's text and falls back to the joined words. Returns
// nil when no word survives.
func BuildUnit(modelText string, words []RawWord, offset float64) *transcript.Unit {
	kept := make([]transcript.Word, 0, len(words))
	for _, w := range words {
		if w.Start == nil || w.End == nil {
			continue
		}
		text := transcript.CollapseSpaces(w.Text)
		if text == "" {
			continue
		}
		s := round3(offset + *w.Start)
		e := round3(offset + *w.End)
		if !finite(s) || !finite(e) || e < s {
			continue
		}
		kept = append(kept, transcript.Word{Text: text, Start: s, End: e})
	}
	if len(kept) == 0 {
		return nil
	}

	text := transcript.NormalizeText(modelText)
	if text == "" {
		parts := make([]string, len(kept))
		for i, w := range kept {
			parts[i] = w.Text
		}
		text = transcript.NormalizeText(strings.Join(parts, " "))
	}
	return &transcript.Unit{
		Start: kept[0].Start,
		End:   kept[len(kept)-1].End,
		Text:  text,
		Words: kept,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func ptr(v float64) *float64 { return &v }
