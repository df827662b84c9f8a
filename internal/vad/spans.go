package vad

import "math"

// spanEpsilon absorbs float drift when stepping a cursor across a run so a
// run of exactly k*maxChunkSec yields k sub-spans.
const spanEpsilon = 1e-9

// Span is a padded speech interval in source-recording seconds.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns End - Start.
func (s Span) Duration() float64 {
	return s.End - s.Start
}

// SpanOptions holds the span construction thresholds in seconds.
type SpanOptions struct {
	MinSpeechSec float64
	MaxChunkSec  float64
	PadSec       float64
}

// BuildSpans converts smoothed flags into padded spans. Runs shorter than
// MinSpeechSec are dropped; runs longer than MaxChunkSec are split; each
// emitted sub-span is padded by PadSec on both sides with the start clamped at
// zero. The end is never clamped; the audio cutter truncates it.
func BuildSpans(flags []bool, frameDuration float64, opts SpanOptions) []Span {
	var spans []Span
	for _, raw := range rawSpans(flags, frameDuration, opts.MinSpeechSec) {
		spans = append(spans, splitAndPad(raw, opts.MaxChunkSec, opts.PadSec)...)
	}
	return spans
}

// rawSpans extracts speech runs at least minSpeechSec long. A run that reaches
// the last frame ends at (lastIndex+1)*frameDuration.
func rawSpans(flags []bool, frameDuration, minSpeechSec float64) []Span {
	var spans []Span
	for i := 0; i < len(flags); {
		if !flags[i] {
			i++
			continue
		}
		end := i + 1
		for end < len(flags) && flags[end] {
			end++
		}
		if span, ok := runSpan(i, end, frameDuration, minSpeechSec); ok {
			spans = append(spans, span)
		}
		i = end
	}
	return spans
}

// runSpan converts the speech frames [first, end) into a span, reporting false
// when the run is shorter than minSpeechSec.
func runSpan(first, end int, frameDuration, minSpeechSec float64) (Span, bool) {
	if float64(end-first)*frameDuration+spanEpsilon < minSpeechSec {
		return Span{}, false
	}
	return Span{Start: float64(first) * frameDuration, End: float64(end) * frameDuration}, true
}

func splitAndPad(raw Span, maxChunkSec, padSec float64) []Span {
	if maxChunkSec <= 0 || math.IsInf(maxChunkSec, 1) {
		return []Span{{Start: math.Max(0, raw.Start-padSec), End: raw.End + padSec}}
	}
	var out []Span
	for k := 0; ; k++ {
		cursor := raw.Start + float64(k)*maxChunkSec
		if raw.End-cursor <= spanEpsilon {
			break
		}
		end := math.Min(raw.End, raw.Start+float64(k+1)*maxChunkSec)
		out = append(out, Span{
			Start: math.Max(0, cursor-padSec),
			End:   end + padSec,
		})
	}
	return out
}
