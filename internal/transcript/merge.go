package transcript

// MergeOptions holds the consolidation thresholds in seconds.
type MergeOptions struct {
	MaxGapSec      float64
	MaxDurationSec float64
}

// MergeState is the reducer state: either no open chunk or one chunk
// accumulating units. The zero value has no open chunk.
type MergeState struct {
	open *Chunk
}

// Open reports whether a chunk is accumulating.
func (s MergeState) Open() bool {
	return s.open != nil
}

// Step folds one unit into the state. Units without words are ignored. When
// the unit cannot join the open chunk, the open chunk is finalized and
// returned and a new chunk is opened from the unit.
func Step(state MergeState, u Unit, opts MergeOptions) (MergeState, *Chunk) {
	if len(u.Words) == 0 {
		return state, nil
	}
	if state.open == nil {
		return MergeState{open: openChunk(u)}, nil
	}

	cur := state.open
	gap := u.Start - cur.Words[len(cur.Words)-1].End
	prospective := u.End - cur.Start
	if gap <= opts.MaxGapSec && prospective <= opts.MaxDurationSec {
		next := *cur
		next.Text = joinText(cur.Text, u.Text)
		next.Words = append(append(make([]Word, 0, len(cur.Words)+len(u.Words)), cur.Words...), u.Words...)
		next.End = u.End
		return MergeState{open: &next}, nil
	}

	_, emitted := Flush(state)
	return MergeState{open: openChunk(u)}, emitted
}

// Flush finalizes the open chunk, if any: End becomes the last word's end and
// the text is normalized.
func Flush(state MergeState) (MergeState, *Chunk) {
	if state.open == nil {
		return state, nil
	}
	out := *state.open
	if len(out.Words) > 0 {
		out.End = out.Words[len(out.Words)-1].End
	}
	out.Text = NormalizeText(out.Text)
	return MergeState{}, &out
}

func openChunk(u Unit) *Chunk {
	words := make([]Word, len(u.Words))
	copy(words, u.Words)
	return &Chunk{Start: u.Start, End: u.End, Text: u.Text, Words: words}
}

// MergeResult is the output of Merge.
type MergeResult struct {
	Chunks   []Chunk
	Rejected []error
}

// Merge consolidates units, which must be ordered by Start, into chunks in a
// single pass. Malformed units are rejected and reported without stopping the
// merge.
func Merge(units []Unit, opts MergeOptions) MergeResult {
	var (
		result MergeResult
		state  MergeState
		chunk  *Chunk
	)
	for i, u := range units {
		if len(u.Words) == 0 {
			continue
		}
		if err := Validate(i, u); err != nil {
			result.Rejected = append(result.Rejected, err)
			continue
		}
		state, chunk = Step(state, u, opts)
		if chunk != nil {
			result.Chunks = append(result.Chunks, *chunk)
		}
	}
	if _, chunk = Flush(state); chunk != nil {
		result.Chunks = append(result.Chunks, *chunk)
	}
	return result
}
