package transcript

// Word is a recognized token with absolute timestamps in seconds.
type Word struct {
	Text  string  `json:"w"`
	Start float64 `json:"s"`
	End   float64 `json:"e"`
}

// Unit is one span's recognition result. Words are time ordered and
// non-overlapping.
type Unit struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words"`
}

// Chunk is a finalized transcript segment. End is the last word's end.
type Chunk struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words"`
}

// Transcript is the persisted result for one source recording.
type Transcript struct {
	Chunks []Chunk `json:"chunks"`
}
