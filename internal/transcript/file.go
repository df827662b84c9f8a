package transcript

import (
	"encoding/json"
	"fmt"
	"os"

	"vadscribe/internal/fileutil"
)

// TranscriptSuffix is appended to a source base name to form its transcript file.
const TranscriptSuffix = ".transcript.json"

// ReadFile loads a persisted transcript.
func ReadFile(path string) (Transcript, error) {
	var t Transcript
	data, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := json.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("decode transcript %s: %w", path, err)
	}
	return t, nil
}

// WriteFile atomically persists a transcript. A nil chunk list is written as
// an empty array.
func WriteFile(path string, t Transcript) error {
	if t.Chunks == nil {
		t.Chunks = []Chunk{}
	}
	return fileutil.WriteJSON(path, t)
}

// ReadUnit loads a per-chunk recognition result.
func ReadUnit(path string) (Unit, error) {
	var u Unit
	data, err := os.ReadFile(path)
	if err != nil {
		return u, err
	}
	if err := json.Unmarshal(data, &u); err != nil {
		return u, fmt.Errorf("decode unit %s: %w", path, err)
	}
	return u, nil
}

// WriteUnit atomically persists a per-chunk recognition result.
func WriteUnit(path string, u Unit) error {
	if u.Words == nil {
		u.Words = []Word{}
	}
	return fileutil.WriteJSON(path, u)
}
