// Package manifest reads and writes the chunk manifest: one JSON record per
// line describing a cut chunk and the span of its source recording.
package manifest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vadscribe/internal/fileutil"
)

// FileName is the manifest's name inside the chunks directory.
const FileName = "chunks_manifest.jsonl"

// Record describes one chunk. Times are seconds into the source recording.
type Record struct {
	Source   string  `json:"src"`
	Chunk    string  `json:"chunk"`
	Start    float64 `json:"start"`
	End      float64 `json:"end"`
	Duration float64 `json:"duration"`

	// Reference text carried by hand-curated manifests; align prep prefers it
	// over recognizer output.
	Text string `json:"text,omitempty"`
}

type rawRecord struct {
	Record
	LegacySource string `json:"source,omitempty"`
}

// NewRecord builds a record with times rounded to centiseconds.
func NewRecord(source, chunk string, start, end float64) Record {
	s := round2(start)
	e := round2(end)
	return Record{Source: source, Chunk: chunk, Start: s, End: e, Duration: round2(end - start)}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// SourceBase returns the source file name without directory or extension.
func (r Record) SourceBase() string {
	name := filepath.Base(strings.TrimSpace(r.Source))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ChunkBase returns the chunk file name without directory or extension.
func (r Record) ChunkBase() string {
	name := filepath.Base(r.Chunk)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// ChunkPath resolves the chunk relative to dir unless it is absolute.
func (r Record) ChunkPath(dir string) string {
	if filepath.IsAbs(r.Chunk) {
		return r.Chunk
	}
	return filepath.Join(dir, r.Chunk)
}

// Encode writes records as JSON lines.
func Encode(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	return nil
}

// Write atomically replaces the manifest at path.
func Write(path string, records []Record) error {
	return fileutil.WriteAtomic(path, func(w io.Writer) error {
		return Encode(w, records)
	})
}

// Append adds records to the manifest at path, creating it if needed.
func Append(path string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if err := Encode(f, records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// BadLine is a manifest line that could not be decoded.
type BadLine struct {
	Number int
	Text   string
	Err    error
}

// Decode reads JSON lines, skipping blanks. Lines that fail to decode are
// returned separately rather than failing the read. The legacy "source" key
// is accepted in place of "src".
func Decode(r io.Reader) ([]Record, []BadLine, error) {
	var (
		records []Record
		bad     []BadLine
	)
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var raw rawRecord
		if err := json.Unmarshal(text, &raw); err != nil {
			bad = append(bad, BadLine{Number: line, Text: preview(string(text)), Err: err})
			continue
		}
		rec := raw.Record
		if rec.Source == "" {
			rec.Source = raw.LegacySource
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, bad, err
	}
	return records, bad, nil
}

// Read loads the manifest at path. See Decode.
func Read(path string) ([]Record, []BadLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return Decode(f)
}

func preview(s string) string {
	const limit = 120
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

// Group is every record of one source recording, ordered by start.
type Group struct {
	Base    string
	Records []Record
}

// GroupBySource buckets records by source base name and sorts each bucket by
// start time. Records without a source are dropped. Groups come back in
// order of first appearance.
func GroupBySource(records []Record) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, r := range records {
		base := r.SourceBase()
		if base == "" {
			continue
		}
		i, ok := index[base]
		if !ok {
			i = len(groups)
			index[base] = i
			groups = append(groups, Group{Base: base})
		}
		groups[i].Records = append(groups[i].Records, r)
	}
	for i := range groups {
		recs := groups[i].Records
		sort.SliceStable(recs, func(a, b int) bool { return recs[a].Start < recs[b].Start })
	}
	return groups
}
