package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewRecordRoundsToCentiseconds(t *testing.T) {
	r := NewRecord("talk.wav", "talk_chunk_001.wav", 1.234, 4.5678)
	if r.Start != 1.23 || r.End != 4.57 || r.Duration != 3.33 {
		t.Fatalf("unexpected record: %+v", r)
	}
}

func TestWriteAppendRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	first := []Record{NewRecord("a.wav", "a_chunk_001.wav", 0, 1)}
	if err := Write(path, first); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := Append(path, []Record{NewRecord("b.wav", "b_chunk_001.wav", 2, 3)}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	records, bad, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(bad) != 0 {
		t.Fatalf("unexpected bad lines: %+v", bad)
	}
	if len(records) != 2 || records[1].Source != "b.wav" || records[1].Start != 2 {
		t.Fatalf("unexpected records: %+v", records)
	}
}

func TestDecodeSkipsBadLinesAndAcceptsLegacyKey(t *testing.T) {
	input := strings.Join([]string{
		`{"src":"a.wav","chunk":"a_chunk_001.wav","start":0,"end":1,"duration":1}`,
		``,
		`{not json`,
		`{"source":"b.wav","chunk":"b_chunk_001.wav","start":1,"end":2,"duration":1}`,
	}, "\n")
	records, bad, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[1].Source != "b.wav" {
		t.Fatalf("legacy source not mapped: %+v", records[1])
	}
	if len(bad) != 1 || bad[0].Number != 3 {
		t.Fatalf("unexpected bad lines: %+v", bad)
	}
}

func TestGroupBySourceSortsByStart(t *testing.T) {
	records := []Record{
		{Source: "data/x.wav", Chunk: "x_chunk_002.wav", Start: 5},
		{Source: "y.wav", Chunk: "y_chunk_001.wav", Start: 0},
		{Source: "", Chunk: "orphan.wav", Start: 1},
		{Source: "x.wav", Chunk: "x_chunk_001.wav", Start: 1},
	}
	groups := GroupBySource(records)
	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2", len(groups))
	}
	if groups[0].Base != "x" || groups[1].Base != "y" {
		t.Fatalf("unexpected group order: %s, %s", groups[0].Base, groups[1].Base)
	}
	if groups[0].Records[0].Chunk != "x_chunk_001.wav" || groups[0].Records[1].Chunk != "x_chunk_002.wav" {
		t.Fatalf("group not sorted: %+v", groups[0].Records)
	}
}

func TestChunkPath(t *testing.T) {
	r := Record{Chunk: "a_chunk_001.wav"}
	if got := r.ChunkPath("/data/chunks"); got != filepath.Join("/data/chunks", "a_chunk_001.wav") {
		t.Fatalf("ChunkPath = %s", got)
	}
	abs := Record{Chunk: "/tmp/x.wav"}
	if got := abs.ChunkPath("/data/chunks"); got != "/tmp/x.wav" {
		t.Fatalf("ChunkPath = %s", got)
	}
	if r.ChunkBase() != "a_chunk_001" {
		t.Fatalf("ChunkBase = %s", r.ChunkBase())
	}
}

func TestReadMissingManifest(t *testing.T) {
	if _, _, err := Read(filepath.Join(t.TempDir(), "nope.jsonl")); !os.IsNotExist(err) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
