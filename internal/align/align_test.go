package align

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"vadscribe/internal/logging"
	"vadscribe/internal/manifest"
	"vadscribe/internal/services"
	"vadscribe/internal/transcript"
)

const sampleTextGrid = `File type = "ooTextFile"
Object class = "TextGrid"

xmin = 0
xmax = 1.2
tiers? <exists>
size = 2
item []:
    item [1]:
        class = "IntervalTier"
        name = "words"
        xmin = 0
        xmax = 1.2
        intervals: size = 3
        intervals [1]:
            xmin = 0
            xmax = 0.1
            text = ""
        intervals [2]:
            xmin = 0.1
            xmax = 0.5
            text = "hello"
        intervals [3]:
            xmin = 0.5
            xmax = 1.2
            text = "world"
    item [2]:
        class = "IntervalTier"
        name = "phones"
        xmin = 0
        xmax = 1.2
        intervals: size = 5
        intervals [1]:
            xmin = 0
            xmax = 0.1
            text = "sil"
        intervals [2]:
            xmin = 0.1
            xmax = 0.3
            text = "HH"
        intervals [3]:
            xmin = 0.3
            xmax = 0.5
            text = "OW"
        intervals [4]:
            xmin = 0.5
            xmax = 1.2
            text = "W"
        intervals [5]:
            xmin = 1.2
            xmax = 1.2
            text = ""
`

func TestParseTextGrid(t *testing.T) {
	tg, err := ParseTextGrid(strings.NewReader(sampleTextGrid))
	if err != nil {
		t.Fatalf("ParseTextGrid: %v", err)
	}
	if len(tg.Tiers["words"]) != 3 || len(tg.Tiers["phones"]) != 5 {
		t.Fatalf("unexpected tiers: %+v", tg.Tiers)
	}
	words := tg.Labelled("words")
	if len(words) != 2 || words[1] != (Interval{Start: 0.5, End: 1.2, Text: "world"}) {
		t.Fatalf("unexpected words: %+v", words)
	}
}

func TestParseTextGridEscapedQuote(t *testing.T) {
	input := `item [1]:
    name = "words"
    intervals [1]:
        xmin = 0
        xmax = 1
        text = "say ""hi"""
`
	tg, err := ParseTextGrid(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseTextGrid: %v", err)
	}
	if got := tg.Tiers["words"][0].Text; got != `say "hi"` {
		t.Fatalf("text = %q", got)
	}
}

func TestParseTextGridRejectsBadNumbers(t *testing.T) {
	input := `item [1]:
    name = "words"
    intervals [1]:
        xmin = zero
`
	if _, err := ParseTextGrid(strings.NewReader(input)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNestPhonesByMidpoint(t *testing.T) {
	tg, err := ParseTextGrid(strings.NewReader(sampleTextGrid))
	if err != nil {
		t.Fatal(err)
	}
	al := NewAlignment("talk_chunk_001", 16000, tg)
	if al.Stats != (Stats{WordsAligned: 2, PhonesAligned: 3}) {
		t.Fatalf("stats = %+v", al.Stats)
	}
	if len(al.Words[0].Phones) != 2 || al.Words[0].Phones[1].Phone != "OW" {
		t.Fatalf("unexpected phones for hello: %+v", al.Words[0].Phones)
	}
	if len(al.Words[1].Phones) != 1 || al.Words[1].Phones[0].Phone != "W" {
		t.Fatalf("unexpected phones for world: %+v", al.Words[1].Phones)
	}
}

func TestParseDirWritesJSONAndJSONL(t *testing.T) {
	layout := NewLayout(t.TempDir())
	speakerDir := filepath.Join(layout.TextGrids, "speaker")
	if err := os.MkdirAll(speakerDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(speakerDir, "talk_chunk_001.TextGrid"), []byte(sampleTextGrid), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(layout.TextGrids, "broken.TextGrid"), []byte("item [1]:\n name = words\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := ParseDir(layout, 16000, logging.NewNop())
	if err != nil {
		t.Fatalf("ParseDir: %v", err)
	}
	if len(res.Alignments) != 1 || len(res.Failed) != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	data, err := os.ReadFile(filepath.Join(layout.JSON, "talk_chunk_001.json"))
	if err != nil {
		t.Fatalf("chunk json missing: %v", err)
	}
	for _, want := range []string{`"chunkId": "talk_chunk_001"`, `"ll": null`, `"wordsAligned": 2`} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("chunk json missing %s:\n%s", want, data)
		}
	}
	lines, err := os.ReadFile(layout.JSONL)
	if err != nil {
		t.Fatalf("jsonl missing: %v", err)
	}
	if strings.Count(string(lines), "\n") != 1 {
		t.Fatalf("expected one jsonl line, got %q", lines)
	}
}

func TestPrepareBuildsCorpus(t *testing.T) {
	chunksDir := t.TempDir()
	layout := NewLayout(t.TempDir())
	for _, name := range []string{"talk_chunk_001.wav", "talk_chunk_002.wav"} {
		if err := os.WriteFile(filepath.Join(chunksDir, name), []byte("RIFF"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	unit := transcript.Unit{Start: 0, End: 1, Text: "It’s “fine”, OK?", Words: []transcript.Word{{Text: "fine", Start: 0, End: 1}}}
	if err := transcript.WriteUnit(filepath.Join(chunksDir, "json", "talk", "talk_chunk_002.json"), unit); err != nil {
		t.Fatal(err)
	}
	manifestPath := filepath.Join(chunksDir, manifest.FileName)
	records := []manifest.Record{
		{Source: "talk.wav", Chunk: "talk_chunk_001.wav", Start: 0, End: 1, Duration: 1, Text: "Reference Text!"},
		{Source: "talk.wav", Chunk: "talk_chunk_002.wav", Start: 1, End: 2, Duration: 1},
		{Source: "talk.wav", Chunk: "talk_chunk_003.wav", Start: 2, End: 3, Duration: 1},
	}
	if err := manifest.Write(manifestPath, records); err != nil {
		t.Fatal(err)
	}

	res, err := Prepare(manifestPath, chunksDir, layout, nil)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if res.Prepared != 2 || len(res.Failed) != 1 || !errors.Is(res.Failed[0], services.ErrNotFound) {
		t.Fatalf("unexpected result: %+v", res)
	}
	lab1, _ := os.ReadFile(filepath.Join(layout.Corpus, "talk_chunk_001.lab"))
	if string(lab1) != "reference text\n" {
		t.Fatalf("lab 1 = %q", lab1)
	}
	lab2, _ := os.ReadFile(filepath.Join(layout.Corpus, "talk_chunk_002.lab"))
	if string(lab2) != "it's fine ok\n" {
		t.Fatalf("lab 2 = %q", lab2)
	}
	if _, err := os.Stat(filepath.Join(layout.Corpus, "talk_chunk_001.wav")); err != nil {
		t.Fatalf("wav not copied: %v", err)
	}
	if info, err := os.Stat(layout.Lexicon()); err != nil || info.Size() != 0 {
		t.Fatalf("lexicon should exist and be empty: %v", err)
	}
}

func TestAlignerRun(t *testing.T) {
	layout := NewLayout(t.TempDir())
	if err := os.MkdirAll(layout.Corpus, 0o755); err != nil {
		t.Fatal(err)
	}
	var calls [][]string
	a := NewAligner(RunOptions{Binary: "mfa-test-binary", AcousticModel: "english_mfa", Beam: 10, RetryBeam: 40}, layout, nil)
	a.WithCommandRunner(func(_ context.Context, name string, args ...string) ([]byte, error) {
		calls = append(calls, append([]string{name}, args...))
		return nil, nil
	})
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(calls) != 2 || calls[0][1] != "version" {
		t.Fatalf("unexpected calls: %v", calls)
	}
	want := []string{"mfa-test-binary", "align", layout.Corpus, layout.Lexicon(), "english_mfa", layout.TextGrids,
		"--clean", "--beam", "10", "--retry_beam", "40"}
	if !slices.Equal(calls[1], want) {
		t.Fatalf("align call = %v, want %v", calls[1], want)
	}
}

func TestAlignerMissingBinary(t *testing.T) {
	layout := NewLayout(t.TempDir())
	if err := os.MkdirAll(layout.Corpus, 0o755); err != nil {
		t.Fatal(err)
	}
	a := NewAligner(RunOptions{Binary: "mfa"}, layout, nil)
	a.WithCommandRunner(func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("executable file not found")
	})
	if err := a.Run(context.Background()); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}
