package wer

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vadscribe/internal/services"
	"vadscribe/internal/transcript"
)

// FileResult is the score of one transcript against its reference.
type FileResult struct {
	Base           string `json:"base"`
	HypothesisPath string `json:"hypothesis"`
	ReferencePath  string `json:"reference"`
	Report
	WER float64 `json:"wer"`
}

// Skipped records a transcript that could not be scored.
type Skipped struct {
	Base   string `json:"base"`
	Reason string `json:"reason"`
}

// Failure records a transcript or reference that exists but could not be read
// or decoded.
type Failure struct {
	Base   string `json:"base"`
	Reason string `json:"reason"`
}

// Corpus aggregates per-file results.
type Corpus struct {
	Files   []FileResult `json:"files"`
	Skipped []Skipped    `json:"skipped,omitempty"`
	Failed  []Failure    `json:"failed,omitempty"`
}

// Total is the number of transcripts considered.
func (c Corpus) Total() int {
	return len(c.Files) + len(c.Skipped) + len(c.Failed)
}

// WeightedWER returns the corpus WER weighted by reference length.
func (c Corpus) WeightedWER() float64 {
	var errs, n int
	for _, f := range c.Files {
		errs += f.Errors()
		n += f.ReferenceLength
	}
	if n == 0 {
		return 0
	}
	return float64(errs) / float64(n)
}

// ScorePair scores a transcript JSON file against a plain-text reference.
// Missing files are reported with services.ErrNotFound.
func ScorePair(hypPath, refPath string) (FileResult, error) {
	base := strings.TrimSuffix(filepath.Base(hypPath), transcript.TranscriptSuffix)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	result := FileResult{Base: base, HypothesisPath: hypPath, ReferencePath: refPath}

	tr, err := transcript.ReadFile(hypPath)
	if err != nil {
		return result, loadError("hypothesis", hypPath, err)
	}
	ref, err := os.ReadFile(refPath)
	if err != nil {
		return result, loadError("reference", refPath, err)
	}
	result.Report = Score(string(ref), transcript.HypothesisText(tr))
	result.WER = result.Report.WER()
	return result, nil
}

func loadError(kind, path string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return services.Wrap(services.ErrNotFound, "wer", "load "+kind, "missing "+path, err)
	}
	return services.Wrap(services.ErrValidation, "wer", "load "+kind, path, err)
}

// ScoreDir scores every *.transcript.json in chunksDir against
// refsDir/<base>.txt. Missing pairs are skipped and unreadable ones are
// listed as failed; neither stops the remaining files. It is an error for
// chunksDir to hold no transcripts.
func ScoreDir(chunksDir, refsDir string) (Corpus, error) {
	var corpus Corpus
	matches, err := filepath.Glob(filepath.Join(chunksDir, "*"+transcript.TranscriptSuffix))
	if err != nil {
		return corpus, fmt.Errorf("list transcripts: %w", err)
	}
	if len(matches) == 0 {
		return corpus, services.Wrap(services.ErrNotFound, "wer", "list transcripts", "no transcript files in "+chunksDir, nil)
	}
	sort.Strings(matches)
	for _, hypPath := range matches {
		base := strings.TrimSuffix(filepath.Base(hypPath), transcript.TranscriptSuffix)
		result, err := ScorePair(hypPath, filepath.Join(refsDir, base+".txt"))
		switch {
		case errors.Is(err, services.ErrNotFound):
			corpus.Skipped = append(corpus.Skipped, Skipped{Base: base, Reason: err.Error()})
			continue
		case err != nil:
			corpus.Failed = append(corpus.Failed, Failure{Base: base, Reason: err.Error()})
			continue
		}
		corpus.Files = append(corpus.Files, result)
	}
	return corpus, nil
}
