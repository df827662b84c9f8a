package align

import (
	"encoding/json"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"vadscribe/internal/fileutil"
	"vadscribe/internal/logging"
	"vadscribe/internal/services"
)

// Phone is an aligned phone nested in its word.
type Phone struct {
	Phone      string   `json:"ph"`
	Start      float64  `json:"s"`
	End        float64  `json:"e"`
	Likelihood *float64 `json:"ll"`
}

// Word is an aligned word with its phones.
type Word struct {
	Word       string   `json:"w"`
	Start      float64  `json:"s"`
	End        float64  `json:"e"`
	Likelihood *float64 `json:"ll"`
	Phones     []Phone  `json:"phones"`
}

// Stats counts aligned units in a chunk.
type Stats struct {
	WordsAligned  int `json:"wordsAligned"`
	PhonesAligned int `json:"phonesAligned"`
}

// Alignment is the parsed result for one chunk.
type Alignment struct {
	ChunkID    string `json:"chunkId"`
	SampleRate int    `json:"sampleRate"`
	Words      []Word `json:"words"`
	Stats      Stats  `json:"stats"`
}

// Nest builds words from the "words" and "phones" tiers. Each phone goes to
// the first word whose bounds contain the phone's midpoint; phones outside
// every word are dropped.
func Nest(tg TextGrid) []Word {
	intervals := tg.Labelled("words")
	words := make([]Word, len(intervals))
	for i, iv := range intervals {
		words[i] = Word{Word: iv.Text, Start: iv.Start, End: iv.End, Phones: []Phone{}}
	}
	for _, p := range tg.Labelled("phones") {
		mid := (p.Start + p.End) / 2
		for i := range words {
			if mid >= words[i].Start && mid <= words[i].End {
				words[i].Phones = append(words[i].Phones, Phone{Phone: p.Text, Start: p.Start, End: p.End})
				break
			}
		}
	}
	return words
}

// NewAlignment assembles a chunk alignment from a parsed TextGrid.
func NewAlignment(chunkID string, sampleRate int, tg TextGrid) Alignment {
	words := Nest(tg)
	phones := 0
	for _, w := range words {
		phones += len(w.Phones)
	}
	return Alignment{
		ChunkID:    chunkID,
		SampleRate: sampleRate,
		Words:      words,
		Stats:      Stats{WordsAligned: len(words), PhonesAligned: phones},
	}
}

// ParseResult reports a parse run.
type ParseResult struct {
	Alignments []Alignment
	Failed     []error
}

// ParseDir converts every .TextGrid under the layout's TextGrid directory
// into json/<chunk>.json and writes all alignments to alignments.jsonl.
func ParseDir(layout Layout, sampleRate int, logger *slog.Logger) (ParseResult, error) {
	logger = logging.NewComponentLogger(logger, "align")
	var result ParseResult

	paths, err := findTextGrids(layout.TextGrids)
	if err != nil {
		return result, services.Wrap(services.ErrNotFound, "align", "list textgrids", layout.TextGrids, err)
	}
	if err := os.MkdirAll(layout.JSON, 0o755); err != nil {
		return result, services.Wrap(services.ErrConfiguration, "align", "ensure json dir", layout.JSON, err)
	}

	for _, path := range paths {
		al, err := parseFile(path, sampleRate)
		if err != nil {
			result.Failed = append(result.Failed, err)
			logging.WarnWithContext(logger, "textgrid skipped", "align_parse_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "chunk missing from alignments"),
			)
			continue
		}
		if err := fileutil.WriteJSON(filepath.Join(layout.JSON, al.ChunkID+".json"), al); err != nil {
			return result, services.Wrap(services.ErrTransient, "align", "write alignment", al.ChunkID, err)
		}
		result.Alignments = append(result.Alignments, al)
	}

	err = fileutil.WriteAtomic(layout.JSONL, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		for _, al := range result.Alignments {
			if err := enc.Encode(al); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return result, services.Wrap(services.ErrTransient, "align", "write jsonl", layout.JSONL, err)
	}
	logger.Info("alignments parsed",
		logging.Int("chunks", len(result.Alignments)),
		logging.Int("failed", len(result.Failed)),
		logging.String("jsonl", layout.JSONL),
	)
	return result, nil
}

func parseFile(path string, sampleRate int) (Alignment, error) {
	f, err := os.Open(path)
	if err != nil {
		return Alignment{}, err
	}
	defer f.Close()
	tg, err := ParseTextGrid(f)
	if err != nil {
		return Alignment{}, services.Wrap(services.ErrValidation, "align", "parse textgrid", filepath.Base(path), err)
	}
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return NewAlignment(id, sampleRate, tg), nil
}

func findTextGrids(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".textgrid") {
			paths = append(paths, path)
		}
		return nil
	})
	sort.Strings(paths)
	return paths, err
}
