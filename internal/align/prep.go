package align

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"vadscribe/internal/asr"
	"vadscribe/internal/fileutil"
	"vadscribe/internal/logging"
	"vadscribe/internal/manifest"
	"vadscribe/internal/services"
	"vadscribe/internal/textutil"
	"vadscribe/internal/transcript"
)

// PrepResult reports what corpus preparation produced.
type PrepResult struct {
	Prepared int
	Empty    int
	Failed   []error
}

// Prepare copies every manifest chunk into the corpus directory and writes a
// matching .lab file. The reference text comes from the manifest record, or
// from the stored per-chunk recognition result, or is left empty. A missing
// lexicon is created empty. Rows that cannot be prepared are reported and
// skipped.
func Prepare(manifestPath, chunksDir string, layout Layout, logger *slog.Logger) (PrepResult, error) {
	logger = logging.NewComponentLogger(logger, "align")
	var result PrepResult

	records, bad, err := manifest.Read(manifestPath)
	if err != nil {
		marker := services.ErrValidation
		if errors.Is(err, os.ErrNotExist) {
			marker = services.ErrNotFound
		}
		return result, services.Wrap(marker, "align", "read manifest", manifestPath, err)
	}
	for _, b := range bad {
		logging.WarnWithContext(logger, "skipping bad manifest line", "manifest_line_invalid",
			logging.Int("line", b.Number),
			logging.String("text", b.Text),
			logging.String(logging.FieldImpact, "row ignored; other rows continue"),
		)
	}
	for _, dir := range []string{layout.Corpus, layout.DictDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return result, services.Wrap(services.ErrConfiguration, "align", "ensure directory", dir, err)
		}
	}

	for _, rec := range records {
		if err := prepareRow(rec, chunksDir, layout.Corpus, &result); err != nil {
			result.Failed = append(result.Failed, err)
			logging.WarnWithContext(logger, "corpus row skipped", "align_prep_row_failed",
				logging.String("chunk", rec.Chunk),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "rerun chunk so the manifest matches the files on disk"),
				logging.String(logging.FieldImpact, "chunk excluded from alignment"),
			)
		}
	}

	if _, err := os.Stat(layout.Lexicon()); errors.Is(err, os.ErrNotExist) {
		if err := fileutil.WriteFileAtomic(layout.Lexicon(), nil); err != nil {
			return result, services.Wrap(services.ErrTransient, "align", "create lexicon", layout.Lexicon(), err)
		}
	}
	logger.Info("alignment corpus ready",
		logging.String("corpus", layout.Corpus),
		logging.Int("prepared", result.Prepared),
		logging.Int("empty_labels", result.Empty),
		logging.Int("failed", len(result.Failed)),
	)
	return result, nil
}

func prepareRow(rec manifest.Record, chunksDir, corpusDir string, result *PrepResult) error {
	if rec.Chunk == "" {
		return services.Wrap(services.ErrValidation, "align", "prep", "row has no chunk", nil)
	}
	src := rec.ChunkPath(chunksDir)
	if _, err := os.Stat(src); err != nil {
		return services.Wrap(services.ErrNotFound, "align", "prep", src, err)
	}
	id := rec.ChunkBase()
	dst := filepath.Join(corpusDir, id+".wav")
	if _, err := os.Stat(dst); errors.Is(err, os.ErrNotExist) {
		if err := fileutil.CopyFile(src, dst); err != nil {
			return services.Wrap(services.ErrTransient, "align", "copy chunk", id, err)
		}
	}

	text := textutil.LabText(referenceText(rec, chunksDir))
	if text == "" {
		result.Empty++
	}
	if err := fileutil.WriteFileAtomic(filepath.Join(corpusDir, id+".lab"), []byte(text+"\n")); err != nil {
		return services.Wrap(services.ErrTransient, "align", "write label", id, err)
	}
	result.Prepared++
	return nil
}

func referenceText(rec manifest.Record, chunksDir string) string {
	if rec.Text != "" {
		return rec.Text
	}
	unitPath := filepath.Join(chunksDir, asr.UnitsDir, rec.SourceBase(), rec.ChunkBase()+".json")
	u, err := transcript.ReadUnit(unitPath)
	if err != nil {
		return ""
	}
	return u.Text
}

// String renders a one-line summary.
func (r PrepResult) String() string {
	return fmt.Sprintf("%d prepared, %d empty labels, %d failed", r.Prepared, r.Empty, len(r.Failed))
}
