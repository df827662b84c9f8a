package workflow

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"vadscribe/internal/logging"
	"vadscribe/internal/manifest"
	"vadscribe/internal/segment"
	"vadscribe/internal/services"
	"vadscribe/internal/stageexec"
	"vadscribe/internal/watch"
)

// ChunkReport lists one result per processed WAV and where the manifest went.
type ChunkReport struct {
	Results  []segment.FileResult
	Manifest string
	Records  int
}

// Failed counts files that produced no chunks because of an error.
func (r ChunkReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Chunk segments every WAV in the processed directory and rewrites the
// manifest with the chunks of the files that succeeded.
func (e *Env) Chunk(ctx context.Context) (ChunkReport, error) {
	return withSession(ctx, e, "chunk", true, e.chunkStage)
}

func (e *Env) segmenter(s *stageexec.Session) *segment.Segmenter {
	return segment.New(segment.OptionsFromConfig(e.Config), e.Detectors, s.Logger())
}

func (e *Env) chunkStage(ctx context.Context, s *stageexec.Session) (ChunkReport, error) {
	report := ChunkReport{Manifest: e.ManifestPath()}
	cfg := e.Config
	paths, err := segment.ListWAVs(cfg.Paths.ProcessedDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return report, services.Wrap(services.ErrNotFound, "chunk", "list inputs", cfg.Paths.ProcessedDir, err)
		}
		return report, services.Wrap(services.ErrConfiguration, "chunk", "list inputs", cfg.Paths.ProcessedDir, err)
	}
	if len(paths) == 0 {
		s.Logger().Warn("no wav files to chunk",
			logging.String("dir", cfg.Paths.ProcessedDir),
			logging.String(logging.FieldErrorHint, "run prepare first"),
		)
	}

	prog := newProgress(s.Logger(), "chunk", len(paths))
	report.Results = e.segmenter(s).Batch(ctx, paths, cfg.Workers.Files, func(res segment.FileResult) {
		s.Record(ctx, chunkOutcome(res))
		prog.step()
	})
	if err := context.Cause(ctx); err != nil {
		return report, err
	}

	records := segment.Records(report.Results)
	if err := manifest.Write(report.Manifest, records); err != nil {
		return report, services.Wrap(services.ErrTransient, "chunk", "write manifest", report.Manifest, err)
	}
	report.Records = len(records)
	s.Logger().Info("manifest written",
		logging.String("path", report.Manifest),
		logging.Int("records", report.Records),
	)
	return report, nil
}

func chunkOutcome(res segment.FileResult) stageexec.Outcome {
	return stageexec.Outcome{
		Stage:   "chunk",
		Source:  res.Source,
		Err:     res.Err,
		Spans:   len(res.Spans),
		Chunks:  len(res.Records),
		Elapsed: res.Elapsed,
	}
}

// Watch chunks WAV files as they land in the processed directory until ctx
// is cancelled. A file seen again replaces its earlier manifest rows.
func (e *Env) Watch(ctx context.Context, debounce time.Duration) error {
	_, err := withSession(ctx, e, "watch", true, func(ctx context.Context, s *stageexec.Session) (struct{}, error) {
		seg := e.segmenter(s)
		handle := func(ctx context.Context, path string) error {
			started := time.Now()
			res, err := seg.File(services.WithSource(ctx, filepath.Base(path)), path)
			if err == nil {
				err = upsertManifest(e.ManifestPath(), res.Records, strings.TrimSuffix(res.Source, filepath.Ext(res.Source)))
			}
			res.Err = err
			res.Elapsed = time.Since(started)
			s.Record(ctx, chunkOutcome(res))
			if err == nil {
				s.Logger().Info("watched file chunked",
					logging.String(logging.FieldSource, res.Source),
					logging.Int("chunks", len(res.Records)),
				)
			}
			return err
		}
		return struct{}{}, watch.New(e.Config.Paths.ProcessedDir, debounce, handle, s.Logger()).Run(ctx)
	})
	return err
}

// upsertManifest appends records, first dropping rows of the same source when
// the manifest already has some.
func upsertManifest(path string, records []manifest.Record, base string) error {
	existing, _, err := manifest.Read(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return services.Wrap(services.ErrValidation, "chunk", "read manifest", path, err)
	}
	kept := existing[:0]
	for _, rec := range existing {
		if rec.SourceBase() != base {
			kept = append(kept, rec)
		}
	}
	if len(kept) == len(existing) {
		if err := manifest.Append(path, records); err != nil {
			return services.Wrap(services.ErrTransient, "chunk", "append manifest", path, err)
		}
		return nil
	}
	if err := manifest.Write(path, append(kept, records...)); err != nil {
		return services.Wrap(services.ErrTransient, "chunk", "write manifest", path, err)
	}
	return nil
}
