// Package asr drives recognition over a chunk manifest: rows are grouped by
// source recording, each chunk is recognized in start order, and the
// resulting units are merged into one transcript per source.
package asr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"vadscribe/internal/config"
	"vadscribe/internal/fileutil"
	"vadscribe/internal/logging"
	"vadscribe/internal/manifest"
	"vadscribe/internal/metrics"
	"vadscribe/internal/recognize"
	"vadscribe/internal/services"
	"vadscribe/internal/transcript"
	"vadscribe/internal/workpool"
)

const (
	stageName = "asr"
	// SummaryFile is written to the chunks directory after every run.
	SummaryFile = "asr_summary.json"
	// UnitsDir holds raw per-chunk recognition results.
	UnitsDir = "json"
)

// ErrAllChunksFailed marks a source whose every chunk failed recognition.
var ErrAllChunksFailed = errors.New("every chunk failed recognition")

// Options configures the driver.
type Options struct {
	ChunksDir string
	Merge     transcript.MergeOptions
	Workers   int
}

// OptionsFromConfig derives options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ChunksDir: cfg.Paths.ChunksDir,
		Merge: transcript.MergeOptions{
			MaxGapSec:      cfg.ASR.MergeGapSec,
			MaxDurationSec: cfg.ASR.MergeMaxSec,
		},
		Workers: cfg.Workers.Files,
	}
}

// Summary is persisted as asr_summary.json.
type Summary struct {
	Files  int    `json:"files"`
	Chunks int    `json:"chunks"`
	Failed int    `json:"failed"`
	Model  string `json:"model"`
}

// FileResult is the outcome for one source recording.
type FileResult struct {
	Base       string
	Processed  int
	Units      int
	Failed     int
	Chunks     int
	Rejected   []error
	Transcript string
	Elapsed    time.Duration
	Err        error
}

// Driver runs recognition and merging.
type Driver struct {
	opts    Options
	rec     recognize.Recognizer
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// New creates a Driver. metrics may be nil.
func New(opts Options, rec recognize.Recognizer, logger *slog.Logger, recorder *metrics.Recorder) *Driver {
	return &Driver{
		opts:    opts,
		rec:     rec,
		logger:  logging.NewComponentLogger(logger, stageName),
		metrics: recorder,
	}
}

// Run recognizes every source in the manifest and writes transcripts plus the
// summary. A missing or unreadable manifest fails the run; per-chunk and
// per-source failures are tallied and reported in the results.
func (d *Driver) Run(ctx context.Context, manifestPath string, observe func(FileResult)) (Summary, []FileResult, error) {
	summary := Summary{Model: d.rec.Model()}
	records, bad, err := manifest.Read(manifestPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return summary, nil, services.Wrap(services.ErrNotFound, stageName, "read manifest", manifestPath, err)
		}
		return summary, nil, services.Wrap(services.ErrValidation, stageName, "read manifest", manifestPath, err)
	}
	for _, b := range bad {
		logging.WarnWithContext(d.logger, "skipping bad manifest line", "manifest_line_invalid",
			logging.Int("line", b.Number),
			logging.String("text", b.Text),
			logging.Error(b.Err),
			logging.String(logging.FieldImpact, "row ignored; other rows continue"),
		)
	}

	groups := manifest.GroupBySource(records)
	results := make([]FileResult, len(groups))
	type job struct {
		index int
		group manifest.Group
	}
	jobs := make([]job, len(groups))
	for i, g := range groups {
		jobs[i] = job{index: i, group: g}
	}
	workpool.Run(ctx, workpool.Options{Workers: d.opts.Workers, Name: "asr-pool", Logger: d.logger}, jobs,
		func(ctx context.Context, j job) error {
			res := d.Source(services.WithSource(ctx, j.group.Base), j.group)
			results[j.index] = res
			if observe != nil {
				observe(res)
			}
			return res.Err
		})

	for i, res := range results {
		if res.Base == "" {
			results[i] = FileResult{Base: groups[i].Base, Err: context.Cause(ctx)}
			continue
		}
		summary.Failed += res.Failed
		if res.Err == nil {
			summary.Files++
			summary.Chunks += res.Chunks
		}
	}

	if err := fileutil.WriteJSON(filepath.Join(d.opts.ChunksDir, SummaryFile), summary); err != nil {
		return summary, results, services.Wrap(services.ErrTransient, stageName, "write summary", "", err)
	}
	d.logger.Info("asr summary",
		logging.Int("files", summary.Files),
		logging.Int("chunks", summary.Chunks),
		logging.Int("failed", summary.Failed),
		logging.String("model", summary.Model),
	)
	return summary, results, nil
}

// Source recognizes one group's chunks in start order, stores each unit under
// json/<base>/<chunk>.json, merges, and writes <base>.transcript.json.
func (d *Driver) Source(ctx context.Context, group manifest.Group) FileResult {
	started := time.Now()
	res := FileResult{Base: group.Base}
	logger := logging.WithContext(ctx, d.logger)
	unitDir := filepath.Join(d.opts.ChunksDir, UnitsDir, group.Base)

	units := make([]transcript.Unit, 0, len(group.Records))
	for _, row := range group.Records {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		u, err := d.rec.Recognize(ctx, row.ChunkPath(d.opts.ChunksDir), row.Start)
		if err != nil {
			res.Failed++
			d.metrics.RecognizeFailed()
			logging.WarnWithContext(logger, "chunk recognition failed", "asr_chunk_failed",
				logging.String("chunk", row.Chunk),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check recognizer credentials and connectivity"),
				logging.String(logging.FieldImpact, "chunk skipped; transcript continues"),
			)
			continue
		}
		res.Processed++
		if u == nil {
			continue
		}
		units = append(units, *u)
		if err := transcript.WriteUnit(filepath.Join(unitDir, row.ChunkBase()+".json"), *u); err != nil {
			logging.WarnWithContext(logger, "failed to store chunk result", "asr_unit_write_failed",
				logging.String("chunk", row.Chunk),
				logging.Error(err),
				logging.String(logging.FieldImpact, "raw unit not persisted; merge continues"),
			)
		}
	}
	res.Units = len(units)

	if len(group.Records) > 0 && res.Failed == len(group.Records) {
		res.Err = services.Wrap(services.ErrExternalTool, stageName, "recognize", group.Base,
			fmt.Errorf("%w (%d chunks)", ErrAllChunksFailed, res.Failed))
		res.Elapsed = time.Since(started)
		return res
	}

	merged := transcript.Merge(units, d.opts.Merge)
	res.Rejected = merged.Rejected
	res.Chunks = len(merged.Chunks)
	for _, rej := range merged.Rejected {
		logging.WarnWithContext(logger, "unit rejected during merge", "asr_unit_rejected",
			logging.Error(rej),
			logging.String(logging.FieldImpact, "unit dropped; merge continues"),
		)
	}
	d.metrics.UnitsRejected(len(merged.Rejected))
	d.metrics.Chunks(res.Chunks)

	res.Transcript = filepath.Join(d.opts.ChunksDir, group.Base+transcript.TranscriptSuffix)
	if err := transcript.WriteFile(res.Transcript, transcript.Transcript{Chunks: merged.Chunks}); err != nil {
		res.Err = services.Wrap(services.ErrTransient, stageName, "write transcript", group.Base, err)
		res.Transcript = ""
	}
	res.Elapsed = time.Since(started)
	if res.Err == nil {
		logger.Info("transcript written",
			logging.Int("processed", res.Processed),
			logging.Int("merged_chunks", res.Chunks),
			logging.String("path", res.Transcript),
		)
	}
	return res
}
