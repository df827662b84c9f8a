// Package segment turns prepared recordings into speech chunks: decode, frame
// classification, smoothing, span construction, and chunk WAV cutting. Each
// file gets its own classifier so files can run in parallel.
package segment

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"vadscribe/internal/audio"
	"vadscribe/internal/config"
	"vadscribe/internal/logging"
	"vadscribe/internal/manifest"
	"vadscribe/internal/services"
	"vadscribe/internal/vad"
	"vadscribe/internal/workpool"
)

const stageName = "chunk"

// Options configures segmentation.
type Options struct {
	SampleRate    int
	Mode          int
	FrameMs       int
	SmoothFrameMs int
	Spans         vad.SpanOptions
	OutDir        string
}

// OptionsFromConfig derives options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		SampleRate:    cfg.Audio.TargetSampleRate,
		Mode:          cfg.VAD.Mode,
		FrameMs:       cfg.VAD.FrameMs,
		SmoothFrameMs: cfg.VAD.SmoothFrameMs,
		Spans: vad.SpanOptions{
			MinSpeechSec: cfg.VAD.MinSpeechSec,
			MaxChunkSec:  cfg.VAD.MaxChunkSec,
			PadSec:       cfg.VAD.PadSec,
		},
		OutDir: cfg.Paths.ChunksDir,
	}
}

// Segmenter cuts recordings into chunk files.
type Segmenter struct {
	opts    Options
	factory vad.DetectorFactory
	logger  *slog.Logger
}

// New creates a Segmenter. A nil factory uses the WebRTC detector.
func New(opts Options, factory vad.DetectorFactory, logger *slog.Logger) *Segmenter {
	return &Segmenter{
		opts:    opts,
		factory: factory,
		logger:  logging.NewComponentLogger(logger, stageName),
	}
}

// FileResult is the outcome of segmenting one recording.
type FileResult struct {
	Source  string
	Frames  int
	Spans   []vad.Span
	Records []manifest.Record
	Elapsed time.Duration
	Err     error
}

// File segments one WAV file and writes its chunks to the output directory.
// On failure any chunks already written for the file are removed.
func (s *Segmenter) File(ctx context.Context, path string) (FileResult, error) {
	started := time.Now()
	name := filepath.Base(path)
	result := FileResult{Source: name}

	clip, err := audio.ReadWAV(path, s.opts.SampleRate)
	if err != nil {
		return result, services.Wrap(services.ErrValidation, stageName, "decode", name, err)
	}

	cfg := vad.ClassifierConfig{Mode: s.opts.Mode, SampleRate: clip.SampleRate, FrameMs: s.opts.FrameMs}
	classifier, err := vad.NewFrameClassifier(cfg, s.factory)
	if err != nil {
		return result, services.Wrap(services.ErrConfiguration, stageName, "init detector", name, err)
	}
	defer classifier.Close()

	frames := vad.Frames(clip.Samples, cfg.FrameSamples())
	flags, err := classifier.ClassifyAll(frames)
	if err != nil {
		return result, services.Wrap(services.ErrValidation, stageName, "classify", name, err)
	}
	smoothed := vad.Smooth(flags, vad.WindowForFrameMs(s.opts.SmoothFrameMs))
	spans := vad.BuildSpans(smoothed, cfg.FrameDuration(), s.opts.Spans)
	result.Frames = len(frames)
	result.Spans = spans

	base := strings.TrimSuffix(name, filepath.Ext(name))
	written := make([]string, 0, len(spans))
	cleanup := func() {
		for _, p := range written {
			_ = os.Remove(p)
		}
	}
	for i, span := range spans {
		if err := ctx.Err(); err != nil {
			cleanup()
			return result, err
		}
		chunkName := ChunkName(base, i+1)
		chunkPath := filepath.Join(s.opts.OutDir, chunkName)
		if err := audio.WriteWAV(chunkPath, clip.SampleRate, clip.Cut(span.Start, span.End)); err != nil {
			cleanup()
			return result, services.Wrap(services.ErrTransient, stageName, "write chunk", chunkName, err)
		}
		written = append(written, chunkPath)
		result.Records = append(result.Records, manifest.NewRecord(name, chunkName, span.Start, span.End))
	}
	result.Elapsed = time.Since(started)

	s.logger.Info("file segmented",
		logging.String(logging.FieldSource, name),
		logging.Int("frames", len(frames)),
		logging.Int("spans", len(spans)),
		logging.Float64("audio_seconds", clip.Duration()),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// ChunkName formats the n-th (1-based) chunk file name for a source base name.
func ChunkName(base string, n int) string {
	return fmt.Sprintf("%s_chunk_%03d.wav", base, n)
}

// Batch segments every path on a bounded worker pool. Results come back in
// input order; a failed file carries its error and no records. observe, when
// set, is called from worker goroutines as each file finishes.
func (s *Segmenter) Batch(ctx context.Context, paths []string, workers int, observe func(FileResult)) []FileResult {
	results := make([]FileResult, len(paths))
	type job struct {
		index int
		path  string
	}
	jobs := make([]job, len(paths))
	for i, p := range paths {
		jobs[i] = job{index: i, path: p}
	}

	workpool.Run(ctx, workpool.Options{Workers: workers, Name: "chunk-pool", Logger: s.logger}, jobs,
		func(ctx context.Context, j job) error {
			started := time.Now()
			res, err := s.File(services.WithSource(ctx, filepath.Base(j.path)), j.path)
			if err != nil {
				res.Records = nil
				res.Err = err
				res.Elapsed = time.Since(started)
				logging.WarnWithContext(s.logger, "segmentation failed", "chunk_file_failed",
					logging.String(logging.FieldSource, res.Source),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "confirm the file is 16 kHz mono PCM; rerun prepare if not"),
				)
			}
			results[j.index] = res
			if observe != nil {
				observe(res)
			}
			return err
		})
	for i := range results {
		if results[i].Source == "" {
			results[i] = FileResult{Source: filepath.Base(paths[i]), Err: context.Cause(ctx)}
		}
	}
	return results
}

// Records flattens successful results into manifest records, preserving order.
func Records(results []FileResult) []manifest.Record {
	var out []manifest.Record
	for _, r := range results {
		if r.Err == nil {
			out = append(out, r.Records...)
		}
	}
	return out
}

// ListWAVs returns the .wav files directly inside dir, sorted by name.
func ListWAVs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".wav") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
