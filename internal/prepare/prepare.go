// Package prepare converts raw recordings into 16 kHz mono 16-bit WAVs and
// levels their loudness toward a target mean volume with ffmpeg.
package prepare

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"vadscribe/internal/config"
	"vadscribe/internal/deps"
	"vadscribe/internal/logging"
	"vadscribe/internal/services"
	"vadscribe/internal/workpool"
)

const stageName = "prepare"

var inputExtensions = map[string]bool{".mp3": true, ".wav": true, ".m4a": true, ".flac": true}

var meanVolumePattern = regexp.MustCompile(`mean_volume:\s*([-\d.]+)\s*dB`)

// Options configures conversion.
type Options struct {
	FFmpeg     string
	SampleRate int
	TargetDBFS float64
	OutDir     string
}

// OptionsFromConfig derives options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		FFmpeg:     cfg.FFmpegBinary(),
		SampleRate: cfg.Audio.TargetSampleRate,
		TargetDBFS: cfg.Audio.NormalizeDBFS,
		OutDir:     cfg.Paths.ProcessedDir,
	}
}

// Result describes one converted recording.
type Result struct {
	Source  string
	Output  string
	Mean    float64
	HasMean bool
	GainDB  float64
	Elapsed time.Duration
	Err     error
}

// Preparer runs the conversion pipeline.
type Preparer struct {
	opts   Options
	run    deps.CommandRunner
	logger *slog.Logger
}

// New creates a Preparer using the real ffmpeg.
func New(opts Options, logger *slog.Logger) *Preparer {
	if opts.FFmpeg == "" {
		opts.FFmpeg = "ffmpeg"
	}
	return &Preparer{
		opts:   opts,
		run:    deps.RunCommand,
		logger: logging.NewComponentLogger(logger, stageName),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (p *Preparer) WithCommandRunner(runner deps.CommandRunner) {
	if runner != nil {
		p.run = runner
	}
}

// File converts one recording into <out_dir>/<base>.wav. When ffmpeg reports a
// mean volume the output is gained to the target level; otherwise the plain
// conversion is kept.
func (p *Preparer) File(ctx context.Context, input string) (Result, error) {
	started := time.Now()
	name := filepath.Base(input)
	base := strings.TrimSuffix(name, filepath.Ext(name))
	result := Result{Source: name, Output: filepath.Join(p.opts.OutDir, base+".wav")}

	if err := os.MkdirAll(p.opts.OutDir, 0o755); err != nil {
		return result, services.Wrap(services.ErrConfiguration, stageName, "ensure output dir", p.opts.OutDir, err)
	}
	tmp := filepath.Join(p.opts.OutDir, base+".tmp.wav")
	defer os.Remove(tmp)

	if _, err := p.run(ctx, p.opts.FFmpeg, convertArgs(input, p.opts.SampleRate, tmp)...); err != nil {
		return result, services.Wrap(services.ErrExternalTool, stageName, "convert", name, err)
	}

	output, err := p.run(ctx, p.opts.FFmpeg, volumeDetectArgs(tmp)...)
	if err != nil {
		return result, services.Wrap(services.ErrExternalTool, stageName, "volumedetect", name, err)
	}
	mean, ok := ParseMeanVolume(string(output))
	if !ok {
		if err := os.Rename(tmp, result.Output); err != nil {
			return result, services.Wrap(services.ErrTransient, stageName, "finalize", name, err)
		}
		p.logger.Info("file prepared without gain",
			logging.String(logging.FieldSource, name),
			logging.String("output", result.Output),
		)
		result.Elapsed = time.Since(started)
		return result, nil
	}

	result.Mean = mean
	result.HasMean = true
	result.GainDB = p.opts.TargetDBFS - mean
	if _, err := p.run(ctx, p.opts.FFmpeg, gainArgs(tmp, result.GainDB, result.Output)...); err != nil {
		_ = os.Remove(result.Output)
		return result, services.Wrap(services.ErrExternalTool, stageName, "apply gain", name, err)
	}
	result.Elapsed = time.Since(started)
	p.logger.Info("file prepared",
		logging.String(logging.FieldSource, name),
		logging.String("output", result.Output),
		logging.Float64("mean_volume_db", mean),
		logging.Float64("gain_db", result.GainDB),
	)
	return result, nil
}

// Batch converts every input on a bounded worker pool. Results come back in
// input order. observe, when set, is called from worker goroutines.
func (p *Preparer) Batch(ctx context.Context, inputs []string, workers int, observe func(Result)) []Result {
	results := make([]Result, len(inputs))
	type job struct {
		index int
		path  string
	}
	jobs := make([]job, len(inputs))
	for i, in := range inputs {
		jobs[i] = job{index: i, path: in}
	}
	workpool.Run(ctx, workpool.Options{Workers: workers, Name: "prepare-pool", Logger: p.logger}, jobs,
		func(ctx context.Context, j job) error {
			started := time.Now()
			res, err := p.File(services.WithSource(ctx, filepath.Base(j.path)), j.path)
			if err != nil {
				res.Err = err
				res.Elapsed = time.Since(started)
				logging.WarnWithContext(p.logger, "prepare failed", "prepare_file_failed",
					logging.String(logging.FieldSource, res.Source),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "check that ffmpeg can decode the file"),
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
			results[i] = Result{Source: filepath.Base(inputs[i]), Err: context.Cause(ctx)}
		}
	}
	return results
}

// ParseMeanVolume extracts the mean volume in dB from ffmpeg volumedetect
// output.
func ParseMeanVolume(output string) (float64, bool) {
	match := meanVolumePattern.FindStringSubmatch(output)
	if match == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ListInputs returns the supported recordings directly inside dir, sorted.
func ListInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !inputExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func convertArgs(input string, sampleRate int, dest string) []string {
	return []string{
		"-hide_banner", "-nostats", "-y",
		"-i", input,
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-sample_fmt", "s16",
		dest,
	}
}

func volumeDetectArgs(input string) []string {
	return []string{
		"-hide_banner", "-nostats", "-y",
		"-i", input,
		"-filter:a", "volumedetect",
		"-f", "null", "-",
	}
}

func gainArgs(input string, gainDB float64, dest string) []string {
	return []string{
		"-hide_banner", "-nostats", "-y",
		"-i", input,
		"-filter:a", fmt.Sprintf("volume=%sdB", strconv.FormatFloat(gainDB, 'f', -1, 64)),
		dest,
	}
}
