package recognize

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vadscribe/internal/deps"
	"vadscribe/internal/logging"
	"vadscribe/internal/services"
	"vadscribe/internal/transcript"
)

// WhisperX invocation constants.
const (
	UVXCommand        = "uvx"
	WhisperXModel     = "large-v3"
	CUDAIndexURL      = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL      = "https://pypi.org/simple"
	whisperXBatchSize = "4"
	whisperXBeamSize  = "10"
	whisperXBestOf    = "10"
	whisperXTemp      = "0.0"
	cpuDevice         = "cpu"
	cudaDevice        = "cuda"
	cpuComputeType    = "float32"
	vadMethodSilero   = "silero"
	vadMethodPyannote = "pyannote"
)

// WhisperXConfig captures runtime settings for WhisperX.
type WhisperXConfig struct {
	Model       string
	Language    string
	CUDAEnabled bool
	// HFToken switches whisperx to pyannote VAD when set.
	HFToken string
	Timeout time.Duration
	// WorkDir holds per-chunk output directories; empty uses the system temp dir.
	WorkDir string
}

// WhisperX runs the whisperx CLI through uvx, one process per chunk.
type WhisperX struct {
	cfg    WhisperXConfig
	run    deps.CommandRunner
	logger *slog.Logger
}

// NewWhisperX creates the CLI backend.
func NewWhisperX(cfg WhisperXConfig, logger *slog.Logger) *WhisperX {
	if cfg.Model == "" {
		cfg.Model = WhisperXModel
	}
	return &WhisperX{
		cfg:    cfg,
		run:    deps.RunCommand,
		logger: logging.NewComponentLogger(logger, "whisperx"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (w *WhisperX) WithCommandRunner(runner deps.CommandRunner) {
	if runner != nil {
		w.run = runner
	}
}

// Model returns the configured model name.
func (w *WhisperX) Model() string {
	return w.cfg.Model
}

// Recognize implements Recognizer.
func (w *WhisperX) Recognize(ctx context.Context, path string, offset float64) (*transcript.Unit, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, services.Wrap(services.ErrNotFound, "asr", "whisperx", path, err)
	}
	outDir, err := os.MkdirTemp(w.cfg.WorkDir, "whisperx-*")
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "asr", "whisperx workdir", "", err)
	}
	defer os.RemoveAll(outDir)

	if w.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.cfg.Timeout)
		defer cancel()
	}
	started := time.Now()
	if _, err := w.run(ctx, UVXCommand, w.buildArgs(path, outDir)...); err != nil {
		marker := services.ErrExternalTool
		if ctx.Err() != nil {
			marker = services.ErrTimeout
		}
		return nil, services.Wrap(marker, "asr", "whisperx", filepath.Base(path), err)
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	text, words, err := loadWhisperXJSON(filepath.Join(outDir, base+".json"))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "asr", "whisperx output", filepath.Base(path), err)
	}
	w.logger.Debug("whisperx chunk transcribed",
		logging.String("chunk", filepath.Base(path)),
		logging.Int("words", len(words)),
		logging.Duration("elapsed", time.Since(started)),
	)
	return BuildUnit(text, words, offset), nil
}

// buildArgs constructs the uvx command arguments for WhisperX.
func (w *WhisperX) buildArgs(source, outputDir string) []string {
	args := make([]string, 0, 32)

	if w.cfg.CUDAEnabled {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		source,
		"--model", w.cfg.Model,
		"--batch_size", whisperXBatchSize,
		"--output_dir", outputDir,
		"--output_format", "json",
		"--beam_size", whisperXBeamSize,
		"--best_of", whisperXBestOf,
		"--temperature", whisperXTemp,
	)

	if w.cfg.HFToken != "" {
		args = append(args, "--vad_method", vadMethodPyannote, "--hf_token", w.cfg.HFToken)
	} else {
		args = append(args, "--vad_method", vadMethodSilero)
	}

	if lang := strings.ToLower(strings.TrimSpace(w.cfg.Language)); lang != "" {
		args = append(args, "--language", lang)
	}

	if w.cfg.CUDAEnabled {
		args = append(args, "--device", cudaDevice)
	} else {
		args = append(args, "--device", cpuDevice, "--compute_type", cpuComputeType)
	}
	return args
}

type whisperXWord struct {
	Word  string   `json:"word"`
	Start *float64 `json:"start"`
	End   *float64 `json:"end"`
}

type whisperXSegment struct {
	Text  string         `json:"text"`
	Words []whisperXWord `json:"words"`
}

type whisperXPayload struct {
	Segments []whisperXSegment `json:"segments"`
}

// loadWhisperXJSON flattens segment words and joins segment texts.
func loadWhisperXJSON(path string) (string, []RawWord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	var payload whisperXPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", nil, fmt.Errorf("parse whisperx json: %w", err)
	}
	var (
		parts []string
		words []RawWord
	)
	for _, seg := range payload.Segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
		for _, w := range seg.Words {
			words = append(words, RawWord{Text: w.Word, Start: w.Start, End: w.End})
		}
	}
	return strings.Join(parts, " "), words, nil
}

var _ Recognizer = (*WhisperX)(nil)
