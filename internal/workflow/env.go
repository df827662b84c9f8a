package workflow

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"vadscribe/internal/config"
	"vadscribe/internal/deps"
	"vadscribe/internal/logging"
	"vadscribe/internal/manifest"
	"vadscribe/internal/metrics"
	"vadscribe/internal/recognize"
	"vadscribe/internal/runstore"
	"vadscribe/internal/stageexec"
	"vadscribe/internal/vad"
)

// Env carries the collaborators a command needs. Only Config is required.
// Nil Detectors uses the WebRTC detector, nil Recognizer builds the configured
// backend, and nil Runner executes real binaries.
type Env struct {
	Config     *config.Config
	Logger     *slog.Logger
	Store      *runstore.Store
	Recorder   *metrics.Recorder
	Detectors  vad.DetectorFactory
	Recognizer recognize.Recognizer
	Runner     deps.CommandRunner
}

// ManifestPath returns the chunk manifest location.
func (e *Env) ManifestPath() string {
	return filepath.Join(e.Config.Paths.ChunksDir, manifest.FileName)
}

func (e *Env) recognizer() (recognize.Recognizer, error) {
	if e.Recognizer != nil {
		return e.Recognizer, nil
	}
	return recognize.New(e.Config, e.Logger)
}

// withSession opens a session for command, runs fn and closes the session
// with fn's error. lock takes the chunks directory lock for the duration.
func withSession[T any](ctx context.Context, e *Env, command string, lock bool, fn func(context.Context, *stageexec.Session) (T, error)) (T, error) {
	opts := stageexec.Options{
		Command:     command,
		Logger:      e.Logger,
		Store:       e.Store,
		Recorder:    e.Recorder,
		MetricsPath: e.Config.Metrics.Textfile,
	}
	if lock {
		opts.LockDir = e.Config.Paths.ChunksDir
	}
	session, ctx, err := stageexec.Begin(ctx, opts)
	if err != nil {
		var zero T
		return zero, err
	}
	out, runErr := fn(ctx, session)
	if err := session.Finish(ctx, runErr); err != nil {
		session.Logger().Warn("failed to close run",
			logging.String(logging.FieldEventType, "run_close_failed"),
			logging.Error(err),
		)
		if runErr == nil {
			runErr = err
		}
	}
	return out, runErr
}

// progress logs sampled "n of total" lines from worker callbacks.
type progress struct {
	mu      sync.Mutex
	logger  *slog.Logger
	stage   string
	total   int
	done    int
	sampler *logging.ProgressSampler
}

func newProgress(logger *slog.Logger, stage string, total int) *progress {
	return &progress{logger: logger, stage: stage, total: total, sampler: logging.NewProgressSampler(25)}
}

func (p *progress) step() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done++
	if p.sampler.ShouldLog(p.done, p.total, p.stage) {
		p.logger.Info("stage progress",
			logging.String(logging.FieldStage, p.stage),
			logging.Int("done", p.done),
			logging.Int("total", p.total),
		)
	}
}
