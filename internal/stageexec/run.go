// Package stageexec wraps one batch command invocation: it takes the
// workspace lock, opens a run in the ledger, records per-file outcomes and
// metrics, and closes everything when the command finishes.
package stageexec

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"vadscribe/internal/logging"
	"vadscribe/internal/metrics"
	"vadscribe/internal/runstore"
	"vadscribe/internal/services"
	"vadscribe/internal/workspace"
)

// Options controls session setup. Store, Recorder and LockDir are optional.
type Options struct {
	Command     string
	Logger      *slog.Logger
	Store       *runstore.Store
	Recorder    *metrics.Recorder
	LockDir     string
	MetricsPath string
}

// Outcome is one file's result within a stage.
type Outcome struct {
	Stage   string
	Source  string
	Err     error
	Spans   int
	Chunks  int
	Elapsed time.Duration
}

// Counts tallies recorded outcomes by status.
type Counts struct {
	OK      int
	Failed  int
	Skipped int
}

// Session is an open batch run.
type Session struct {
	opts    Options
	runID   string
	lock    *workspace.Lock
	logger  *slog.Logger
	started time.Time

	mu     sync.Mutex
	counts Counts
}

// Begin starts a session. The returned context carries the run id so loggers
// derived from it tag every line. When the lock is held elsewhere Begin fails
// with workspace.ErrLocked and nothing is written to the ledger.
func Begin(ctx context.Context, opts Options) (*Session, context.Context, error) {
	if strings.TrimSpace(opts.Command) == "" {
		return nil, ctx, errors.New("session command is required")
	}
	s := &Session{opts: opts, started: time.Now()}

	if opts.LockDir != "" {
		lock, err := workspace.Acquire(opts.LockDir)
		if err != nil {
			return nil, ctx, err
		}
		s.lock = lock
	}

	if opts.Store != nil {
		run, err := opts.Store.StartRun(ctx, opts.Command)
		if err != nil {
			_ = s.lock.Release()
			return nil, ctx, fmt.Errorf("start run: %w", err)
		}
		s.runID = run.ID
		ctx = services.WithRunID(ctx, run.ID)
	}

	s.logger = logging.WithContext(ctx, logging.NewComponentLogger(opts.Logger, opts.Command))
	s.logger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("command", opts.Command),
	)
	return s, ctx, nil
}

// RunID returns the ledger id, or "" when no store is attached.
func (s *Session) RunID() string {
	return s.runID
}

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger {
	return s.logger
}

// Recorder returns the metrics recorder, which may be nil.
func (s *Session) Recorder() *metrics.Recorder {
	return s.opts.Recorder
}

// Record stores one per-file outcome. Ledger write failures are logged and
// do not fail the file.
func (s *Session) Record(ctx context.Context, o Outcome) {
	status := runstore.StatusOK
	detail := ""
	if o.Err != nil {
		status = services.FailureStatus(o.Err)
		detail = o.Err.Error()
	}

	s.mu.Lock()
	switch status {
	case runstore.StatusOK:
		s.counts.OK++
	case runstore.StatusSkipped:
		s.counts.Skipped++
	default:
		s.counts.Failed++
	}
	s.mu.Unlock()

	rec := s.opts.Recorder
	rec.File(o.Stage, string(status), o.Elapsed)
	if status == runstore.StatusOK {
		rec.Spans(o.Spans)
	}

	if s.opts.Store == nil || s.runID == "" {
		return
	}
	err := s.opts.Store.RecordOutcome(ctx, runstore.Outcome{
		RunID:  s.runID,
		Stage:  o.Stage,
		Source: o.Source,
		Status: status,
		Detail: detail,
		Spans:  o.Spans,
		Chunks: o.Chunks,
	})
	if err != nil {
		logging.WarnWithContext(s.logger, "failed to record outcome", "ledger_write_failed",
			logging.String(logging.FieldSource, o.Source),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history incomplete"),
		)
	}
}

// RecordWER stores one scored transcript.
func (s *Session) RecordWER(ctx context.Context, row runstore.WERRow) {
	if s.opts.Store == nil || s.runID == "" {
		return
	}
	row.RunID = s.runID
	if err := s.opts.Store.RecordWER(ctx, row); err != nil {
		logging.WarnWithContext(s.logger, "failed to record wer result", "ledger_write_failed",
			logging.String("base", row.Base),
			logging.Error(err),
			logging.String(logging.FieldImpact, "run history incomplete"),
		)
	}
}

// Counts returns the outcomes recorded so far.
func (s *Session) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counts
}

// Finish closes the run, writes the metrics textfile and releases the lock.
// It runs even after ctx is cancelled so an interrupted batch is still
// recorded.
func (s *Session) Finish(ctx context.Context, runErr error) error {
	ctx = context.WithoutCancel(ctx)
	var errs []error

	if s.opts.Store != nil && s.runID != "" {
		if err := s.opts.Store.FinishRun(ctx, s.runID, runErr); err != nil {
			errs = append(errs, err)
		}
	}

	s.opts.Recorder.Finish(s.opts.Command, time.Now())
	if err := s.opts.Recorder.WriteTextfile(s.opts.MetricsPath); err != nil {
		errs = append(errs, err)
	}

	if err := s.lock.Release(); err != nil {
		errs = append(errs, fmt.Errorf("release lock: %w", err))
	}

	counts := s.Counts()
	attrs := []logging.Attr{
		logging.String("command", s.opts.Command),
		logging.Int("files_ok", counts.OK),
		logging.Int("files_failed", counts.Failed),
		logging.Int("files_skipped", counts.Skipped),
		logging.Duration("elapsed", time.Since(s.started)),
	}
	if runErr != nil {
		attrs = append(attrs, logging.String(logging.FieldEventType, "run_failed"), logging.Error(runErr))
		s.logger.Error("run failed", logging.Args(attrs...)...)
	} else {
		attrs = append(attrs, logging.String(logging.FieldEventType, "run_complete"))
		s.logger.Info("run completed", logging.Args(attrs...)...)
	}
	return errors.Join(errs...)
}
