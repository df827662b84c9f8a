package workflow

import (
	"context"
	"errors"
	"io/fs"

	"vadscribe/internal/logging"
	"vadscribe/internal/prepare"
	"vadscribe/internal/services"
	"vadscribe/internal/stageexec"
)

// PrepareReport lists one result per raw input.
type PrepareReport struct {
	Results []prepare.Result
}

// Failed counts inputs that did not produce an output.
func (r PrepareReport) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Prepare converts every recording in the raw directory into a normalized
// 16 kHz mono WAV in the processed directory.
func (e *Env) Prepare(ctx context.Context) (PrepareReport, error) {
	return withSession(ctx, e, "prepare", false, e.prepareStage)
}

func (e *Env) prepareStage(ctx context.Context, s *stageexec.Session) (PrepareReport, error) {
	var report PrepareReport
	cfg := e.Config
	inputs, err := prepare.ListInputs(cfg.Paths.RawDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return report, services.Wrap(services.ErrNotFound, "prepare", "list inputs", cfg.Paths.RawDir, err)
		}
		return report, services.Wrap(services.ErrConfiguration, "prepare", "list inputs", cfg.Paths.RawDir, err)
	}
	if len(inputs) == 0 {
		s.Logger().Warn("no audio files to prepare",
			logging.String("dir", cfg.Paths.RawDir),
			logging.String(logging.FieldErrorHint, "supported inputs are .mp3, .wav, .m4a and .flac"),
		)
		return report, nil
	}

	p := prepare.New(prepare.OptionsFromConfig(cfg), s.Logger())
	if e.Runner != nil {
		p.WithCommandRunner(e.Runner)
	}
	prog := newProgress(s.Logger(), "prepare", len(inputs))
	report.Results = p.Batch(ctx, inputs, cfg.Workers.Files, func(res prepare.Result) {
		s.Record(ctx, stageexec.Outcome{Stage: "prepare", Source: res.Source, Err: res.Err, Elapsed: res.Elapsed})
		prog.step()
	})
	return report, context.Cause(ctx)
}
