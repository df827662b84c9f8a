package workflow

import (
	"context"

	"vadscribe/internal/asr"
	"vadscribe/internal/services"
	"vadscribe/internal/stageexec"
)

// ASRReport holds the persisted summary and per-source results.
type ASRReport struct {
	Summary asr.Summary
	Results []asr.FileResult
}

// ASR recognizes every chunk listed in the manifest and writes merged
// transcripts next to the chunks.
func (e *Env) ASR(ctx context.Context) (ASRReport, error) {
	return withSession(ctx, e, "asr", true, e.asrStage)
}

func (e *Env) asrStage(ctx context.Context, s *stageexec.Session) (ASRReport, error) {
	var report ASRReport
	rec, err := e.recognizer()
	if err != nil {
		return report, services.Wrap(services.ErrConfiguration, "asr", "init recognizer", e.Config.ASR.Backend, err)
	}
	driver := asr.New(asr.OptionsFromConfig(e.Config), rec, s.Logger(), s.Recorder())
	summary, results, err := driver.Run(ctx, e.ManifestPath(), func(res asr.FileResult) {
		s.Record(ctx, stageexec.Outcome{
			Stage:   "asr",
			Source:  res.Base,
			Err:     res.Err,
			Chunks:  res.Chunks,
			Elapsed: res.Elapsed,
		})
	})
	report.Summary = summary
	report.Results = results
	if err != nil {
		return report, err
	}
	return report, context.Cause(ctx)
}
