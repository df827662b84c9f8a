package workflow

import (
	"context"

	"vadscribe/internal/logging"
	"vadscribe/internal/stageexec"
)

// PipelineReport collects the reports of the stages that ran.
type PipelineReport struct {
	Prepare PrepareReport
	Chunk   ChunkReport
	ASR     ASRReport
}

// Pipeline runs prepare, chunk and asr under one run id. A stage-level error
// stops the pipeline; per-file failures do not.
func (e *Env) Pipeline(ctx context.Context) (PipelineReport, error) {
	return withSession(ctx, e, "pipeline", true, func(ctx context.Context, s *stageexec.Session) (PipelineReport, error) {
		var report PipelineReport
		var err error

		if report.Prepare, err = e.prepareStage(ctx, s); err != nil {
			return report, err
		}
		s.Logger().Info("stage completed", logging.String(logging.FieldStage, "prepare"))

		if report.Chunk, err = e.chunkStage(ctx, s); err != nil {
			return report, err
		}
		s.Logger().Info("stage completed", logging.String(logging.FieldStage, "chunk"))

		if report.ASR, err = e.asrStage(ctx, s); err != nil {
			return report, err
		}
		s.Logger().Info("stage completed", logging.String(logging.FieldStage, "asr"))
		return report, nil
	})
}
