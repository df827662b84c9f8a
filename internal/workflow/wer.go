package workflow

import (
	"context"

	"vadscribe/internal/runstore"
	"vadscribe/internal/services"
	"vadscribe/internal/stageexec"
	"vadscribe/internal/wer"
)

// WERPair scores one transcript against one reference. A missing file is an
// error here, unlike in WERAll.
func (e *Env) WERPair(ctx context.Context, hypPath, refPath string) (wer.FileResult, error) {
	return withSession(ctx, e, "wer", false, func(ctx context.Context, s *stageexec.Session) (wer.FileResult, error) {
		res, err := wer.ScorePair(hypPath, refPath)
		s.Record(ctx, stageexec.Outcome{Stage: "wer", Source: res.Base, Err: err})
		if err != nil {
			return res, err
		}
		s.RecordWER(ctx, werRow(res))
		return res, nil
	})
}

// WERAll scores every transcript in the chunks directory against the
// matching reference in the refs directory. Missing and unreadable pairs are
// recorded per file and do not fail the call.
func (e *Env) WERAll(ctx context.Context) (wer.Corpus, error) {
	return withSession(ctx, e, "wer", false, func(ctx context.Context, s *stageexec.Session) (wer.Corpus, error) {
		corpus, err := wer.ScoreDir(e.Config.Paths.ChunksDir, e.Config.Paths.RefsDir)
		if err != nil {
			return corpus, err
		}
		for _, res := range corpus.Files {
			s.Record(ctx, stageexec.Outcome{Stage: "wer", Source: res.Base})
			s.RecordWER(ctx, werRow(res))
		}
		for _, sk := range corpus.Skipped {
			s.Record(ctx, stageexec.Outcome{
				Stage:  "wer",
				Source: sk.Base,
				Err:    services.Wrap(services.ErrNotFound, "", "", sk.Reason, nil),
			})
		}
		for _, f := range corpus.Failed {
			s.Record(ctx, stageexec.Outcome{
				Stage:  "wer",
				Source: f.Base,
				Err:    services.Wrap(services.ErrValidation, "", "", f.Reason, nil),
			})
		}
		return corpus, nil
	})
}

func werRow(res wer.FileResult) runstore.WERRow {
	return runstore.WERRow{
		Base:            res.Base,
		Substitutions:   res.Substitutions,
		Deletions:       res.Deletions,
		Insertions:      res.Insertions,
		Matches:         res.Matches,
		ReferenceLength: res.ReferenceLength,
		WER:             res.WER,
	}
}
