package workflow

import (
	"context"

	"vadscribe/internal/align"
	"vadscribe/internal/stageexec"
)

// AlignPrep builds the aligner corpus from the manifest.
func (e *Env) AlignPrep(ctx context.Context) (align.PrepResult, error) {
	return withSession(ctx, e, "align-prep", false, func(ctx context.Context, s *stageexec.Session) (align.PrepResult, error) {
		return align.Prepare(e.ManifestPath(), e.Config.Paths.ChunksDir, align.LayoutFromConfig(e.Config), s.Logger())
	})
}

// AlignRun invokes the aligner on the prepared corpus.
func (e *Env) AlignRun(ctx context.Context) error {
	_, err := withSession(ctx, e, "align-run", false, func(ctx context.Context, s *stageexec.Session) (struct{}, error) {
		aligner := align.NewAligner(align.RunOptionsFromConfig(e.Config), align.LayoutFromConfig(e.Config), s.Logger())
		if e.Runner != nil {
			aligner.WithCommandRunner(e.Runner)
		}
		return struct{}{}, aligner.Run(ctx)
	})
	return err
}

// AlignParse converts aligner TextGrids into JSON.
func (e *Env) AlignParse(ctx context.Context) (align.ParseResult, error) {
	return withSession(ctx, e, "align-parse", false, func(ctx context.Context, s *stageexec.Session) (align.ParseResult, error) {
		res, err := align.ParseDir(align.LayoutFromConfig(e.Config), e.Config.Audio.TargetSampleRate, s.Logger())
		if err != nil {
			return res, err
		}
		for _, a := range res.Alignments {
			s.Record(ctx, stageexec.Outcome{Stage: "align", Source: a.ChunkID})
		}
		return res, nil
	})
}
