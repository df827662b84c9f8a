package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vadscribe/internal/preflight"
	"vadscribe/internal/workflow"
)

func newAlignCommand(ctx *commandContext) *cobra.Command {
	alignCmd := &cobra.Command{
		Use:   "align",
		Short: "Forced alignment with the Montreal Forced Aligner",
	}
	alignCmd.AddCommand(newAlignPrepCommand(ctx))
	alignCmd.AddCommand(newAlignRunCommand(ctx))
	alignCmd.AddCommand(newAlignParseCommand(ctx))
	return alignCmd
}

func newAlignPrepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prep",
		Short: "Copy chunks into the aligner corpus and write .lab transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(func(env *workflow.Env) error {
				res, err := env.AlignPrep(commandCtx(cmd))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderStatusLine("Prepared", statusOK, fmt.Sprintf("%d chunks", res.Prepared), colorize))
				if res.Empty > 0 {
					fmt.Fprintln(out, renderStatusLine("Empty transcripts", statusWarn, fmt.Sprintf("%d chunks have no text", res.Empty), colorize))
				}
				for _, failure := range res.Failed {
					fmt.Fprintln(out, renderStatusLine("Skipped", statusError, failure.Error(), colorize))
				}
				return partialFailure(len(res.Failed), res.Prepared+len(res.Failed))
			})
		},
	}
}

func newAlignRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run mfa align on the prepared corpus",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.checkReady(preflight.StageAlign); err != nil {
				return err
			}
			return ctx.withEnv(func(env *workflow.Env) error {
				if err := env.AlignRun(commandCtx(cmd)); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Alignment finished")
				return nil
			})
		},
	}
}

func newAlignParseCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "parse",
		Short: "Convert aligner TextGrids to JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEnv(func(env *workflow.Env) error {
				res, err := env.AlignParse(commandCtx(cmd))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				words, phones := 0, 0
				for _, a := range res.Alignments {
					words += a.Stats.WordsAligned
					phones += a.Stats.PhonesAligned
				}
				fmt.Fprintln(out, renderStatusLine("Parsed", statusOK,
					fmt.Sprintf("%d chunks, %d words, %d phones", len(res.Alignments), words, phones), colorize))
				for _, failure := range res.Failed {
					fmt.Fprintln(out, renderStatusLine("Skipped", statusError, failure.Error(), colorize))
				}
				return partialFailure(len(res.Failed), len(res.Alignments)+len(res.Failed))
			})
		},
	}
}
