package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"vadscribe/internal/preflight"
	"vadscribe/internal/watch"
	"vadscribe/internal/workflow"
)

func newPrepareCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Convert raw recordings to normalized 16 kHz mono WAV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.checkReady(preflight.StagePrepare); err != nil {
				return err
			}
			return ctx.withEnv(func(env *workflow.Env) error {
				report, err := env.Prepare(commandCtx(cmd))
				if err != nil {
					return err
				}
				printPrepareReport(cmd.OutOrStdout(), report)
				return partialFailure(report.Failed(), len(report.Results))
			})
		},
	}
}

func newChunkCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "chunk",
		Short: "Detect speech and cut processed WAVs into chunks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.checkReady(preflight.StageChunk); err != nil {
				return err
			}
			return ctx.withEnv(func(env *workflow.Env) error {
				report, err := env.Chunk(commandCtx(cmd))
				if err != nil {
					return err
				}
				printChunkReport(cmd.OutOrStdout(), report)
				return partialFailure(report.Failed(), len(report.Results))
			})
		},
	}
}

func newASRCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "asr",
		Short: "Transcribe manifest chunks and merge them into transcripts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.checkReady(preflight.StageASR); err != nil {
				return err
			}
			return ctx.withEnv(func(env *workflow.Env) error {
				report, err := env.ASR(commandCtx(cmd))
				if err != nil {
					return err
				}
				return printASRReport(cmd.OutOrStdout(), report)
			})
		},
	}
}

func newPipelineCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "pipeline",
		Short: "Run prepare, chunk and asr in one run",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, stage := range []preflight.Stage{preflight.StagePrepare, preflight.StageChunk, preflight.StageASR} {
				if err := ctx.checkReady(stage); err != nil {
					return err
				}
			}
			return ctx.withEnv(func(env *workflow.Env) error {
				report, err := env.Pipeline(commandCtx(cmd))
				out := cmd.OutOrStdout()
				if len(report.Prepare.Results) > 0 {
					printPrepareReport(out, report.Prepare)
				}
				if len(report.Chunk.Results) > 0 {
					printChunkReport(out, report.Chunk)
				}
				if err != nil {
					return err
				}
				return printASRReport(out, report.ASR)
			})
		},
	}
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Chunk WAV files as they appear in the processed directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.checkReady(preflight.StageChunk); err != nil {
				return err
			}
			return ctx.withEnv(func(env *workflow.Env) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", env.Config.Paths.ProcessedDir)
				return env.Watch(commandCtx(cmd), debounce)
			})
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before a changed file is chunked")
	return cmd
}

func printPrepareReport(out io.Writer, report workflow.PrepareReport) {
	colorize := shouldColorize(out)
	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		mean, gain := "-", "-"
		if res.HasMean {
			mean = strconv.FormatFloat(res.Mean, 'f', 1, 64)
			gain = strconv.FormatFloat(res.GainDB, 'f', 1, 64)
		}
		rows = append(rows, []string{res.Source, filepath.Base(res.Output), mean, gain, errStatus(res.Err, colorize)})
	}
	fmt.Fprintln(out, renderTable(tableSpec{
		Headers: []string{"Source", "Output", "Mean dB", "Gain dB", "Status"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	}, colorize))
}

func printChunkReport(out io.Writer, report workflow.ChunkReport) {
	colorize := shouldColorize(out)
	rows := make([][]string, 0, len(report.Results))
	for _, res := range report.Results {
		rows = append(rows, []string{
			res.Source,
			strconv.Itoa(res.Frames),
			strconv.Itoa(len(res.Spans)),
			strconv.Itoa(len(res.Records)),
			errStatus(res.Err, colorize),
		})
	}
	fmt.Fprintln(out, renderTable(tableSpec{
		Headers: []string{"Source", "Frames", "Spans", "Chunks", "Status"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignLeft},
	}, colorize))
	fmt.Fprintf(out, "Manifest: %s (%d records)\n", report.Manifest, report.Records)
}

func printASRReport(out io.Writer, report workflow.ASRReport) error {
	colorize := shouldColorize(out)
	rows := make([][]string, 0, len(report.Results))
	failedSources := 0
	for _, res := range report.Results {
		if res.Err != nil {
			failedSources++
		}
		rows = append(rows, []string{
			res.Base,
			strconv.Itoa(res.Processed),
			strconv.Itoa(res.Failed),
			strconv.Itoa(len(res.Rejected)),
			strconv.Itoa(res.Chunks),
			errStatus(res.Err, colorize),
		})
	}
	s := report.Summary
	fmt.Fprintln(out, renderTable(tableSpec{
		Headers: []string{"Source", "Recognized", "Failed", "Rejected", "Chunks", "Status"},
		Rows:    rows,
		Footer:  []string{"Total", "", strconv.Itoa(s.Failed), "", strconv.Itoa(s.Chunks), fmt.Sprintf("%d files", s.Files)},
		Aligns:  []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
	}, colorize))
	fmt.Fprintf(out, "Model: %s\n", s.Model)
	return partialFailure(failedSources, len(report.Results))
}
