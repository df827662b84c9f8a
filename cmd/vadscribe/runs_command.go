package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vadscribe/internal/runstore"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent batch runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(store *runstore.Store) error {
				runs, err := store.ListRuns(commandCtx(cmd), limit)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, runs)
				}
				out := cmd.OutOrStdout()
				if len(runs) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}
				printRuns(out, runs)
				return nil
			})
		},
	}
	runsCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum runs to list")
	runsCmd.Flags().BoolVar(&asJSON, "json", false, "Print runs as JSON")

	runsCmd.AddCommand(newRunsShowCommand(ctx))
	return runsCmd
}

type runDetail struct {
	Run      *runstore.Run      `json:"run"`
	Outcomes []runstore.Outcome `json:"outcomes"`
	WER      []runstore.WERRow  `json:"wer,omitempty"`
}

func newRunsShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show per-file outcomes of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return ctx.withStore(func(store *runstore.Store) error {
				c := commandCtx(cmd)
				run, err := store.GetRun(c, id)
				if err != nil {
					if errors.Is(err, runstore.ErrRunNotFound) {
						return fmt.Errorf("run %s not found (list runs with `vadscribe runs`)", id)
					}
					return err
				}
				outcomes, err := store.Outcomes(c, run.ID)
				if err != nil {
					return err
				}
				werRows, err := store.WERResults(c, run.ID)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, runDetail{Run: run, Outcomes: outcomes, WER: werRows})
				}
				printRunDetail(cmd.OutOrStdout(), run, outcomes, werRows)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the run as JSON")
	return cmd
}

func printRuns(out io.Writer, runs []runstore.Run) {
	colorize := shouldColorize(out)
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.Command,
			runStatusLabel(r.Status, colorize),
			r.StartedAt.Local().Format(time.DateTime),
			formatRunDuration(r),
			strconv.Itoa(r.FilesOK),
			strconv.Itoa(r.FilesFailed),
			strconv.Itoa(r.FilesSkipped),
		})
	}
	fmt.Fprintln(out, renderTable(tableSpec{
		Headers: []string{"Run", "Command", "Status", "Started", "Duration", "OK", "Failed", "Skipped"},
		Rows:    rows,
		Aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	}, colorize))
}

func printRunDetail(out io.Writer, run *runstore.Run, outcomes []runstore.Outcome, werRows []runstore.WERRow) {
	colorize := shouldColorize(out)
	for _, line := range renderSectionHeader(fmt.Sprintf("Run %s (%s)", run.ID, run.Command), colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintf(out, "Status:   %s\n", runStatusLabel(run.Status, colorize))
	fmt.Fprintf(out, "Started:  %s\n", run.StartedAt.Local().Format(time.DateTime))
	fmt.Fprintf(out, "Duration: %s\n", formatRunDuration(*run))
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:    %s\n", run.ErrorMessage)
	}

	if len(outcomes) > 0 {
		rows := make([][]string, 0, len(outcomes))
		for _, o := range outcomes {
			rows = append(rows, []string{
				o.Stage,
				o.Source,
				runStatusLabel(o.Status, colorize),
				strconv.Itoa(o.Spans),
				strconv.Itoa(o.Chunks),
				o.Detail,
			})
		}
		fmt.Fprintln(out, renderTable(tableSpec{
			Headers: []string{"Stage", "Source", "Status", "Spans", "Chunks", "Detail"},
			Rows:    rows,
			Aligns:  []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
		}, colorize))
	}

	if len(werRows) > 0 {
		rows := make([][]string, 0, len(werRows))
		for _, w := range werRows {
			rows = append(rows, []string{
				w.Base,
				strconv.Itoa(w.ReferenceLength),
				strconv.Itoa(w.Substitutions),
				strconv.Itoa(w.Deletions),
				strconv.Itoa(w.Insertions),
				formatWER(w.WER),
			})
		}
		fmt.Fprintln(out, renderTable(tableSpec{
			Headers: []string{"Transcript", "N", "S", "D", "I", "WER"},
			Rows:    rows,
			Aligns:  []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
		}, colorize))
	}
}

func formatRunDuration(r runstore.Run) string {
	d := r.Duration()
	if d == 0 {
		return "-"
	}
	return d.Round(time.Millisecond).String()
}
