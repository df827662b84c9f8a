package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"vadscribe/internal/wer"
	"vadscribe/internal/workflow"
)

type werJSON struct {
	Files       []wer.FileResult `json:"files"`
	Skipped     []wer.Skipped    `json:"skipped,omitempty"`
	Failed      []wer.Failure    `json:"failed,omitempty"`
	WeightedWER float64          `json:"weighted_wer"`
}

func newWERCommand(ctx *commandContext) *cobra.Command {
	var hypPath, refPath string
	var all, asJSON bool

	cmd := &cobra.Command{
		Use:   "wer",
		Short: "Score transcripts against reference texts",
		Long: "Score one transcript with --hyp and --ref, or every transcript in the chunks\n" +
			"directory against refs/<base>.txt with --all.",
		RunE: func(cmd *cobra.Command, args []string) error {
			hypPath = strings.TrimSpace(hypPath)
			refPath = strings.TrimSpace(refPath)
			if all == (hypPath != "" || refPath != "") {
				return errors.New("use either --all or both --hyp and --ref")
			}
			if !all && (hypPath == "" || refPath == "") {
				return errors.New("--hyp and --ref are both required")
			}
			return ctx.withEnv(func(env *workflow.Env) error {
				var corpus wer.Corpus
				if all {
					var err error
					if corpus, err = env.WERAll(commandCtx(cmd)); err != nil {
						return err
					}
				} else {
					res, err := env.WERPair(commandCtx(cmd), hypPath, refPath)
					if err != nil {
						return err
					}
					corpus.Files = []wer.FileResult{res}
				}
				if asJSON {
					payload := werJSON{Files: corpus.Files, Skipped: corpus.Skipped, Failed: corpus.Failed, WeightedWER: corpus.WeightedWER()}
					if err := writeJSON(cmd, payload); err != nil {
						return err
					}
				} else {
					printCorpus(cmd.OutOrStdout(), corpus)
				}
				return partialFailure(len(corpus.Failed), corpus.Total())
			})
		},
	}

	cmd.Flags().StringVar(&hypPath, "hyp", "", "Transcript JSON to score")
	cmd.Flags().StringVar(&refPath, "ref", "", "Reference text file")
	cmd.Flags().BoolVar(&all, "all", false, "Score every transcript in the chunks directory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func printCorpus(out io.Writer, corpus wer.Corpus) {
	colorize := shouldColorize(out)
	rows := make([][]string, 0, len(corpus.Files))
	var n, s, d, ins int
	for _, f := range corpus.Files {
		n += f.ReferenceLength
		s += f.Substitutions
		d += f.Deletions
		ins += f.Insertions
		rows = append(rows, []string{
			f.Base,
			strconv.Itoa(f.ReferenceLength),
			strconv.Itoa(f.Substitutions),
			strconv.Itoa(f.Deletions),
			strconv.Itoa(f.Insertions),
			formatWER(f.WER),
		})
	}
	var footer []string
	if len(corpus.Files) > 1 {
		footer = []string{"Corpus", strconv.Itoa(n), strconv.Itoa(s), strconv.Itoa(d), strconv.Itoa(ins), formatWER(corpus.WeightedWER())}
	}
	fmt.Fprintln(out, renderTable(tableSpec{
		Headers: []string{"Transcript", "N", "S", "D", "I", "WER"},
		Rows:    rows,
		Footer:  footer,
		Aligns:  []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight},
	}, colorize))
	for _, sk := range corpus.Skipped {
		fmt.Fprintln(out, renderStatusLine(sk.Base, statusWarn, "skipped: "+sk.Reason, colorize))
	}
	for _, f := range corpus.Failed {
		fmt.Fprintln(out, renderStatusLine(f.Base, statusError, "failed: "+f.Reason, colorize))
	}
}

func formatWER(v float64) string {
	return strconv.FormatFloat(v*100, 'f', 2, 64) + "%"
}
