package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"vadscribe/internal/config"
	"vadscribe/internal/deps"
	"vadscribe/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var offline bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, directories and the ASR backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			writeSection(out, "Dependencies", colorize)
			statuses := preflight.CheckSystemDeps(cfg)
			for _, line := range dependencyLines(commandCtx(cmd), statuses, ctx.runner, colorize) {
				fmt.Fprintln(out, line)
			}
			failures := len(deps.MissingRequired(statuses))

			writeSection(out, "Checks", colorize)
			results := doctorChecks(cfg, ctx)
			if !offline {
				results = append(results, preflight.CheckASREndpoint(commandCtx(cmd), cfg))
			}
			for _, r := range results {
				fmt.Fprintln(out, renderStatusLine(r.Name, resultKind(r), r.Detail, colorize))
			}
			failures += len(preflight.Failed(results))

			if failures > 0 {
				return fmt.Errorf("doctor found %d problem(s)", failures)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip checks that contact the ASR endpoint")
	return cmd
}

func doctorChecks(cfg *config.Config, ctx *commandContext) []preflight.Result {
	// Inputs may not exist until the first batch is copied in.
	raw := preflight.CheckReadableDirectory("Raw directory", cfg.Paths.RawDir)
	raw.Optional = true
	results := []preflight.Result{
		raw,
		preflight.CheckDirectoryAccess("Processed directory", cfg.Paths.ProcessedDir),
		preflight.CheckDirectoryAccess("Chunks directory", cfg.Paths.ChunksDir),
		preflight.CheckDirectoryAccess("Align directory", cfg.Paths.AlignDir),
		preflight.CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		preflight.CheckDetector(cfg, ctx.detectors),
		preflight.CheckASRConfig(cfg),
	}
	if strings.TrimSpace(cfg.Paths.RefsDir) != "" {
		refs := preflight.CheckReadableDirectory("Refs directory", cfg.Paths.RefsDir)
		refs.Optional = true
		results = append(results, refs)
	}
	return results
}

func resultKind(r preflight.Result) statusKind {
	switch {
	case r.Passed:
		return statusOK
	case r.Optional:
		return statusWarn
	default:
		return statusError
	}
}

func writeSection(out io.Writer, title string, colorize bool) {
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}
}

// dependencyLines renders one status line per dependency, with the version
// reported by available binaries.
func dependencyLines(ctx context.Context, statuses []deps.Status, run deps.CommandRunner, colorize bool) []string {
	lines := make([]string, 0, len(statuses)+1)
	for _, dep := range statuses {
		if dep.Available {
			message := fmt.Sprintf("Ready (%s)", dep.Path)
			versionCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			if version, err := deps.Version(versionCtx, run, dep.Path, deps.VersionArgs(dep.Command)...); err == nil {
				message = fmt.Sprintf("%s, %s", message, version)
			}
			cancel()
			lines = append(lines, renderStatusLine(dep.Name, statusOK, message, colorize))
			continue
		}

		detail := strings.TrimSpace(dep.Detail)
		if detail == "" {
			detail = "not available"
		}
		kind := statusError
		if dep.Optional {
			kind = statusWarn
		}
		lines = append(lines, renderStatusLine(dep.Name, kind, detail, colorize))
	}
	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		lines = append(lines, renderStatusLine("Missing dependencies", statusWarn, fmt.Sprintf("%s (see README.md for install steps)", strings.Join(missing, ", ")), colorize))
	}
	return lines
}
