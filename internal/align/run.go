package align

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"vadscribe/internal/config"
	"vadscribe/internal/deps"
	"vadscribe/internal/logging"
	"vadscribe/internal/services"
)

// RunOptions configures an MFA invocation.
type RunOptions struct {
	Binary        string
	AcousticModel string
	// Dictionary is an MFA dictionary name or path; empty uses the layout's
	// lexicon file.
	Dictionary string
	Beam       int
	RetryBeam  int
}

// RunOptionsFromConfig derives options from the align section.
func RunOptionsFromConfig(cfg *config.Config) RunOptions {
	return RunOptions{
		Binary:        cfg.Align.MFABinary,
		AcousticModel: cfg.Align.AcousticModel,
		Dictionary:    cfg.Align.Dictionary,
		Beam:          cfg.Align.Beam,
		RetryBeam:     cfg.Align.RetryBeam,
	}
}

// Aligner runs the Montreal Forced Aligner.
type Aligner struct {
	opts   RunOptions
	layout Layout
	run    deps.CommandRunner
	logger *slog.Logger
}

// NewAligner creates an Aligner over layout.
func NewAligner(opts RunOptions, layout Layout, logger *slog.Logger) *Aligner {
	if opts.Binary == "" {
		opts.Binary = "mfa"
	}
	return &Aligner{
		opts:   opts,
		layout: layout,
		run:    deps.RunCommand,
		logger: logging.NewComponentLogger(logger, "align"),
	}
}

// WithCommandRunner sets a custom command runner (for testing).
func (a *Aligner) WithCommandRunner(runner deps.CommandRunner) {
	if runner != nil {
		a.run = runner
	}
}

// ResolveBinary confirms the aligner answers "version" and returns the
// command to use.
func (a *Aligner) ResolveBinary(ctx context.Context) (string, error) {
	bin := strings.TrimSpace(a.opts.Binary)
	if resolved, err := exec.LookPath(bin); err == nil {
		bin = resolved
	}
	if _, err := a.run(ctx, bin, "version"); err != nil {
		return "", services.Wrap(services.ErrConfiguration, "align", "resolve mfa", bin,
			errors.Join(err, errors.New("install montreal-forced-aligner and put mfa on PATH, or set align.mfa_binary")))
	}
	return bin, nil
}

// Args builds the align command line.
func (a *Aligner) Args() []string {
	dict := a.opts.Dictionary
	if strings.TrimSpace(dict) == "" {
		dict = a.layout.Lexicon()
	}
	return []string{
		"align",
		a.layout.Corpus,
		dict,
		a.opts.AcousticModel,
		a.layout.TextGrids,
		"--clean",
		"--beam", strconv.Itoa(a.opts.Beam),
		"--retry_beam", strconv.Itoa(a.opts.RetryBeam),
	}
}

// Run aligns the corpus into the TextGrid directory.
func (a *Aligner) Run(ctx context.Context) error {
	if _, err := os.Stat(a.layout.Corpus); err != nil {
		return services.Wrap(services.ErrNotFound, "align", "run", "corpus "+a.layout.Corpus, err)
	}
	if err := os.MkdirAll(a.layout.TextGrids, 0o755); err != nil {
		return services.Wrap(services.ErrConfiguration, "align", "run", "ensure output dir", err)
	}
	bin, err := a.ResolveBinary(ctx)
	if err != nil {
		return err
	}
	args := a.Args()
	a.logger.Info("running mfa align", logging.String("binary", bin), logging.String("args", strings.Join(args, " ")))
	if _, err := a.run(ctx, bin, args...); err != nil {
		return services.Wrap(services.ErrExternalTool, "align", "mfa align", "", err)
	}
	a.logger.Info("mfa align finished", logging.String("output", a.layout.TextGrids))
	return nil
}
