package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"vadscribe/internal/config"
	"vadscribe/internal/deps"
	"vadscribe/internal/logging"
	"vadscribe/internal/metrics"
	"vadscribe/internal/preflight"
	"vadscribe/internal/recognize"
	"vadscribe/internal/runstore"
	"vadscribe/internal/vad"
	"vadscribe/internal/workflow"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error

	// Collaborator overrides; nil selects the production implementation.
	detectors  vad.DetectorFactory
	recognizer recognize.Recognizer
	runner     deps.CommandRunner
}

func newCommandContext(configFlag, logLevelFlag *string) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil {
			if level := strings.TrimSpace(*c.logLevelFlag); level != "" {
				cfg.Logging.Level = level
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

// withEnv opens the run ledger and hands a workflow environment to fn.
func (c *commandContext) withEnv(fn func(*workflow.Env) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	store, err := runstore.Open(cfg.RunStorePath())
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()

	return fn(&workflow.Env{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Recorder:   metrics.New(),
		Detectors:  c.detectors,
		Recognizer: c.recognizer,
		Runner:     c.runner,
	})
}

func (c *commandContext) withStore(fn func(*runstore.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := runstore.Open(cfg.RunStorePath())
	if err != nil {
		return fmt.Errorf("open run ledger: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// checkReady runs the offline preflight checks for stage and fails with the
// first required check that did not pass.
func (c *commandContext) checkReady(stage preflight.Stage) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	failed := preflight.Failed(preflight.RunAll(cfg, stage, c.detectors))
	if len(failed) == 0 {
		return nil
	}
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return fmt.Errorf("preflight failed (run `vadscribe doctor` for details): %s", strings.Join(parts, "; "))
}

func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// partialFailure reports per-file failures after the results were printed.
func partialFailure(failed, total int) error {
	if failed == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d files failed", failed, total)
}
