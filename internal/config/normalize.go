package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeVAD(); err != nil {
		return err
	}
	c.normalizeASR()
	c.normalizeAlign()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"paths.raw_dir", &c.Paths.RawDir},
		{"paths.processed_dir", &c.Paths.ProcessedDir},
		{"paths.chunks_dir", &c.Paths.ChunksDir},
		{"paths.refs_dir", &c.Paths.RefsDir},
		{"paths.align_dir", &c.Paths.AlignDir},
		{"paths.state_dir", &c.Paths.StateDir},
		{"paths.log_dir", &c.Paths.LogDir},
		{"metrics.textfile", &c.Metrics.Textfile},
	}
	for _, field := range fields {
		expanded, err := expandPath(strings.TrimSpace(*field.value))
		if err != nil {
			return fmt.Errorf("%s: %w", field.name, err)
		}
		*field.value = expanded
	}
	return nil
}

// normalizeVAD applies the VADSCRIBE_FVAD_* environment overrides.
func (c *Config) normalizeVAD() error {
	if value, ok := os.LookupEnv("VADSCRIBE_FVAD_MODE"); ok && strings.TrimSpace(value) != "" {
		mode, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("VADSCRIBE_FVAD_MODE: %w", err)
		}
		c.VAD.Mode = mode
	}
	if value, ok := os.LookupEnv("VADSCRIBE_FVAD_FRAME_MS"); ok && strings.TrimSpace(value) != "" {
		frameMs, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("VADSCRIBE_FVAD_FRAME_MS: %w", err)
		}
		c.VAD.SmoothFrameMs = frameMs
	}
	return nil
}

func (c *Config) normalizeASR() {
	c.ASR.Backend = strings.ToLower(strings.TrimSpace(c.ASR.Backend))
	if c.ASR.Backend == "" {
		c.ASR.Backend = defaultASRBackend
	}
	c.ASR.Model = strings.TrimSpace(c.ASR.Model)
	c.ASR.Language = strings.ToLower(strings.TrimSpace(c.ASR.Language))
	c.ASR.BaseURL = strings.TrimSpace(c.ASR.BaseURL)
	c.ASR.APIKey = strings.TrimSpace(c.ASR.APIKey)
	if c.ASR.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.ASR.APIKey = strings.TrimSpace(value)
		}
	}
	c.ASR.HFToken = strings.TrimSpace(c.ASR.HFToken)
	if c.ASR.HFToken == "" {
		if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.ASR.HFToken = strings.TrimSpace(value)
		}
	}
	if c.ASR.TimeoutSeconds <= 0 {
		c.ASR.TimeoutSeconds = defaultASRTimeoutSecs
	}
}

func (c *Config) normalizeAlign() {
	c.Align.MFABinary = strings.TrimSpace(c.Align.MFABinary)
	if c.Align.MFABinary == "" {
		c.Align.MFABinary = defaultMFABinary
	}
	c.Align.AcousticModel = strings.TrimSpace(c.Align.AcousticModel)
	if c.Align.AcousticModel == "" {
		c.Align.AcousticModel = defaultAcousticModel
	}
	c.Align.Dictionary = strings.TrimSpace(c.Align.Dictionary)
	if c.Align.Dictionary == "" {
		c.Align.Dictionary = defaultDictionary
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format != "json" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
