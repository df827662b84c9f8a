package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vadscribe/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"OPENAI_API_KEY", "HF_TOKEN", "VADSCRIBE_FVAD_MODE", "VADSCRIBE_FVAD_FRAME_MS"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "vadscribe", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".local", "share", "vadscribe"); cfg.Paths.StateDir != want {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, want)
	}
	if !filepath.IsAbs(cfg.Paths.ChunksDir) {
		t.Fatalf("expected absolute chunks dir, got %q", cfg.Paths.ChunksDir)
	}
	if cfg.ASR.APIKey != "sk-test" {
		t.Fatalf("expected API key from env, got %q", cfg.ASR.APIKey)
	}
	if cfg.VAD.Mode != 2 || cfg.VAD.FrameMs != 10 || cfg.VAD.PadSec != 0.15 {
		t.Fatalf("unexpected vad defaults %+v", cfg.VAD)
	}
	if cfg.ASR.MergeGapSec != 0.5 || cfg.ASR.MergeMaxSec != 30 {
		t.Fatalf("unexpected merge defaults %+v", cfg.ASR)
	}
	if cfg.ASRModel() != "whisper-1" {
		t.Fatalf("unexpected default model %q", cfg.ASRModel())
	}
	if cfg.RunStorePath() != filepath.Join(cfg.Paths.StateDir, "runs.db") {
		t.Fatalf("unexpected run store path %q", cfg.RunStorePath())
	}
}

func TestLoadTOMLOverrides(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[vad]
mode = 3
frame_ms = 30
smooth_frame_ms = 30

[asr]
backend = "WhisperX"
language = " EN "

[logging]
format = "JSON"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %q, got %q exists=%v", path, resolved, exists)
	}
	if cfg.VAD.Mode != 3 || cfg.VAD.FrameMs != 30 || cfg.VAD.SmoothFrameMs != 30 {
		t.Fatalf("unexpected vad section %+v", cfg.VAD)
	}
	if cfg.ASR.Backend != config.BackendWhisperX || cfg.ASR.Language != "en" {
		t.Fatalf("unexpected asr section %+v", cfg.ASR)
	}
	if cfg.ASRModel() != "large-v3" {
		t.Fatalf("expected whisperx default model, got %q", cfg.ASRModel())
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", cfg.Logging.Format)
	}
	if cfg.VAD.MaxChunkSec != 30 {
		t.Fatalf("expected untouched defaults to survive, got %v", cfg.VAD.MaxChunkSec)
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "default.yaml")
	content := `audio:
  target_sample_rate: 16000
vad:
  mode: 1
  pad_sec: 0.25
asr:
  model: whisper-large
  max_chunk_merge_gap_sec: 0.8
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.VAD.Mode != 1 || cfg.VAD.PadSec != 0.25 {
		t.Fatalf("unexpected vad section %+v", cfg.VAD)
	}
	if cfg.ASRModel() != "whisper-large" || cfg.ASR.MergeGapSec != 0.8 {
		t.Fatalf("unexpected asr section %+v", cfg.ASR)
	}
	if cfg.VAD.FrameMs != 10 {
		t.Fatalf("expected default frame ms, got %d", cfg.VAD.FrameMs)
	}
}

func TestLoadReadsDotEnvNextToConfig(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("OPENAI_API_KEY")
	os.Unsetenv("VADSCRIBE_FVAD_MODE")
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[vad]\nmode = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	env := "OPENAI_API_KEY=sk-dotenv\nVADSCRIBE_FVAD_MODE=0\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Cleanup(func() {
		os.Unsetenv("OPENAI_API_KEY")
		os.Unsetenv("VADSCRIBE_FVAD_MODE")
	})

	cfg, _, _, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ASR.APIKey != "sk-dotenv" {
		t.Fatalf("expected key from .env, got %q", cfg.ASR.APIKey)
	}
	if cfg.VAD.Mode != 0 {
		t.Fatalf("expected env mode override, got %d", cfg.VAD.Mode)
	}
}

func TestLoadRejectsInvalidEnvOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("VADSCRIBE_FVAD_FRAME_MS", "ten")
	if _, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for non-numeric frame override")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"mode", func(c *config.Config) { c.VAD.Mode = 4 }, "vad.mode"},
		{"frame", func(c *config.Config) { c.VAD.FrameMs = 25 }, "vad.frame_ms"},
		{"rate", func(c *config.Config) { c.Audio.TargetSampleRate = 44100 }, "audio.target_sample_rate"},
		{"max chunk", func(c *config.Config) { c.VAD.MaxChunkSec = 0 }, "vad.max_chunk_sec"},
		{"backend", func(c *config.Config) { c.ASR.Backend = "kaldi" }, "asr.backend"},
		{"retry beam", func(c *config.Config) { c.Align.RetryBeam = 5 }, "align.retry_beam"},
		{"workers", func(c *config.Config) { c.Workers.Files = 0 }, "workers.files"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestCreateSampleMatchesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample config does not parse: %v", err)
	}
	def := config.Default()
	if decoded.VAD != def.VAD {
		t.Fatalf("sample vad %+v differs from defaults %+v", decoded.VAD, def.VAD)
	}
	if decoded.Align != def.Align {
		t.Fatalf("sample align %+v differs from defaults %+v", decoded.Align, def.Align)
	}
	if decoded.Paths != def.Paths {
		t.Fatalf("sample paths %+v differs from defaults %+v", decoded.Paths, def.Paths)
	}
}
