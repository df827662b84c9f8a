package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the working directories of a batch.
type Paths struct {
	RawDir       string `toml:"raw_dir" yaml:"raw_dir"`
	ProcessedDir string `toml:"processed_dir" yaml:"processed_dir"`
	ChunksDir    string `toml:"chunks_dir" yaml:"chunks_dir"`
	RefsDir      string `toml:"refs_dir" yaml:"refs_dir"`
	AlignDir     string `toml:"align_dir" yaml:"align_dir"`
	StateDir     string `toml:"state_dir" yaml:"state_dir"`
	LogDir       string `toml:"log_dir" yaml:"log_dir"`
}

// Audio contains normalization settings for the prepare stage.
type Audio struct {
	TargetSampleRate int     `toml:"target_sample_rate" yaml:"target_sample_rate"`
	NormalizeDBFS    float64 `toml:"normalize_dbfs" yaml:"normalize_dbfs"`
}

// VAD contains frame classification and span construction settings.
type VAD struct {
	// Mode is the detector aggressiveness, 0 (least) to 3 (most).
	Mode    int `toml:"mode" yaml:"mode"`
	FrameMs int `toml:"frame_ms" yaml:"frame_ms"`
	// SmoothFrameMs selects the majority window: 30 -> 3 frames, 20 -> 2, else 1.
	SmoothFrameMs int     `toml:"smooth_frame_ms" yaml:"smooth_frame_ms"`
	PadSec        float64 `toml:"pad_sec" yaml:"pad_sec"`
	MaxChunkSec   float64 `toml:"max_chunk_sec" yaml:"max_chunk_sec"`
	MinSpeechSec  float64 `toml:"min_speech_sec" yaml:"min_speech_sec"`
}

// ASR contains recognizer backend and merge settings.
type ASR struct {
	Backend        string  `toml:"backend" yaml:"backend"`
	Model          string  `toml:"model" yaml:"model"`
	Language       string  `toml:"language" yaml:"language"`
	BaseURL        string  `toml:"base_url" yaml:"base_url"`
	APIKey         string  `toml:"api_key" yaml:"api_key"`
	Temperature    float64 `toml:"temperature" yaml:"temperature"`
	MergeGapSec    float64 `toml:"max_chunk_merge_gap_sec" yaml:"max_chunk_merge_gap_sec"`
	MergeMaxSec    float64 `toml:"max_chunk_merge_duration_sec" yaml:"max_chunk_merge_duration_sec"`
	TimeoutSeconds int     `toml:"timeout_seconds" yaml:"timeout_seconds"`
	CUDAEnabled    bool    `toml:"cuda_enabled" yaml:"cuda_enabled"`
	HFToken        string  `toml:"hf_token" yaml:"hf_token"`
}

// Align contains Montreal Forced Aligner settings.
type Align struct {
	MFABinary     string `toml:"mfa_binary" yaml:"mfa_binary"`
	AcousticModel string `toml:"acoustic_model" yaml:"acoustic_model"`
	Dictionary    string `toml:"dictionary" yaml:"dictionary"`
	Beam          int    `toml:"beam" yaml:"beam"`
	RetryBeam     int    `toml:"retry_beam" yaml:"retry_beam"`
}

// Workers bounds per-file parallelism.
type Workers struct {
	Files int `toml:"files" yaml:"files"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format" yaml:"format"`
	Level  string `toml:"level" yaml:"level"`
}

// Metrics configures the Prometheus textfile written after each batch.
// An empty Textfile disables the export.
type Metrics struct {
	Textfile string `toml:"textfile" yaml:"textfile"`
}

// Config encapsulates all configuration values for vadscribe.
type Config struct {
	Paths   Paths   `toml:"paths" yaml:"paths"`
	Audio   Audio   `toml:"audio" yaml:"audio"`
	VAD     VAD     `toml:"vad" yaml:"vad"`
	ASR     ASR     `toml:"asr" yaml:"asr"`
	Align   Align   `toml:"align" yaml:"align"`
	Workers Workers `toml:"workers" yaml:"workers"`
	Logging Logging `toml:"logging" yaml:"logging"`
	Metrics Metrics `toml:"metrics" yaml:"metrics"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/vadscribe/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if err := loadDotEnv(resolvedPath); err != nil {
		return nil, "", false, err
	}

	if exists {
		if err := decodeFile(resolvedPath, &cfg); err != nil {
			return nil, "", false, err
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func decodeFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.NewDecoder(file).Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse config: %w", err)
		}
	default:
		if err := toml.NewDecoder(file).Decode(cfg); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	}
	return nil
}

// loadDotEnv loads .env files from the config directory and the working
// directory. Existing environment variables always win.
func loadDotEnv(configPath string) error {
	candidates := []string{".env"}
	if configPath != "" {
		candidates = append([]string{filepath.Join(filepath.Dir(configPath), ".env")}, candidates...)
	}
	var present []string
	seen := map[string]struct{}{}
	for _, candidate := range candidates {
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		if info, err := os.Stat(abs); err == nil && !info.IsDir() {
			present = append(present, abs)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	return nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	for _, local := range []string{"vadscribe.toml", filepath.Join("configs", "default.yaml")} {
		projectPath, err := filepath.Abs(local)
		if err != nil {
			return "", false, err
		}
		if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
			return projectPath, true, nil
		}
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the output and state directories. Input
// directories (raw, refs) are left alone so a typo surfaces as a missing-input
// error rather than an empty batch.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ProcessedDir, c.Paths.ChunksDir, c.Paths.AlignDir, c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RunStorePath returns the location of the SQLite run ledger.
func (c *Config) RunStorePath() string {
	return filepath.Join(c.Paths.StateDir, "runs.db")
}

// FFmpegBinary returns the ffmpeg executable name.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// ASRModel returns the configured model or the backend's default.
func (c *Config) ASRModel() string {
	if model := strings.TrimSpace(c.ASR.Model); model != "" {
		return model
	}
	if c.ASR.Backend == BackendWhisperX {
		return defaultWhisperXModel
	}
	return defaultOpenAIModel
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
