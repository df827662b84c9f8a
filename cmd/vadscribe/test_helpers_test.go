package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vadscribe/internal/config"
	"vadscribe/internal/deps"
	"vadscribe/internal/fileutil"
	"vadscribe/internal/testsupport"
	"vadscribe/internal/transcript"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
	recognizer *echoRecognizer
	runner     deps.CommandRunner
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("OPENAI_API_KEY", "")
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())

	configPath := filepath.Join(homeDir, ".config", "vadscribe", "config.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{
		cfg:        cfg,
		configPath: configPath,
		baseDir:    base,
		recognizer: &echoRecognizer{},
		runner:     fakeFFmpeg,
	}
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var configFlag, logLevelFlag string
	cc := newCommandContext(&configFlag, &logLevelFlag)
	cc.detectors = testsupport.SampleDetectorFactory
	cc.recognizer = e.recognizer
	cc.runner = e.runner

	cmd := newRootCommandWithContext(cc)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", e.configPath, "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir config dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func writeTranscript(t *testing.T, dir, base, text string) string {
	t.Helper()
	path := filepath.Join(dir, base+transcript.TranscriptSuffix)
	tr := transcript.Transcript{Chunks: []transcript.Chunk{{Start: 0, End: 1, Text: text}}}
	if err := transcript.WriteFile(path, tr); err != nil {
		t.Fatalf("write transcript: %v", err)
	}
	return path
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

// fakeFFmpeg copies the input for conversions and reports no mean volume.
func fakeFFmpeg(_ context.Context, _ string, args ...string) ([]byte, error) {
	if slices.Contains(args, "volumedetect") {
		return []byte("[Parsed_volumedetect_0] n_samples: 0\n"), nil
	}
	i := slices.Index(args, "-i")
	if i < 0 || i+1 >= len(args) {
		return nil, errors.New("no input")
	}
	return nil, fileutil.CopyFile(args[i+1], args[len(args)-1])
}

type echoRecognizer struct {
	mu    sync.Mutex
	calls int
}

func (r *echoRecognizer) Recognize(_ context.Context, _ string, offset float64) (*transcript.Unit, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	return &transcript.Unit{
		Start: offset,
		End:   offset + 0.5,
		Text:  "hello",
		Words: []transcript.Word{{Text: "hello", Start: offset, End: offset + 0.5}},
	}, nil
}

func (r *echoRecognizer) Model() string { return "echo" }

var speechInMiddle = []testsupport.Region{
	{Seconds: 0.5},
	{Seconds: 1, Speech: true},
	{Seconds: 0.5},
}
