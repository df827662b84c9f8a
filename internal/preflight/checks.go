package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"vadscribe/internal/config"
	"vadscribe/internal/deps"
	"vadscribe/internal/recognize"
	"vadscribe/internal/services"
	"vadscribe/internal/vad"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckReadableDirectory verifies that an input directory exists and can be listed.
func CheckReadableDirectory(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "readable")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckDetector builds a frame classifier with the configured mode and frame
// length so a cgo-less build or a bad rate/frame pair surfaces before a batch.
// A nil factory uses the WebRTC detector.
func CheckDetector(cfg *config.Config, factory vad.DetectorFactory) Result {
	const name = "Voice activity detector"
	classifier, err := vad.NewFrameClassifier(vad.ClassifierConfig{
		SampleRate: cfg.Audio.TargetSampleRate,
		FrameMs:    cfg.VAD.FrameMs,
		Mode:       cfg.VAD.Mode,
	}, factory)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	_ = classifier.Close()
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("mode %d, %d ms frames at %d Hz", cfg.VAD.Mode, cfg.VAD.FrameMs, cfg.Audio.TargetSampleRate)}
}

// CheckASRConfig validates recognizer settings without contacting the backend.
func CheckASRConfig(cfg *config.Config) Result {
	name := fmt.Sprintf("ASR backend (%s)", cfg.ASR.Backend)
	switch cfg.ASR.Backend {
	case config.BackendWhisperX:
		detail := fmt.Sprintf("model %s", cfg.ASRModel())
		if cfg.ASR.CUDAEnabled {
			detail += ", cuda"
		}
		if strings.TrimSpace(cfg.ASR.HFToken) != "" {
			detail += ", pyannote vad"
		}
		return Result{Name: name, Passed: true, Detail: detail}
	default:
		if strings.TrimSpace(cfg.ASR.APIKey) == "" {
			return Result{Name: name, Detail: "API key missing"}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("model %s", cfg.ASRModel())}
	}
}

// CheckASREndpoint verifies that an OpenAI-compatible endpoint is reachable and
// the key is valid. It uses a 30-second timeout and a single attempt.
func CheckASREndpoint(ctx context.Context, cfg *config.Config) Result {
	const name = "ASR endpoint"
	if cfg.ASR.Backend != config.BackendOpenAI {
		return Result{Name: name, Passed: true, Optional: true, Detail: "not used by " + cfg.ASR.Backend}
	}
	if cfg.ASR.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := recognize.NewOpenAI(recognize.OpenAIConfig{
		APIKey:  cfg.ASR.APIKey,
		BaseURL: cfg.ASR.BaseURL,
		Model:   cfg.ASRModel(),
		Timeout: 30 * time.Second,
	})
	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckSystemDeps evaluates the external programs for the given config.
// mfa is optional unless alignment is part of the batch.
func CheckSystemDeps(cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.FFmpegBinary(),
			Description: "Required to decode and normalize audio",
		},
		{
			Name:        "uvx",
			Command:     "uvx",
			Description: "Required for WhisperX transcription",
			Optional:    cfg.ASR.Backend != config.BackendWhisperX,
		},
		{
			Name:        "MFA",
			Command:     cfg.Align.MFABinary,
			Description: "Required for forced alignment",
			Optional:    true,
		},
	}
	return deps.CheckBinaries(requirements)
}

func binaryResult(command, description string, optional bool) Result {
	status := deps.Resolve(deps.Requirement{Name: command, Command: command, Description: description, Optional: optional})
	result := Result{Name: "Binary " + command, Passed: status.Available, Optional: optional, Detail: status.Detail}
	if status.Available {
		result.Detail = status.Path
	}
	return result
}

// summarizeError produces a human-readable summary for endpoint check failures.
func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, services.ErrTimeout) {
		return "health check timed out (ASR API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (ASR API unreachable)"
	}
	if errors.Is(err, services.ErrConfiguration) {
		return "auth failed (invalid api key)"
	}
	return err.Error()
}
