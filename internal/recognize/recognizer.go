package recognize

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vadscribe/internal/config"
	"vadscribe/internal/transcript"
)

// Recognizer transcribes one chunk. offset is the chunk's start in the source
// recording; returned word timestamps are absolute. A nil unit with a nil
// error means the chunk held no recognizable words.
type Recognizer interface {
	Recognize(ctx context.Context, path string, offset float64) (*transcript.Unit, error)
	Model() string
}

// New builds the recognizer selected by cfg.ASR.Backend.
func New(cfg *config.Config, logger *slog.Logger) (Recognizer, error) {
	timeout := time.Duration(cfg.ASR.TimeoutSeconds) * time.Second
	switch cfg.ASR.Backend {
	case config.BackendOpenAI, "":
		return NewOpenAI(OpenAIConfig{
			APIKey:      cfg.ASR.APIKey,
			BaseURL:     cfg.ASR.BaseURL,
			Model:       cfg.ASRModel(),
			Language:    cfg.ASR.Language,
			Temperature: cfg.ASR.Temperature,
			Timeout:     timeout,
		}), nil
	case config.BackendWhisperX:
		return NewWhisperX(WhisperXConfig{
			Model:       cfg.ASRModel(),
			Language:    cfg.ASR.Language,
			CUDAEnabled: cfg.ASR.CUDAEnabled,
			HFToken:     cfg.ASR.HFToken,
			Timeout:     timeout,
		}, logger), nil
	default:
		return nil, fmt.Errorf("unknown asr backend %q", cfg.ASR.Backend)
	}
}
