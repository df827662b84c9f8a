package recognize

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"vadscribe/internal/services"
	"vadscribe/internal/transcript"
)

// OpenAIConfig configures the HTTP backend.
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Language    string
	Temperature float64
	Timeout     time.Duration
}

// OpenAI transcribes chunks through an OpenAI-compatible transcription
// endpoint requesting verbose JSON with word timestamps.
type OpenAI struct {
	cfg    OpenAIConfig
	client *openai.Client
}

// NewOpenAI creates the backend. An empty BaseURL targets api.openai.com.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); base != "" {
		clientCfg.BaseURL = base
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Model == "" {
		cfg.Model = openai.Whisper1
	}
	return &OpenAI{cfg: cfg, client: openai.NewClientWithConfig(clientCfg)}
}

// Model returns the requested model name.
func (o *OpenAI) Model() string {
	return o.cfg.Model
}

// HealthCheck confirms the endpoint is reachable and accepts the key.
func (o *OpenAI) HealthCheck(ctx context.Context) error {
	if _, err := o.client.ListModels(ctx); err != nil {
		return services.Wrap(classifyAPIError(err), "doctor", "list models", o.cfg.BaseURL, err)
	}
	return nil
}

// Recognize implements Recognizer.
func (o *OpenAI) Recognize(ctx context.Context, path string, offset float64) (*transcript.Unit, error) {
	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:                  o.cfg.Model,
		FilePath:               path,
		Temperature:            float32(o.cfg.Temperature),
		Language:               o.cfg.Language,
		Format:                 openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{openai.TranscriptionTimestampGranularityWord},
	})
	if err != nil {
		return nil, services.Wrap(classifyAPIError(err), "asr", "openai transcription", path, err)
	}
	words := make([]RawWord, len(resp.Words))
	for i, w := range resp.Words {
		words[i] = RawWord{Text: w.Word, Start: ptr(w.Start), End: ptr(w.End)}
	}
	return BuildUnit(resp.Text, words, offset), nil
}

func classifyAPIError(err error) error {
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	status := 0
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	case errors.Is(err, context.DeadlineExceeded):
		return services.ErrTimeout
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return services.ErrConfiguration
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return services.ErrValidation
	case status == http.StatusTooManyRequests || status >= 500:
		return services.ErrTransient
	case status != 0:
		return services.ErrExternalTool
	}
	return services.ErrTransient
}

var _ Recognizer = (*OpenAI)(nil)
