package recognize

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"vadscribe/internal/services"
)

func writeChunk(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "talk_chunk_001.wav")
	if err := os.WriteFile(path, []byte("RIFF0000WAVE"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenAIRecognize(t *testing.T) {
	var form map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			http.NotFound(w, r)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		form = r.MultipartForm.Value
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"task": "transcribe",
			"text": " Good morning. ",
			"words": [
				{"word": "Good", "start": 0.0, "end": 0.31},
				{"word": "morning", "start": 0.35, "end": 0.8}
			]
		}`))
	}))
	defer srv.Close()

	rec := NewOpenAI(OpenAIConfig{APIKey: "test", BaseURL: srv.URL + "/v1/", Model: "whisper-1", Language: "en"})
	u, err := rec.Recognize(context.Background(), writeChunk(t), 4.2)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if u == nil || u.Text != "Good morning." || len(u.Words) != 2 {
		t.Fatalf("unexpected unit: %+v", u)
	}
	if u.Start != 4.2 || u.End != 5 {
		t.Fatalf("bounds = %v..%v", u.Start, u.End)
	}
	if got := form["response_format"]; len(got) != 1 || got[0] != "verbose_json" {
		t.Fatalf("response_format = %v", got)
	}
	if got := form["timestamp_granularities[]"]; len(got) != 1 || got[0] != "word" {
		t.Fatalf("timestamp_granularities = %v", got)
	}
	if rec.Model() != "whisper-1" {
		t.Fatalf("model = %s", rec.Model())
	}
}

func TestOpenAISilenceYieldsNil(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text": "", "words": []}`))
	}))
	defer srv.Close()

	u, err := NewOpenAI(OpenAIConfig{BaseURL: srv.URL}).Recognize(context.Background(), writeChunk(t), 0)
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if u != nil {
		t.Fatalf("expected nil unit, got %+v", u)
	}
}

func TestOpenAIErrorClassification(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, services.ErrConfiguration},
		{http.StatusBadRequest, services.ErrValidation},
		{http.StatusTooManyRequests, services.ErrTransient},
		{http.StatusBadGateway, services.ErrTransient},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"error": {"message": "nope", "type": "test"}}`))
		}))
		_, err := NewOpenAI(OpenAIConfig{BaseURL: srv.URL}).Recognize(context.Background(), writeChunk(t), 0)
		srv.Close()
		if !errors.Is(err, tc.want) {
			t.Fatalf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
	}
}
