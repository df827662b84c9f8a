package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestWatcherHandlesNewWAVOnce(t *testing.T) {
	dir := t.TempDir()
	var (
		mu    sync.Mutex
		calls []string
	)
	seen := make(chan string, 4)
	w := New(dir, 50*time.Millisecond, func(_ context.Context, path string) error {
		mu.Lock()
		calls = append(calls, filepath.Base(path))
		mu.Unlock()
		seen <- path
		return nil
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	path := filepath.Join(dir, "talk.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if _, err := f.Write([]byte("data")); err != nil {
			t.Fatal(err)
		}
	}
	f.Close()
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-seen:
		if got != path {
			t.Fatalf("handled %s, want %s", got, path)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for handler")
	}
	time.Sleep(200 * time.Millisecond)
	cancel()
	if err := <-errCh; err != nil {
		t.Fatalf("Run: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 1 {
		t.Fatalf("expected one debounced call, got %v", calls)
	}
	if w.Stats().Processed != 1 {
		t.Fatalf("stats = %+v", w.Stats())
	}
}

func TestWatcherCountsFailures(t *testing.T) {
	dir := t.TempDir()
	done := make(chan struct{}, 1)
	w := New(dir, 20*time.Millisecond, func(context.Context, string) error {
		done <- struct{}{}
		return errors.New("bad audio")
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(dir, "bad.WAV"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for handler")
	}
	deadline := time.Now().Add(2 * time.Second)
	for w.Stats().Failed != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if w.Stats().Failed != 1 {
		t.Fatalf("stats = %+v", w.Stats())
	}
}

func TestRunFailsForMissingDir(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), 0, func(context.Context, string) error { return nil }, nil)
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestIsCandidate(t *testing.T) {
	cases := map[string]bool{
		"/x/a.wav":          true,
		"/x/B.WAV":          true,
		"/x/.a.wav.123.tmp": false,
		"/x/.hidden.wav":    false,
		"/x/a.mp3":          false,
	}
	for path, want := range cases {
		if got := isCandidate(path); got != want {
			t.Fatalf("isCandidate(%s) = %v, want %v", path, got, want)
		}
	}
}
