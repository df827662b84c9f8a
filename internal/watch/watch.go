// Package watch runs a handler for WAV files that appear in a directory,
// debouncing the burst of events a single write produces.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"vadscribe/internal/logging"
)

// DefaultDebounce is how long a file must stay quiet before it is handled.
const DefaultDebounce = 500 * time.Millisecond

// Handler processes one settled file.
type Handler func(ctx context.Context, path string) error

// Stats reports watcher progress.
type Stats struct {
	Processed int64
	Failed    int64
}

// Watcher feeds settled .wav files to a Handler, one at a time.
type Watcher struct {
	dir      string
	debounce time.Duration
	handle   Handler
	logger   *slog.Logger

	mu     sync.Mutex
	timers map[string]*time.Timer
	ready  chan string

	processed atomic.Int64
	failed    atomic.Int64
}

// New creates a watcher for dir. A non-positive debounce uses DefaultDebounce.
func New(dir string, debounce time.Duration, handle Handler, logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		dir:      dir,
		debounce: debounce,
		handle:   handle,
		logger:   logging.NewComponentLogger(logger, "watch"),
		timers:   make(map[string]*time.Timer),
		ready:    make(chan string, 64),
	}
}

// Stats returns current counters.
func (w *Watcher) Stats() Stats {
	return Stats{Processed: w.processed.Load(), Failed: w.failed.Load()}
}

// Run watches until ctx is cancelled. Handler errors are logged and counted;
// they do not stop the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching for recordings", logging.String("dir", w.dir), logging.Duration("debounce", w.debounce))

	done := make(chan struct{})
	go func() {
		defer close(done)
		w.process(ctx)
	}()

	defer func() {
		w.stopTimers()
		<-done
		stats := w.Stats()
		w.logger.Info("watcher stopped",
			logging.Int64("processed", stats.Processed),
			logging.Int64("failed", stats.Failed),
		)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isCandidate(event.Name) {
				continue
			}
			w.schedule(ctx, event.Name)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("fsnotify error", logging.Error(err))
		}
	}
}

func isCandidate(path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, ".") {
		return false
	}
	return strings.EqualFold(filepath.Ext(name), ".wav")
}

// schedule (re)arms the debounce timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Reset(w.debounce)
		return
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()
		select {
		case w.ready <- path:
		case <-ctx.Done():
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) process(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.ready:
			if err := w.handle(ctx, path); err != nil {
				w.failed.Add(1)
				logging.WarnWithContext(w.logger, "watched file failed", "watch_file_failed",
					logging.String(logging.FieldSource, filepath.Base(path)),
					logging.Error(err),
					logging.String(logging.FieldImpact, "file skipped; watcher continues"),
				)
				continue
			}
			w.processed.Add(1)
		}
	}
}
