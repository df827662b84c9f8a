// Package workpool runs per-file jobs on a bounded set of goroutines and
// keeps completed/failed tallies.
package workpool

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"vadscribe/internal/logging"
)

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("worker pool stopped")

// Handler processes one job. A returned error counts the job as failed; it
// never stops the pool.
type Handler[T any] func(ctx context.Context, job T) error

// Options configures a Pool.
type Options struct {
	Workers   int
	QueueSize int
	Name      string
	Logger    *slog.Logger
}

// Stats reports pool progress.
type Stats struct {
	Pending   int   `json:"pending"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}

// Pool fans jobs out to worker goroutines.
type Pool[T any] struct {
	jobs    chan T
	handle  Handler[T]
	opts    Options
	logger  *slog.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.RWMutex
	stopped bool

	completed atomic.Int64
	failed    atomic.Int64
}

// New creates a pool. Workers below one are raised to one.
func New[T any](opts Options, handle Handler[T]) *Pool[T] {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.QueueSize < 0 {
		opts.QueueSize = 0
	}
	if opts.Name == "" {
		opts.Name = "workpool"
	}
	return &Pool[T]{
		jobs:   make(chan T, opts.QueueSize),
		handle: handle,
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, opts.Name),
	}
}

// Start launches the workers. Jobs observe ctx; cancelling it makes pending
// jobs fail fast inside their handlers.
func (p *Pool[T]) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Debug("worker pool started", logging.Int("workers", p.opts.Workers))
}

// Submit queues a job, blocking while the queue is full.
func (p *Pool[T]) Submit(ctx context.Context, job T) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return ErrStopped
	}
	select {
	case p.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop drains queued jobs, waits for the workers, and returns final stats.
func (p *Pool[T]) Stop() Stats {
	p.mu.Lock()
	if !p.stopped {
		p.stopped = true
		close(p.jobs)
	}
	p.mu.Unlock()
	p.wg.Wait()
	if p.cancel != nil {
		p.cancel()
	}
	stats := p.Stats()
	p.logger.Debug("worker pool stopped",
		logging.Int64("completed", stats.Completed),
		logging.Int64("failed", stats.Failed),
	)
	return stats
}

// Stats returns current counters.
func (p *Pool[T]) Stats() Stats {
	return Stats{
		Pending:   len(p.jobs),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
	}
}

func (p *Pool[T]) worker(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		if err := p.run(job); err != nil {
			p.failed.Add(1)
			p.logger.Debug("job failed", logging.Int("worker", id), logging.Error(err))
			continue
		}
		p.completed.Add(1)
	}
}

func (p *Pool[T]) run(job T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = panicError{value: r}
		}
	}()
	return p.handle(p.ctx, job)
}

type panicError struct{ value any }

func (e panicError) Error() string {
	return "job panicked: " + slog.AnyValue(e.value).String()
}

// Run processes every job and waits for completion.
func Run[T any](ctx context.Context, opts Options, jobs []T, handle Handler[T]) Stats {
	if opts.Workers > len(jobs) {
		opts.Workers = len(jobs)
	}
	pool := New(opts, handle)
	pool.Start(ctx)
	for _, job := range jobs {
		if err := pool.Submit(ctx, job); err != nil {
			pool.failed.Add(1)
		}
	}
	return pool.Stop()
}
