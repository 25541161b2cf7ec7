package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrQueueFull is returned by TryEnqueue when the buffer has no room.
	ErrQueueFull = errors.New("queue full")
	// ErrQueueStopped is returned once the queue is not accepting work.
	ErrQueueStopped = errors.New("queue not running")
)

// Job is one unit of background work. Jobs sharing a Key are coalesced while
// one of them is queued, running or waiting for a retry.
type Job struct {
	Key      string
	Kind     string
	Payload  interface{}
	Attempt  int
	QueuedAt time.Time
}

// Handler processes a job.
type Handler func(context.Context, Job) error

// QueueConfig configures the worker pool. Zero values fall back to defaults.
type QueueConfig struct {
	Workers       int
	BufferSize    int
	MaxRetries    int
	RetryDelay    time.Duration
	MaxRetryDelay time.Duration
	Logger        *zap.Logger
}

// Stats is a point-in-time view of queue activity.
type Stats struct {
	Pending   int    `json:"pending"`
	Succeeded uint64 `json:"succeeded"`
	Retried   uint64 `json:"retried"`
	Failed    uint64 `json:"failed"`
	Dropped   uint64 `json:"dropped"`
}

// Queue is an in-memory keyed job dispatcher with retry backoff.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger

	jobs   chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	running bool
	keys    map[string]struct{}
	stats   Stats
}

// NewQueue builds a queue named for logging.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.MaxRetryDelay < cfg.RetryDelay {
		cfg.MaxRetryDelay = 30 * cfg.RetryDelay
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  logger.With(zap.String("queue", name)),
		jobs:    make(chan Job, cfg.BufferSize),
		keys:    map[string]struct{}{},
	}
}

// Start launches the workers. Later calls are no-ops.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.running {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	q.running = true
	for i := 1; i <= q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.work(i)
	}
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers), zap.Int("buffer", q.cfg.BufferSize))
}

// Stop cancels the workers and waits for in-flight handlers to return.
// Queued jobs are discarded.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	q.cancel()
	q.mu.Unlock()

	q.wg.Wait()
	q.logger.Info("queue stopped", zap.Uint64("succeeded", q.Stats().Succeeded))
}

// Enqueue blocks until the job is buffered or the queue stops.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return fmt.Errorf("%s: %w", q.name, ErrQueueStopped)
	}
	ctx := q.ctx
	q.mu.Unlock()

	stamp(&job)
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", q.name, ErrQueueStopped)
	}
}

// TryEnqueue buffers a job without blocking. A job whose key is already
// tracked is accepted and dropped.
func (q *Queue) TryEnqueue(job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.running {
		return fmt.Errorf("%s: %w", q.name, ErrQueueStopped)
	}
	if job.Key != "" {
		if _, ok := q.keys[job.Key]; ok {
			q.stats.Dropped++
			return nil
		}
	}
	stamp(&job)
	select {
	case q.jobs <- job:
		if job.Key != "" {
			q.keys[job.Key] = struct{}{}
		}
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending returns the number of distinct keys queued, running or retrying.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.keys)
}

// Stats returns counters since the queue was built.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.stats
	out.Pending = len(q.keys)
	return out
}

func stamp(job *Job) {
	if job.QueuedAt.IsZero() {
		job.QueuedAt = time.Now().UTC()
	}
}

func (q *Queue) work(worker int) {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			err := q.handler(q.ctx, job)
			if err == nil {
				q.finish(job, func(s *Stats) { s.Succeeded++ })
				continue
			}
			q.retry(worker, job, err)
		}
	}
}

// finish untracks the job key and updates counters.
func (q *Queue) finish(job Job, count func(*Stats)) {
	q.mu.Lock()
	if job.Key != "" {
		delete(q.keys, job.Key)
	}
	count(&q.stats)
	q.mu.Unlock()
}

// backoff doubles the retry delay per attempt up to MaxRetryDelay.
func (q *Queue) backoff(attempt int) time.Duration {
	delay := q.cfg.RetryDelay
	for i := 1; i < attempt && delay < q.cfg.MaxRetryDelay; i++ {
		delay *= 2
	}
	if delay > q.cfg.MaxRetryDelay {
		delay = q.cfg.MaxRetryDelay
	}
	return delay
}

func (q *Queue) retry(worker int, job Job, cause error) {
	job.Attempt++
	fields := []zap.Field{
		zap.Int("worker", worker),
		zap.String("key", job.Key),
		zap.String("kind", job.Kind),
		zap.Int("attempt", job.Attempt),
		zap.Error(cause),
	}
	if job.Attempt > q.cfg.MaxRetries {
		q.logger.Error("job gave up", fields...)
		q.finish(job, func(s *Stats) { s.Failed++ })
		return
	}

	delay := q.backoff(job.Attempt)
	q.logger.Warn("job failed, will retry", append(fields, zap.Duration("delay", delay))...)
	q.mu.Lock()
	q.stats.Retried++
	q.mu.Unlock()

	time.AfterFunc(delay, func() {
		if err := q.Enqueue(job); err != nil {
			q.finish(job, func(s *Stats) { s.Failed++ })
		}
	})
}
