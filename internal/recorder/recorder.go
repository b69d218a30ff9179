// Package recorder moves blocked-call persistence off the decision path.
// The screener enqueues a Job and returns. Workers drain the queue into an
// eventlog.Log, and failures only reach the logs and metrics.
package recorder

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/callguard/internal/eventlog"
	"github.com/rcliao/callguard/internal/metrics"
	"github.com/rcliao/callguard/internal/model"
)

// Defaults for Options.
const (
	DefaultQueueSize = 256
	DefaultWorkers   = 2
)

// Job is one blocked call waiting to be persisted.
type Job struct {
	Event     model.CallEvent
	Decision  model.Decision
	Timestamp int64 // unix millis at block time
}

// Options configures a Recorder.
type Options struct {
	QueueSize int
	Workers   int
	// OnRecorded, if set, is called after each job with the id RecordBlock returned.
	OnRecorded func(Job, int64)
}

// Recorder owns the persistence queue and its workers.
type Recorder struct {
	log    eventlog.Log
	queue  chan Job
	opts   Options
	logger *slog.Logger

	mu      sync.RWMutex
	closed  bool
	group   *errgroup.Group
	started bool
	dropped atomic.Int64
}

// New creates a Recorder that writes to log.
func New(log eventlog.Log, opts Options, logger *slog.Logger) *Recorder {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		log:    log,
		queue:  make(chan Job, opts.QueueSize),
		opts:   opts,
		logger: logger.With(slog.String("component", "recorder")),
	}
}

// Start launches the workers. ctx is passed to every log write; cancelling it
// makes pending writes fail over, but the queue is still drained until Stop.
func (r *Recorder) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true

	g := &errgroup.Group{}
	for i := 0; i < r.opts.Workers; i++ {
		g.Go(func() error {
			for job := range r.queue {
				metrics.QueueDepth.Dec()
				r.persist(ctx, job)
			}
			return nil
		})
	}
	r.group = g

	r.logger.Debug("recorder started",
		slog.Int("workers", r.opts.Workers),
		slog.Int("queue_size", r.opts.QueueSize),
	)
}

// Enqueue hands job to the workers without blocking. It returns false when the
// job was dropped because the queue is full or the recorder is stopped.
func (r *Recorder) Enqueue(job Job) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.drop(job, "recorder stopped")
		return false
	}

	// Count the job before a worker can receive it so the gauge never dips below zero.
	metrics.QueueDepth.Inc()
	select {
	case r.queue <- job:
		return true
	default:
		metrics.QueueDepth.Dec()
		r.drop(job, "queue full")
		return false
	}
}

// Dropped reports how many jobs were never handed to the log.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

func (r *Recorder) drop(job Job, why string) {
	r.dropped.Add(1)
	metrics.QueueDropped.Inc()
	r.logger.Warn("blocked call not queued",
		slog.String("reason", why),
		slog.String("call_id", job.Event.ID),
		slog.String("number", job.Event.Number),
	)
}

// Stop closes the queue and waits for queued jobs to be written. Jobs queued on
// a recorder that was never started are dropped and counted.
func (r *Recorder) Stop() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	g := r.group
	r.mu.Unlock()

	if g != nil {
		g.Wait()
	} else {
		for job := range r.queue {
			metrics.QueueDepth.Dec()
			r.drop(job, "recorder never started")
		}
	}
	r.logger.Debug("recorder stopped")
}

func (r *Recorder) persist(ctx context.Context, job Job) {
	start := time.Now()
	c := BlockedCall(job)

	id, err := r.log.RecordBlock(ctx, c)
	if err != nil {
		r.logger.Error("record blocked call",
			slog.String("call_id", job.Event.ID),
			slog.String("error", err.Error()),
		)
	} else {
		r.logger.Info("blocked call recorded",
			slog.String("call_id", job.Event.ID),
			slog.Int64("id", id),
			slog.String("number", c.PhoneNumber),
			slog.Duration("took", time.Since(start)),
		)
	}
	if r.opts.OnRecorded != nil {
		r.opts.OnRecorded(job, id)
	}
}

// BlockedCall builds the record persisted for job.
func BlockedCall(job Job) model.BlockedCall {
	number := job.Event.Number
	if number == "" {
		number = model.UnknownCaller
	}
	return model.BlockedCall{
		PhoneNumber: number,
		CallerName:  job.Event.Name,
		Timestamp:   job.Timestamp,
		Reason:      model.BlockReasonSpam,
		Keyword:     job.Decision.Reason.Keyword,
	}
}
