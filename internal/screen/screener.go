package screen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/callguard/internal/metrics"
	"github.com/rcliao/callguard/internal/model"
	"github.com/rcliao/callguard/internal/recorder"
)

// EnabledSource reports the user's "blocking enabled" setting.
type EnabledSource interface {
	BlockingEnabled() bool
}

// Queue accepts persistence jobs without blocking.
type Queue interface {
	Enqueue(job recorder.Job) bool
}

// Screener runs classify, commit and enqueue for each call event.
type Screener struct {
	classifier Classifier
	settings   EnabledSource
	responder  Responder
	queue      Queue
	now        func() time.Time
	logger     *slog.Logger
}

// Option configures a Screener.
type Option func(*Screener)

// WithClassifier replaces the default phrase list.
func WithClassifier(c Classifier) Option {
	return func(s *Screener) { s.classifier = c }
}

// WithClock overrides the clock used for block timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Screener) { s.now = now }
}

// NewScreener wires the pipeline. queue may be nil to skip persistence.
func NewScreener(settings EnabledSource, responder Responder, queue Queue, logger *slog.Logger, opts ...Option) *Screener {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Screener{
		classifier: DefaultClassifier(),
		settings:   settings,
		responder:  responder,
		queue:      queue,
		now:        time.Now,
		logger:     logger.With(slog.String("component", "screener")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Screen decides ev, commits the response and, on BLOCK, queues the event for
// logging. Only the responder's error is returned; persistence never fails
// the call.
func (s *Screener) Screen(ctx context.Context, ev model.CallEvent) (model.Decision, error) {
	if ev.ID == "" {
		ev.ID = ulid.Make().String()
	}

	d := s.classifier.Classify(ev.Name, s.settings.BlockingEnabled())
	metrics.CallsScreened.WithLabelValues(d.Action.String(), string(d.Reason.Code)).Inc()

	s.logger.Debug("call screened",
		slog.String("call_id", ev.ID),
		slog.String("number", ev.Number),
		slog.String("action", d.Action.String()),
		slog.String("reason", d.Reason.String()),
	)

	// The decision is committed before any logging work is handed off.
	var respErr error
	if err := s.responder.Respond(ctx, ev, d, Commit(d)); err != nil {
		metrics.ResponseErrors.Inc()
		respErr = fmt.Errorf("respond to call %s: %w", ev.ID, err)
	}

	if d.Blocked() && s.queue != nil {
		s.queue.Enqueue(recorder.Job{Event: ev, Decision: d, Timestamp: s.now().UnixMilli()})
	}

	return d, respErr
}
