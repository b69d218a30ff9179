// Package retention keeps the blocked-call log bounded with an age-based sweep
// that only runs once the log grows past a soft size threshold.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rcliao/callguard/internal/metrics"
)

// Defaults for Policy.
const (
	DefaultMaxSoftThreshold = 1000
	DefaultMaxAge           = 30 * 24 * time.Hour
)

// Policy controls when and what the sweep deletes.
type Policy struct {
	// MaxSoftThreshold is the row count above which a sweep runs.
	MaxSoftThreshold int
	// MaxAge is how old a row must be before a sweep may delete it.
	MaxAge time.Duration
}

// DefaultPolicy returns the 1000 rows / 30 days policy.
func DefaultPolicy() Policy {
	return Policy{MaxSoftThreshold: DefaultMaxSoftThreshold, MaxAge: DefaultMaxAge}
}

// Pruner is the subset of the store the sweep needs.
type Pruner interface {
	Count(ctx context.Context) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error)
}

// Manager runs the retention sweep.
type Manager struct {
	store  Pruner
	policy Policy
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithClock overrides the wall clock used to compute the cutoff.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a retention manager over store.
func NewManager(store Pruner, policy Policy, logger *slog.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		store:  store,
		policy: policy,
		now:    time.Now,
		logger: logger.With(slog.String("component", "retention")),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Policy returns the active policy.
func (m *Manager) Policy() Policy { return m.policy }

// MaybePrune deletes rows older than MaxAge when the row count exceeds
// MaxSoftThreshold. It returns the number of rows deleted.
func (m *Manager) MaybePrune(ctx context.Context) (int64, error) {
	count, err := m.store.Count(ctx)
	if err != nil {
		metrics.RetentionErrors.Inc()
		return 0, fmt.Errorf("count: %w", err)
	}
	if count <= m.policy.MaxSoftThreshold {
		return 0, nil
	}

	cutoff := m.now().Add(-m.policy.MaxAge).UnixMilli()
	n, err := m.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		metrics.RetentionErrors.Inc()
		return 0, fmt.Errorf("prune: %w", err)
	}

	metrics.RetentionPruned.Add(float64(n))
	m.logger.Info("retention sweep",
		slog.Int("count", count),
		slog.Int64("cutoff", cutoff),
		slog.Int64("deleted", n),
	)
	return n, nil
}
