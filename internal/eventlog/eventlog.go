// Package eventlog is the logical blocked-call log. Primary writes to the
// SQLite store, Secondary to the flat fallback store, and Failover routes
// writes to Secondary whenever Primary fails.
package eventlog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/rcliao/callguard/internal/fallback"
	"github.com/rcliao/callguard/internal/metrics"
	"github.com/rcliao/callguard/internal/model"
	"github.com/rcliao/callguard/internal/retention"
	"github.com/rcliao/callguard/internal/store"
)

// Log records blocked calls and lists them back.
type Log interface {
	// RecordBlock persists c and returns its identifier (0 when the backend
	// does not assign one).
	RecordBlock(ctx context.Context, c model.BlockedCall) (int64, error)
	// ListRecent returns up to limit calls, most recent first. limit <= 0 means all.
	ListRecent(ctx context.Context, limit int) ([]model.BlockedCall, error)
}

// Primary is the structured store, followed by a retention sweep after each insert.
type Primary struct {
	store     store.Store
	retention *retention.Manager
	logger    *slog.Logger
}

// NewPrimary wraps s. rm may be nil to disable the retention sweep.
func NewPrimary(s store.Store, rm *retention.Manager, logger *slog.Logger) *Primary {
	if logger == nil {
		logger = slog.Default()
	}
	return &Primary{store: s, retention: rm, logger: logger.With(slog.String("component", "eventlog.primary"))}
}

func (p *Primary) RecordBlock(ctx context.Context, c model.BlockedCall) (int64, error) {
	id, err := p.store.Insert(ctx, store.InsertParams{
		PhoneNumber: c.PhoneNumber,
		CallerName:  c.CallerName,
		Timestamp:   c.Timestamp,
		Reason:      c.Reason,
		Keyword:     c.Keyword,
	})
	if err != nil {
		return 0, err
	}

	if p.retention != nil {
		// Retention failures are left for the next insert to retry.
		if _, err := p.retention.MaybePrune(ctx); err != nil {
			p.logger.Warn("retention sweep failed", slog.String("error", err.Error()))
		}
	}
	return id, nil
}

func (p *Primary) ListRecent(ctx context.Context, limit int) ([]model.BlockedCall, error) {
	return p.store.List(ctx, store.ListParams{Limit: limit})
}

// Secondary appends "timestamp|number|name" entries to a fallback KV set.
// Each append is one KV operation, so concurrent writers sharing a KV keep
// every entry.
type Secondary struct {
	kv fallback.KV
}

// NewSecondary wraps kv.
func NewSecondary(kv fallback.KV) *Secondary {
	return &Secondary{kv: kv}
}

func (s *Secondary) RecordBlock(ctx context.Context, c model.BlockedCall) (int64, error) {
	entry := fallback.FormatEntry(c.Timestamp, c.PhoneNumber, c.CallerName)
	if err := s.kv.Append(ctx, fallback.Namespace, fallback.LogsKey, entry); err != nil {
		return 0, fmt.Errorf("write fallback log: %w", err)
	}
	return 0, nil
}

// Entries returns the raw fallback entries.
func (s *Secondary) Entries(ctx context.Context) ([]string, error) {
	return s.kv.Members(ctx, fallback.Namespace, fallback.LogsKey)
}

// ListRecent parses the fallback entries. Malformed entries are skipped here;
// fallback.FormatEntries still shows them.
func (s *Secondary) ListRecent(ctx context.Context, limit int) ([]model.BlockedCall, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}
	calls := make([]model.BlockedCall, 0, len(entries))
	for _, e := range entries {
		if c, ok := fallback.ParseEntry(e); ok {
			c.Reason = model.BlockReasonSpam
			calls = append(calls, c)
		}
	}
	sortRecent(calls)
	return truncate(calls, limit), nil
}

// Failover writes to primary and falls back to secondary on error.
type Failover struct {
	primary   Log
	secondary Log
	logger    *slog.Logger
}

// NewFailover composes primary and secondary.
func NewFailover(primary, secondary Log, logger *slog.Logger) *Failover {
	if logger == nil {
		logger = slog.Default()
	}
	return &Failover{
		primary:   primary,
		secondary: secondary,
		logger:    logger.With(slog.String("component", "eventlog")),
	}
}

// RecordBlock never returns an error: when both backends fail the call is
// logged and counted as dropped.
func (f *Failover) RecordBlock(ctx context.Context, c model.BlockedCall) (int64, error) {
	id, err := f.primary.RecordBlock(ctx, c)
	if err == nil {
		metrics.LogWrites.WithLabelValues(metrics.BackendPrimary, metrics.ResultOK).Inc()
		return id, nil
	}
	metrics.LogWrites.WithLabelValues(metrics.BackendPrimary, metrics.ResultError).Inc()
	f.logger.Warn("primary log write failed, using fallback",
		slog.String("number", c.PhoneNumber),
		slog.String("error", err.Error()),
	)

	if _, ferr := f.secondary.RecordBlock(ctx, c); ferr != nil {
		metrics.LogWrites.WithLabelValues(metrics.BackendFallback, metrics.ResultError).Inc()
		metrics.LogDropped.Inc()
		f.logger.Error("fallback log write failed, blocked call not recorded",
			slog.String("number", c.PhoneNumber),
			slog.Int64("timestamp", c.Timestamp),
			slog.String("error", ferr.Error()),
		)
		return 0, nil
	}
	metrics.LogWrites.WithLabelValues(metrics.BackendFallback, metrics.ResultOK).Inc()
	return 0, nil
}

// ListRecent merges both backends, most recent first. When one backend fails
// the other's rows are still returned together with the error.
func (f *Failover) ListRecent(ctx context.Context, limit int) ([]model.BlockedCall, error) {
	primary, perr := f.primary.ListRecent(ctx, limit)
	if perr != nil {
		perr = fmt.Errorf("list primary: %w", perr)
	}
	secondary, serr := f.secondary.ListRecent(ctx, limit)
	if serr != nil {
		serr = fmt.Errorf("list fallback: %w", serr)
	}

	calls := append(primary, secondary...)
	sortRecent(calls)
	return truncate(calls, limit), errors.Join(perr, serr)
}

func sortRecent(calls []model.BlockedCall) {
	sort.SliceStable(calls, func(i, j int) bool {
		if calls[i].Timestamp != calls[j].Timestamp {
			return calls[i].Timestamp > calls[j].Timestamp
		}
		return calls[i].ID > calls[j].ID
	})
}

func truncate(calls []model.BlockedCall, limit int) []model.BlockedCall {
	if limit > 0 && len(calls) > limit {
		return calls[:limit]
	}
	return calls
}
