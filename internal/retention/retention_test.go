package retention

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcliao/callguard/internal/store"
)

var fixedNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func daysAgo(d int) int64 {
	return fixedNow.Add(-time.Duration(d) * 24 * time.Hour).UnixMilli()
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *store.SQLiteStore, ages ...int) {
	t.Helper()
	for _, age := range ages {
		_, err := s.Insert(context.Background(), store.InsertParams{
			PhoneNumber: "+15550000000", Timestamp: daysAgo(age), Reason: "Suspected spam",
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestMaybePruneUnderThreshold(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seed(t, s, 40, 50, 60)

	m := NewManager(s, Policy{MaxSoftThreshold: 3, MaxAge: 30 * 24 * time.Hour}, nil, WithClock(clock))
	n, err := m.MaybePrune(ctx)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no-op at threshold, deleted %d", n)
	}
	count, _ := s.Count(ctx)
	if count != 3 {
		t.Errorf("expected 3 rows kept, got %d", count)
	}
}

func TestMaybePruneYoungRowsAboveThreshold(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seed(t, s, 1, 2, 3, 4, 5)

	m := NewManager(s, Policy{MaxSoftThreshold: 2, MaxAge: 30 * 24 * time.Hour}, nil, WithClock(clock))
	n, _ := m.MaybePrune(ctx)
	if n != 0 {
		t.Errorf("expected young rows kept, deleted %d", n)
	}
}

func TestMaybePruneScenario1001(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	ages := make([]int, 0, 1001)
	for i := 0; i < 25; i++ {
		ages = append(ages, 31+i%10) // 31..40 days old
	}
	for len(ages) < 1001 {
		ages = append(ages, len(ages)%29) // 0..28 days old
	}
	seed(t, s, ages...)

	m := NewManager(s, DefaultPolicy(), nil, WithClock(clock))
	n, err := m.MaybePrune(ctx)
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if n != 25 {
		t.Errorf("expected 25 old rows deleted, got %d", n)
	}

	count, _ := s.Count(ctx)
	if count != 976 {
		t.Errorf("expected 976 rows remaining, got %d", count)
	}
	remaining, _ := s.List(ctx, store.ListParams{})
	cutoff := daysAgo(30)
	for _, c := range remaining {
		if c.Timestamp < cutoff {
			t.Fatalf("row %d older than cutoff survived", c.ID)
		}
	}
}

func TestMaybePruneIdempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seed(t, s, 40, 45, 1, 2)

	m := NewManager(s, Policy{MaxSoftThreshold: 1, MaxAge: 30 * 24 * time.Hour}, nil, WithClock(clock))
	first, _ := m.MaybePrune(ctx)
	if first != 2 {
		t.Errorf("expected 2 on first sweep, got %d", first)
	}
	second, _ := m.MaybePrune(ctx)
	if second != 0 {
		t.Errorf("expected 0 on second sweep, got %d", second)
	}
}

func TestMaybePruneBoundaryIsStrict(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	cutoff := daysAgo(30)
	for _, ts := range []int64{cutoff, cutoff - 1} {
		s.Insert(ctx, store.InsertParams{PhoneNumber: "1", Timestamp: ts, Reason: "r"})
	}

	m := NewManager(s, Policy{MaxSoftThreshold: 0, MaxAge: 30 * 24 * time.Hour}, nil, WithClock(clock))
	n, _ := m.MaybePrune(ctx)
	if n != 1 {
		t.Errorf("expected only the row before cutoff deleted, got %d", n)
	}
}

type failingPruner struct {
	count     int
	countErr  error
	deleteErr error
}

func (f failingPruner) Count(context.Context) (int, error) { return f.count, f.countErr }

func (f failingPruner) DeleteOlderThan(context.Context, int64) (int64, error) {
	return 0, f.deleteErr
}

func TestMaybePruneErrors(t *testing.T) {
	boom := errors.New("disk I/O error")
	tests := []struct {
		name string
		p    failingPruner
	}{
		{"count fails", failingPruner{countErr: boom}},
		{"delete fails", failingPruner{count: 10, deleteErr: boom}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.p, Policy{MaxSoftThreshold: 1, MaxAge: time.Hour}, nil)
			n, err := m.MaybePrune(context.Background())
			if !errors.Is(err, boom) {
				t.Errorf("expected wrapped error, got %v", err)
			}
			if n != 0 {
				t.Errorf("expected 0 deleted, got %d", n)
			}
		})
	}
}
