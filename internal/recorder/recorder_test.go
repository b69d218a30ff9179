package recorder

import (
	"context"
	"errors"
	"sync"
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/rcliao/callguard/internal/metrics"
	"github.com/rcliao/callguard/internal/model"
)

type memLog struct {
	mu    sync.Mutex
	calls []model.BlockedCall
	err   error
	gate  chan struct{} // when set, RecordBlock waits for it
}

func (m *memLog) RecordBlock(ctx context.Context, c model.BlockedCall) (int64, error) {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	m.calls = append(m.calls, c)
	return int64(len(m.calls)), nil
}

func (m *memLog) ListRecent(ctx context.Context, limit int) ([]model.BlockedCall, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.BlockedCall(nil), m.calls...), nil
}

func blockJob(name, number string, ts int64) Job {
	return Job{
		Event: model.CallEvent{ID: "call", Name: name, Number: number},
		Decision: model.Decision{
			Action: model.Block,
			Reason: model.Reason{Code: model.ReasonKeywordMatch, Keyword: "scam likely"},
		},
		Timestamp: ts,
	}
}

func queueDepth(t *testing.T) float64 {
	t.Helper()
	var m dto.Metric
	if err := metrics.QueueDepth.Write(&m); err != nil {
		t.Fatalf("read queue depth: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestRecorderDrainsOnStop(t *testing.T) {
	before := queueDepth(t)
	log := &memLog{}
	r := New(log, Options{QueueSize: 16, Workers: 3}, nil)
	r.Start(context.Background())

	for i := 0; i < 10; i++ {
		if !r.Enqueue(blockJob("Scam Likely", "+15551234567", int64(i))) {
			t.Fatalf("enqueue %d rejected", i)
		}
	}
	r.Stop()

	calls, _ := log.ListRecent(context.Background(), 0)
	if len(calls) != 10 {
		t.Errorf("expected 10 persisted calls, got %d", len(calls))
	}
	if got := queueDepth(t); got != before {
		t.Errorf("expected queue depth back at %v after drain, got %v", before, got)
	}
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	gate := make(chan struct{})
	log := &memLog{gate: gate}
	r := New(log, Options{QueueSize: 1, Workers: 1}, nil)
	r.Start(context.Background())

	// The first job may already be held by the worker; fill until one drops.
	dropped := false
	for i := 0; i < 5; i++ {
		if !r.Enqueue(blockJob("x", "1", int64(i))) {
			dropped = true
			break
		}
	}
	close(gate)
	r.Stop()

	if !dropped {
		t.Error("expected a job to be dropped once the queue was full")
	}
	if r.Dropped() != 1 {
		t.Errorf("expected 1 dropped job, got %d", r.Dropped())
	}
}

func TestQueueDepthStaysBalancedUnderLoad(t *testing.T) {
	before := queueDepth(t)
	r := New(&memLog{}, Options{QueueSize: 4, Workers: 4}, nil)
	r.Start(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Enqueue(blockJob("x", "1", int64(i*100+j)))
				var m dto.Metric
				metrics.QueueDepth.Write(&m)
				if d := m.GetGauge().GetValue(); d < before {
					t.Errorf("queue depth fell below baseline: %v < %v", d, before)
				}
			}
		}(i)
	}
	wg.Wait()
	r.Stop()

	if got := queueDepth(t); got != before {
		t.Errorf("expected queue depth back at %v, got %v", before, got)
	}
}

func TestStopWithoutStartDropsQueuedJobs(t *testing.T) {
	before := queueDepth(t)
	log := &memLog{}
	r := New(log, Options{QueueSize: 8}, nil)
	for i := 0; i < 3; i++ {
		if !r.Enqueue(blockJob("x", "1", int64(i))) {
			t.Fatalf("enqueue %d rejected", i)
		}
	}
	r.Stop()

	if r.Dropped() != 3 {
		t.Errorf("expected 3 dropped jobs, got %d", r.Dropped())
	}
	if calls, _ := log.ListRecent(context.Background(), 0); len(calls) != 0 {
		t.Errorf("expected nothing written, got %d", len(calls))
	}
	if got := queueDepth(t); got != before {
		t.Errorf("expected queue depth back at %v, got %v", before, got)
	}
}

func TestEnqueueAfterStop(t *testing.T) {
	r := New(&memLog{}, Options{}, nil)
	r.Start(context.Background())
	r.Stop()
	r.Stop()

	if r.Enqueue(blockJob("x", "1", 1)) {
		t.Error("expected enqueue after stop to be rejected")
	}
}

func TestLogErrorsAreNotFatal(t *testing.T) {
	var mu sync.Mutex
	var seen []int64
	log := &memLog{err: errors.New("boom")}
	r := New(log, Options{OnRecorded: func(_ Job, id int64) {
		mu.Lock()
		seen = append(seen, id)
		mu.Unlock()
	}}, nil)
	r.Start(context.Background())
	r.Enqueue(blockJob("x", "1", 1))
	r.Stop()

	if len(seen) != 1 || seen[0] != 0 {
		t.Errorf("expected one callback with id 0, got %v", seen)
	}
}

func TestBlockedCall(t *testing.T) {
	c := BlockedCall(blockJob("Scam Likely", "", 42))
	if c.PhoneNumber != "Unknown" {
		t.Errorf("expected Unknown number, got %q", c.PhoneNumber)
	}
	if c.CallerName != "Scam Likely" || c.Timestamp != 42 {
		t.Errorf("unexpected record: %+v", c)
	}
	if c.Reason != "Suspected spam" || c.Keyword != "scam likely" {
		t.Errorf("unexpected reason: %q / %q", c.Reason, c.Keyword)
	}
}
