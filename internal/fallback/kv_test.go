package fallback

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func newTestKV(t *testing.T) *FileKV {
	t.Helper()
	kv, err := NewFileKV(filepath.Join(t.TempDir(), "kv"))
	if err != nil {
		t.Fatalf("create kv: %v", err)
	}
	return kv
}

func TestFileKVEmpty(t *testing.T) {
	kv := newTestKV(t)
	got, err := kv.Members(context.Background(), Namespace, LogsKey)
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty set, got %v", got)
	}
}

func TestFileKVReplaceAndMembers(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)

	if err := kv.Replace(ctx, Namespace, LogsKey, []string{"b", "a", "b"}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, _ := kv.Members(ctx, Namespace, LogsKey)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("expected deduped [a b], got %v", got)
	}

	// Other keys in the namespace are untouched.
	kv.Replace(ctx, Namespace, "other", []string{"x"})
	got, _ = kv.Members(ctx, Namespace, LogsKey)
	if len(got) != 2 {
		t.Errorf("expected logs key preserved, got %v", got)
	}
}

func TestFileKVAppend(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)

	kv.Append(ctx, Namespace, LogsKey, "2|b|b")
	kv.Append(ctx, Namespace, LogsKey, "1|a|a")
	kv.Append(ctx, Namespace, LogsKey, "2|b|b")

	got, _ := kv.Members(ctx, Namespace, LogsKey)
	if len(got) != 2 || got[0] != "1|a|a" || got[1] != "2|b|b" {
		t.Errorf("expected deduped [1|a|a 2|b|b], got %v", got)
	}
}

func TestFileKVConcurrentAppend(t *testing.T) {
	ctx := context.Background()
	kv := newTestKV(t)

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := kv.Append(ctx, Namespace, LogsKey, fmt.Sprintf("%d|n|x", i)); err != nil {
				t.Errorf("append %d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	got, _ := kv.Members(ctx, Namespace, LogsKey)
	if len(got) != n {
		t.Errorf("expected %d entries, got %d", n, len(got))
	}
}

func TestFileKVPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "kv")

	first, _ := NewFileKV(dir)
	first.Replace(ctx, Namespace, LogsKey, []string{"1|2|3"})

	second, _ := NewFileKV(dir)
	got, _ := second.Members(ctx, Namespace, LogsKey)
	if len(got) != 1 || got[0] != "1|2|3" {
		t.Errorf("expected entry after reopen, got %v", got)
	}
}

func TestFileKVCorruptDocument(t *testing.T) {
	kv := newTestKV(t)
	if err := os.WriteFile(kv.path(Namespace), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := kv.Members(context.Background(), Namespace, LogsKey); err == nil {
		t.Error("expected decode error")
	}
}
