// Package fallback implements the flat key/value store that blocked calls are
// written to when the primary SQLite store fails.
//
// Values are string sets addressed by namespace and key. Append reads the whole
// set, adds the entry and writes the whole set back.
package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Namespace and key the blocked-call entries live under.
const (
	Namespace = "blocked_calls"
	LogsKey   = "logs"
)

// KV is a durable store of string sets.
type KV interface {
	// Members returns the set stored at namespace/key, empty when absent.
	Members(ctx context.Context, namespace, key string) ([]string, error)
	// Replace overwrites the set stored at namespace/key.
	Replace(ctx context.Context, namespace, key string, members []string) error
	// Append adds member to the set stored at namespace/key.
	Append(ctx context.Context, namespace, key, member string) error
	Close() error
}

// FileKV stores each namespace as a JSON document in dir.
//
// mu is held across each whole read-modify-write, so writers sharing one FileKV
// never lose entries. Writers in other processes can still interleave and lose
// an entry.
type FileKV struct {
	dir string
	mu  sync.Mutex
}

// NewFileKV creates a file-backed KV rooted at dir.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create fallback dir: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) path(namespace string) string {
	return filepath.Join(f.dir, namespace+".json")
}

func (f *FileKV) readNamespace(namespace string) (map[string][]string, error) {
	data := map[string][]string{}
	b, err := os.ReadFile(f.path(namespace))
	if errors.Is(err, os.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, err
	}
	if len(b) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("decode %s: %w", namespace, err)
	}
	return data, nil
}

func (f *FileKV) Members(ctx context.Context, namespace, key string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.readNamespace(namespace)
	if err != nil {
		return nil, err
	}
	return data[key], nil
}

func (f *FileKV) Replace(ctx context.Context, namespace, key string, members []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.readNamespace(namespace)
	if err != nil {
		return err
	}
	data[key] = dedupe(members)
	return f.writeNamespace(namespace, data)
}

func (f *FileKV) Append(ctx context.Context, namespace, key, member string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.readNamespace(namespace)
	if err != nil {
		return err
	}
	data[key] = dedupe(append(data[key], member))
	return f.writeNamespace(namespace, data)
}

func (f *FileKV) writeNamespace(namespace string, data map[string][]string) error {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	// Write a sibling temp file and rename so readers never see a torn document.
	tmp, err := os.CreateTemp(f.dir, namespace+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path(namespace))
}

func (f *FileKV) Close() error { return nil }

func dedupe(members []string) []string {
	seen := make(map[string]bool, len(members))
	out := make([]string, 0, len(members))
	for _, m := range members {
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}
