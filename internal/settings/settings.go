// Package settings persists user-owned preferences, currently only whether
// spam blocking is enabled.
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileName is the settings file inside the callguard home directory.
const FileName = "settings.yaml"

// ErrInvalid is returned when the settings file cannot be decoded.
var ErrInvalid = errors.New("invalid settings file")

// Settings is the persisted document.
type Settings struct {
	BlockingEnabled bool `yaml:"blocking_enabled"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{BlockingEnabled: true}
}

// File is a YAML-backed settings store.
type File struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFile returns a settings store at path.
func NewFile(path string, logger *slog.Logger) *File {
	if logger == nil {
		logger = slog.Default()
	}
	return &File{path: path, logger: logger.With(slog.String("component", "settings"))}
}

// Path returns the settings file path.
func (f *File) Path() string { return f.path }

// Load reads the settings file. A missing file yields Default().
func (f *File) Load() (Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.load()
}

func (f *File) load() (Settings, error) {
	s := Default()
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Default(), fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return s, nil
}

// Save writes s to the settings file.
func (f *File) Save(s Settings) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, b, 0o644)
}

// SetBlockingEnabled updates the flag and saves the file.
func (f *File) SetBlockingEnabled(enabled bool) error {
	s, err := f.Load()
	if err != nil && !errors.Is(err, ErrInvalid) {
		return err
	}
	s.BlockingEnabled = enabled
	return f.Save(s)
}

// BlockingEnabled re-reads the file and reports the flag. Read or decode
// errors are logged and the default (enabled) is returned.
func (f *File) BlockingEnabled() bool {
	s, err := f.Load()
	if err != nil {
		f.logger.Warn("settings unreadable, using default",
			slog.String("path", f.path),
			slog.String("error", err.Error()),
		)
		return Default().BlockingEnabled
	}
	return s.BlockingEnabled
}

// Static is a fixed enabled flag, for hosts that own the setting themselves.
type Static bool

// BlockingEnabled returns the fixed value.
func (s Static) BlockingEnabled() bool { return bool(s) }
