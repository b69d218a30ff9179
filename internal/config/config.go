// Package config loads callguard process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rcliao/callguard/internal/recorder"
	"github.com/rcliao/callguard/internal/retention"
	"github.com/rcliao/callguard/internal/settings"
)

// Config holds all process settings.
type Config struct {
	// Home holds the database, settings file and file fallback store.
	Home string
	// DBPath is the primary SQLite file.
	DBPath string

	LogLevel  slog.Level
	LogFormat string

	QueueSize int
	Workers   int

	Retention retention.Policy

	// FallbackRedisURL selects the Redis fallback backend when set.
	FallbackRedisURL string

	// MetricsAddr, when set, is where serve exposes /metrics.
	MetricsAddr string
}

// SettingsPath is the user settings file.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Home, settings.FileName)
}

// FallbackDir is the file fallback store directory.
func (c *Config) FallbackDir() string {
	return filepath.Join(c.Home, "prefs")
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// CALLGUARD_HOME: data directory (default ~/.callguard)
	cfg.Home = os.Getenv("CALLGUARD_HOME")
	if cfg.Home == "" {
		home, _ := os.UserHomeDir()
		cfg.Home = filepath.Join(home, ".callguard")
	}

	// CALLGUARD_DB: SQLite path (default $CALLGUARD_HOME/callguard.db)
	cfg.DBPath = getEnvDefault("CALLGUARD_DB", filepath.Join(cfg.Home, "callguard.db"))

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("CALLGUARD_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("CALLGUARD_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("CALLGUARD_LOG_FORMAT", "text")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("CALLGUARD_LOG_FORMAT: invalid format %q, want json or text", cfg.LogFormat)
	}

	cfg.QueueSize, err = getEnvInt("CALLGUARD_QUEUE_SIZE", recorder.DefaultQueueSize)
	if err != nil {
		return nil, fmt.Errorf("CALLGUARD_QUEUE_SIZE: %w", err)
	}
	cfg.Workers, err = getEnvInt("CALLGUARD_WORKERS", recorder.DefaultWorkers)
	if err != nil {
		return nil, fmt.Errorf("CALLGUARD_WORKERS: %w", err)
	}

	cfg.Retention.MaxSoftThreshold, err = getEnvInt("CALLGUARD_RETENTION_THRESHOLD", retention.DefaultMaxSoftThreshold)
	if err != nil {
		return nil, fmt.Errorf("CALLGUARD_RETENTION_THRESHOLD: %w", err)
	}
	cfg.Retention.MaxAge, err = getEnvDuration("CALLGUARD_RETENTION_MAX_AGE", retention.DefaultMaxAge)
	if err != nil {
		return nil, fmt.Errorf("CALLGUARD_RETENTION_MAX_AGE: %w", err)
	}

	cfg.FallbackRedisURL = os.Getenv("CALLGUARD_FALLBACK_REDIS_URL")
	cfg.MetricsAddr = os.Getenv("CALLGUARD_METRICS_ADDR")

	return cfg, nil
}

// SetupLogger builds the process logger on stderr and installs it as the default.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("invalid integer: %q", val)
	}
	if n < 0 {
		return 0, fmt.Errorf("must not be negative: %d", n)
	}
	return n, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	return ParseAge(val)
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("invalid level %q, want debug, info, warn or error", s)
}

var ageRegex = regexp.MustCompile(`^(\d+)([dhms])$`)

// ParseAge parses an age like "30d", "24h", "30m" or "60s".
func ParseAge(s string) (time.Duration, error) {
	m := ageRegex.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("invalid format %q (use e.g. 30d, 24h, 30m, 60s)", s)
	}
	n, _ := strconv.Atoi(m[1])
	switch m[2] {
	case "d":
		return time.Duration(n) * 24 * time.Hour, nil
	case "h":
		return time.Duration(n) * time.Hour, nil
	case "m":
		return time.Duration(n) * time.Minute, nil
	case "s":
		return time.Duration(n) * time.Second, nil
	}
	return 0, fmt.Errorf("unknown unit %q", m[2])
}
