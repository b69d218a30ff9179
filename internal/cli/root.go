// Package cli implements the callguard CLI commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/callguard/internal/config"
	"github.com/rcliao/callguard/internal/eventlog"
	"github.com/rcliao/callguard/internal/fallback"
	"github.com/rcliao/callguard/internal/retention"
	"github.com/rcliao/callguard/internal/settings"
	"github.com/rcliao/callguard/internal/store"
)

var (
	dbPath     string
	formatFlag string

	cfg    *config.Config
	logger *slog.Logger
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "callguard",
	Short: "Spam call screening with a durable blocked-call log",
	Long: "Screens inbound calls against carrier spam labels, answers the call-screening boundary, " +
		"and keeps a bounded SQLite log of blocked calls with a flat-file fallback.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.DBPath = dbPath
		}
		logger = config.SetupLogger(cfg)
		return nil
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $CALLGUARD_DB or ~/.callguard/callguard.db)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "json", "Output format: json or text")
}

func openStore(ctx context.Context) (*store.SQLiteStore, error) {
	return store.Open(ctx, cfg.DBPath)
}

func openSettings() *settings.File {
	return settings.NewFile(cfg.SettingsPath(), logger)
}

func openFallback(ctx context.Context) (fallback.KV, error) {
	if cfg.FallbackRedisURL != "" {
		return fallback.NewRedisKV(ctx, cfg.FallbackRedisURL)
	}
	return fallback.NewFileKV(cfg.FallbackDir())
}

// pipeline is the event log wired for writing: SQLite with retention,
// failing over to the fallback KV.
type pipeline struct {
	store     store.Store
	kv        fallback.KV
	secondary *eventlog.Secondary
	log       *eventlog.Failover
}

// openPipeline never fails on a broken primary; writes go to the fallback instead.
func openPipeline(ctx context.Context) (*pipeline, error) {
	kv, err := openFallback(ctx)
	if err != nil {
		return nil, fmt.Errorf("open fallback: %w", err)
	}

	var st store.Store
	sq, err := openStore(ctx)
	if err != nil {
		logger.Warn("primary store unavailable, blocked calls go to fallback",
			slog.String("db", cfg.DBPath),
			slog.String("error", err.Error()),
		)
		st = store.Unavailable(err)
	} else {
		st = sq
	}

	rm := retention.NewManager(st, cfg.Retention, logger)
	secondary := eventlog.NewSecondary(kv)
	return &pipeline{
		store:     st,
		kv:        kv,
		secondary: secondary,
		log:       eventlog.NewFailover(eventlog.NewPrimary(st, rm, logger), secondary, logger),
	}, nil
}

func (p *pipeline) Close() {
	p.store.Close()
	p.kv.Close()
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
