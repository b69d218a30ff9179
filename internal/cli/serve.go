package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rcliao/callguard/internal/model"
	"github.com/rcliao/callguard/internal/recorder"
	"github.com/rcliao/callguard/internal/screen"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Screen a stream of calls from stdin",
		Long: "Read newline-delimited JSON call events ({\"id\",\"name\",\"number\"}) from stdin, " +
			"screen them concurrently and write one JSON response line per call to stdout.",
		Run: runServe,
	}

	cmd.Flags().IntP("concurrency", "c", 8, "Max calls screened at once")
	cmd.Flags().String("metrics-addr", "", "Expose Prometheus /metrics on this address (default: $CALLGUARD_METRICS_ADDR)")

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")
	if metricsAddr == "" {
		metricsAddr = cfg.MetricsAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := openPipeline(ctx)
	if err != nil {
		exitErr("open log", err)
	}
	defer p.Close()

	if metricsAddr != "" {
		srv := startMetrics(metricsAddr)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	// Log writes use a context that outlives the signal so the queue can drain.
	rec := recorder.New(p.log, recorder.Options{QueueSize: cfg.QueueSize, Workers: cfg.Workers}, logger)
	rec.Start(context.WithoutCancel(ctx))
	defer rec.Stop()

	s := screen.NewScreener(openSettings(), newJSONResponder(cmd.OutOrStdout()), rec, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	screened := 0
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev model.CallEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			logger.Warn("skipping malformed call event", slog.String("error", err.Error()))
			continue
		}
		screened++
		g.Go(func() error {
			if _, err := s.Screen(gctx, ev); err != nil {
				logger.Error("screen call", slog.String("call_id", ev.ID), slog.String("error", err.Error()))
			}
			return nil
		})
	}
	g.Wait()

	if err := scanner.Err(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("read call events", slog.String("error", err.Error()))
	}
	logger.Info("serve finished", slog.Int("screened", screened))
}

func startMetrics(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", slog.String("error", err.Error()))
		}
	}()
	logger.Info("metrics listening", slog.String("addr", addr))
	return srv
}
