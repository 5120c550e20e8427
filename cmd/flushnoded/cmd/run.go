package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/arborfs/flushnode/config"
	"github.com/arborfs/flushnode/flushengine"
	"github.com/arborfs/flushnode/flushpolicy"
	"github.com/arborfs/flushnode/internal/log"
	"github.com/arborfs/flushnode/tlsstats"
)

var runConfigPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the flush engine loop, serving metrics and health endpoints",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := runServe(ctx); err != nil {
			bailf("run: %s", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "path to flushnoded YAML config (required)")
}

func runServe(ctx context.Context) error {
	if runConfigPath == "" {
		return errors.New("--config is required")
	}
	nc, err := config.Load(runConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	strategy, err := flushpolicy.NewPolicy(nc.Policy.ToPolicy())
	if err != nil {
		return fmt.Errorf("failed to construct policy: %w", err)
	}

	registry := tlsstats.NewRegistry()
	handlers := buildDemoNode(registry)

	reg := prometheus.NewRegistry()
	metrics := flushengine.NewMetrics(reg)
	engine := flushengine.NewEngine(strategy, registry, handlers,
		flushengine.WithWorkerLimit(nc.WorkerLimit),
		flushengine.WithMetrics(metrics),
	)

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{
		Addr:              nc.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, syscall.SIGINT, syscall.SIGTERM)

	engineCtx, cancelEngine := context.WithCancel(ctx)
	defer cancelEngine()

	engineErr := make(chan error, 1)
	go func() {
		engineErr <- engine.Run(engineCtx, nc.Interval.Duration())
	}()

	serveErr := make(chan error, 1)
	go func() {
		log.Infow(ctx, "flushnoded listening", "addr", nc.ListenAddr, "interval", nc.Interval.Duration())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-sigint:
		log.Infof(ctx, "received shutdown signal")
	case err := <-serveErr:
		cancelEngine()
		return fmt.Errorf("failed to serve: %w", err)
	case err := <-engineErr:
		return fmt.Errorf("engine loop exited: %w", err)
	}

	cancelEngine()
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
