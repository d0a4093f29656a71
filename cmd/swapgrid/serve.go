package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/vango-dev/swapgrid/internal/demo"
)

func serveCmd(configDir *string) *cobra.Command {
	var (
		addr     string
		dbPath   string
		items    int
		capacity int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the demo backend",
		Long: `Run the demo backend a swapgrid page talks to.

Routes:
  GET  /items?page=N&size=M   item fragments
  POST /api/toggle            include/exclude toggles
  POST /api/beacons           telemetry collector
  GET  /ws/beacons            live beacon tail (WebSocket)
  GET  /metrics               Prometheus metrics

Examples:
  swapgrid serve
  swapgrid serve --addr=:9090 --db=lists.sqlite`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configDir)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}
			return runServe(cmd.Context(), addr, dbPath, items, capacity)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default from swapgrid.json)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database for list membership (default in memory)")
	cmd.Flags().IntVar(&items, "items", 1000, "Number of items served")
	cmd.Flags().IntVar(&capacity, "include-capacity", 0, "Maximum include list size (0 = unbounded)")

	return cmd
}

func runServe(ctx context.Context, addr, dbPath string, items, capacity int) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var lists demo.Lists = demo.NewMemoryLists()
	if dbPath != "" {
		l, err := demo.OpenSQLiteLists(ctx, dbPath)
		if err != nil {
			return err
		}
		lists = l
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	backend := demo.NewServer(demo.Options{
		TotalItems:      items,
		IncludeCapacity: capacity,
		Lists:           lists,
		Registry:        registry,
	})
	defer backend.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           backend.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	success("Serving on %s", addr)
	slog.Info("demo backend started", "addr", addr, "items", items, "db", dbPath)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	os.Stdout.WriteString("\n")
	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
