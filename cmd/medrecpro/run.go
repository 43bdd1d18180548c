package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chriserikbarnes/medrecpro/internal/config"
	"github.com/chriserikbarnes/medrecpro/internal/events"
	"github.com/chriserikbarnes/medrecpro/internal/ingest"
	"github.com/chriserikbarnes/medrecpro/internal/metrics"
	"github.com/chriserikbarnes/medrecpro/internal/progress"
	"github.com/chriserikbarnes/medrecpro/internal/store"
)

// runIngest ingests each path in order. A failed file is logged and counted
// but never stops the remaining files; the run fails if any file failed.
func runIngest(ctx context.Context, cfg *config.Config, paths []string, resolveAfter bool) error {
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, stopMetrics := setupMetrics(cfg)
	defer stopMetrics()

	publisher, err := setupPublisher(cfg)
	if err != nil {
		return err
	}
	defer publisher.Close()

	in := ingest.NewIngestor(s, ingest.Options{
		Recorder:    rec,
		Progress:    progress.Logged{},
		Publisher:   publisher,
		AutoResolve: cfg.Ingest.AutoResolve,
	})
	slog.Info("Starting ingestion run", "run_id", in.RunID(), "files", len(paths))

	failed := 0
	for _, path := range paths {
		rep, err := in.IngestFile(ctx, path)
		if err != nil {
			slog.Error("Document ingestion aborted", "file", path, "error", err)
			failed++
			continue
		}
		slog.Info("Document ingested",
			"file", path,
			"created", rep.Created,
			"warnings", len(rep.Warnings),
			"errors", len(rep.Errors))
		if !rep.Success() {
			failed++
		}
	}

	if resolveAfter {
		closed, _, err := in.Resolve(ctx)
		if err != nil {
			return err
		}
		slog.Info("Pending resolution pass complete", "closed", closed)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(paths))
	}
	return nil
}

// runResolve runs one pending-reference resolution pass.
func runResolve(ctx context.Context, cfg *config.Config) error {
	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer s.Close()

	in := ingest.NewIngestor(s, ingest.Options{Progress: progress.Logged{}})
	closed, rep, err := in.Resolve(ctx)
	if err != nil {
		return err
	}
	slog.Info("Pending resolution pass complete",
		"closed", closed,
		"created", rep.Created,
		"warnings", len(rep.Warnings))
	return nil
}

// setupMetrics starts the Prometheus exposition endpoint when enabled. The
// returned stop function shuts the endpoint down.
func setupMetrics(cfg *config.Config) (metrics.Recorder, func()) {
	if !cfg.Metrics.Enabled {
		return metrics.NoopRecorder{}, func() {}
	}

	registry := prom.NewRegistry()
	rec := metrics.NewPrometheusRecorder(registry)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
	slog.Info("Metrics endpoint listening", "addr", cfg.Metrics.Addr)

	return rec, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}

func setupPublisher(cfg *config.Config) (events.Publisher, error) {
	if !cfg.Events.Enabled {
		return events.NoopPublisher{}, nil
	}
	return events.NewNATSPublisher(cfg.Events)
}
