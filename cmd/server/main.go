// Diversity Filter - Embedding-Based Group Diversity Filtering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/diversityfilter

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	_ "github.com/tomtom215/diversityfilter/docs" // Register swagger docs
	"github.com/tomtom215/diversityfilter/internal/api"
	"github.com/tomtom215/diversityfilter/internal/config"
	"github.com/tomtom215/diversityfilter/internal/diversity"
	"github.com/tomtom215/diversityfilter/internal/logging"
	"github.com/tomtom215/diversityfilter/internal/metrics"
	"github.com/tomtom215/diversityfilter/internal/supervisor"
	"github.com/tomtom215/diversityfilter/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("embeddings_path", cfg.Embeddings.Path).
		Str("default_metric", cfg.Diversity.DefaultMetric).
		Float64("threshold", diversity.DefaultThreshold).
		Bool("cache_enabled", cfg.Embeddings.CacheEnabled).
		Msg("Starting diversity filter with supervisor tree")

	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	if err := run(cfg); err != nil {
		logging.Error().Err(err).Msg("Diversity filter exited with error")
		os.Exit(1)
	}
	logging.Info().Msg("Application stopped gracefully")
}

func run(cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	emb, err := initEmbeddings(ctx, cfg)
	if err != nil {
		return err
	}
	// Closed after the supervisor has stopped every writer.
	defer emb.Close()

	f, err := initFilter(cfg, emb.store)
	if err != nil {
		return err
	}

	// Bridge zerolog to slog for sutureslog
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	refresh := services.NewRefreshService(emb.store, services.RefreshConfig{
		Interval:  cfg.Embeddings.RefreshInterval,
		Timeout:   cfg.Embeddings.RefreshTimeout,
		OnStartup: cfg.Embeddings.RefreshOnStartup,
	}, logging.WithComponent("refresh"))
	tree.AddDataService(refresh)

	if cfg.Embeddings.WatchEnabled && !cfg.Embeddings.IsRemote() {
		tree.AddDataService(services.NewWatchService(services.WatchConfig{
			Path:     cfg.Embeddings.Path,
			Debounce: cfg.Embeddings.WatchDebounce,
		}, refresh, logging.WithComponent("watcher")))
		logging.Info().Str("path", cfg.Embeddings.Path).Msg("Artifact watcher added to supervisor tree")
	}

	handler := api.NewHandler(emb.store, f, api.HandlerConfig{
		RefreshTimeout: cfg.Embeddings.RefreshTimeout,
		RetryAfter:     cfg.Embeddings.RefreshInterval,
		Version:        version,
	})
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(&cfg.Security), cfg.Server.SwaggerEnabled)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       120 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logging.WithComponent("http")))

	logging.Info().Str("addr", server.Addr).Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// Wait for supervisor to finish (either from signal or error)
	select {
	case <-ctx.Done():
		logging.Info().Msg("Received shutdown signal, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// Wait for the error channel to close (supervisor finished)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	// Report any services that failed to stop within timeout
	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}
	return nil
}
