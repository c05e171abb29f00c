package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/quiverfeeds/insider-data/internal/config"
	"github.com/quiverfeeds/insider-data/internal/database"
	"github.com/quiverfeeds/insider-data/internal/fetch"
	"github.com/quiverfeeds/insider-data/internal/pipeline"
	"github.com/quiverfeeds/insider-data/internal/quiver"
	"github.com/quiverfeeds/insider-data/internal/symbols"
	"github.com/quiverfeeds/insider-data/internal/version"
	"github.com/quiverfeeds/insider-data/internal/writer"
)

func main() {
	configPath := flag.String("config", "configs/processor.local.yaml", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Set up structured logging
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting processor",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"instance_id", cfg.Instance.ID,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to the archive when enabled
	var store *database.Store
	if cfg.Archive.Enabled {
		logger.Info("connecting to archive",
			"host", cfg.Archive.Postgres.Host,
			"port", cfg.Archive.Postgres.Port,
			"database", cfg.Archive.Postgres.Name,
		)

		pool, err := database.Connect(ctx, cfg.Archive.Postgres)
		if err != nil {
			logger.Error("failed to connect to archive", "error", err)
			os.Exit(1)
		}
		store = database.NewStore(pool, logger)
		defer store.Close()

		if err := store.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure archive schema", "error", err)
			os.Exit(1)
		}
		logger.Info("archive connected")
	}

	// Load the symbol map
	registry := symbols.NewRegistry(cfg.Data.SymbolMap, logger)
	if err := registry.Start(ctx); err != nil {
		logger.Error("failed to start symbol registry", "error", err)
		os.Exit(1)
	}
	defer func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer stopCancel()
		registry.Stop(stopCtx)
	}()
	logger.Info("symbol registry started", "symbols", registry.Len())

	// Create feed client
	client := quiver.NewClient(
		cfg.Quiver.BaseURL,
		cfg.Quiver.APIToken,
		quiver.WithLogger(logger),
		quiver.WithTimeout(cfg.Quiver.Timeout),
		quiver.WithRetries(cfg.Quiver.MaxRetries, cfg.Quiver.RetryBackoff),
		quiver.WithPageSize(cfg.Quiver.PageSize),
	)

	// Create record router
	input := make(chan quiver.Filing, cfg.Writers.BufferSize)
	routerCfg := pipeline.RouterConfig{
		PointBufferSize:    cfg.Writers.BufferSize,
		UniverseBufferSize: cfg.Writers.BufferSize,
		ArchiveBufferSize:  cfg.Writers.BufferSize,
		ArchiveEnabled:     cfg.Archive.Enabled,
	}
	router := pipeline.NewRouter(routerCfg, input, logger)
	if err := router.Start(ctx); err != nil {
		logger.Error("failed to start router", "error", err)
		os.Exit(1)
	}
	defer stopComponent("router", router.Stop, logger)

	// Start writers
	writerCfg := writer.WriterConfig{
		BatchSize:     cfg.Writers.BatchSize,
		FlushInterval: cfg.Writers.FlushInterval,
	}
	buffers := router.Buffers()

	symbolWriter := writer.NewSymbolWriter(writerCfg, buffers.Point, cfg.Data.Root, logger)
	if err := symbolWriter.Start(ctx); err != nil {
		logger.Error("failed to start symbol writer", "error", err)
		os.Exit(1)
	}
	defer stopComponent("symbol writer", symbolWriter.Stop, logger)

	universeWriter := writer.NewUniverseWriter(writerCfg, buffers.Universe, registry, cfg.Data.Root, logger)
	if err := universeWriter.Start(ctx); err != nil {
		logger.Error("failed to start universe writer", "error", err)
		os.Exit(1)
	}
	defer stopComponent("universe writer", universeWriter.Stop, logger)

	var archiveWriter *writer.ArchiveWriter
	if store != nil {
		archiveWriter = writer.NewArchiveWriter(writerCfg, buffers.Archive, store, logger)
		if err := archiveWriter.Start(ctx); err != nil {
			logger.Error("failed to start archive writer", "error", err)
			os.Exit(1)
		}
		defer stopComponent("archive writer", archiveWriter.Stop, logger)
	}

	// Start feed fetcher
	fetchCfg := fetch.Config{
		Interval:     cfg.Fetcher.Interval,
		LookbackDays: cfg.Fetcher.LookbackDays,
		Concurrency:  cfg.Fetcher.Concurrency,
		Timeout:      cfg.Fetcher.Timeout,
	}
	fetcher := fetch.New(fetchCfg, client, input, logger)
	if err := fetcher.Start(ctx); err != nil {
		logger.Error("failed to start fetcher", "error", err)
		os.Exit(1)
	}
	defer stopComponent("fetcher", fetcher.Stop, logger)

	// Start health server
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(store, registry, router, fetcher, logger),
	}

	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	logger.Info("processor running",
		"instance_id", cfg.Instance.ID,
		"data_root", cfg.Data.Root,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Health.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	healthServer.Shutdown(shutdownCtx)

	logger.Info("processor stopped")
}

// newLogger builds the process logger, tee-ing to a rotating file when one
// is configured.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		out = io.MultiWriter(os.Stdout, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}

// stopComponent runs a component's Stop with a bounded context.
func stopComponent(name string, stop func(context.Context) error, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := stop(ctx); err != nil {
		logger.Warn("component stop failed", "component", name, "error", err)
	}
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(
	store *database.Store,
	registry *symbols.Registry,
	router pipeline.Router,
	fetcher *fetch.Fetcher,
	logger *slog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]interface{}),
		}

		// Check archive
		if store != nil {
			if err := store.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["archive"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["archive"] = "connected"
			}
		} else {
			health.Components["archive"] = "disabled"
		}

		// Check symbol registry
		health.Components["symbol_registry"] = map[string]interface{}{
			"symbols":   registry.Len(),
			"loaded_at": registry.LoadedAt(),
		}
		if registry.Len() == 0 {
			health.Status = "degraded"
		}

		// Router and fetcher counters
		health.Components["router"] = router.Stats()
		health.Components["fetcher"] = fetcher.Stats()

		// Set response
		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
