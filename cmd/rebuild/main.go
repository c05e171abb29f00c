package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/quiverfeeds/insider-data/internal/config"
	"github.com/quiverfeeds/insider-data/internal/database"
	"github.com/quiverfeeds/insider-data/internal/lean"
	"github.com/quiverfeeds/insider-data/internal/model"
	"github.com/quiverfeeds/insider-data/internal/symbols"
	"github.com/quiverfeeds/insider-data/internal/version"
)

// rebuild regenerates universe files from the filing archive. Unlike the
// processor's append-only writers, rebuild replaces each file wholesale, so
// it also repairs files corrupted by partial writes.
func main() {
	configPath := flag.String("config", "configs/processor.local.yaml", "path to config file")
	startStr := flag.String("start", "", "first observation date to rebuild (yyyyMMdd)")
	endStr := flag.String("end", "", "last observation date to rebuild (yyyyMMdd)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting universe rebuild",
		"version", version.Version,
		"config", *configPath,
	)

	start, err := time.ParseInLocation(model.DateFormat, *startStr, time.UTC)
	if err != nil {
		logger.Error("invalid -start date", "value", *startStr, "error", err)
		os.Exit(1)
	}
	end, err := time.ParseInLocation(model.DateFormat, *endStr, time.UTC)
	if err != nil {
		logger.Error("invalid -end date", "value", *endStr, "error", err)
		os.Exit(1)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if !cfg.Archive.Enabled {
		logger.Error("rebuild requires the archive (archive.enabled: true)")
		os.Exit(1)
	}

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg.Archive.Postgres)
	if err != nil {
		logger.Error("failed to connect to archive", "error", err)
		os.Exit(1)
	}
	store := database.NewStore(pool, logger)
	defer store.Close()

	registry := symbols.NewRegistry(cfg.Data.SymbolMap, logger)
	if err := registry.Load(); err != nil {
		logger.Error("failed to load symbol map", "error", err)
		os.Exit(1)
	}
	logger.Info("symbol map loaded", "symbols", registry.Len())

	dates, err := store.ObservationDates(ctx, start, end)
	if err != nil {
		logger.Error("failed to list observation dates", "error", err)
		os.Exit(1)
	}
	logger.Info("rebuilding universe files", "dates", len(dates))

	var rebuilt, skipped int
	for _, date := range dates {
		n, s, err := rebuildDate(ctx, store, registry, cfg.Data.Root, date)
		if err != nil {
			logger.Error("rebuild failed",
				"date", date.Format(model.DateFormat),
				"error", err,
			)
			os.Exit(1)
		}
		logger.Info("rebuilt universe file",
			"date", date.Format(model.DateFormat),
			"entries", n,
			"skipped", s,
		)
		rebuilt++
		skipped += s
	}

	logger.Info("rebuild complete", "files", rebuilt, "skipped_records", skipped)
}

// rebuildDate regenerates one date's universe file from the archive.
func rebuildDate(
	ctx context.Context,
	store *database.Store,
	registry *symbols.Registry,
	dataRoot string,
	date time.Time,
) (entries, skipped int, err error) {
	records, err := store.FilingsByObservation(ctx, date)
	if err != nil {
		return 0, 0, err
	}

	seen := make(map[string]struct{})
	var lines []string
	for _, r := range records {
		sid, ok := registry.Resolve(r.Ticker)
		if !ok {
			skipped++
			continue
		}
		entry := model.InsiderTradingUniverse{
			InsiderTrading: r,
			SecurityID:     sid,
		}
		line := entry.CSVLine()
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, line)
	}

	path := lean.UniverseDataPath(dataRoot, date)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, 0, fmt.Errorf("create universe dir: %w", err)
	}

	contents := ""
	if len(lines) > 0 {
		contents = strings.Join(lines, "\n") + "\n"
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return 0, 0, fmt.Errorf("write %s: %w", path, err)
	}
	return len(lines), skipped, nil
}
