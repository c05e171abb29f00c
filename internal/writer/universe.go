package writer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/quiverfeeds/insider-data/internal/lean"
	"github.com/quiverfeeds/insider-data/internal/model"
	"github.com/quiverfeeds/insider-data/internal/pipeline"
	"github.com/quiverfeeds/insider-data/internal/symbols"
)

// UniverseWriter consumes records from the universe buffer, resolves their
// security identifiers, and appends them to per-date universe files.
type UniverseWriter struct {
	cfg      WriterConfig
	logger   *slog.Logger
	dataRoot string

	// Input from the record router
	input *pipeline.GrowableBuffer[model.InsiderTrading]

	// Security identifier lookups
	registry *symbols.Registry

	// Batching
	batch       []model.InsiderTradingUniverse
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Universe lines already written this process.
	seen map[string]struct{}

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewUniverseWriter creates a new UniverseWriter writing under dataRoot.
func NewUniverseWriter(
	cfg WriterConfig,
	input *pipeline.GrowableBuffer[model.InsiderTrading],
	registry *symbols.Registry,
	dataRoot string,
	logger *slog.Logger,
) *UniverseWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &UniverseWriter{
		cfg:      cfg,
		input:    input,
		registry: registry,
		dataRoot: dataRoot,
		logger:   logger,
		batch:    make([]model.InsiderTradingUniverse, 0, cfg.BatchSize),
		seen:     make(map[string]struct{}),
	}
}

// Start begins consuming records and writing universe files.
func (w *UniverseWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	// Consumer goroutine
	w.wg.Add(1)
	go w.consumeLoop()

	// Flush ticker goroutine
	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("universe writer started",
		"data_root", w.dataRoot,
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer.
func (w *UniverseWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping universe writer")

	if w.cancel != nil {
		w.cancel()
	}

	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	// Wait for goroutines
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info("universe writer stopped")
	case <-ctx.Done():
		w.logger.Warn("universe writer stop timed out")
	}

	// Final flush
	w.flush()

	return nil
}

// Stats returns current metrics.
func (w *UniverseWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop reads from the input buffer and accumulates batches.
func (w *UniverseWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
			record, ok := w.input.TryReceive()
			if !ok {
				select {
				case <-w.ctx.Done():
					return
				case <-time.After(10 * time.Millisecond):
					continue
				}
			}

			w.handleRecord(record)
		}
	}
}

// flushLoop periodically flushes the batch.
func (w *UniverseWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush()
		}
	}
}

// handleRecord resolves the record's security identifier and batches it. A
// ticker absent from the symbol map is skipped; the engine cannot subscribe
// to a security it has no identifier for.
func (w *UniverseWriter) handleRecord(record model.InsiderTrading) {
	sid, ok := w.registry.Resolve(record.Ticker)
	if !ok {
		w.logger.Debug("no security id for ticker", "ticker", record.Ticker)
		w.batchMu.Lock()
		w.metrics.Skipped++
		w.batchMu.Unlock()
		return
	}

	entry := model.InsiderTradingUniverse{
		InsiderTrading: record,
		SecurityID:     sid,
	}

	key := entry.CSVLine() + "," + entry.Time.Format(model.DateFormat)

	w.batchMu.Lock()
	if _, dup := w.seen[key]; dup {
		w.metrics.Duplicates++
		w.batchMu.Unlock()
		return
	}
	w.seen[key] = struct{}{}
	w.batch = append(w.batch, entry)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush()
	}
}

// flush appends the current batch to the per-date universe files.
func (w *UniverseWriter) flush() {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]model.InsiderTradingUniverse, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	written, errs := w.appendBatch(batch)

	w.batchMu.Lock()
	w.metrics.Records += int64(written)
	w.metrics.Errors += int64(errs)
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed universe files",
		"count", written,
		"errors", errs,
		"duration", time.Since(start),
	)
}

// appendBatch groups entries by observation date and appends each group to
// its universe file.
func (w *UniverseWriter) appendBatch(batch []model.InsiderTradingUniverse) (written, errs int) {
	byDate := make(map[time.Time][]model.InsiderTradingUniverse)
	for _, e := range batch {
		day := e.Time.Truncate(24 * time.Hour)
		byDate[day] = append(byDate[day], e)
	}

	for date, entries := range byDate {
		if err := w.appendUniverseFile(date, entries); err != nil {
			w.logger.Error("universe file append failed",
				"date", date.Format(model.DateFormat),
				"count", len(entries),
				"error", err,
			)
			errs += len(entries)
			continue
		}
		written += len(entries)
	}
	return written, errs
}

// appendUniverseFile appends entries to one date's universe file.
func (w *UniverseWriter) appendUniverseFile(date time.Time, entries []model.InsiderTradingUniverse) error {
	path := lean.UniverseDataPath(w.dataRoot, date)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create universe dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.CSVLine())
		sb.WriteByte('\n')
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", path, err)
	}
	return f.Close()
}
