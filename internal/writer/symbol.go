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
)

// SymbolWriter consumes records from the point buffer and appends them to
// per-symbol data files.
type SymbolWriter struct {
	cfg      WriterConfig
	logger   *slog.Logger
	dataRoot string

	// Input from the record router
	input *pipeline.GrowableBuffer[model.InsiderTrading]

	// Batching
	batch       []model.InsiderTrading
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Records already written this process, keyed by record identity. The
	// feed replays recent filings on every poll cycle, so most arrivals
	// are repeats.
	seen map[string]struct{}

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewSymbolWriter creates a new SymbolWriter writing under dataRoot.
func NewSymbolWriter(
	cfg WriterConfig,
	input *pipeline.GrowableBuffer[model.InsiderTrading],
	dataRoot string,
	logger *slog.Logger,
) *SymbolWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SymbolWriter{
		cfg:      cfg,
		input:    input,
		dataRoot: dataRoot,
		logger:   logger,
		batch:    make([]model.InsiderTrading, 0, cfg.BatchSize),
		seen:     make(map[string]struct{}),
	}
}

// Start begins consuming records and writing symbol files.
func (w *SymbolWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	// Consumer goroutine
	w.wg.Add(1)
	go w.consumeLoop()

	// Flush ticker goroutine
	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("symbol writer started",
		"data_root", w.dataRoot,
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer.
func (w *SymbolWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping symbol writer")

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
		w.logger.Info("symbol writer stopped")
	case <-ctx.Done():
		w.logger.Warn("symbol writer stop timed out")
	}

	// Final flush
	w.flush()

	return nil
}

// Stats returns current metrics.
func (w *SymbolWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop reads from the input buffer and accumulates batches.
func (w *SymbolWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		default:
			// Use TryReceive with context check for responsiveness
			record, ok := w.input.TryReceive()
			if !ok {
				// Buffer empty, wait a bit before trying again
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
func (w *SymbolWriter) flushLoop() {
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

// handleRecord deduplicates a record and adds it to the batch.
func (w *SymbolWriter) handleRecord(record model.InsiderTrading) {
	key := record.Key()

	w.batchMu.Lock()
	if _, dup := w.seen[key]; dup {
		w.metrics.Duplicates++
		w.batchMu.Unlock()
		return
	}
	w.seen[key] = struct{}{}
	w.batch = append(w.batch, record)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush()
	}
}

// flush appends the current batch to the per-symbol files.
func (w *SymbolWriter) flush() {
	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]model.InsiderTrading, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	written, errs := w.appendBatch(batch)

	w.batchMu.Lock()
	w.metrics.Records += int64(written)
	w.metrics.Errors += int64(errs)
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed symbol files",
		"count", written,
		"errors", errs,
		"duration", time.Since(start),
	)
}

// appendBatch groups records by ticker and appends each group to its file.
func (w *SymbolWriter) appendBatch(batch []model.InsiderTrading) (written, errs int) {
	byTicker := make(map[string][]model.InsiderTrading)
	for _, r := range batch {
		byTicker[r.Ticker] = append(byTicker[r.Ticker], r)
	}

	for ticker, records := range byTicker {
		if err := w.appendSymbolFile(ticker, records); err != nil {
			w.logger.Error("symbol file append failed",
				"ticker", ticker,
				"count", len(records),
				"error", err,
			)
			errs += len(records)
			continue
		}
		written += len(records)
	}
	return written, errs
}

// appendSymbolFile appends records to one ticker's data file, creating the
// dataset directory on first write.
func (w *SymbolWriter) appendSymbolFile(ticker string, records []model.InsiderTrading) error {
	path := lean.SymbolDataPath(w.dataRoot, ticker)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	var sb strings.Builder
	for _, r := range records {
		sb.WriteString(r.CSVLine())
		sb.WriteByte('\n')
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		f.Close()
		return fmt.Errorf("append %s: %w", path, err)
	}
	return f.Close()
}
