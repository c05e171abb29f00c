package writer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quiverfeeds/insider-data/internal/database"
	"github.com/quiverfeeds/insider-data/internal/model"
	"github.com/quiverfeeds/insider-data/internal/pipeline"
)

// ArchiveWriter consumes records from the archive buffer and batch-inserts
// them into the filings archive. The archive dedupes on record hash, so this
// writer keeps no in-process seen set.
type ArchiveWriter struct {
	cfg    WriterConfig
	logger *slog.Logger

	// Input from the record router
	input *pipeline.GrowableBuffer[model.InsiderTrading]

	// Archive
	store *database.Store
	runID uuid.UUID

	// Batching
	batch       []model.InsiderTrading
	batchMu     sync.Mutex
	flushTicker *time.Ticker

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Metrics
	metrics WriterMetrics
}

// NewArchiveWriter creates a new ArchiveWriter. Each writer instance gets a
// fresh run identifier stamped on every row it inserts.
func NewArchiveWriter(
	cfg WriterConfig,
	input *pipeline.GrowableBuffer[model.InsiderTrading],
	store *database.Store,
	logger *slog.Logger,
) *ArchiveWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveWriter{
		cfg:    cfg,
		input:  input,
		store:  store,
		runID:  uuid.New(),
		logger: logger,
		batch:  make([]model.InsiderTrading, 0, cfg.BatchSize),
	}
}

// RunID returns the identifier stamped on this writer's inserts.
func (w *ArchiveWriter) RunID() uuid.UUID {
	return w.runID
}

// Start begins consuming records and writing to the archive.
func (w *ArchiveWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	// Consumer goroutine
	w.wg.Add(1)
	go w.consumeLoop()

	// Flush ticker goroutine
	w.wg.Add(1)
	go w.flushLoop()

	w.logger.Info("archive writer started",
		"run_id", w.runID,
		"batch_size", w.cfg.BatchSize,
		"flush_interval", w.cfg.FlushInterval,
	)
	return nil
}

// Stop gracefully shuts down the writer. The stop context bounds the final
// flush; the run context is already cancelled by then.
func (w *ArchiveWriter) Stop(ctx context.Context) error {
	w.logger.Info("stopping archive writer")

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
		w.logger.Info("archive writer stopped")
	case <-ctx.Done():
		w.logger.Warn("archive writer stop timed out")
	}

	// Final flush
	w.flush(ctx)

	return nil
}

// Stats returns current metrics.
func (w *ArchiveWriter) Stats() WriterMetrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop reads from the input buffer and accumulates batches.
func (w *ArchiveWriter) consumeLoop() {
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
func (w *ArchiveWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush(w.ctx)
		}
	}
}

// handleRecord adds a record to the batch.
func (w *ArchiveWriter) handleRecord(record model.InsiderTrading) {
	w.batchMu.Lock()
	w.batch = append(w.batch, record)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()

	if shouldFlush {
		w.flush(w.ctx)
	}
}

// flush batch-inserts the current batch into the archive.
func (w *ArchiveWriter) flush(ctx context.Context) {
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

	conflicts, err := w.store.InsertFilings(ctx, batch, w.runID)
	if err != nil {
		w.logger.Error("archive insert failed", "error", err, "count", len(batch))
		w.batchMu.Lock()
		w.metrics.Errors++
		w.batchMu.Unlock()
		return
	}

	w.batchMu.Lock()
	w.metrics.Records += int64(len(batch) - conflicts)
	w.metrics.Duplicates += int64(conflicts)
	w.metrics.Flushes++
	w.batchMu.Unlock()

	w.logger.Debug("flushed archive",
		"count", len(batch),
		"conflicts", conflicts,
		"duration", time.Since(start),
	)
}
