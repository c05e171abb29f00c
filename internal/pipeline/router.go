package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/quiverfeeds/insider-data/internal/model"
	"github.com/quiverfeeds/insider-data/internal/quiver"
)

// Router converts raw filings into records and fans them out to the writers'
// buffers.
type Router interface {
	// Start begins routing filings from the input channel.
	Start(ctx context.Context) error

	// Stop gracefully shuts down the router and closes the output buffers.
	Stop(ctx context.Context) error

	// Buffers returns the output buffers for writers to consume.
	Buffers() RouterBuffers

	// Stats returns current router statistics.
	Stats() RouterStats
}

// RouterBuffers provides access to output buffers for writers. Archive is nil
// when archiving is disabled.
type RouterBuffers struct {
	Point    *GrowableBuffer[model.InsiderTrading]
	Universe *GrowableBuffer[model.InsiderTrading]
	Archive  *GrowableBuffer[model.InsiderTrading]
}

// router is the internal implementation.
type router struct {
	cfg    RouterConfig
	logger *slog.Logger

	// Input from the feed fetcher
	input <-chan quiver.Filing

	pointBuf    *GrowableBuffer[model.InsiderTrading]
	universeBuf *GrowableBuffer[model.InsiderTrading]
	archiveBuf  *GrowableBuffer[model.InsiderTrading]

	// Lifecycle
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Stats
	mu            sync.RWMutex
	received      int64
	routed        int64
	convertErrors int64
	emptyTickers  int64
}

// NewRouter creates a new record router.
func NewRouter(cfg RouterConfig, input <-chan quiver.Filing, logger *slog.Logger) Router {
	if logger == nil {
		logger = slog.Default()
	}

	r := &router{
		cfg:         cfg,
		logger:      logger,
		input:       input,
		pointBuf:    NewGrowableBuffer[model.InsiderTrading](cfg.PointBufferSize),
		universeBuf: NewGrowableBuffer[model.InsiderTrading](cfg.UniverseBufferSize),
	}
	if cfg.ArchiveEnabled {
		r.archiveBuf = NewGrowableBuffer[model.InsiderTrading](cfg.ArchiveBufferSize)
	}
	return r
}

// Start begins routing filings.
func (r *router) Start(ctx context.Context) error {
	r.ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go r.routeLoop()

	r.logger.Info("record router started",
		"point_buffer", r.cfg.PointBufferSize,
		"universe_buffer", r.cfg.UniverseBufferSize,
		"archive_enabled", r.cfg.ArchiveEnabled,
	)

	return nil
}

// Stop gracefully shuts down the router.
func (r *router) Stop(ctx context.Context) error {
	r.logger.Info("stopping record router")

	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("record router stopped")
	case <-ctx.Done():
		r.logger.Warn("record router stop timed out")
	}

	r.pointBuf.Close()
	r.universeBuf.Close()
	if r.archiveBuf != nil {
		r.archiveBuf.Close()
	}

	return nil
}

// Buffers returns output buffers for writers.
func (r *router) Buffers() RouterBuffers {
	return RouterBuffers{
		Point:    r.pointBuf,
		Universe: r.universeBuf,
		Archive:  r.archiveBuf,
	}
}

// Stats returns current statistics.
func (r *router) Stats() RouterStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := RouterStats{
		FilingsReceived: r.received,
		RecordsRouted:   r.routed,
		ConvertErrors:   r.convertErrors,
		EmptyTickers:    r.emptyTickers,
		PointBuffer:     r.pointBuf.Stats(),
		UniverseBuffer:  r.universeBuf.Stats(),
	}
	if r.archiveBuf != nil {
		stats.ArchiveBuffer = r.archiveBuf.Stats()
	}
	return stats
}

// routeLoop is the main routing goroutine.
func (r *router) routeLoop() {
	defer r.wg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case filing, ok := <-r.input:
			if !ok {
				r.logger.Info("input channel closed")
				return
			}
			r.route(filing)
		}
	}
}

// route converts and routes a single filing.
func (r *router) route(filing quiver.Filing) {
	r.mu.Lock()
	r.received++
	r.mu.Unlock()

	records, err := quiver.ToRecords(filing)
	if err != nil {
		r.logger.Warn("failed to convert filing",
			"ticker", filing.Ticker,
			"date", filing.Date,
			"error", err,
		)
		r.mu.Lock()
		r.convertErrors++
		r.mu.Unlock()
		return
	}

	if len(records) == 0 {
		// Unsalvageable defunct ticker; noisy feeds make these routine.
		r.logger.Debug("filing yielded no tickers", "raw_ticker", filing.Ticker)
		r.mu.Lock()
		r.emptyTickers++
		r.mu.Unlock()
		return
	}

	for _, record := range records {
		// Each destination gets its own clone so downstream consumers can
		// mutate independently.
		r.pointBuf.Send(record.Clone())
		r.universeBuf.Send(record.Clone())
		if r.archiveBuf != nil {
			r.archiveBuf.Send(record.Clone())
		}

		r.mu.Lock()
		r.routed++
		r.mu.Unlock()
	}
}
