package fetch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quiverfeeds/insider-data/internal/quiver"
)

// Source provides raw filings. Satisfied by *quiver.Client.
type Source interface {
	LiveInsiders(ctx context.Context) ([]quiver.Filing, error)
	InsidersByDate(ctx context.Context, date time.Time) ([]quiver.Filing, error)
}

// Config holds fetcher configuration.
type Config struct {
	Interval     time.Duration // Poll interval (default: 6h)
	LookbackDays int           // Bulk dates to re-fetch each cycle (default: 3)
	Concurrency  int           // Max concurrent date fetches (default: 4)
	Timeout      time.Duration // Per-cycle timeout (default: 2m)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval:     6 * time.Hour,
		LookbackDays: 3,
		Concurrency:  4,
		Timeout:      2 * time.Minute,
	}
}

// Stats holds fetcher counters.
type Stats struct {
	Cycles   int64
	Filings  int64
	Errors   int64
	LastRun  time.Time
	LastSize int64
}

// Fetcher periodically pulls filings and pushes them to the output channel.
type Fetcher struct {
	cfg    Config
	source Source
	output chan<- quiver.Filing
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	cycles  atomic.Int64
	filings atomic.Int64
	errors  atomic.Int64

	mu       sync.Mutex
	lastRun  time.Time
	lastSize int64
}

// New creates a new Fetcher.
func New(cfg Config, source Source, output chan<- quiver.Filing, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		cfg:    cfg,
		source: source,
		output: output,
		logger: logger,
	}
}

// Start begins the fetch loop.
func (f *Fetcher) Start(ctx context.Context) error {
	f.ctx, f.cancel = context.WithCancel(ctx)

	f.wg.Add(1)
	go f.run()

	f.logger.Info("feed fetcher started",
		"interval", f.cfg.Interval,
		"lookback_days", f.cfg.LookbackDays,
		"concurrency", f.cfg.Concurrency,
	)

	return nil
}

// Stop gracefully shuts down the fetcher.
func (f *Fetcher) Stop(ctx context.Context) error {
	if f.cancel != nil {
		f.cancel()
	}

	done := make(chan struct{})
	go func() {
		f.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		f.logger.Info("feed fetcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns current counters.
func (f *Fetcher) Stats() Stats {
	f.mu.Lock()
	lastRun, lastSize := f.lastRun, f.lastSize
	f.mu.Unlock()

	return Stats{
		Cycles:   f.cycles.Load(),
		Filings:  f.filings.Load(),
		Errors:   f.errors.Load(),
		LastRun:  lastRun,
		LastSize: lastSize,
	}
}

// run is the main fetch loop.
func (f *Fetcher) run() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.cfg.Interval)
	defer ticker.Stop()

	// Fetch immediately on start.
	f.cycle()

	for {
		select {
		case <-f.ctx.Done():
			return
		case <-ticker.C:
			f.cycle()
		}
	}
}

// cycle pulls the live feed plus the lookback window concurrently and
// pushes every filing downstream.
func (f *Fetcher) cycle() {
	start := time.Now()

	ctx, cancel := context.WithTimeout(f.ctx, f.cfg.Timeout)
	defer cancel()

	var pushed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.cfg.Concurrency)

	g.Go(func() error {
		filings, err := f.source.LiveInsiders(gctx)
		if err != nil {
			f.logger.Warn("live fetch failed", "err", err)
			f.errors.Add(1)
			return nil // one bad endpoint must not abort the cycle
		}
		pushed.Add(int64(f.push(gctx, filings)))
		return nil
	})

	// Yesterday backwards; today's filings come from the live endpoint.
	today := time.Now().UTC().Truncate(24 * time.Hour)
	for i := 1; i <= f.cfg.LookbackDays; i++ {
		date := today.AddDate(0, 0, -i)
		g.Go(func() error {
			filings, err := f.source.InsidersByDate(gctx, date)
			if err != nil {
				f.logger.Warn("bulk fetch failed",
					"date", date.Format("2006-01-02"),
					"err", err,
				)
				f.errors.Add(1)
				return nil
			}
			pushed.Add(int64(f.push(gctx, filings)))
			return nil
		})
	}

	g.Wait()

	f.cycles.Add(1)
	f.filings.Add(pushed.Load())

	f.mu.Lock()
	f.lastRun = start
	f.lastSize = pushed.Load()
	f.mu.Unlock()

	f.logger.Info("fetch cycle complete",
		"filings", pushed.Load(),
		"errors", f.errors.Load(),
		"duration", time.Since(start),
	)
}

// push sends filings downstream, giving up when the context ends.
func (f *Fetcher) push(ctx context.Context, filings []quiver.Filing) int {
	sent := 0
	for _, filing := range filings {
		select {
		case f.output <- filing:
			sent++
		case <-ctx.Done():
			return sent
		}
	}
	return sent
}
