package symbols

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Registry resolves canonical tickers to the host engine's security
// identifiers. The engine owns symbol assignment; the registry only consumes
// a CSV export of its database (ticker,security_id per line, optional
// header). It watches the export for changes so a long-running processor
// picks up newly listed symbols without a restart.
type Registry struct {
	path   string
	logger *slog.Logger

	mu       sync.RWMutex
	sids     map[string]string
	loadedAt time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRegistry creates a registry backed by the symbol-map file at path.
func NewRegistry(path string, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		path:   path,
		logger: logger,
		sids:   make(map[string]string),
	}
}

// Start loads the symbol map and begins watching it for changes.
func (r *Registry) Start(ctx context.Context) error {
	if err := r.Load(); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors and atomic writers replace the file,
	// which would invalidate a watch on the file itself.
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(r.path), err)
	}

	ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer watcher.Close()
		r.watchLoop(ctx, watcher)
	}()

	r.logger.Info("symbol registry started",
		"path", r.path,
		"symbols", r.Len(),
	)
	return nil
}

// Stop shuts down the watcher.
func (r *Registry) Stop(ctx context.Context) error {
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
		r.logger.Info("symbol registry stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Load reads the symbol map from disk, replacing the current mapping.
func (r *Registry) Load() error {
	f, err := os.Open(r.path)
	if err != nil {
		return fmt.Errorf("open symbol map: %w", err)
	}
	defer f.Close()

	sids := make(map[string]string)
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		ticker, sid, ok := strings.Cut(line, ",")
		if !ok {
			return fmt.Errorf("symbol map %s line %d: expected ticker,security_id", r.path, lineNo)
		}
		if lineNo == 1 && strings.EqualFold(ticker, "ticker") {
			continue // header row
		}
		sids[strings.ToUpper(strings.TrimSpace(ticker))] = strings.TrimSpace(sid)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read symbol map: %w", err)
	}

	r.mu.Lock()
	r.sids = sids
	r.loadedAt = time.Now()
	r.mu.Unlock()

	return nil
}

// Resolve returns the security identifier for a canonical ticker.
func (r *Registry) Resolve(ticker string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sid, ok := r.sids[strings.ToUpper(ticker)]
	return sid, ok
}

// Len returns the number of mapped tickers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sids)
}

// LoadedAt returns when the mapping was last read from disk.
func (r *Registry) LoadedAt() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loadedAt
}

// watchLoop reloads the mapping when the export file is rewritten.
func (r *Registry) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(r.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if err := r.Load(); err != nil {
				// Keep serving the previous mapping.
				r.logger.Warn("symbol map reload failed", "error", err)
				continue
			}
			r.logger.Info("symbol map reloaded", "symbols", r.Len())
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("symbol map watcher error", "error", err)
		}
	}
}
