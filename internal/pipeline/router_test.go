package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/quiverfeeds/insider-data/internal/quiver"
)

func startRouter(t *testing.T, cfg RouterConfig) (Router, chan quiver.Filing) {
	t.Helper()

	input := make(chan quiver.Filing, 16)
	r := NewRouter(cfg, input, nil)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		r.Stop(ctx)
	})
	return r, input
}

func waitForStats(t *testing.T, r Router, done func(RouterStats) bool) RouterStats {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		stats := r.Stats()
		if done(stats) {
			return stats
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("router stats never converged: %+v", r.Stats())
	return RouterStats{}
}

func TestRouterRoutesToAllBuffers(t *testing.T) {
	cfg := DefaultRouterConfig()
	cfg.ArchiveEnabled = true
	r, input := startRouter(t, cfg)

	input <- quiver.Filing{
		Ticker:          "AAPL",
		Date:            "2022-02-14",
		Name:            "COOK TIMOTHY D",
		TransactionCode: "S",
		Shares:          "5000",
		PricePerShare:   "172.51",
	}

	waitForStats(t, r, func(s RouterStats) bool { return s.RecordsRouted == 1 })

	bufs := r.Buffers()
	point, ok := bufs.Point.TryReceive()
	if !ok || point.Ticker != "AAPL" {
		t.Errorf("point buffer: %+v, %v", point, ok)
	}
	uni, ok := bufs.Universe.TryReceive()
	if !ok || uni.Ticker != "AAPL" {
		t.Errorf("universe buffer: %+v, %v", uni, ok)
	}
	arch, ok := bufs.Archive.TryReceive()
	if !ok || arch.Ticker != "AAPL" {
		t.Errorf("archive buffer: %+v, %v", arch, ok)
	}

	// Destinations must not share quantity pointers.
	if point.Shares == uni.Shares {
		t.Error("point and universe records share a Shares pointer")
	}
}

func TestRouterFansOutMultiTickerFilings(t *testing.T) {
	r, input := startRouter(t, DefaultRouterConfig())

	input <- quiver.Filing{
		Ticker:          "CRDA CRDB",
		Date:            "2022-02-14",
		TransactionCode: "P",
	}

	stats := waitForStats(t, r, func(s RouterStats) bool { return s.RecordsRouted == 2 })
	if stats.FilingsReceived != 1 {
		t.Errorf("FilingsReceived = %d, want 1", stats.FilingsReceived)
	}

	bufs := r.Buffers()
	first, _ := bufs.Point.TryReceive()
	second, _ := bufs.Point.TryReceive()
	if first.Ticker != "CRDA" || second.Ticker != "CRDB" {
		t.Errorf("tickers = %q, %q", first.Ticker, second.Ticker)
	}
}

func TestRouterCountsConvertErrors(t *testing.T) {
	r, input := startRouter(t, DefaultRouterConfig())

	input <- quiver.Filing{Ticker: "AAPL", Date: "2022-02-14", TransactionCode: "??"}
	input <- quiver.Filing{Ticker: `"`, Date: "2022-02-14", TransactionCode: "P"}

	stats := waitForStats(t, r, func(s RouterStats) bool {
		return s.ConvertErrors == 1 && s.EmptyTickers == 1
	})
	if stats.RecordsRouted != 0 {
		t.Errorf("RecordsRouted = %d, want 0", stats.RecordsRouted)
	}
	if got := r.Buffers().Point.Len(); got != 0 {
		t.Errorf("point buffer has %d records, want 0", got)
	}
}

func TestRouterNoArchiveBufferWhenDisabled(t *testing.T) {
	r, _ := startRouter(t, DefaultRouterConfig())

	if r.Buffers().Archive != nil {
		t.Error("archive buffer allocated with archiving disabled")
	}
}
