package symbols

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSymbolMap(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "security-database.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write symbol map: %v", err)
	}
	return path
}

func TestRegistryLoadAndResolve(t *testing.T) {
	path := writeSymbolMap(t, "ticker,security_id\nAAPL,AAPL R735QTJ8XC9X\nmsft,MSFT R735QTJ8XC9X\n\n# comment\nGOOG,GOOCV VP83T1ZUHROL\n")

	r := NewRegistry(path, nil)
	if err := r.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if got := r.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}

	sid, ok := r.Resolve("AAPL")
	if !ok || sid != "AAPL R735QTJ8XC9X" {
		t.Errorf("Resolve(AAPL) = %q, %v", sid, ok)
	}

	// Tickers resolve case-insensitively; the map file had lowercase msft.
	sid, ok = r.Resolve("msft")
	if !ok || sid != "MSFT R735QTJ8XC9X" {
		t.Errorf("Resolve(msft) = %q, %v", sid, ok)
	}

	if _, ok := r.Resolve("ZZZZ"); ok {
		t.Error("Resolve(ZZZZ) resolved, want miss")
	}
}

func TestRegistryLoadReplacesMapping(t *testing.T) {
	path := writeSymbolMap(t, "AAPL,AAPL R735QTJ8XC9X\n")

	r := NewRegistry(path, nil)
	if err := r.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if err := os.WriteFile(path, []byte("TSLA,TSLA UNU3P8Y3WFAD\n"), 0o644); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	if err := r.Load(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if _, ok := r.Resolve("AAPL"); ok {
		t.Error("AAPL survived a full reload")
	}
	if _, ok := r.Resolve("TSLA"); !ok {
		t.Error("TSLA missing after reload")
	}
}

func TestRegistryLoadErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		r := NewRegistry(filepath.Join(t.TempDir(), "nope.csv"), nil)
		if err := r.Load(); err == nil {
			t.Error("Load() = nil error for missing file")
		}
	})

	t.Run("malformed line", func(t *testing.T) {
		path := writeSymbolMap(t, "AAPL,AAPL R735QTJ8XC9X\njust-a-ticker\n")
		r := NewRegistry(path, nil)
		if err := r.Load(); err == nil {
			t.Error("Load() = nil error for malformed line")
		}
	})
}
