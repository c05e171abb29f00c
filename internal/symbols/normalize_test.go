package symbols

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		// Clean tickers pass through, case aside.
		{"AAPL", []string{"AAPL"}},
		{"aapl", []string{"AAPL"}},

		// Share-class punctuation is stripped.
		{"AAPL+", []string{"AAPL"}},
		{"AAPL-", []string{"AAPL"}},
		{"AAPL=", []string{"AAPL"}},
		{"A_", []string{"A"}},

		// Pipe-delimited class suffixes keep only the base ticker.
		{"GOOG|C", []string{"GOOG"}},

		// Feed-id prefixes and stray quotes.
		{`abc123:msft"`, []string{"MSFT"}},

		// Several share classes reported in one field.
		{"CRDA CRDB", []string{"CRDA", "CRDB"}},
		{"crda  crdb|b", []string{"CRDA", "CRDB"}},

		// Nothing salvageable.
		{"", nil},
		{"   ", nil},
		{`"`, nil},
		{"_", nil},
		{"+|=", nil},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := Normalize(tt.raw)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeIsDeterministic(t *testing.T) {
	raw := "CRDA crdb|B  goog|c"
	first := Normalize(raw)
	for i := 0; i < 10; i++ {
		if got := Normalize(raw); !reflect.DeepEqual(got, first) {
			t.Fatalf("Normalize(%q) not deterministic: %v vs %v", raw, got, first)
		}
	}
}
