package quiver

import (
	"testing"
	"time"

	"github.com/quiverfeeds/insider-data/internal/model"
)

func TestToRecords(t *testing.T) {
	f := Filing{
		Ticker:               "AAPL",
		Date:                 "2022-02-14",
		Name:                 "COOK TIMOTHY D",
		TransactionCode:      "S",
		Shares:               "5000",
		PricePerShare:        "172.51",
		SharesOwnedFollowing: "3280000",
	}

	records, err := ToRecords(f)
	if err != nil {
		t.Fatalf("ToRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	r := records[0]
	if r.Ticker != "AAPL" {
		t.Errorf("Ticker = %q, want AAPL", r.Ticker)
	}
	if want := time.Date(2022, 2, 14, 0, 0, 0, 0, time.UTC); !r.FilingDate.Equal(want) {
		t.Errorf("FilingDate = %v, want %v", r.FilingDate, want)
	}
	// Visible one day after filing.
	if want := time.Date(2022, 2, 15, 0, 0, 0, 0, time.UTC); !r.Time.Equal(want) {
		t.Errorf("Time = %v, want %v", r.Time, want)
	}
	if r.Direction != model.Sell {
		t.Errorf("Direction = %v, want sell", r.Direction)
	}
	if r.Shares == nil || r.Shares.String() != "5000" {
		t.Errorf("Shares = %v, want 5000", r.Shares)
	}
}

func TestToRecordsFansOutShareClasses(t *testing.T) {
	f := Filing{
		Ticker:          "CRDA CRDB",
		Date:            "2022-02-14",
		Name:            "SOME INSIDER",
		TransactionCode: "P",
		Shares:          "100",
	}

	records, err := ToRecords(f)
	if err != nil {
		t.Fatalf("ToRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Ticker != "CRDA" || records[1].Ticker != "CRDB" {
		t.Errorf("tickers = %q, %q; want CRDA, CRDB", records[0].Ticker, records[1].Ticker)
	}

	// Fanned-out records must not share quantity pointers.
	if records[0].Shares == records[1].Shares {
		t.Error("fanned-out records share a Shares pointer")
	}
}

func TestToRecordsUnresolvableTicker(t *testing.T) {
	f := Filing{
		Ticker:          `"`,
		Date:            "2022-02-14",
		TransactionCode: "P",
	}

	records, err := ToRecords(f)
	if err != nil {
		t.Fatalf("ToRecords: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("got %d records for unrecognizable ticker, want 0", len(records))
	}
}

func TestToRecordsNullNumerics(t *testing.T) {
	f := Filing{
		Ticker:          "MSFT",
		Date:            "2021-06-01",
		Name:            "NADELLA SATYA",
		TransactionCode: "P",
		// Shares/PricePerShare/SharesOwnedFollowing were JSON null.
	}

	records, err := ToRecords(f)
	if err != nil {
		t.Fatalf("ToRecords: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	r := records[0]
	if r.Shares != nil || r.PricePerShare != nil || r.SharesOwnedFollowing != nil {
		t.Errorf("null numerics parsed as values: %+v", r)
	}
}

func TestToRecordsErrors(t *testing.T) {
	tests := []struct {
		name string
		f    Filing
	}{
		{"bad date", Filing{Ticker: "AAPL", Date: "Feb 14", TransactionCode: "P"}},
		{"unknown code", Filing{Ticker: "AAPL", Date: "2022-02-14", TransactionCode: "Q"}},
		{"bad shares", Filing{Ticker: "AAPL", Date: "2022-02-14", TransactionCode: "P", Shares: "lots"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ToRecords(tt.f); err == nil {
				t.Error("ToRecords = nil error, want error")
			}
		})
	}
}

func TestParseFeedDateCompactForm(t *testing.T) {
	got, err := parseFeedDate("20220214")
	if err != nil {
		t.Fatalf("parseFeedDate: %v", err)
	}
	if want := time.Date(2022, 2, 14, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("parseFeedDate = %v, want %v", got, want)
	}
}
