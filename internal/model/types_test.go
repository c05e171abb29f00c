package model

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(t *testing.T, s string) *decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return &d
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleRecord(t *testing.T) InsiderTrading {
	return InsiderTrading{
		Ticker:               "AAPL",
		Time:                 date(2022, 2, 15),
		FilingDate:           date(2022, 2, 14),
		Name:                 "COOK TIMOTHY D",
		Direction:            Sell,
		Shares:               dec(t, "5000"),
		PricePerShare:        dec(t, "172.51"),
		SharesOwnedFollowing: dec(t, "3280000"),
	}
}

func TestDirectionString(t *testing.T) {
	tests := []struct {
		d    Direction
		want string
	}{
		{Buy, "buy"},
		{Sell, "sell"},
		{Hold, "hold"},
		{Direction(9), "direction(9)"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("Direction(%d).String() = %q, want %q", int(tt.d), got, tt.want)
		}
	}
}

func TestParseDirection(t *testing.T) {
	for code, want := range map[string]Direction{"0": Buy, "1": Sell, "2": Hold} {
		got, err := ParseDirection(code)
		if err != nil {
			t.Errorf("ParseDirection(%q) error: %v", code, err)
		}
		if got != want {
			t.Errorf("ParseDirection(%q) = %v, want %v", code, got, want)
		}
	}

	if _, err := ParseDirection("3"); err == nil {
		t.Error("ParseDirection(\"3\") = nil error, want error")
	}
	if _, err := ParseDirection(""); err == nil {
		t.Error("ParseDirection(\"\") = nil error, want error")
	}
}

func TestDirectionFromFormCode(t *testing.T) {
	for code, want := range map[string]Direction{"P": Buy, "S": Sell, "H": Hold} {
		got, err := DirectionFromFormCode(code)
		if err != nil {
			t.Errorf("DirectionFromFormCode(%q) error: %v", code, err)
		}
		if got != want {
			t.Errorf("DirectionFromFormCode(%q) = %v, want %v", code, got, want)
		}
	}

	if _, err := DirectionFromFormCode("X"); err == nil {
		t.Error("DirectionFromFormCode(\"X\") = nil error, want error")
	}
}

func TestObservationTime(t *testing.T) {
	got := ObservationTime(date(2022, 2, 14))
	if want := date(2022, 2, 15); !got.Equal(want) {
		t.Errorf("ObservationTime = %v, want %v", got, want)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := sampleRecord(t)
	clone := orig.Clone()

	if !reflect.DeepEqual(orig, clone) {
		t.Fatalf("clone differs from original:\n%+v\n%+v", orig, clone)
	}
	if orig.Shares == clone.Shares {
		t.Error("clone shares the Shares pointer with the original")
	}

	// Mutating the clone must not leak into the original.
	*clone.Shares = clone.Shares.Add(decimal.NewFromInt(1))
	if orig.Shares.Equal(*clone.Shares) {
		t.Error("mutating clone.Shares changed the original")
	}
}

func TestUniverseClone(t *testing.T) {
	orig := InsiderTradingUniverse{
		InsiderTrading: sampleRecord(t),
		SecurityID:     "AAPL R735QTJ8XC9X",
	}
	clone := orig.Clone()

	if !reflect.DeepEqual(orig, clone) {
		t.Fatalf("clone differs from original:\n%+v\n%+v", orig, clone)
	}
	if orig.PricePerShare == clone.PricePerShare {
		t.Error("clone shares the PricePerShare pointer with the original")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	orig := sampleRecord(t)

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back InsiderTrading
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	assertRecordsEqual(t, orig, back)
}

func TestJSONRoundTripAbsentFields(t *testing.T) {
	orig := InsiderTrading{
		Ticker:     "MSFT",
		Time:       date(2021, 6, 2),
		FilingDate: date(2021, 6, 1),
		Name:       "NADELLA SATYA",
		Direction:  Buy,
	}

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back InsiderTrading
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if back.Shares != nil || back.PricePerShare != nil || back.SharesOwnedFollowing != nil {
		t.Errorf("absent fields resurfaced after round trip: %+v", back)
	}
	assertRecordsEqual(t, orig, back)
}

func TestUniverseJSONRoundTrip(t *testing.T) {
	orig := InsiderTradingUniverse{
		InsiderTrading: sampleRecord(t),
		SecurityID:     "AAPL R735QTJ8XC9X",
	}

	data, err := json.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back InsiderTradingUniverse
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if back.SecurityID != orig.SecurityID {
		t.Errorf("SecurityID = %q, want %q", back.SecurityID, orig.SecurityID)
	}
	assertRecordsEqual(t, orig.InsiderTrading, back.InsiderTrading)
}

func TestNotional(t *testing.T) {
	r := sampleRecord(t)
	n, ok := r.Notional()
	if !ok {
		t.Fatal("Notional() ok = false, want true")
	}
	if want := "862550"; n.String() != want {
		t.Errorf("Notional() = %s, want %s", n.String(), want)
	}

	r.PricePerShare = nil
	if _, ok := r.Notional(); ok {
		t.Error("Notional() ok = true with absent price, want false")
	}
}

// assertRecordsEqual compares field by field so time values compare with
// Equal rather than ==.
func assertRecordsEqual(t *testing.T, want, got InsiderTrading) {
	t.Helper()

	if got.Ticker != want.Ticker {
		t.Errorf("Ticker = %q, want %q", got.Ticker, want.Ticker)
	}
	if !got.Time.Equal(want.Time) {
		t.Errorf("Time = %v, want %v", got.Time, want.Time)
	}
	if !got.FilingDate.Equal(want.FilingDate) {
		t.Errorf("FilingDate = %v, want %v", got.FilingDate, want.FilingDate)
	}
	if got.Name != want.Name {
		t.Errorf("Name = %q, want %q", got.Name, want.Name)
	}
	if got.Direction != want.Direction {
		t.Errorf("Direction = %v, want %v", got.Direction, want.Direction)
	}
	assertDecimalEqual(t, "Shares", want.Shares, got.Shares)
	assertDecimalEqual(t, "PricePerShare", want.PricePerShare, got.PricePerShare)
	assertDecimalEqual(t, "SharesOwnedFollowing", want.SharesOwnedFollowing, got.SharesOwnedFollowing)
}

func assertDecimalEqual(t *testing.T, name string, want, got *decimal.Decimal) {
	t.Helper()

	switch {
	case want == nil && got == nil:
	case want == nil || got == nil:
		t.Errorf("%s = %v, want %v", name, got, want)
	case !want.Equal(*got):
		t.Errorf("%s = %s, want %s", name, got.String(), want.String())
	}
}
