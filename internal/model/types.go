package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the fixed-width date layout used in data files and feed rows.
const DateFormat = "20060102"

// Direction is the direction of an insider transaction.
type Direction int

const (
	Buy Direction = iota
	Sell
	Hold
)

// String returns the human-readable direction name.
func (d Direction) String() string {
	switch d {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	case Hold:
		return "hold"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection parses the integer transaction code used in data files.
// Unknown codes are an error: a record with an unmapped direction cannot be
// constructed meaningfully.
func ParseDirection(code string) (Direction, error) {
	switch code {
	case "0":
		return Buy, nil
	case "1":
		return Sell, nil
	case "2":
		return Hold, nil
	default:
		return 0, fmt.Errorf("unknown transaction code %q", code)
	}
}

// DirectionFromFormCode maps an SEC Form 4 transaction code from the upstream
// feed to a direction.
func DirectionFromFormCode(code string) (Direction, error) {
	switch code {
	case "P":
		return Buy, nil
	case "S":
		return Sell, nil
	case "H":
		return Hold, nil
	default:
		return 0, fmt.Errorf("unknown form transaction code %q", code)
	}
}

// InsiderTrading is one disclosed insider transaction for a single ticker.
type InsiderTrading struct {
	Ticker     string    `json:"ticker"`
	Time       time.Time `json:"time"`       // Observation time (when the engine may see the record)
	FilingDate time.Time `json:"filingDate"` // Date the filing was reported
	Name       string    `json:"name"`       // Filer name
	Direction  Direction `json:"direction"`

	// Not every filing reports these.
	Shares               *decimal.Decimal `json:"shares,omitempty"`
	PricePerShare        *decimal.Decimal `json:"pricePerShare,omitempty"`
	SharesOwnedFollowing *decimal.Decimal `json:"sharesOwnedFollowing,omitempty"`
}

// InsiderTradingUniverse is the universe-selection variant of the record: the
// same fields plus the security identifier resolved against the host engine's
// symbol database.
type InsiderTradingUniverse struct {
	InsiderTrading
	SecurityID string `json:"securityId"`
}

// ObservationTime returns the time at which a filing becomes visible to the
// engine: one day after the filing date.
func ObservationTime(filingDate time.Time) time.Time {
	return filingDate.AddDate(0, 0, 1)
}

// Clone returns a copy of the record that shares no mutable state with the
// original.
func (r InsiderTrading) Clone() InsiderTrading {
	out := r
	out.Shares = cloneDecimal(r.Shares)
	out.PricePerShare = cloneDecimal(r.PricePerShare)
	out.SharesOwnedFollowing = cloneDecimal(r.SharesOwnedFollowing)
	return out
}

// Clone returns an independent copy of the universe record.
func (u InsiderTradingUniverse) Clone() InsiderTradingUniverse {
	return InsiderTradingUniverse{
		InsiderTrading: u.InsiderTrading.Clone(),
		SecurityID:     u.SecurityID,
	}
}

// Notional returns Shares * PricePerShare. The second return is false when
// either quantity is absent.
func (r InsiderTrading) Notional() (decimal.Decimal, bool) {
	if r.Shares == nil || r.PricePerShare == nil {
		return decimal.Decimal{}, false
	}
	return r.Shares.Mul(*r.PricePerShare), true
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	v := d.Copy()
	return &v
}
