package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Per-symbol data files carry seven comma-separated fields:
//
//	date,filingDate,name,direction,shares,pricePerShare,sharesOwnedFollowing
//
// Universe files carry eight, with the observation date implied by the file:
//
//	securityId,ticker,filingDate,name,direction,shares,pricePerShare,sharesOwnedFollowing
const (
	pointFieldCount    = 7
	universeFieldCount = 8
)

// ParseInsiderTrading parses one line of a per-symbol data file. The ticker is
// not stored in the line; the caller supplies it from the file name.
func ParseInsiderTrading(ticker, line string) (InsiderTrading, error) {
	csv := strings.Split(line, ",")
	if len(csv) != pointFieldCount {
		return InsiderTrading{}, fmt.Errorf("expected %d fields, got %d", pointFieldCount, len(csv))
	}

	obs, err := parseDate(csv[0])
	if err != nil {
		return InsiderTrading{}, fmt.Errorf("observation date: %w", err)
	}
	filed, err := parseDate(csv[1])
	if err != nil {
		return InsiderTrading{}, fmt.Errorf("filing date: %w", err)
	}
	dir, err := ParseDirection(csv[3])
	if err != nil {
		return InsiderTrading{}, err
	}

	r := InsiderTrading{
		Ticker:     ticker,
		Time:       obs,
		FilingDate: filed,
		Name:       csv[2],
		Direction:  dir,
	}
	if r.Shares, err = parseOptionalDecimal(csv[4]); err != nil {
		return InsiderTrading{}, fmt.Errorf("shares: %w", err)
	}
	if r.PricePerShare, err = parseOptionalDecimal(csv[5]); err != nil {
		return InsiderTrading{}, fmt.Errorf("price per share: %w", err)
	}
	if r.SharesOwnedFollowing, err = parseOptionalDecimal(csv[6]); err != nil {
		return InsiderTrading{}, fmt.Errorf("shares owned following: %w", err)
	}
	return r, nil
}

// ParseInsiderTradingUniverse parses one line of a universe file. date is the
// file's date and becomes the record's observation time.
func ParseInsiderTradingUniverse(line string, date time.Time) (InsiderTradingUniverse, error) {
	csv := strings.Split(line, ",")
	if len(csv) != universeFieldCount {
		return InsiderTradingUniverse{}, fmt.Errorf("expected %d fields, got %d", universeFieldCount, len(csv))
	}

	filed, err := parseDate(csv[2])
	if err != nil {
		return InsiderTradingUniverse{}, fmt.Errorf("filing date: %w", err)
	}
	dir, err := ParseDirection(csv[4])
	if err != nil {
		return InsiderTradingUniverse{}, err
	}

	u := InsiderTradingUniverse{
		InsiderTrading: InsiderTrading{
			Ticker:     csv[1],
			Time:       date,
			FilingDate: filed,
			Name:       csv[3],
			Direction:  dir,
		},
		SecurityID: csv[0],
	}
	if u.Shares, err = parseOptionalDecimal(csv[5]); err != nil {
		return InsiderTradingUniverse{}, fmt.Errorf("shares: %w", err)
	}
	if u.PricePerShare, err = parseOptionalDecimal(csv[6]); err != nil {
		return InsiderTradingUniverse{}, fmt.Errorf("price per share: %w", err)
	}
	if u.SharesOwnedFollowing, err = parseOptionalDecimal(csv[7]); err != nil {
		return InsiderTradingUniverse{}, fmt.Errorf("shares owned following: %w", err)
	}
	return u, nil
}

// CSVLine renders the record as a per-symbol file line.
func (r InsiderTrading) CSVLine() string {
	return strings.Join([]string{
		r.Time.Format(DateFormat),
		r.FilingDate.Format(DateFormat),
		sanitizeField(r.Name),
		fmt.Sprintf("%d", int(r.Direction)),
		formatOptionalDecimal(r.Shares),
		formatOptionalDecimal(r.PricePerShare),
		formatOptionalDecimal(r.SharesOwnedFollowing),
	}, ",")
}

// CSVLine renders the record as a universe file line.
func (u InsiderTradingUniverse) CSVLine() string {
	return strings.Join([]string{
		u.SecurityID,
		u.Ticker,
		u.FilingDate.Format(DateFormat),
		sanitizeField(u.Name),
		fmt.Sprintf("%d", int(u.Direction)),
		formatOptionalDecimal(u.Shares),
		formatOptionalDecimal(u.PricePerShare),
		formatOptionalDecimal(u.SharesOwnedFollowing),
	}, ",")
}

// Key identifies a record for deduplication purposes.
func (r InsiderTrading) Key() string {
	return r.Ticker + "," + r.CSVLine()
}

func parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.UTC)
}

// parseOptionalDecimal maps an empty field to nil (value absent), anything
// else through decimal parsing.
func parseOptionalDecimal(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func formatOptionalDecimal(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

// sanitizeField keeps free-text fields (filer names) from breaking the
// comma-delimited layout.
func sanitizeField(s string) string {
	return strings.ReplaceAll(s, ",", ";")
}
