package quiver

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quiverfeeds/insider-data/internal/model"
	"github.com/quiverfeeds/insider-data/internal/symbols"
)

// ToRecords converts a raw filing into point-in-time records, one per
// canonical ticker the raw ticker field normalizes to. A filing whose ticker
// yields nothing returns an empty slice and no error (noisy defunct-ticker
// rows are expected); malformed dates, codes, or numerics are errors.
func ToRecords(f Filing) ([]model.InsiderTrading, error) {
	filed, err := parseFeedDate(f.Date)
	if err != nil {
		return nil, fmt.Errorf("filing date %q: %w", f.Date, err)
	}

	dir, err := model.DirectionFromFormCode(f.TransactionCode)
	if err != nil {
		return nil, err
	}

	shares, err := optionalDecimal(f.Shares)
	if err != nil {
		return nil, fmt.Errorf("shares: %w", err)
	}
	price, err := optionalDecimal(f.PricePerShare)
	if err != nil {
		return nil, fmt.Errorf("price per share: %w", err)
	}
	owned, err := optionalDecimal(f.SharesOwnedFollowing)
	if err != nil {
		return nil, fmt.Errorf("shares owned following: %w", err)
	}

	tickers := symbols.Normalize(f.Ticker)
	records := make([]model.InsiderTrading, 0, len(tickers))
	for _, ticker := range tickers {
		r := model.InsiderTrading{
			Ticker:     ticker,
			Time:       model.ObservationTime(filed),
			FilingDate: filed,
			Name:       f.Name,
			Direction:  dir,
		}
		// Each record owns its quantities.
		if shares != nil {
			v := shares.Copy()
			r.Shares = &v
		}
		if price != nil {
			v := price.Copy()
			r.PricePerShare = &v
		}
		if owned != nil {
			v := owned.Copy()
			r.SharesOwnedFollowing = &v
		}
		records = append(records, r)
	}
	return records, nil
}

// parseFeedDate accepts the API's ISO date, falling back to the compact
// form some bulk exports use.
func parseFeedDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return t, nil
	}
	return time.ParseInLocation(feedDateFormat, s, time.UTC)
}

// optionalDecimal maps a null/absent JSON number to nil.
func optionalDecimal(n json.Number) (*decimal.Decimal, error) {
	if n == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return nil, err
	}
	return &d, nil
}
