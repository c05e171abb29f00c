// Package universe selects the day's tradable symbol set from universe
// records: the host engine hands an algorithm all filings surfaced on a date
// and the algorithm keeps the symbols with enough insider conviction behind
// them.
package universe

import (
	"github.com/shopspring/decimal"

	"github.com/quiverfeeds/insider-data/internal/model"
)

// Criteria filters symbols by filing activity.
type Criteria struct {
	// MinFilings is the minimum number of filings a symbol needs on the day.
	MinFilings int

	// MinNotional is the total Shares*PricePerShare the symbol's filings must
	// exceed. Filings with absent quantities contribute nothing.
	MinNotional decimal.Decimal
}

// DefaultCriteria mirrors the reference selection: at least two filings
// totalling more than 100,000 in notional.
func DefaultCriteria() Criteria {
	return Criteria{
		MinFilings:  2,
		MinNotional: decimal.NewFromInt(100000),
	}
}

// Select returns the tickers passing the criteria, in first-seen order.
func Select(records []model.InsiderTradingUniverse, c Criteria) []string {
	type activity struct {
		filings  int
		notional decimal.Decimal
	}

	var order []string
	bySymbol := make(map[string]*activity)

	for _, r := range records {
		a, ok := bySymbol[r.Ticker]
		if !ok {
			a = &activity{}
			bySymbol[r.Ticker] = a
			order = append(order, r.Ticker)
		}
		a.filings++
		if n, ok := r.Notional(); ok {
			a.notional = a.notional.Add(n)
		}
	}

	var selected []string
	for _, ticker := range order {
		a := bySymbol[ticker]
		if a.filings >= c.MinFilings && a.notional.GreaterThan(c.MinNotional) {
			selected = append(selected, ticker)
		}
	}
	return selected
}
