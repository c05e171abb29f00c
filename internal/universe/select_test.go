package universe

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiverfeeds/insider-data/internal/model"
)

func filing(t *testing.T, ticker, shares, price string) model.InsiderTradingUniverse {
	t.Helper()

	u := model.InsiderTradingUniverse{
		InsiderTrading: model.InsiderTrading{
			Ticker:     ticker,
			Time:       time.Date(2022, 2, 15, 0, 0, 0, 0, time.UTC),
			FilingDate: time.Date(2022, 2, 14, 0, 0, 0, 0, time.UTC),
			Name:       "SOME INSIDER",
			Direction:  model.Buy,
		},
		SecurityID: ticker + " R735QTJ8XC9X",
	}
	if shares != "" {
		d, err := decimal.NewFromString(shares)
		require.NoError(t, err)
		u.Shares = &d
	}
	if price != "" {
		d, err := decimal.NewFromString(price)
		require.NoError(t, err)
		u.PricePerShare = &d
	}
	return u
}

func TestSelect(t *testing.T) {
	records := []model.InsiderTradingUniverse{
		// Two filings, 60k + 50k notional: selected.
		filing(t, "AAPL", "400", "150"),
		filing(t, "AAPL", "500", "100"),
		// One large filing only: filing count too low.
		filing(t, "MSFT", "10000", "300"),
		// Two filings but tiny notional.
		filing(t, "PLTR", "100", "10"),
		filing(t, "PLTR", "200", "10"),
	}

	got := Select(records, DefaultCriteria())
	assert.Equal(t, []string{"AAPL"}, got)
}

func TestSelectSkipsAbsentQuantities(t *testing.T) {
	records := []model.InsiderTradingUniverse{
		// Absent quantities count as filings but add no notional.
		filing(t, "AAPL", "", ""),
		filing(t, "AAPL", "2000", "100"),
		filing(t, "TSLA", "", "900"),
		filing(t, "TSLA", "", "900"),
	}

	got := Select(records, DefaultCriteria())
	assert.Equal(t, []string{"AAPL"}, got)
}

func TestSelectThresholdIsStrict(t *testing.T) {
	records := []model.InsiderTradingUniverse{
		filing(t, "AAPL", "500", "100"),
		filing(t, "AAPL", "500", "100"),
	}

	// Exactly 100,000 does not pass a strict greater-than.
	assert.Empty(t, Select(records, DefaultCriteria()))

	c := Criteria{MinFilings: 2, MinNotional: decimal.NewFromInt(99999)}
	assert.Equal(t, []string{"AAPL"}, Select(records, c))
}

func TestSelectPreservesFirstSeenOrder(t *testing.T) {
	records := []model.InsiderTradingUniverse{
		filing(t, "TSLA", "1000", "200"),
		filing(t, "AAPL", "1000", "200"),
		filing(t, "TSLA", "1000", "200"),
		filing(t, "AAPL", "1000", "200"),
	}

	assert.Equal(t, []string{"TSLA", "AAPL"}, Select(records, DefaultCriteria()))
}

func TestSelectEmptyInput(t *testing.T) {
	assert.Empty(t, Select(nil, DefaultCriteria()))
}
