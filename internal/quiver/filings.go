package quiver

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// feedDateFormat is how the API formats query dates.
const feedDateFormat = "20060102"

// LiveInsiders fetches all filings surfaced since the previous close.
func (c *Client) LiveInsiders(ctx context.Context) ([]Filing, error) {
	filings, err := c.getAllPages(ctx, "/live/insiders", url.Values{})
	if err != nil {
		return nil, fmt.Errorf("live insiders: %w", err)
	}
	return filings, nil
}

// InsidersByDate fetches all filings surfaced on the given date.
func (c *Client) InsidersByDate(ctx context.Context, date time.Time) ([]Filing, error) {
	query := url.Values{}
	query.Set("date", date.Format(feedDateFormat))

	filings, err := c.getAllPages(ctx, "/bulk/insiders", query)
	if err != nil {
		return nil, fmt.Errorf("insiders for %s: %w", date.Format(feedDateFormat), err)
	}
	return filings, nil
}

// InsidersByTicker fetches the full filing history for one ticker.
func (c *Client) InsidersByTicker(ctx context.Context, ticker string) ([]Filing, error) {
	path := "/historical/insiders/" + url.PathEscape(strings.ToUpper(ticker))

	filings, err := c.getAllPages(ctx, path, url.Values{})
	if err != nil {
		return nil, fmt.Errorf("insiders for %s: %w", ticker, err)
	}
	return filings, nil
}

// getAllPages walks page-based pagination until a short page.
func (c *Client) getAllPages(ctx context.Context, path string, query url.Values) ([]Filing, error) {
	var all []Filing
	query.Set("page_size", strconv.Itoa(c.pageSize))

	for page := 1; ; page++ {
		query.Set("page", strconv.Itoa(page))

		var filings []Filing
		if err := c.get(ctx, path, query, &filings); err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}

		all = append(all, filings...)

		if len(filings) < c.pageSize {
			return all, nil
		}
	}
}
