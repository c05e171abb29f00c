package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/quiverfeeds/insider-data/internal/lean"
	"github.com/quiverfeeds/insider-data/internal/model"
	"github.com/quiverfeeds/insider-data/internal/universe"
)

// screen runs the universe selection against a single day's universe file
// and prints the surviving tickers, one per line. Handy for eyeballing what
// an algorithm subscribed to on a given date.
func main() {
	dataRoot := flag.String("data", "", "engine data root")
	dateStr := flag.String("date", "", "observation date (yyyyMMdd)")
	minFilings := flag.Int("min-filings", universe.DefaultCriteria().MinFilings, "minimum filings per symbol")
	minNotional := flag.String("min-notional", universe.DefaultCriteria().MinNotional.String(), "minimum total notional per symbol")
	flag.Parse()

	if *dataRoot == "" || *dateStr == "" {
		fmt.Fprintln(os.Stderr, "usage: screen -data <root> -date <yyyyMMdd> [-min-filings N] [-min-notional X]")
		os.Exit(2)
	}

	date, err := time.ParseInLocation(model.DateFormat, *dateStr, time.UTC)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -date %q: %v\n", *dateStr, err)
		os.Exit(2)
	}

	notional, err := decimal.NewFromString(*minNotional)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -min-notional %q: %v\n", *minNotional, err)
		os.Exit(2)
	}

	records, err := lean.ReadUniverseFile(*dataRoot, date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "read universe: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Fprintf(os.Stderr, "no filings surfaced on %s\n", *dateStr)
		return
	}

	criteria := universe.Criteria{
		MinFilings:  *minFilings,
		MinNotional: notional,
	}
	for _, ticker := range universe.Select(records, criteria) {
		fmt.Println(ticker)
	}
}
