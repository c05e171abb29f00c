// Package fetch drives the feed polling loop.
//
// The fetcher pulls live filings plus a short lookback window of bulk dates
// each cycle and pushes the raw filings downstream. Late SEC postings land
// in the lookback window; downstream deduplication absorbs the overlap
// between cycles.
package fetch
