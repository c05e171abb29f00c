// Package symbols handles ticker hygiene and security-identifier resolution.
//
// Normalize turns raw feed tickers (share-class punctuation, stray quotes,
// several tickers in one field) into canonical uppercase symbols. Registry
// resolves canonical tickers against an exported copy of the host engine's
// symbol database and reloads it when the export changes on disk.
package symbols
