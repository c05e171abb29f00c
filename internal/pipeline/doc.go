// Package pipeline connects the feed fetcher to the writers.
//
// The Router converts raw Quiver filings into typed records (ticker
// normalization fans one noisy row out to zero or more records) and routes
// every record to the point-file, universe-file, and archive buffers. Writers
// drain their buffer at their own pace.
package pipeline
