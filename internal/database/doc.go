// Package database holds the optional Postgres filing archive.
//
// The archive is the durable record of every filing the processor has seen:
// it deduplicates across runs (content-hash primary key, ON CONFLICT DO
// NOTHING) and is the source for rebuilding universe files.
package database
