// Package writer implements batch writers for the data-folder outputs and
// the archive.
//
// Writers:
//   - Symbol writer (per-symbol point-in-time CSV files)
//   - Universe writer (per-date universe CSV files)
//   - Archive writer (PostgreSQL)
//
// All writers use append-only semantics (never rewrite, only append).
package writer
