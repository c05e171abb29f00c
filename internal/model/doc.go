// Package model defines the insider-trading record types shared across the
// pipeline.
//
// Conventions:
//   - Dates: time.Time at midnight UTC; data files use fixed-width yyyyMMdd
//   - Quantities: *decimal.Decimal, nil meaning "not reported" (absent is not
//     the same as zero)
//   - Records: constructed once, immutable afterwards; Clone produces an
//     independently mutable copy for handoff
package model
