// Package quiver provides the client for the Quiver Quantitative REST API.
//
// Endpoints used:
//   - /live/insiders            - filings surfaced since the last close
//   - /bulk/insiders?date=...   - all filings surfaced on a given date
//   - /historical/insiders/{t}  - full history for one ticker
//
// All list endpoints paginate with page/page_size query parameters.
package quiver
