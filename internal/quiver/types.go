package quiver

import "encoding/json"

// Filing is one raw insider-trading row as the Quiver API reports it.
// Numeric fields arrive as JSON numbers that may be null; json.Number keeps
// them lossless until decimal conversion.
type Filing struct {
	Ticker               string      `json:"Ticker"`
	Date                 string      `json:"Date"` // Filing date, "2006-01-02"
	Name                 string      `json:"Name"` // Filer name
	TransactionCode      string      `json:"TransactionCode"`
	Shares               json.Number `json:"Shares"`
	PricePerShare        json.Number `json:"PricePerShare"`
	SharesOwnedFollowing json.Number `json:"SharesOwnedFollowing"`
}
