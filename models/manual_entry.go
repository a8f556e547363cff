package models

import (
	"strings"
	"time"
)

// ManualTradeEntry is a row from the grid-style manual entry screen.
// Unlike trade entries, manual rows are not covered by the audit trail.
type ManualTradeEntry struct {
	ID         int64     `json:"id"`
	TradeDate  string    `json:"tradeDate"`
	TeamName   string    `json:"teamName"`
	ClientCode string    `json:"clientCode"`
	Commodity  string    `json:"commodity"`
	TradeType  string    `json:"tradeType"`
	Quantity   float64   `json:"quantity"`
	AvgPrice   float64   `json:"avgPrice"`
	Broker     string    `json:"broker"`
	Remark     string    `json:"remark"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Validate checks the required fields and the date format.
func (e *ManualTradeEntry) Validate() []string {
	var errors []string

	if strings.TrimSpace(e.TradeDate) == "" {
		errors = append(errors, "tradeDate is required")
	} else if _, err := ParseDate(e.TradeDate); err != nil {
		errors = append(errors, "tradeDate must be in YYYY-MM-DD format")
	}
	if strings.TrimSpace(e.TeamName) == "" {
		errors = append(errors, "teamName is required")
	}
	if strings.TrimSpace(e.ClientCode) == "" {
		errors = append(errors, "clientCode is required")
	}
	if strings.TrimSpace(e.Commodity) == "" {
		errors = append(errors, "commodity is required")
	}

	return errors
}
