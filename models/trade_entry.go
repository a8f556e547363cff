package models

import (
	"strings"
	"time"
)

// TradeEntry represents one manually logged commodity/derivative trade.
// Trade dates are kept as YYYY-MM-DD strings to match the wire format
// and the TEXT storage in SQLite.
type TradeEntry struct {
	ID           int64     `json:"id"`
	TradeDate    string    `json:"tradeDate"`
	Strategy     string    `json:"strategy"`
	Code         string    `json:"code"`
	Exchange     string    `json:"exchange"`
	Commodity    string    `json:"commodity"`
	Expiry       string    `json:"expiry"`
	ContractType string    `json:"contractType"`
	TradeType    string    `json:"tradeType"`
	StrikePrice  float64   `json:"strikePrice"`
	OptionType   string    `json:"optionType"`
	Quantity     float64   `json:"quantity"`
	AvgPrice     float64   `json:"avgPrice"`
	ClientCode   string    `json:"clientCode"`
	Broker       string    `json:"broker"`
	TeamName     string    `json:"teamName"`
	Status       string    `json:"status"`
	Remark       string    `json:"remark"`
	Tag          string    `json:"tag"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Validate checks the required fields and date formats.
// Returns a list of human-readable problems, empty when the entry is valid.
func (e *TradeEntry) Validate() []string {
	var errors []string

	required := []struct {
		name  string
		value string
	}{
		{"tradeDate", e.TradeDate},
		{"strategy", e.Strategy},
		{"code", e.Code},
		{"exchange", e.Exchange},
		{"commodity", e.Commodity},
		{"expiry", e.Expiry},
		{"contractType", e.ContractType},
		{"tradeType", e.TradeType},
		{"optionType", e.OptionType},
		{"clientCode", e.ClientCode},
		{"broker", e.Broker},
		{"teamName", e.TeamName},
		{"status", e.Status},
	}

	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			errors = append(errors, f.name+" is required")
		}
	}

	if e.TradeDate != "" {
		if _, err := ParseDate(e.TradeDate); err != nil {
			errors = append(errors, "tradeDate must be in YYYY-MM-DD format")
		}
	}
	if e.Expiry != "" {
		if _, err := ParseDate(e.Expiry); err != nil {
			errors = append(errors, "expiry must be in YYYY-MM-DD format")
		}
	}

	if e.Quantity < 0 {
		errors = append(errors, "quantity must not be negative")
	}

	return errors
}
