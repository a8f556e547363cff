package models

import (
	"time"
)

// Common date helpers shared across models, repositories and handlers.
// All trade dates travel as YYYY-MM-DD strings.

const dateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD string into a time.Time.
func ParseDate(dateStr string) (time.Time, error) {
	return time.Parse(dateLayout, dateStr)
}

// FormatDate formats a time as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// FormatDateTime formats a time as YYYY-MM-DD HH:MM:SS.
func FormatDateTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// DateRange represents an inclusive range of dates.
type DateRange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Validate checks both bounds parse and are ordered.
func (r DateRange) Validate() []string {
	var errors []string

	from, err := ParseDate(r.From)
	if err != nil {
		errors = append(errors, "from must be in YYYY-MM-DD format")
	}
	to, err2 := ParseDate(r.To)
	if err2 != nil {
		errors = append(errors, "to must be in YYYY-MM-DD format")
	}
	if err == nil && err2 == nil && to.Before(from) {
		errors = append(errors, "to must not precede from")
	}

	return errors
}
