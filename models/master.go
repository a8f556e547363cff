package models

import "time"

// MasterValue is one lookup-table value within a master category
// (strategies, exchanges, brokers and so on).
type MasterValue struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
