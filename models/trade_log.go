package models

import "time"

// Operation kinds recorded in the trade audit trail.
const (
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// Snapshot tags. An update writes a "before" and an "after" row, a
// delete writes a single "deleted" row.
const (
	TagBefore  = "before"
	TagAfter   = "after"
	TagDeleted = "deleted"
)

// TradeSnapshot mirrors the trade-entry field set with nullable fields.
// A snapshot taken from an incomplete row stores NULLs instead of
// failing, so the audit trail never rejects a write.
type TradeSnapshot struct {
	TradeDate    *string  `json:"tradeDate"`
	Strategy     *string  `json:"strategy"`
	Code         *string  `json:"code"`
	Exchange     *string  `json:"exchange"`
	Commodity    *string  `json:"commodity"`
	Expiry       *string  `json:"expiry"`
	ContractType *string  `json:"contractType"`
	TradeType    *string  `json:"tradeType"`
	StrikePrice  *float64 `json:"strikePrice"`
	OptionType   *string  `json:"optionType"`
	Quantity     *float64 `json:"quantity"`
	AvgPrice     *float64 `json:"avgPrice"`
	ClientCode   *string  `json:"clientCode"`
	Broker       *string  `json:"broker"`
	TeamName     *string  `json:"teamName"`
	Status       *string  `json:"status"`
	Remark       *string  `json:"remark"`
	Tag          *string  `json:"tag"`
}

// SnapshotOf copies every business field of a trade entry into a
// snapshot. A nil entry yields an all-NULL snapshot.
func SnapshotOf(e *TradeEntry) TradeSnapshot {
	if e == nil {
		return TradeSnapshot{}
	}
	return TradeSnapshot{
		TradeDate:    &e.TradeDate,
		Strategy:     &e.Strategy,
		Code:         &e.Code,
		Exchange:     &e.Exchange,
		Commodity:    &e.Commodity,
		Expiry:       &e.Expiry,
		ContractType: &e.ContractType,
		TradeType:    &e.TradeType,
		StrikePrice:  &e.StrikePrice,
		OptionType:   &e.OptionType,
		Quantity:     &e.Quantity,
		AvgPrice:     &e.AvgPrice,
		ClientCode:   &e.ClientCode,
		Broker:       &e.Broker,
		TeamName:     &e.TeamName,
		Status:       &e.Status,
		Remark:       &e.Remark,
		Tag:          &e.Tag,
	}
}

// TradeEntryLog is one immutable audit record for a trade mutation.
// Rows are append-only: the application never updates or deletes them.
type TradeEntryLog struct {
	ID        int64         `json:"id"`
	EntryID   int64         `json:"entryId"`
	Operation string        `json:"operationType"`
	Tag       string        `json:"logTag"`
	Snapshot  TradeSnapshot `json:"snapshot"`
	ChangedBy string        `json:"changedBy"`
	ChangedAt time.Time     `json:"changedAt"`
}
