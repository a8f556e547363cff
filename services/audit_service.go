package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/tradedesk/tradelog/models"
	"github.com/tradedesk/tradelog/repositories"
)

// csvHeader is the fixed column order of the audit export: the trade
// entry schema followed by the audit metadata.
var csvHeader = []string{
	"entry_id",
	"trade_date", "strategy", "code", "exchange", "commodity", "expiry",
	"contract_type", "trade_type", "strike_price", "option_type",
	"quantity", "avg_price", "client_code", "broker", "team_name",
	"status", "remark", "tag",
	"operation_type", "log_tag", "changed_by", "changed_at",
}

// AuditService interface defines read-only access to the audit trail
type AuditService interface {
	GetLogsForEntry(ctx context.Context, entryID int64) ([]models.TradeEntryLog, error)
	GetLogsInRange(ctx context.Context, r models.DateRange) ([]models.TradeEntryLog, error)
	CountInRange(ctx context.Context, r models.DateRange) (int, error)
	// WriteCSV streams the logs in the range to w as delimited text,
	// one row per log entry, in csvHeader column order.
	WriteCSV(ctx context.Context, w io.Writer, r models.DateRange) error
}

// auditService implements AuditService interface
type auditService struct {
	audit repositories.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(audit repositories.AuditRepository) AuditService {
	return &auditService{audit: audit}
}

// GetLogsForEntry returns the audit history of one trade entry, newest first
func (s *auditService) GetLogsForEntry(ctx context.Context, entryID int64) ([]models.TradeEntryLog, error) {
	return s.audit.GetByEntryID(ctx, entryID)
}

// GetLogsInRange returns the audit rows in an inclusive date range, newest first
func (s *auditService) GetLogsInRange(ctx context.Context, r models.DateRange) ([]models.TradeEntryLog, error) {
	if errs := r.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, ", "))
	}
	return s.audit.GetByDateRange(ctx, r.From, r.To)
}

// CountInRange counts the audit rows in an inclusive date range
func (s *auditService) CountInRange(ctx context.Context, r models.DateRange) (int, error) {
	if errs := r.Validate(); len(errs) > 0 {
		return 0, fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, ", "))
	}
	return s.audit.CountByDateRange(ctx, r.From, r.To)
}

// WriteCSV streams the logs in the range to w
func (s *auditService) WriteCSV(ctx context.Context, w io.Writer, r models.DateRange) error {
	logs, err := s.GetLogsInRange(ctx, r)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range logs {
		if err := cw.Write(csvRecord(&logs[i])); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvRecord(log *models.TradeEntryLog) []string {
	s := log.Snapshot
	return []string{
		strconv.FormatInt(log.EntryID, 10),
		strOrEmpty(s.TradeDate),
		strOrEmpty(s.Strategy),
		strOrEmpty(s.Code),
		strOrEmpty(s.Exchange),
		strOrEmpty(s.Commodity),
		strOrEmpty(s.Expiry),
		strOrEmpty(s.ContractType),
		strOrEmpty(s.TradeType),
		floatOrEmpty(s.StrikePrice),
		strOrEmpty(s.OptionType),
		floatOrEmpty(s.Quantity),
		floatOrEmpty(s.AvgPrice),
		strOrEmpty(s.ClientCode),
		strOrEmpty(s.Broker),
		strOrEmpty(s.TeamName),
		strOrEmpty(s.Status),
		strOrEmpty(s.Remark),
		strOrEmpty(s.Tag),
		log.Operation,
		log.Tag,
		log.ChangedBy,
		models.FormatDateTime(log.ChangedAt),
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func floatOrEmpty(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}
