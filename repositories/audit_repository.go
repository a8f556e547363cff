package repositories

import (
	"context"
	"fmt"

	"github.com/tradedesk/tradelog/dbx"
	"github.com/tradedesk/tradelog/models"
)

// AuditRepository owns the append-only trade mutation log. Nothing else
// writes to trade_entry_logs, and no method here ever updates or
// deletes a row.
type AuditRepository interface {
	// Create appends one immutable log row. When bound to the same
	// transaction as the row mutation, a failure here rolls back the
	// mutation as well.
	Create(ctx context.Context, log *models.TradeEntryLog) error
	// GetByEntryID returns the history of one trade entry, newest first.
	GetByEntryID(ctx context.Context, entryID int64) ([]models.TradeEntryLog, error)
	// GetByDateRange returns log rows whose changed_at date falls inside
	// [from, to] (both bounds inclusive), newest first.
	GetByDateRange(ctx context.Context, from, to string) ([]models.TradeEntryLog, error)
	// CountByDateRange counts the rows GetByDateRange would return.
	CountByDateRange(ctx context.Context, from, to string) (int, error)
}

type auditRepository struct {
	db dbx.DBTX
}

// NewAuditRepository creates a new audit repository. Bind it to a
// *sql.Tx when the log write must commit atomically with a mutation.
func NewAuditRepository(db dbx.DBTX) AuditRepository {
	return &auditRepository{db: db}
}

const auditColumns = `id, entry_id, operation_type, log_tag,
	       trade_date, strategy, code, exchange, commodity, expiry,
	       contract_type, trade_type, strike_price, option_type, quantity, avg_price,
	       client_code, broker, team_name, status, remark, tag,
	       changed_by, changed_at`

// Create appends one log row
func (r *auditRepository) Create(ctx context.Context, log *models.TradeEntryLog) error {
	query := `
		INSERT INTO trade_entry_logs (
			entry_id, operation_type, log_tag,
			trade_date, strategy, code, exchange, commodity, expiry,
			contract_type, trade_type, strike_price, option_type, quantity, avg_price,
			client_code, broker, team_name, status, remark, tag,
			changed_by, changed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	s := log.Snapshot
	result, err := r.db.ExecContext(ctx, query,
		log.EntryID,
		log.Operation,
		log.Tag,
		s.TradeDate,
		s.Strategy,
		s.Code,
		s.Exchange,
		s.Commodity,
		s.Expiry,
		s.ContractType,
		s.TradeType,
		s.StrikePrice,
		s.OptionType,
		s.Quantity,
		s.AvgPrice,
		s.ClientCode,
		s.Broker,
		s.TeamName,
		s.Status,
		s.Remark,
		s.Tag,
		log.ChangedBy,
		log.ChangedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create trade entry log: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted log ID: %w", err)
	}

	log.ID = id
	return nil
}

func (r *auditRepository) queryLogs(ctx context.Context, query string, args ...any) ([]models.TradeEntryLog, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade entry logs: %w", err)
	}
	defer rows.Close()

	var logs []models.TradeEntryLog
	for rows.Next() {
		var log models.TradeEntryLog
		s := &log.Snapshot
		err := rows.Scan(
			&log.ID,
			&log.EntryID,
			&log.Operation,
			&log.Tag,
			&s.TradeDate,
			&s.Strategy,
			&s.Code,
			&s.Exchange,
			&s.Commodity,
			&s.Expiry,
			&s.ContractType,
			&s.TradeType,
			&s.StrikePrice,
			&s.OptionType,
			&s.Quantity,
			&s.AvgPrice,
			&s.ClientCode,
			&s.Broker,
			&s.TeamName,
			&s.Status,
			&s.Remark,
			&s.Tag,
			&log.ChangedBy,
			&log.ChangedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade entry log: %w", err)
		}
		logs = append(logs, log)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade entry logs: %w", err)
	}

	return logs, nil
}

// GetByEntryID returns the history of one trade entry, newest first
func (r *auditRepository) GetByEntryID(ctx context.Context, entryID int64) ([]models.TradeEntryLog, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM trade_entry_logs
		WHERE entry_id = ?
		ORDER BY changed_at DESC, id DESC
	`, auditColumns)

	return r.queryLogs(ctx, query, entryID)
}

// GetByDateRange returns log rows in the inclusive date range, newest first
func (r *auditRepository) GetByDateRange(ctx context.Context, from, to string) ([]models.TradeEntryLog, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM trade_entry_logs
		WHERE date(changed_at) >= date(?) AND date(changed_at) <= date(?)
		ORDER BY changed_at DESC, id DESC
	`, auditColumns)

	return r.queryLogs(ctx, query, from, to)
}

// CountByDateRange counts log rows in the inclusive date range
func (r *auditRepository) CountByDateRange(ctx context.Context, from, to string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM trade_entry_logs
		WHERE date(changed_at) >= date(?) AND date(changed_at) <= date(?)
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, from, to).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count trade entry logs: %w", err)
	}
	return count, nil
}
