package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tradedesk/tradelog/dbx"
	"github.com/tradedesk/tradelog/models"
)

// TradeRepository interface defines trade entry database operations
type TradeRepository interface {
	GetAll(ctx context.Context) ([]models.TradeEntry, error)
	GetByID(ctx context.Context, id int64) (*models.TradeEntry, error)
	GetByDate(ctx context.Context, tradeDate string) ([]models.TradeEntry, error)
	Create(ctx context.Context, entry *models.TradeEntry) error
	Update(ctx context.Context, entry *models.TradeEntry) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// tradeRepository implements TradeRepository interface
type tradeRepository struct {
	db dbx.DBTX
}

// NewTradeRepository creates a new trade repository. It accepts either
// the shared *sql.DB or a *sql.Tx so audited mutations can run inside
// one transaction.
func NewTradeRepository(db dbx.DBTX) TradeRepository {
	return &tradeRepository{db: db}
}

const tradeColumns = `id, trade_date, strategy, code, exchange, commodity, expiry,
	       contract_type, trade_type, strike_price, option_type, quantity, avg_price,
	       client_code, broker, team_name, status, remark, tag, created_at, updated_at`

// scanTradeEntry scans one row into a trade entry.
func scanTradeEntry(row interface{ Scan(...any) error }) (*models.TradeEntry, error) {
	var entry models.TradeEntry
	err := row.Scan(
		&entry.ID,
		&entry.TradeDate,
		&entry.Strategy,
		&entry.Code,
		&entry.Exchange,
		&entry.Commodity,
		&entry.Expiry,
		&entry.ContractType,
		&entry.TradeType,
		&entry.StrikePrice,
		&entry.OptionType,
		&entry.Quantity,
		&entry.AvgPrice,
		&entry.ClientCode,
		&entry.Broker,
		&entry.TeamName,
		&entry.Status,
		&entry.Remark,
		&entry.Tag,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAll retrieves all trade entries, newest first
func (r *tradeRepository) GetAll(ctx context.Context) ([]models.TradeEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM trade_entries
		ORDER BY trade_date DESC, created_at DESC
	`, tradeColumns)

	return r.queryEntries(ctx, query)
}

// GetByDate retrieves all trade entries for a specific trade date
func (r *tradeRepository) GetByDate(ctx context.Context, tradeDate string) ([]models.TradeEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM trade_entries
		WHERE trade_date = ?
		ORDER BY created_at DESC
	`, tradeColumns)

	return r.queryEntries(ctx, query, tradeDate)
}

func (r *tradeRepository) queryEntries(ctx context.Context, query string, args ...any) ([]models.TradeEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade entries: %w", err)
	}
	defer rows.Close()

	var entries []models.TradeEntry
	for rows.Next() {
		entry, err := scanTradeEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan trade entry: %w", err)
		}
		entries = append(entries, *entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating trade entries: %w", err)
	}

	return entries, nil
}

// GetByID retrieves a trade entry by ID
func (r *tradeRepository) GetByID(ctx context.Context, id int64) (*models.TradeEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM trade_entries
		WHERE id = ?
	`, tradeColumns)

	entry, err := scanTradeEntry(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("trade entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade entry: %w", err)
	}

	return entry, nil
}

// Create inserts a new trade entry and fills in its ID and timestamps
func (r *tradeRepository) Create(ctx context.Context, entry *models.TradeEntry) error {
	query := `
		INSERT INTO trade_entries (
			trade_date, strategy, code, exchange, commodity, expiry,
			contract_type, trade_type, strike_price, option_type, quantity, avg_price,
			client_code, broker, team_name, status, remark, tag, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		entry.TradeDate,
		entry.Strategy,
		entry.Code,
		entry.Exchange,
		entry.Commodity,
		entry.Expiry,
		entry.ContractType,
		entry.TradeType,
		entry.StrikePrice,
		entry.OptionType,
		entry.Quantity,
		entry.AvgPrice,
		entry.ClientCode,
		entry.Broker,
		entry.TeamName,
		entry.Status,
		entry.Remark,
		entry.Tag,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create trade entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}

	entry.ID = id
	entry.CreatedAt = now
	entry.UpdatedAt = now
	return nil
}

// Update replaces all business fields of an existing trade entry
func (r *tradeRepository) Update(ctx context.Context, entry *models.TradeEntry) error {
	query := `
		UPDATE trade_entries SET
			trade_date = ?, strategy = ?, code = ?, exchange = ?, commodity = ?,
			expiry = ?, contract_type = ?, trade_type = ?, strike_price = ?,
			option_type = ?, quantity = ?, avg_price = ?, client_code = ?,
			broker = ?, team_name = ?, status = ?, remark = ?, tag = ?, updated_at = ?
		WHERE id = ?
	`

	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		entry.TradeDate,
		entry.Strategy,
		entry.Code,
		entry.Exchange,
		entry.Commodity,
		entry.Expiry,
		entry.ContractType,
		entry.TradeType,
		entry.StrikePrice,
		entry.OptionType,
		entry.Quantity,
		entry.AvgPrice,
		entry.ClientCode,
		entry.Broker,
		entry.TeamName,
		entry.Status,
		entry.Remark,
		entry.Tag,
		now,
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update trade entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("trade entry %d: %w", entry.ID, ErrNotFound)
	}

	entry.UpdatedAt = now
	return nil
}

// Delete removes a trade entry by ID
func (r *tradeRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM trade_entries WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete trade entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("trade entry %d: %w", id, ErrNotFound)
	}

	return nil
}

// Count returns the total number of trade entries
func (r *tradeRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trade_entries`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count trade entries: %w", err)
	}
	return count, nil
}
