package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tradedesk/tradelog/dbx"
	"github.com/tradedesk/tradelog/models"
)

// ManualEntryRepository interface defines manual trade entry operations
type ManualEntryRepository interface {
	GetAll(ctx context.Context) ([]models.ManualTradeEntry, error)
	GetByID(ctx context.Context, id int64) (*models.ManualTradeEntry, error)
	GetByDate(ctx context.Context, tradeDate string) ([]models.ManualTradeEntry, error)
	Create(ctx context.Context, entry *models.ManualTradeEntry) error
	Update(ctx context.Context, entry *models.ManualTradeEntry) error
	Delete(ctx context.Context, id int64) error
}

type manualEntryRepository struct {
	db dbx.DBTX
}

// NewManualEntryRepository creates a new manual entry repository
func NewManualEntryRepository(db dbx.DBTX) ManualEntryRepository {
	return &manualEntryRepository{db: db}
}

const manualColumns = `id, trade_date, team_name, client_code, commodity, trade_type,
	       quantity, avg_price, broker, remark, created_at, updated_at`

func scanManualEntry(row interface{ Scan(...any) error }) (*models.ManualTradeEntry, error) {
	var entry models.ManualTradeEntry
	err := row.Scan(
		&entry.ID,
		&entry.TradeDate,
		&entry.TeamName,
		&entry.ClientCode,
		&entry.Commodity,
		&entry.TradeType,
		&entry.Quantity,
		&entry.AvgPrice,
		&entry.Broker,
		&entry.Remark,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// GetAll retrieves all manual trade entries, newest first
func (r *manualEntryRepository) GetAll(ctx context.Context) ([]models.ManualTradeEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM manual_trade_entries
		ORDER BY trade_date DESC, created_at DESC
	`, manualColumns)

	return r.queryEntries(ctx, query)
}

// GetByDate retrieves all manual trade entries for a specific date
func (r *manualEntryRepository) GetByDate(ctx context.Context, tradeDate string) ([]models.ManualTradeEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM manual_trade_entries
		WHERE trade_date = ?
		ORDER BY created_at DESC
	`, manualColumns)

	return r.queryEntries(ctx, query, tradeDate)
}

func (r *manualEntryRepository) queryEntries(ctx context.Context, query string, args ...any) ([]models.ManualTradeEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query manual trade entries: %w", err)
	}
	defer rows.Close()

	var entries []models.ManualTradeEntry
	for rows.Next() {
		entry, err := scanManualEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan manual trade entry: %w", err)
		}
		entries = append(entries, *entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating manual trade entries: %w", err)
	}

	return entries, nil
}

// GetByID retrieves a manual trade entry by ID
func (r *manualEntryRepository) GetByID(ctx context.Context, id int64) (*models.ManualTradeEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM manual_trade_entries
		WHERE id = ?
	`, manualColumns)

	entry, err := scanManualEntry(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("manual trade entry %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get manual trade entry: %w", err)
	}

	return entry, nil
}

// Create inserts a new manual trade entry
func (r *manualEntryRepository) Create(ctx context.Context, entry *models.ManualTradeEntry) error {
	query := `
		INSERT INTO manual_trade_entries (
			trade_date, team_name, client_code, commodity, trade_type,
			quantity, avg_price, broker, remark, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		entry.TradeDate,
		entry.TeamName,
		entry.ClientCode,
		entry.Commodity,
		entry.TradeType,
		entry.Quantity,
		entry.AvgPrice,
		entry.Broker,
		entry.Remark,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create manual trade entry: %w", err)
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

// Update replaces all business fields of an existing manual trade entry
func (r *manualEntryRepository) Update(ctx context.Context, entry *models.ManualTradeEntry) error {
	query := `
		UPDATE manual_trade_entries SET
			trade_date = ?, team_name = ?, client_code = ?, commodity = ?,
			trade_type = ?, quantity = ?, avg_price = ?, broker = ?, remark = ?,
			updated_at = ?
		WHERE id = ?
	`

	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		entry.TradeDate,
		entry.TeamName,
		entry.ClientCode,
		entry.Commodity,
		entry.TradeType,
		entry.Quantity,
		entry.AvgPrice,
		entry.Broker,
		entry.Remark,
		now,
		entry.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update manual trade entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("manual trade entry %d: %w", entry.ID, ErrNotFound)
	}

	entry.UpdatedAt = now
	return nil
}

// Delete removes a manual trade entry by ID
func (r *manualEntryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM manual_trade_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete manual trade entry: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("manual trade entry %d: %w", id, ErrNotFound)
	}

	return nil
}
