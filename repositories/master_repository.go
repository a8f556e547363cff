package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tradedesk/tradelog/dbx"
	"github.com/tradedesk/tradelog/models"
)

// masterCategories is the fixed catalog of master categories in display
// order. Client Code stores its value in a "code" column, the rest in
// "name". Table and column names only ever come from this table, never
// from request input.
var masterCategories = []struct {
	category string
	table    string
	column   string
}{
	{"Strategy", "master_strategy", "name"},
	{"Exchange", "master_exchange", "name"},
	{"Contract Type", "master_contract_type", "name"},
	{"Trade Type", "master_trade_type", "name"},
	{"Option Type", "master_option_type", "name"},
	{"Code", "master_code", "name"},
	{"Commodity", "master_commodity", "name"},
	{"Client Code", "master_client_code", "code"},
	{"Broker", "master_broker", "name"},
	{"Team Name", "master_team_name", "name"},
}

// MasterCategories returns the known category names in display order.
func MasterCategories() []string {
	names := make([]string, len(masterCategories))
	for i, c := range masterCategories {
		names[i] = c.category
	}
	return names
}

func lookupCategory(category string) (table, column string, err error) {
	for _, c := range masterCategories {
		if c.category == category {
			return c.table, c.column, nil
		}
	}
	return "", "", fmt.Errorf("%q: %w", category, ErrUnknownCategory)
}

// MasterRepository handles the lookup-table ("master data") categories
type MasterRepository interface {
	GetValues(ctx context.Context, category string) ([]models.MasterValue, error)
	GetAll(ctx context.Context) (map[string][]models.MasterValue, error)
	Create(ctx context.Context, category, name string) (*models.MasterValue, error)
	Delete(ctx context.Context, category string, id int64) error
}

type masterRepository struct {
	db dbx.DBTX
}

// NewMasterRepository creates a new master data repository
func NewMasterRepository(db dbx.DBTX) MasterRepository {
	return &masterRepository{db: db}
}

// GetValues retrieves all values for one master category, sorted by name
func (r *masterRepository) GetValues(ctx context.Context, category string) ([]models.MasterValue, error) {
	table, column, err := lookupCategory(category)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, %s, created_at
		FROM %s
		ORDER BY %s ASC
	`, column, table, column)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query master values: %w", err)
	}
	defer rows.Close()

	var values []models.MasterValue
	for rows.Next() {
		var value models.MasterValue
		if err := rows.Scan(&value.ID, &value.Name, &value.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan master value: %w", err)
		}
		values = append(values, value)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating master values: %w", err)
	}

	return values, nil
}

// GetAll retrieves every category with its values
func (r *masterRepository) GetAll(ctx context.Context) (map[string][]models.MasterValue, error) {
	result := make(map[string][]models.MasterValue, len(masterCategories))
	for _, c := range masterCategories {
		values, err := r.GetValues(ctx, c.category)
		if err != nil {
			return nil, err
		}
		result[c.category] = values
	}
	return result, nil
}

// Create inserts a new value into a master category
func (r *masterRepository) Create(ctx context.Context, category, name string) (*models.MasterValue, error) {
	table, column, err := lookupCategory(category)
	if err != nil {
		return nil, err
	}

	insert := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (?)`, table, column)
	result, err := r.db.ExecContext(ctx, insert, name)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s value %q: %w", category, name, ErrConflict)
		}
		return nil, fmt.Errorf("failed to create master value: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted ID: %w", err)
	}

	var value models.MasterValue
	query := fmt.Sprintf(`SELECT id, %s, created_at FROM %s WHERE id = ?`, column, table)
	err = r.db.QueryRowContext(ctx, query, id).Scan(&value.ID, &value.Name, &value.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("master value %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read back master value: %w", err)
	}

	return &value, nil
}

// Delete removes a value from a master category by ID
func (r *masterRepository) Delete(ctx context.Context, category string, id int64) error {
	table, _, err := lookupCategory(category)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, table), id)
	if err != nil {
		return fmt.Errorf("failed to delete master value: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%s value %d: %w", category, id, ErrNotFound)
	}

	return nil
}
