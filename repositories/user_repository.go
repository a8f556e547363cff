package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tradedesk/tradelog/dbx"
	"github.com/tradedesk/tradelog/models"
)

// UserRepository interface defines user account database operations
type UserRepository interface {
	GetAll(ctx context.Context) ([]models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, username string) error
	UpdateLastLogin(ctx context.Context, username string, at time.Time) error
	Count(ctx context.Context) (int, error)
}

type userRepository struct {
	db dbx.DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db dbx.DBTX) UserRepository {
	return &userRepository{db: db}
}

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var user models.User
	var permissions string
	var lastLogin sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&permissions,
		&lastLogin,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastLogin.Valid {
		user.LastLogin = &lastLogin.Time
	}
	if err := json.Unmarshal([]byte(permissions), &user.Permissions); err != nil {
		return nil, fmt.Errorf("failed to decode permissions: %w", err)
	}

	return &user, nil
}

// GetAll retrieves all user accounts
func (r *userRepository) GetAll(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, username, password_hash, role, permissions, last_login, created_at
		FROM users
		ORDER BY username ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// GetByUsername retrieves one user account by its unique username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `
		SELECT id, username, password_hash, role, permissions, last_login, created_at
		FROM users
		WHERE username = ?
	`

	user, err := scanUser(r.db.QueryRowContext(ctx, query, username))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// Create inserts a new user account. A taken username yields ErrConflict.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (username, password_hash, role, permissions, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	if user.Permissions == nil {
		user.Permissions = []string{}
	}
	permissions, err := json.Marshal(user.Permissions)
	if err != nil {
		return fmt.Errorf("failed to encode permissions: %w", err)
	}

	now := time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		user.Username,
		user.PasswordHash,
		user.Role,
		string(permissions),
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("user %q: %w", user.Username, ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get inserted ID: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	return nil
}

// Delete removes a user account by username
func (r *userRepository) Delete(ctx context.Context, username string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE username = ?`, username)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user %q: %w", username, ErrNotFound)
	}

	return nil
}

// UpdateLastLogin stamps the account's last successful login time
func (r *userRepository) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login = ? WHERE username = ?`, at, username)
	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}
	return nil
}

// Count returns the total number of user accounts
func (r *userRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
