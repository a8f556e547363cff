package repositories

import (
	"errors"

	"github.com/mattn/go-sqlite3"
)

// Sentinel errors returned by the repositories. Callers match them with
// errors.Is to pick the right HTTP status.
var (
	// ErrNotFound means the referenced row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a unique key (username, master value) is taken.
	ErrConflict = errors.New("already exists")
	// ErrUnknownCategory means the master category name is not mapped
	// to any lookup table.
	ErrUnknownCategory = errors.New("unknown master category")
)

// isUniqueViolation reports whether err is a SQLite unique-constraint
// failure so it can be surfaced as ErrConflict.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
