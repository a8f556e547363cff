package models

import "time"

// Roles attached to user accounts and sessions.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is a persisted account. Passwords are stored as bcrypt hashes
// and never serialized.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Permissions  []string   `json:"permissions"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// ValidRole reports whether role is one of the known role labels.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
