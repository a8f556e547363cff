// Package auth issues, validates and revokes the bearer tokens that
// gate every protected endpoint.
//
// Tokens have exactly two states: absent and active. A token becomes
// active through CreateSession and absent again through DeleteSession,
// DeleteAllSessionsForUser or SweepExpired. There is no automatic
// expiry: unless SweepExpired is invoked by an operator, a session
// lives until it is revoked or the process restarts.
package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Errors returned by Authenticate and Authorize. Callers match them
// with errors.Is and translate them to the matching HTTP status.
var (
	// ErrAuthRequired means no Authorization header was presented.
	ErrAuthRequired = errors.New("authentication required")
	// ErrMalformedHeader means the header lacked the "Bearer " scheme.
	ErrMalformedHeader = errors.New("invalid authorization header format")
	// ErrInvalidSession means the token resolves to no active session.
	ErrInvalidSession = errors.New("invalid or expired session")
	// ErrForbidden means the session's role is insufficient.
	ErrForbidden = errors.New("insufficient role")
)

const bearerPrefix = "Bearer "

// tokenBytes gives 256 bits of entropy per token.
const tokenBytes = 32

// Manager owns the session table and the authentication/authorization
// gates built on top of it.
type Manager struct {
	store SessionStore
	now   func() time.Time
}

// NewManager creates a session manager on top of the given store.
func NewManager(store SessionStore) *Manager {
	return &Manager{
		store: store,
		now:   time.Now,
	}
}

// generateToken returns a fresh URL-safe token from the crypto/rand
// source. Uniqueness comes from entropy, not collision checking.
func generateToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process cannot mint credentials.
		panic(fmt.Sprintf("auth: reading random source: %v", err))
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

// CreateSession stores a new session for the user and returns its token.
func (m *Manager) CreateSession(userID int64, username, role string) string {
	token := generateToken()
	m.store.Create(Session{
		Token:     token,
		UserID:    userID,
		Username:  username,
		Role:      role,
		CreatedAt: m.now(),
	})
	return token
}

// GetSession looks a session up by token. Pure lookup, no side effects.
func (m *Manager) GetSession(token string) (Session, bool) {
	return m.store.Get(token)
}

// DeleteSession revokes a session. Idempotent; reports whether the
// token was active.
func (m *Manager) DeleteSession(token string) bool {
	return m.store.Delete(token)
}

// DeleteAllSessionsForUser revokes every session held by username,
// forcing an immediate logout of all its logins. Returns the number
// revoked.
func (m *Manager) DeleteAllSessionsForUser(username string) int {
	return m.store.DeleteAllForUser(username)
}

// SweepExpired removes sessions older than maxAge and returns the
// number removed. Nothing calls this on a schedule; it exists for an
// operator-triggered cleanup.
func (m *Manager) SweepExpired(maxAge time.Duration) int {
	return m.store.Sweep(m.now().Add(-maxAge))
}

// ActiveSessions returns the number of active sessions.
func (m *Manager) ActiveSessions() int {
	return m.store.Count()
}

// ParseBearerToken extracts the token from an Authorization header.
// It requires the literal "Bearer " scheme prefix.
func ParseBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrAuthRequired
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrMalformedHeader
	}
	return strings.TrimPrefix(header, bearerPrefix), nil
}

// Authenticate parses an Authorization header and resolves it to an
// active session. This is the single gate every protected handler
// passes through first.
func (m *Manager) Authenticate(header string) (Session, error) {
	token, err := ParseBearerToken(header)
	if err != nil {
		return Session{}, err
	}
	s, ok := m.store.Get(token)
	if !ok {
		return Session{}, ErrInvalidSession
	}
	return s, nil
}

// Authorize authenticates the header and then requires the session to
// carry the given role.
func (m *Manager) Authorize(header, requiredRole string) (Session, error) {
	s, err := m.Authenticate(header)
	if err != nil {
		return Session{}, err
	}
	if s.Role != requiredRole {
		return Session{}, ErrForbidden
	}
	return s, nil
}
