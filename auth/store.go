package auth

import (
	"sync"
	"time"
)

// Session is one authenticated login. Handlers receive sessions by
// value, so the store's copy is never mutated from outside.
type Session struct {
	Token     string
	UserID    int64
	Username  string
	Role      string
	CreatedAt time.Time
}

// SessionStore abstracts the session table so it can be injected into
// the manager instead of living in package-level state. The default
// implementation keeps sessions in process memory only: a restart
// invalidates every active login.
type SessionStore interface {
	// Create stores a session keyed by its token.
	Create(s Session)
	// Get retrieves a session by token. No expiry check happens here;
	// a session stays retrievable until something removes it.
	Get(token string) (Session, bool)
	// Delete removes a session by token, reporting whether it existed.
	Delete(token string) bool
	// DeleteAllForUser removes every session owned by username and
	// returns the number removed.
	DeleteAllForUser(username string) int
	// Sweep removes sessions created before cutoff and returns the
	// number removed.
	Sweep(cutoff time.Time) int
	// Count returns the number of active sessions.
	Count() int
}

// memoryStore is the in-memory SessionStore. A single RWMutex is enough:
// every operation is a map access held only for its duration.
type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() SessionStore {
	return &memoryStore{
		sessions: make(map[string]Session),
	}
}

func (m *memoryStore) Create(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.Token] = s
}

func (m *memoryStore) Get(token string) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[token]
	return s, ok
}

func (m *memoryStore) Delete(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[token]
	if ok {
		delete(m.sessions, token)
	}
	return ok
}

func (m *memoryStore) DeleteAllForUser(username string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for token, s := range m.sessions {
		if s.Username == username {
			delete(m.sessions, token)
			count++
		}
	}
	return count
}

func (m *memoryStore) Sweep(cutoff time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for token, s := range m.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(m.sessions, token)
			count++
		}
	}
	return count
}

func (m *memoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
