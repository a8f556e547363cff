package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tradedesk/tradelog/auth"
	"github.com/tradedesk/tradelog/models"
	"github.com/tradedesk/tradelog/repositories"
)

// Introspection is what the session-introspection endpoint returns.
// It never reports an error for a bad token, only Valid=false.
type Introspection struct {
	Valid       bool     `json:"valid"`
	Username    string   `json:"username,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// UserService interface defines account and login business logic
type UserService interface {
	Login(ctx context.Context, username, password string) (token string, user *models.User, err error)
	Logout(authorizationHeader string) error
	Introspect(ctx context.Context, authorizationHeader string) Introspection
	Create(ctx context.Context, username, password, role string, permissions []string) (*models.User, error)
	Delete(ctx context.Context, username string) error
	GetAll(ctx context.Context) ([]models.User, error)
	Bootstrap(ctx context.Context, adminUsername, adminPassword string) error
}

// userService implements UserService interface
type userService struct {
	users    repositories.UserRepository
	sessions *auth.Manager
}

// NewUserService creates a new user service
func NewUserService(users repositories.UserRepository, sessions *auth.Manager) UserService {
	return &userService{
		users:    users,
		sessions: sessions,
	}
}

// Login resolves credentials to a fresh session token. An unknown
// username and a wrong password collapse to the same error.
func (s *userService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	// Stamp last_login before minting the token: a failed login must
	// never leave a live session behind.
	if err := s.users.UpdateLastLogin(ctx, user.Username, time.Now().UTC()); err != nil {
		return "", nil, err
	}

	token := s.sessions.CreateSession(user.ID, user.Username, user.Role)

	return token, user, nil
}

// Logout revokes the session named by the Authorization header. Once
// the header parses the call always succeeds: revoking a token that is
// already absent is a no-op.
func (s *userService) Logout(authorizationHeader string) error {
	token, err := auth.ParseBearerToken(authorizationHeader)
	if err != nil {
		return err
	}
	s.sessions.DeleteSession(token)
	return nil
}

// Introspect reports whether the header names an active session,
// without ever failing on a missing or invalid token.
func (s *userService) Introspect(ctx context.Context, authorizationHeader string) Introspection {
	session, err := s.sessions.Authenticate(authorizationHeader)
	if err != nil {
		return Introspection{Valid: false}
	}

	result := Introspection{
		Valid:    true,
		Username: session.Username,
		Role:     session.Role,
	}

	// Permissions live on the account row; a session can briefly outlive
	// it, in which case they are simply omitted.
	if user, err := s.users.GetByUsername(ctx, session.Username); err == nil {
		result.Permissions = user.Permissions
	}

	return result
}

// Create stores a new account with a bcrypt-hashed password
func (s *userService) Create(ctx context.Context, username, password, role string, permissions []string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrValidation)
	}
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("%w: role must be %q or %q", ErrValidation, models.RoleUser, models.RoleAdmin)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Permissions:  permissions,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Delete removes an account. Admin accounts are protected, and every
// active session of the account is revoked before the row goes away so
// a logged-in instance cannot keep acting on a deleted account.
func (s *userService) Delete(ctx context.Context, username string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}

	if user.Role == models.RoleAdmin {
		return ErrAdminProtected
	}

	s.sessions.DeleteAllSessionsForUser(username)

	return s.users.Delete(ctx, username)
}

// GetAll retrieves all user accounts
func (s *userService) GetAll(ctx context.Context) ([]models.User, error) {
	return s.users.GetAll(ctx)
}

// Bootstrap seeds the first admin account when the users table is
// empty, so a fresh deployment can log in at all.
func (s *userService) Bootstrap(ctx context.Context, adminUsername, adminPassword string) error {
	count, err := s.users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if adminUsername == "" || adminPassword == "" {
		return fmt.Errorf("users table is empty and no admin credentials are configured")
	}

	_, err = s.Create(ctx, adminUsername, adminPassword, models.RoleAdmin, []string{"*"})
	return err
}
