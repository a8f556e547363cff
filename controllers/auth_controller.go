package controllers

import (
	"net/http"
	"time"

	"github.com/tradedesk/tradelog/auth"
	"github.com/tradedesk/tradelog/services"
)

// AuthController handles login, logout, session introspection and the
// operator-triggered session sweep.
type AuthController struct {
	services      *services.Services
	sessions      *auth.Manager
	sessionMaxAge time.Duration
}

// NewAuthController creates a new auth controller
func NewAuthController(srvs *services.Services, sessions *auth.Manager, sessionMaxAge time.Duration) *AuthController {
	return &AuthController{
		services:      srvs,
		sessions:      sessions,
		sessionMaxAge: sessionMaxAge,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Login handles POST /api/auth/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := c.services.Users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{
		Token:    token,
		Username: user.Username,
		Role:     user.Role,
	})
}

// Logout handles POST /api/auth/logout. Revoking an already-revoked
// token still succeeds; only a missing or malformed header fails.
func (c *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if err := c.services.Users.Logout(r.Header.Get("Authorization")); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Session handles GET /api/auth/session. Unlike the protected routes it
// never responds with an error for a bad token.
func (c *AuthController) Session(w http.ResponseWriter, r *http.Request) {
	result := c.services.Users.Introspect(r.Context(), r.Header.Get("Authorization"))
	respondJSON(w, http.StatusOK, result)
}

// SweepSessions handles POST /api/admin/sessions/sweep. Sessions never
// expire on their own; this is the only way old ones get cleaned up.
func (c *AuthController) SweepSessions(w http.ResponseWriter, r *http.Request) {
	removed := c.sessions.SweepExpired(c.sessionMaxAge)
	respondJSON(w, http.StatusOK, map[string]int{
		"removed": removed,
		"active":  c.sessions.ActiveSessions(),
	})
}
