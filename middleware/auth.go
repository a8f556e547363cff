package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tradedesk/tradelog/auth"
	"github.com/tradedesk/tradelog/models"
	"github.com/tradedesk/tradelog/userctx"
)

// RequireAuth gates a route group behind an active bearer session. The
// session's identity is placed in the request context for handlers and
// repositories to attribute writes.
func RequireAuth(sessions *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessions.Authenticate(r.Header.Get("Authorization"))
			if err != nil {
				writeAuthError(w, err)
				return
			}

			ctx := userctx.SetUsername(r.Context(), session.Username)
			ctx = userctx.SetRole(ctx, session.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates a route group behind an active session carrying
// the admin role.
func RequireAdmin(sessions *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessions.Authorize(r.Header.Get("Authorization"), models.RoleAdmin)
			if err != nil {
				writeAuthError(w, err)
				return
			}

			ctx := userctx.SetUsername(r.Context(), session.Username)
			ctx = userctx.SetRole(ctx, session.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeAuthError maps the auth sentinel errors to their HTTP status.
func writeAuthError(w http.ResponseWriter, err error) {
	status := http.StatusUnauthorized
	if errors.Is(err, auth.ErrForbidden) {
		status = http.StatusForbidden
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": err.Error()})
}
