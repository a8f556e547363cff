package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/tradedesk/tradelog/auth"
	"github.com/tradedesk/tradelog/repositories"
	"github.com/tradedesk/tradelog/services"
)

// Controllers holds all controller instances
type Controllers struct {
	Auth          *AuthController
	Trades        *TradeController
	ManualEntries *ManualEntryController
	Masters       *MasterController
	Users         *UserController
	Audit         *AuditController
}

// NewControllers creates and initializes all controller instances
func NewControllers(srvs *services.Services, sessions *auth.Manager, sessionMaxAge time.Duration) *Controllers {
	return &Controllers{
		Auth:          NewAuthController(srvs, sessions, sessionMaxAge),
		Trades:        NewTradeController(srvs),
		ManualEntries: NewManualEntryController(srvs),
		Masters:       NewMasterController(srvs),
		Users:         NewUserController(srvs),
		Audit:         NewAuditController(srvs),
	}
}

// respondJSON writes v as a JSON body with the given status code
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError writes a JSON error body in the {"detail": ...} shape
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"detail": message})
}

// respondServiceError maps the sentinel errors of the lower layers to
// HTTP statuses; anything unmatched is a server error with the
// underlying message attached for operator diagnosis.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, repositories.ErrConflict):
		respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, repositories.ErrUnknownCategory),
		errors.Is(err, services.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, auth.ErrAuthRequired),
		errors.Is(err, auth.ErrMalformedHeader),
		errors.Is(err, auth.ErrInvalidSession):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrAdminProtected),
		errors.Is(err, auth.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// decodeJSON reads the request body into v
func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
