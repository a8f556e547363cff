package services

import (
	"database/sql"
	"errors"

	"github.com/tradedesk/tradelog/auth"
	"github.com/tradedesk/tradelog/repositories"
)

// Service-level sentinel errors.
var (
	// ErrInvalidCredentials deliberately covers both an unknown username
	// and a wrong password so a caller cannot probe which one failed.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrAdminProtected means the operation targets an admin account,
	// which may not be deleted.
	ErrAdminProtected = errors.New("admin accounts cannot be deleted")
	// ErrValidation wraps field-level validation messages.
	ErrValidation = errors.New("validation failed")
)

// Services holds all service instances
type Services struct {
	Trades        TradeService
	ManualEntries ManualEntryService
	Users         UserService
	Masters       MasterService
	Audit         AuditService
}

// NewServices creates and initializes all service instances. The raw
// *sql.DB is needed alongside the repositories because the audited
// trade mutations open their own transactions.
func NewServices(db *sql.DB, repos *repositories.Repositories, sessions *auth.Manager) *Services {
	return &Services{
		Trades:        NewTradeService(db, repos.Trades),
		ManualEntries: NewManualEntryService(db, repos.ManualEntries),
		Users:         NewUserService(repos.Users, sessions),
		Masters:       NewMasterService(repos.Masters),
		Audit:         NewAuditService(repos.Audit),
	}
}
