package repositories

import (
	"database/sql"
)

// Repositories struct holds all repository interfaces
type Repositories struct {
	Trades        TradeRepository
	ManualEntries ManualEntryRepository
	Users         UserRepository
	Masters       MasterRepository
	Audit         AuditRepository
}

// NewRepositories creates and initializes all repositories bound to the
// shared connection. Repositories that take part in audited mutations
// are re-bound to a transaction by the services (see dbx.DBTX).
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Trades:        NewTradeRepository(db),
		ManualEntries: NewManualEntryRepository(db),
		Users:         NewUserRepository(db),
		Masters:       NewMasterRepository(db),
		Audit:         NewAuditRepository(db),
	}
}
