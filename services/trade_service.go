package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/tradedesk/tradelog/dbx"
	"github.com/tradedesk/tradelog/models"
	"github.com/tradedesk/tradelog/repositories"
	"github.com/tradedesk/tradelog/userctx"
)

// TradeService interface defines trade entry business logic.
//
// Update and Delete carry the audit contract: the snapshot write(s) and
// the row mutation commit in one transaction, so a failure anywhere
// leaves both the live table and the log untouched.
type TradeService interface {
	GetAll(ctx context.Context) ([]models.TradeEntry, error)
	GetByID(ctx context.Context, id int64) (*models.TradeEntry, error)
	GetByDate(ctx context.Context, tradeDate string) ([]models.TradeEntry, error)
	Create(ctx context.Context, entry *models.TradeEntry) (*models.TradeEntry, error)
	Update(ctx context.Context, id int64, entry *models.TradeEntry) (*models.TradeEntry, error)
	Delete(ctx context.Context, id int64) error
}

// tradeService implements TradeService interface
type tradeService struct {
	db     *sql.DB
	trades repositories.TradeRepository
}

// NewTradeService creates a new trade service
func NewTradeService(db *sql.DB, trades repositories.TradeRepository) TradeService {
	return &tradeService{
		db:     db,
		trades: trades,
	}
}

// GetAll retrieves all trade entries
func (s *tradeService) GetAll(ctx context.Context) ([]models.TradeEntry, error) {
	return s.trades.GetAll(ctx)
}

// GetByID retrieves a trade entry by ID
func (s *tradeService) GetByID(ctx context.Context, id int64) (*models.TradeEntry, error) {
	return s.trades.GetByID(ctx, id)
}

// GetByDate retrieves all trade entries for one trade date
func (s *tradeService) GetByDate(ctx context.Context, tradeDate string) ([]models.TradeEntry, error) {
	if _, err := models.ParseDate(tradeDate); err != nil {
		return nil, fmt.Errorf("%w: tradeDate must be in YYYY-MM-DD format", ErrValidation)
	}
	return s.trades.GetByDate(ctx, tradeDate)
}

// Create validates and stores a new trade entry. Creates are not
// audit-logged; only edits and deletes of existing rows are.
func (s *tradeService) Create(ctx context.Context, entry *models.TradeEntry) (*models.TradeEntry, error) {
	if errs := entry.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, ", "))
	}

	if err := s.trades.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to create trade entry: %w", err)
	}

	return entry, nil
}

// Update replaces an existing trade entry inside one transaction that
// also writes the "before" and "after" audit snapshots. The before
// snapshot uses the row as read prior to the mutation, the after
// snapshot the row as re-read once the mutation applied.
func (s *tradeService) Update(ctx context.Context, id int64, entry *models.TradeEntry) (*models.TradeEntry, error) {
	if errs := entry.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, ", "))
	}

	actingUser := userctx.GetUsername(ctx)

	var updated *models.TradeEntry
	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		trades := repositories.NewTradeRepository(tx)
		audit := repositories.NewAuditRepository(tx)

		current, err := trades.GetByID(ctx, id)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		before := &models.TradeEntryLog{
			EntryID:   id,
			Operation: models.OpUpdate,
			Tag:       models.TagBefore,
			Snapshot:  models.SnapshotOf(current),
			ChangedBy: actingUser,
			ChangedAt: now,
		}
		if err := audit.Create(ctx, before); err != nil {
			return err
		}

		entry.ID = id
		if err := trades.Update(ctx, entry); err != nil {
			return err
		}

		updated, err = trades.GetByID(ctx, id)
		if err != nil {
			return err
		}

		after := &models.TradeEntryLog{
			EntryID:   id,
			Operation: models.OpUpdate,
			Tag:       models.TagAfter,
			Snapshot:  models.SnapshotOf(updated),
			ChangedBy: actingUser,
			ChangedAt: now,
		}
		return audit.Create(ctx, after)
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// Delete removes a trade entry inside one transaction that also writes
// the "deleted" audit snapshot taken from the row before its removal.
func (s *tradeService) Delete(ctx context.Context, id int64) error {
	actingUser := userctx.GetUsername(ctx)

	return dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		trades := repositories.NewTradeRepository(tx)
		audit := repositories.NewAuditRepository(tx)

		current, err := trades.GetByID(ctx, id)
		if err != nil {
			return err
		}

		deleted := &models.TradeEntryLog{
			EntryID:   id,
			Operation: models.OpDelete,
			Tag:       models.TagDeleted,
			Snapshot:  models.SnapshotOf(current),
			ChangedBy: actingUser,
			ChangedAt: time.Now().UTC(),
		}
		if err := audit.Create(ctx, deleted); err != nil {
			return err
		}

		return trades.Delete(ctx, id)
	})
}
