package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/tradedesk/tradelog/dbx"
	"github.com/tradedesk/tradelog/models"
	"github.com/tradedesk/tradelog/repositories"
)

// ManualEntryService interface defines manual trade entry business logic
type ManualEntryService interface {
	GetAll(ctx context.Context) ([]models.ManualTradeEntry, error)
	GetByID(ctx context.Context, id int64) (*models.ManualTradeEntry, error)
	GetByDate(ctx context.Context, tradeDate string) ([]models.ManualTradeEntry, error)
	Create(ctx context.Context, entry *models.ManualTradeEntry) (*models.ManualTradeEntry, error)
	// BulkCreate stores a batch from the grid in one transaction: either
	// every row is created or none is.
	BulkCreate(ctx context.Context, entries []models.ManualTradeEntry) ([]models.ManualTradeEntry, error)
	Update(ctx context.Context, id int64, entry *models.ManualTradeEntry) (*models.ManualTradeEntry, error)
	Delete(ctx context.Context, id int64) error
}

// manualEntryService implements ManualEntryService interface
type manualEntryService struct {
	db      *sql.DB
	entries repositories.ManualEntryRepository
}

// NewManualEntryService creates a new manual entry service
func NewManualEntryService(db *sql.DB, entries repositories.ManualEntryRepository) ManualEntryService {
	return &manualEntryService{
		db:      db,
		entries: entries,
	}
}

// GetAll retrieves all manual trade entries
func (s *manualEntryService) GetAll(ctx context.Context) ([]models.ManualTradeEntry, error) {
	return s.entries.GetAll(ctx)
}

// GetByID retrieves a manual trade entry by ID
func (s *manualEntryService) GetByID(ctx context.Context, id int64) (*models.ManualTradeEntry, error) {
	return s.entries.GetByID(ctx, id)
}

// GetByDate retrieves manual trade entries for one trade date
func (s *manualEntryService) GetByDate(ctx context.Context, tradeDate string) ([]models.ManualTradeEntry, error) {
	if _, err := models.ParseDate(tradeDate); err != nil {
		return nil, fmt.Errorf("%w: tradeDate must be in YYYY-MM-DD format", ErrValidation)
	}
	return s.entries.GetByDate(ctx, tradeDate)
}

// Create validates and stores one manual trade entry
func (s *manualEntryService) Create(ctx context.Context, entry *models.ManualTradeEntry) (*models.ManualTradeEntry, error) {
	if errs := entry.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, ", "))
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// BulkCreate stores a batch of manual trade entries atomically
func (s *manualEntryService) BulkCreate(ctx context.Context, entries []models.ManualTradeEntry) ([]models.ManualTradeEntry, error) {
	for i := range entries {
		if errs := entries[i].Validate(); len(errs) > 0 {
			return nil, fmt.Errorf("%w: row %d: %s", ErrValidation, i+1, strings.Join(errs, ", "))
		}
	}

	err := dbx.WithTx(ctx, s.db, func(ctx context.Context, tx dbx.DBTX) error {
		repo := repositories.NewManualEntryRepository(tx)
		for i := range entries {
			if err := repo.Create(ctx, &entries[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// Update replaces an existing manual trade entry
func (s *manualEntryService) Update(ctx context.Context, id int64, entry *models.ManualTradeEntry) (*models.ManualTradeEntry, error) {
	if errs := entry.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrValidation, strings.Join(errs, ", "))
	}

	entry.ID = id
	if err := s.entries.Update(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// Delete removes a manual trade entry
func (s *manualEntryService) Delete(ctx context.Context, id int64) error {
	return s.entries.Delete(ctx, id)
}
