package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tradedesk/tradelog/models"
	"github.com/tradedesk/tradelog/repositories"
)

// MasterService interface defines master data business logic
type MasterService interface {
	GetAll(ctx context.Context) (map[string][]models.MasterValue, error)
	GetCategory(ctx context.Context, category string) ([]models.MasterValue, error)
	CreateValue(ctx context.Context, category, name string) (*models.MasterValue, error)
	DeleteValue(ctx context.Context, category string, id int64) error
}

// masterService implements MasterService interface
type masterService struct {
	masters repositories.MasterRepository
}

// NewMasterService creates a new master data service
func NewMasterService(masters repositories.MasterRepository) MasterService {
	return &masterService{masters: masters}
}

// GetAll retrieves every master category with its values
func (s *masterService) GetAll(ctx context.Context) (map[string][]models.MasterValue, error) {
	return s.masters.GetAll(ctx)
}

// GetCategory retrieves all values for one master category
func (s *masterService) GetCategory(ctx context.Context, category string) ([]models.MasterValue, error) {
	return s.masters.GetValues(ctx, category)
}

// CreateValue adds a new value to a master category
func (s *masterService) CreateValue(ctx context.Context, category, name string) (*models.MasterValue, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidation)
	}
	return s.masters.Create(ctx, category, name)
}

// DeleteValue removes a value from a master category
func (s *masterService) DeleteValue(ctx context.Context, category string, id int64) error {
	return s.masters.Delete(ctx, category, id)
}
