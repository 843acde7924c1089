package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastra-erp/backend/internal/domain/inventory"
	"github.com/vastra-erp/backend/internal/domain/shared"
	"github.com/vastra-erp/backend/internal/infrastructure/persistence/models"
)

// GormTransferRepository implements inventory.TransferRepository using GORM
type GormTransferRepository struct {
	db *gorm.DB
}

// NewGormTransferRepository creates a new GormTransferRepository
func NewGormTransferRepository(db *gorm.DB) *GormTransferRepository {
	return &GormTransferRepository{db: db}
}

// FindByID finds a transfer by ID within a scope
func (r *GormTransferRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*inventory.Transfer, error) {
	var model models.TransferModel
	if err := scopedQuery(r.db.WithContext(ctx), scope).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds transfers within a scope with filtering
func (r *GormTransferRepository) FindAll(ctx context.Context, scope shared.Scope, filter inventory.TransferFilter) ([]inventory.Transfer, error) {
	var transferModels []models.TransferModel
	query := scopedQuery(r.db.WithContext(ctx).Model(&models.TransferModel{}), scope)
	query = r.applyFilter(query, filter)
	query = applyPagination(query, filter.Filter, TransferSortFields)

	if err := query.Find(&transferModels).Error; err != nil {
		return nil, err
	}
	transfers := make([]inventory.Transfer, len(transferModels))
	for i, model := range transferModels {
		transfers[i] = *model.ToDomain()
	}
	return transfers, nil
}

// Save creates or updates a transfer
func (r *GormTransferRepository) Save(ctx context.Context, transfer *inventory.Transfer) error {
	model := models.TransferModelFromDomain(transfer)
	return r.db.WithContext(ctx).Save(model).Error
}

// Count counts transfers within a scope
func (r *GormTransferRepository) Count(ctx context.Context, scope shared.Scope, filter inventory.TransferFilter) (int64, error) {
	var count int64
	query := scopedQuery(r.db.WithContext(ctx).Model(&models.TransferModel{}), scope)
	query = r.applyFilter(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies transfer filter options without pagination
func (r *GormTransferRepository) applyFilter(query *gorm.DB, filter inventory.TransferFilter) *gorm.DB {
	if filter.FromPartyID != nil {
		query = query.Where("from_party_id = ?", *filter.FromPartyID)
	}
	if filter.ToPartyID != nil {
		query = query.Where("to_party_id = ?", *filter.ToPartyID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("transfer_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("transfer_date <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("transfer_number ILIKE ? OR from_party_name ILIKE ? OR to_party_name ILIKE ?",
			pattern, pattern, pattern)
	}
	return query
}
