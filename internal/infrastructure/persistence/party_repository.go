package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastra-erp/backend/internal/domain/partner"
	"github.com/vastra-erp/backend/internal/domain/shared"
	"github.com/vastra-erp/backend/internal/infrastructure/persistence/models"
)

// GormPartyRepository implements partner.PartyRepository using GORM
type GormPartyRepository struct {
	db *gorm.DB
}

// NewGormPartyRepository creates a new GormPartyRepository
func NewGormPartyRepository(db *gorm.DB) *GormPartyRepository {
	return &GormPartyRepository{db: db}
}

// FindByID finds a party by ID within a scope
func (r *GormPartyRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*partner.Party, error) {
	var model models.PartyModel
	if err := scopedQuery(r.db.WithContext(ctx), scope).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByName finds a party by exact name within a scope
func (r *GormPartyRepository) FindByName(ctx context.Context, scope shared.Scope, name string) (*partner.Party, error) {
	var model models.PartyModel
	if err := scopedQuery(r.db.WithContext(ctx), scope).
		Where("name = ?", name).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds parties within a scope with filtering
func (r *GormPartyRepository) FindAll(ctx context.Context, scope shared.Scope, filter partner.PartyFilter) ([]partner.Party, error) {
	var partyModels []models.PartyModel
	query := scopedQuery(r.db.WithContext(ctx).Model(&models.PartyModel{}), scope)
	query = r.applyFilter(query, filter)
	query = applyPagination(query, filter.Filter, PartySortFields)

	if err := query.Find(&partyModels).Error; err != nil {
		return nil, err
	}
	parties := make([]partner.Party, len(partyModels))
	for i, model := range partyModels {
		parties[i] = *model.ToDomain()
	}
	return parties, nil
}

// Save creates or updates a party
func (r *GormPartyRepository) Save(ctx context.Context, party *partner.Party) error {
	model := models.PartyModelFromDomain(party)
	return r.db.WithContext(ctx).Save(model).Error
}

// Delete removes a party
func (r *GormPartyRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	result := scopedQuery(r.db.WithContext(ctx), scope).
		Delete(&models.PartyModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts parties within a scope
func (r *GormPartyRepository) Count(ctx context.Context, scope shared.Scope, filter partner.PartyFilter) (int64, error) {
	var count int64
	query := scopedQuery(r.db.WithContext(ctx).Model(&models.PartyModel{}), scope)
	query = r.applyFilter(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies party filter options without pagination
func (r *GormPartyRepository) applyFilter(query *gorm.DB, filter partner.PartyFilter) *gorm.DB {
	if filter.Kind != nil {
		query = query.Where("kind = ?", *filter.Kind)
	}
	if filter.IsActive != nil {
		query = query.Where("is_active = ?", *filter.IsActive)
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR gstin ILIKE ? OR phone ILIKE ?", pattern, pattern, pattern)
	}
	return query
}
