package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastra-erp/backend/internal/domain/ledger"
	"github.com/vastra-erp/backend/internal/domain/shared"
	"github.com/vastra-erp/backend/internal/infrastructure/persistence/models"
)

// GormChallanRepository implements ledger.ChallanRepository using GORM
type GormChallanRepository struct {
	db *gorm.DB
}

// NewGormChallanRepository creates a new GormChallanRepository
func NewGormChallanRepository(db *gorm.DB) *GormChallanRepository {
	return &GormChallanRepository{db: db}
}

// FindByID finds a challan by ID within a scope
func (r *GormChallanRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*ledger.Challan, error) {
	var model models.ChallanModel
	if err := scopedQuery(r.db.WithContext(ctx), scope).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds several challans by ID within a scope
func (r *GormChallanRepository) FindByIDs(ctx context.Context, scope shared.Scope, ids []uuid.UUID) ([]ledger.Challan, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var challanModels []models.ChallanModel
	if err := scopedQuery(r.db.WithContext(ctx), scope).
		Where("id IN ?", ids).
		Find(&challanModels).Error; err != nil {
		return nil, err
	}
	return challanModelsToDomain(challanModels), nil
}

// FindByNumber finds a challan by its number within a scope
func (r *GormChallanRepository) FindByNumber(ctx context.Context, scope shared.Scope, challanNumber string) (*ledger.Challan, error) {
	var model models.ChallanModel
	if err := scopedQuery(r.db.WithContext(ctx), scope).
		Where("challan_number = ?", challanNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds challans within a scope with filtering
func (r *GormChallanRepository) FindAll(ctx context.Context, scope shared.Scope, filter ledger.ChallanFilter) ([]ledger.Challan, error) {
	var challanModels []models.ChallanModel
	query := scopedQuery(r.db.WithContext(ctx).Model(&models.ChallanModel{}), scope)
	query = r.applyFilter(query, filter)
	query = applyPagination(query, filter.Filter, ChallanSortFields)

	if err := query.Find(&challanModels).Error; err != nil {
		return nil, err
	}
	return challanModelsToDomain(challanModels), nil
}

// FindBySourceTransfer finds challans minted by a stock transfer
func (r *GormChallanRepository) FindBySourceTransfer(ctx context.Context, scope shared.Scope, transferID uuid.UUID) ([]ledger.Challan, error) {
	var challanModels []models.ChallanModel
	if err := scopedQuery(r.db.WithContext(ctx), scope).
		Where("source_transfer_id = ?", transferID).
		Find(&challanModels).Error; err != nil {
		return nil, err
	}
	return challanModelsToDomain(challanModels), nil
}

// Save creates or updates a challan
func (r *GormChallanRepository) Save(ctx context.Context, challan *ledger.Challan) error {
	model := models.ChallanModelFromDomain(challan)
	return r.db.WithContext(ctx).Save(model).Error
}

// UpdateSettlement persists the settlement trio of a challan as one write
func (r *GormChallanRepository) UpdateSettlement(ctx context.Context, challan *ledger.Challan) error {
	return r.db.WithContext(ctx).
		Model(&models.ChallanModel{}).
		Where("id = ? AND company_id = ? AND financial_year = ?",
			challan.ID, challan.CompanyID, challan.FinancialYear).
		Updates(map[string]interface{}{
			"total_paid":     challan.TotalPaid,
			"outstanding":    challan.Outstanding,
			"payment_status": challan.PaymentStatus,
			"updated_at":     time.Now(),
		}).Error
}

// UpdateStockCounters persists the available/transferred counters as one write
func (r *GormChallanRepository) UpdateStockCounters(ctx context.Context, challan *ledger.Challan) error {
	return r.db.WithContext(ctx).
		Model(&models.ChallanModel{}).
		Where("id = ? AND company_id = ? AND financial_year = ?",
			challan.ID, challan.CompanyID, challan.FinancialYear).
		Updates(map[string]interface{}{
			"available_boxes":    challan.AvailableBoxes,
			"available_meters":   challan.AvailableMeters,
			"transferred_boxes":  challan.TransferredBoxes,
			"transferred_meters": challan.TransferredMeters,
			"updated_at":         time.Now(),
		}).Error
}

// Delete removes a challan
func (r *GormChallanRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	result := scopedQuery(r.db.WithContext(ctx), scope).
		Delete(&models.ChallanModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts challans within a scope
func (r *GormChallanRepository) Count(ctx context.Context, scope shared.Scope, filter ledger.ChallanFilter) (int64, error) {
	var count int64
	query := scopedQuery(r.db.WithContext(ctx).Model(&models.ChallanModel{}), scope)
	query = r.applyFilter(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies challan filter options without pagination
func (r *GormChallanRepository) applyFilter(query *gorm.DB, filter ledger.ChallanFilter) *gorm.DB {
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Status != nil {
		query = query.Where("payment_status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("challan_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("challan_date <= ?", *filter.ToDate)
	}
	if filter.ReceivedViaTransfer != nil {
		query = query.Where("is_received_via_transfer = ?", *filter.ReceivedViaTransfer)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("challan_number ILIKE ? OR supplier_name ILIKE ?", pattern, pattern)
	}
	return query
}

func challanModelsToDomain(challanModels []models.ChallanModel) []ledger.Challan {
	challans := make([]ledger.Challan, len(challanModels))
	for i, model := range challanModels {
		challans[i] = *model.ToDomain()
	}
	return challans
}
