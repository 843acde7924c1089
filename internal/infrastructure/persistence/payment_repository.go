package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vastra-erp/backend/internal/domain/ledger"
	"github.com/vastra-erp/backend/internal/domain/shared"
	"github.com/vastra-erp/backend/internal/infrastructure/persistence/models"
)

// GormPaymentRepository implements ledger.PaymentRepository using GORM.
// Allocations live in the payment_allocations table; the reconciliation
// group-sum runs against it directly instead of loading payment rows.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID within a scope
func (r *GormPaymentRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*ledger.Payment, error) {
	var model models.PaymentModel
	if err := scopedQuery(r.db.WithContext(ctx), scope).
		Preload("Allocations").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds payments within a scope with filtering
func (r *GormPaymentRepository) FindAll(ctx context.Context, scope shared.Scope, filter ledger.PaymentFilter) ([]ledger.Payment, error) {
	var paymentModels []models.PaymentModel
	query := scopedQuery(r.db.WithContext(ctx).Model(&models.PaymentModel{}), scope).
		Preload("Allocations")
	query = r.applyFilter(query, filter)
	query = applyPagination(query, filter.Filter, PaymentSortFields)

	if err := query.Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return paymentModelsToDomain(paymentModels), nil
}

// FindByTarget finds all payments with at least one allocation against the target
func (r *GormPaymentRepository) FindByTarget(ctx context.Context, scope shared.Scope, targetType ledger.TargetType, targetID uuid.UUID) ([]ledger.Payment, error) {
	var paymentModels []models.PaymentModel
	if err := scopedQuery(r.db.WithContext(ctx).Model(&models.PaymentModel{}), scope).
		Preload("Allocations").
		Where("id IN (?)", r.db.Model(&models.PaymentAllocationModel{}).
			Select("payment_id").
			Where("company_id = ? AND financial_year = ? AND target_type = ? AND target_id = ?",
				scope.CompanyID, scope.FinancialYear, targetType, targetID)).
		Order("payment_date ASC").
		Find(&paymentModels).Error; err != nil {
		return nil, err
	}
	return paymentModelsToDomain(paymentModels), nil
}

// TotalPaidByTargets sums allocation amounts per target over the whole
// payment ledger in one GROUP BY pass. Targets nobody paid are absent from
// the result map.
func (r *GormPaymentRepository) TotalPaidByTargets(ctx context.Context, scope shared.Scope, targetType ledger.TargetType, targetIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	totals := make(map[uuid.UUID]decimal.Decimal, len(targetIDs))
	if len(targetIDs) == 0 {
		return totals, nil
	}

	var rows []struct {
		TargetID uuid.UUID
		Total    decimal.Decimal
	}
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentAllocationModel{}).
		Select("target_id, SUM(amount) as total").
		Where("company_id = ? AND financial_year = ? AND target_type = ? AND target_id IN ?",
			scope.CompanyID, scope.FinancialYear, targetType, targetIDs).
		Group("target_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		totals[row.TargetID] = row.Total
	}
	return totals, nil
}

// Save creates a payment together with its allocation lines in one transaction
func (r *GormPaymentRepository) Save(ctx context.Context, payment *ledger.Payment) error {
	model := models.PaymentModelFromDomain(payment)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Save(model).Error
	})
}

// Delete removes a payment and its allocation lines in one transaction
func (r *GormPaymentRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("payment_id = ?", id).
			Delete(&models.PaymentAllocationModel{}).Error; err != nil {
			return err
		}
		result := scopedQuery(tx, scope).Delete(&models.PaymentModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts payments within a scope
func (r *GormPaymentRepository) Count(ctx context.Context, scope shared.Scope, filter ledger.PaymentFilter) (int64, error) {
	var count int64
	query := scopedQuery(r.db.WithContext(ctx).Model(&models.PaymentModel{}), scope)
	query = r.applyFilter(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies payment filter options without pagination
func (r *GormPaymentRepository) applyFilter(query *gorm.DB, filter ledger.PaymentFilter) *gorm.DB {
	if filter.PartyID != nil {
		query = query.Where("party_id = ?", *filter.PartyID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.FromDate != nil {
		query = query.Where("payment_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("payment_date <= ?", *filter.ToDate)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("payment_number ILIKE ? OR party_name ILIKE ?", pattern, pattern)
	}
	return query
}

func paymentModelsToDomain(paymentModels []models.PaymentModel) []ledger.Payment {
	payments := make([]ledger.Payment, len(paymentModels))
	for i, model := range paymentModels {
		payments[i] = *model.ToDomain()
	}
	return payments
}
