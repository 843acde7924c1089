package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vastra-erp/backend/internal/domain/banking"
	"github.com/vastra-erp/backend/internal/domain/shared"
	"github.com/vastra-erp/backend/internal/infrastructure/persistence/models"
)

// GormBankAccountRepository implements banking.BankAccountRepository using GORM
type GormBankAccountRepository struct {
	db *gorm.DB
}

// NewGormBankAccountRepository creates a new GormBankAccountRepository
func NewGormBankAccountRepository(db *gorm.DB) *GormBankAccountRepository {
	return &GormBankAccountRepository{db: db}
}

// FindByID finds a bank account by ID within a scope
func (r *GormBankAccountRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*banking.BankAccount, error) {
	var model models.BankAccountModel
	if err := scopedQuery(r.db.WithContext(ctx), scope).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds bank accounts within a scope
func (r *GormBankAccountRepository) FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]banking.BankAccount, error) {
	var accountModels []models.BankAccountModel
	query := scopedQuery(r.db.WithContext(ctx).Model(&models.BankAccountModel{}), scope)
	query = applyPagination(query, filter, CommonBankingSortFields)

	if err := query.Find(&accountModels).Error; err != nil {
		return nil, err
	}
	accounts := make([]banking.BankAccount, len(accountModels))
	for i, model := range accountModels {
		accounts[i] = *model.ToDomain()
	}
	return accounts, nil
}

// Save creates or updates a bank account
func (r *GormBankAccountRepository) Save(ctx context.Context, account *banking.BankAccount) error {
	model := models.BankAccountModelFromDomain(account)
	return r.db.WithContext(ctx).Save(model).Error
}

// CommonBankingSortFields contains allowed sort fields for bank accounts
var CommonBankingSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"name":       true,
	"bank_name":  true,
	"balance":    true,
}

// GormBankTransactionRepository implements banking.BankTransactionRepository using GORM
type GormBankTransactionRepository struct {
	db *gorm.DB
}

// NewGormBankTransactionRepository creates a new GormBankTransactionRepository
func NewGormBankTransactionRepository(db *gorm.DB) *GormBankTransactionRepository {
	return &GormBankTransactionRepository{db: db}
}

// FindByID finds a passbook entry by ID within a scope
func (r *GormBankTransactionRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*banking.BankTransaction, error) {
	var model models.BankTransactionModel
	if err := scopedQuery(r.db.WithContext(ctx), scope).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds passbook entries within a scope with filtering
func (r *GormBankTransactionRepository) FindAll(ctx context.Context, scope shared.Scope, filter banking.BankTransactionFilter) ([]banking.BankTransaction, error) {
	var txModels []models.BankTransactionModel
	query := scopedQuery(r.db.WithContext(ctx).Model(&models.BankTransactionModel{}), scope)
	if filter.BankAccountID != nil {
		query = query.Where("bank_account_id = ?", *filter.BankAccountID)
	}
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.ReferenceType != nil {
		query = query.Where("reference_type = ?", *filter.ReferenceType)
	}
	if filter.FromDate != nil {
		query = query.Where("date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("date <= ?", *filter.ToDate)
	}
	query = applyPagination(query, filter.Filter, BankTransactionSortFields)

	if err := query.Find(&txModels).Error; err != nil {
		return nil, err
	}
	return bankTransactionModelsToDomain(txModels), nil
}

// FindByReference finds the entries mirroring a business document
func (r *GormBankTransactionRepository) FindByReference(ctx context.Context, scope shared.Scope, refType banking.ReferenceType, refID uuid.UUID) ([]banking.BankTransaction, error) {
	var txModels []models.BankTransactionModel
	if err := scopedQuery(r.db.WithContext(ctx), scope).
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		Find(&txModels).Error; err != nil {
		return nil, err
	}
	return bankTransactionModelsToDomain(txModels), nil
}

// Save creates a passbook entry
func (r *GormBankTransactionRepository) Save(ctx context.Context, tx *banking.BankTransaction) error {
	model := models.BankTransactionModelFromDomain(tx)
	return r.db.WithContext(ctx).Save(model).Error
}

// DeleteByReference removes every entry mirroring a business document and
// returns the removed entries for balance rollback
func (r *GormBankTransactionRepository) DeleteByReference(ctx context.Context, scope shared.Scope, refType banking.ReferenceType, refID uuid.UUID) ([]banking.BankTransaction, error) {
	var deleted []banking.BankTransaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txModels []models.BankTransactionModel
		if err := scopedQuery(tx, scope).
			Where("reference_type = ? AND reference_id = ?", refType, refID).
			Find(&txModels).Error; err != nil {
			return err
		}
		if len(txModels) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, len(txModels))
		for i, m := range txModels {
			ids[i] = m.ID
		}
		if err := tx.Delete(&models.BankTransactionModel{}, "id IN ?", ids).Error; err != nil {
			return err
		}
		deleted = bankTransactionModelsToDomain(txModels)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func bankTransactionModelsToDomain(txModels []models.BankTransactionModel) []banking.BankTransaction {
	txs := make([]banking.BankTransaction, len(txModels))
	for i, model := range txModels {
		txs[i] = *model.ToDomain()
	}
	return txs
}
