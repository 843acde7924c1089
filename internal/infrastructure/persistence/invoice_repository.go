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

// GormInvoiceRepository implements ledger.InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by ID within a scope. Returns nil when absent so
// callers can fail closed with their own error.
func (r *GormInvoiceRepository) FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*ledger.Invoice, error) {
	var model models.InvoiceModel
	if err := scopedQuery(r.db.WithContext(ctx), scope).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDs finds several invoices by ID within a scope
func (r *GormInvoiceRepository) FindByIDs(ctx context.Context, scope shared.Scope, ids []uuid.UUID) ([]ledger.Invoice, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var invoiceModels []models.InvoiceModel
	if err := scopedQuery(r.db.WithContext(ctx), scope).
		Where("id IN ?", ids).
		Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return invoiceModelsToDomain(invoiceModels), nil
}

// FindByNumber finds an invoice by its number within a scope
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, scope shared.Scope, invoiceNumber string) (*ledger.Invoice, error) {
	var model models.InvoiceModel
	if err := scopedQuery(r.db.WithContext(ctx), scope).
		Where("invoice_number = ?", invoiceNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds invoices within a scope with filtering
func (r *GormInvoiceRepository) FindAll(ctx context.Context, scope shared.Scope, filter ledger.InvoiceFilter) ([]ledger.Invoice, error) {
	var invoiceModels []models.InvoiceModel
	query := scopedQuery(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), scope)
	query = r.applyFilter(query, filter)
	query = applyPagination(query, filter.Filter, InvoiceSortFields)

	if err := query.Find(&invoiceModels).Error; err != nil {
		return nil, err
	}
	return invoiceModelsToDomain(invoiceModels), nil
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *ledger.Invoice) error {
	model := models.InvoiceModelFromDomain(invoice)
	return r.db.WithContext(ctx).Save(model).Error
}

// UpdateSettlement persists the settlement trio of an invoice as one write
func (r *GormInvoiceRepository) UpdateSettlement(ctx context.Context, invoice *ledger.Invoice) error {
	return r.db.WithContext(ctx).
		Model(&models.InvoiceModel{}).
		Where("id = ? AND company_id = ? AND financial_year = ?",
			invoice.ID, invoice.CompanyID, invoice.FinancialYear).
		Updates(map[string]interface{}{
			"total_paid":     invoice.TotalPaid,
			"outstanding":    invoice.Outstanding,
			"payment_status": invoice.PaymentStatus,
			"updated_at":     time.Now(),
		}).Error
}

// Delete removes an invoice
func (r *GormInvoiceRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	result := scopedQuery(r.db.WithContext(ctx), scope).
		Delete(&models.InvoiceModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts invoices within a scope
func (r *GormInvoiceRepository) Count(ctx context.Context, scope shared.Scope, filter ledger.InvoiceFilter) (int64, error) {
	var count int64
	query := scopedQuery(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), scope)
	query = r.applyFilter(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByNumber checks if an invoice number is taken within a scope
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, scope shared.Scope, invoiceNumber string) (bool, error) {
	var count int64
	if err := scopedQuery(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), scope).
		Where("invoice_number = ?", invoiceNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// applyFilter applies invoice filter options without pagination
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter ledger.InvoiceFilter) *gorm.DB {
	if filter.CustomerID != nil {
		query = query.Where("customer_id = ?", *filter.CustomerID)
	}
	if filter.Status != nil {
		query = query.Where("payment_status = ?", *filter.Status)
	}
	if filter.FromDate != nil {
		query = query.Where("invoice_date >= ?", *filter.FromDate)
	}
	if filter.ToDate != nil {
		query = query.Where("invoice_date <= ?", *filter.ToDate)
	}
	if filter.Overdue != nil && *filter.Overdue {
		query = query.Where("due_date IS NOT NULL AND due_date < ? AND payment_status <> ?",
			time.Now(), ledger.InvoiceStatusPaid)
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR customer_name ILIKE ?", pattern, pattern)
	}
	return query
}

func invoiceModelsToDomain(invoiceModels []models.InvoiceModel) []ledger.Invoice {
	invoices := make([]ledger.Invoice, len(invoiceModels))
	for i, model := range invoiceModels {
		invoices[i] = *model.ToDomain()
	}
	return invoices
}
