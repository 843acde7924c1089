// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerMetricsProvider implements LedgerMetricsProvider using GORM.
// It queries the invoices and challans tables directly for aggregated metrics.
type GormLedgerMetricsProvider struct {
	db *gorm.DB
}

// NewGormLedgerMetricsProvider creates a new GormLedgerMetricsProvider.
func NewGormLedgerMetricsProvider(db *gorm.DB) *GormLedgerMetricsProvider {
	return &GormLedgerMetricsProvider{db: db}
}

// GetOutstandingByTargetType returns total outstanding amount in paise per
// target type for a company, summed across all financial years.
func (p *GormLedgerMetricsProvider) GetOutstandingByTargetType(ctx context.Context, companyID uuid.UUID) (map[string]int64, error) {
	m := make(map[string]int64, 2)

	var invoicePaise int64
	err := p.db.WithContext(ctx).
		Table("invoices").
		Select("COALESCE(SUM(outstanding * 100), 0)").
		Where("company_id = ? AND deleted_at IS NULL", companyID).
		Scan(&invoicePaise).Error
	if err != nil {
		return nil, err
	}
	m["invoice"] = invoicePaise

	var challanPaise int64
	err = p.db.WithContext(ctx).
		Table("challans").
		Select("COALESCE(SUM(outstanding * 100), 0)").
		Where("company_id = ? AND deleted_at IS NULL", companyID).
		Scan(&challanPaise).Error
	if err != nil {
		return nil, err
	}
	m["challan"] = challanPaise

	return m, nil
}

// GetOverdueInvoiceCount returns the count of unsettled invoices past due date for a company.
func (p *GormLedgerMetricsProvider) GetOverdueInvoiceCount(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("invoices").
		Where("company_id = ? AND deleted_at IS NULL", companyID).
		Where("due_date IS NOT NULL AND due_date < NOW() AND payment_status <> ?", "paid").
		Count(&count).Error

	return count, err
}

// GormCompanyProvider implements CompanyProvider using GORM.
type GormCompanyProvider struct {
	db *gorm.DB
}

// NewGormCompanyProvider creates a new GormCompanyProvider.
func NewGormCompanyProvider(db *gorm.DB) *GormCompanyProvider {
	return &GormCompanyProvider{db: db}
}

// GetActiveCompanyIDs returns the distinct company IDs present in the ledger.
func (p *GormCompanyProvider) GetActiveCompanyIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := p.db.WithContext(ctx).
		Table("invoices").
		Distinct("company_id").
		Where("deleted_at IS NULL").
		Find(&ids).Error

	return ids, err
}
