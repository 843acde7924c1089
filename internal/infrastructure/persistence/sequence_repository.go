package persistence

import (
	"context"

	"gorm.io/gorm"

	"github.com/vastra-erp/backend/internal/domain/shared"
)

// GormSequenceRepository implements ledger.SequenceRepository with a counter
// row per (company, financial year, prefix). The upsert-returning statement
// makes Next safe under concurrent writers; numbers are gap-tolerant and
// never reused after a delete.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// Next atomically increments and returns the counter for a series
func (r *GormSequenceRepository) Next(ctx context.Context, scope shared.Scope, prefix string) (int64, error) {
	var seq int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO sequence_counters (company_id, financial_year, prefix, seq, updated_at)
		VALUES (?, ?, ?, 1, NOW())
		ON CONFLICT (company_id, financial_year, prefix)
		DO UPDATE SET seq = sequence_counters.seq + 1, updated_at = NOW()
		RETURNING seq`,
		scope.CompanyID, scope.FinancialYear, prefix).
		Scan(&seq).Error
	if err != nil {
		return 0, err
	}
	return seq, nil
}
