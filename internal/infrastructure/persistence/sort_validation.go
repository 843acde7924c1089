package persistence

import (
	"strings"

	"gorm.io/gorm"

	"github.com/vastra-erp/backend/internal/domain/shared"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// scopedQuery restricts a query to one company and financial year. Every
// repository read and write goes through it.
func scopedQuery(query *gorm.DB, scope shared.Scope) *gorm.DB {
	return query.Where("company_id = ? AND financial_year = ?", scope.CompanyID, scope.FinancialYear)
}

// applyPagination applies ordering and offset/limit from a shared.Filter,
// with the order column checked against the entity's whitelist
func applyPagination(query *gorm.DB, filter shared.Filter, allowedFields map[string]bool) *gorm.DB {
	orderBy := ValidateSortField(filter.OrderBy, allowedFields, "created_at")
	query = query.Order(orderBy + " " + ValidateSortOrder(filter.OrderDir))

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}
	return query
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"invoice_date":   true,
	"due_date":       true,
	"customer_name":  true,
	"total_amount":   true,
	"outstanding":    true,
	"payment_status": true,
}

// ChallanSortFields contains allowed sort fields for challans
var ChallanSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"challan_number": true,
	"challan_date":   true,
	"supplier_name":  true,
	"total_amount":   true,
	"outstanding":    true,
	"payment_status": true,
}

// PaymentSortFields contains allowed sort fields for payments
var PaymentSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"payment_number": true,
	"payment_date":   true,
	"party_name":     true,
	"amount":         true,
	"type":           true,
}

// TransferSortFields contains allowed sort fields for stock transfers
var TransferSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"transfer_number": true,
	"transfer_date":   true,
	"from_party_name": true,
	"to_party_name":   true,
	"status":          true,
}

// PartySortFields contains allowed sort fields for parties
var PartySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"kind":       true,
	"city":       true,
	"is_active":  true,
}

// BankTransactionSortFields contains allowed sort fields for passbook entries
var BankTransactionSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"date":       true,
	"amount":     true,
	"type":       true,
}
