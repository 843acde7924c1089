package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/shared"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	CustomerID *uuid.UUID
	Status     *InvoiceStatus
	FromDate   *time.Time
	ToDate     *time.Time
	Overdue    *bool
}

// InvoiceRepository defines the interface for sales invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID within a scope
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Invoice, error)

	// FindByIDs finds several invoices by ID within a scope
	FindByIDs(ctx context.Context, scope shared.Scope, ids []uuid.UUID) ([]Invoice, error)

	// FindByNumber finds an invoice by its number within a scope
	FindByNumber(ctx context.Context, scope shared.Scope, invoiceNumber string) (*Invoice, error)

	// FindAll finds invoices within a scope with filtering
	FindAll(ctx context.Context, scope shared.Scope, filter InvoiceFilter) ([]Invoice, error)

	// Save creates or updates an invoice
	Save(ctx context.Context, invoice *Invoice) error

	// UpdateSettlement persists the settlement trio of an invoice as one write
	UpdateSettlement(ctx context.Context, invoice *Invoice) error

	// Delete removes an invoice
	Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error

	// Count counts invoices within a scope
	Count(ctx context.Context, scope shared.Scope, filter InvoiceFilter) (int64, error)

	// ExistsByNumber checks if an invoice number is taken within a scope
	ExistsByNumber(ctx context.Context, scope shared.Scope, invoiceNumber string) (bool, error)
}

// ChallanFilter defines filtering options for challan queries
type ChallanFilter struct {
	shared.Filter
	SupplierID          *uuid.UUID
	Status              *ChallanStatus
	FromDate            *time.Time
	ToDate              *time.Time
	ReceivedViaTransfer *bool
}

// ChallanRepository defines the interface for purchase challan persistence
type ChallanRepository interface {
	// FindByID finds a challan by ID within a scope
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Challan, error)

	// FindByIDs finds several challans by ID within a scope
	FindByIDs(ctx context.Context, scope shared.Scope, ids []uuid.UUID) ([]Challan, error)

	// FindByNumber finds a challan by its number within a scope
	FindByNumber(ctx context.Context, scope shared.Scope, challanNumber string) (*Challan, error)

	// FindAll finds challans within a scope with filtering
	FindAll(ctx context.Context, scope shared.Scope, filter ChallanFilter) ([]Challan, error)

	// FindBySourceTransfer finds challans minted by a stock transfer
	FindBySourceTransfer(ctx context.Context, scope shared.Scope, transferID uuid.UUID) ([]Challan, error)

	// Save creates or updates a challan
	Save(ctx context.Context, challan *Challan) error

	// UpdateSettlement persists the settlement trio of a challan as one write
	UpdateSettlement(ctx context.Context, challan *Challan) error

	// UpdateStockCounters persists the available/transferred counters as one write
	UpdateStockCounters(ctx context.Context, challan *Challan) error

	// Delete removes a challan
	Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error

	// Count counts challans within a scope
	Count(ctx context.Context, scope shared.Scope, filter ChallanFilter) (int64, error)
}

// PaymentFilter defines filtering options for payment queries
type PaymentFilter struct {
	shared.Filter
	PartyID  *uuid.UUID
	Type     *PaymentType
	FromDate *time.Time
	ToDate   *time.Time
}

// PaymentRepository defines the interface for payment ledger persistence.
//
// TotalPaidByTargets is the bulk reconciliation primitive: one query over the
// allocation lines, grouped by target, regardless of how many targets are
// asked for. List views call it once per page instead of once per row.
type PaymentRepository interface {
	// FindByID finds a payment by ID within a scope
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Payment, error)

	// FindAll finds payments within a scope with filtering
	FindAll(ctx context.Context, scope shared.Scope, filter PaymentFilter) ([]Payment, error)

	// FindByTarget finds all payments with at least one allocation against the target
	FindByTarget(ctx context.Context, scope shared.Scope, targetType TargetType, targetID uuid.UUID) ([]Payment, error)

	// TotalPaidByTargets sums allocation amounts per target over the whole
	// payment ledger in a single pass. Targets with no allocations are
	// absent from the result map.
	TotalPaidByTargets(ctx context.Context, scope shared.Scope, targetType TargetType, targetIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error)

	// Save creates a payment together with its allocation lines
	Save(ctx context.Context, payment *Payment) error

	// Delete removes a payment and its allocation lines
	Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error

	// Count counts payments within a scope
	Count(ctx context.Context, scope shared.Scope, filter PaymentFilter) (int64, error)
}

// SequenceRepository hands out human-readable document numbers.
//
// Next must be atomic: a dedicated counter row per (company, financial year,
// prefix) is incremented and returned in one round trip, so concurrent
// writers can never be handed the same number. Count-plus-one numbering is
// not used anywhere.
type SequenceRepository interface {
	// Next atomically increments and returns the counter for a series
	Next(ctx context.Context, scope shared.Scope, prefix string) (int64, error)
}
