package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/shared"
)

// InvoiceItem is one billed line on a sales invoice.
// Stored as JSONB inside the Invoice aggregate.
type InvoiceItem struct {
	Quality string          `json:"quality"`
	HSNCode string          `json:"hsn_code,omitempty"`
	Boxes   int64           `json:"boxes"`
	Meters  decimal.Decimal `json:"meters"`
	Rate    decimal.Decimal `json:"rate"`
	Amount  decimal.Decimal `json:"amount"`
}

// InvoiceItems is a slice of InvoiceItem that implements GORM Scanner/Valuer for JSONB storage
type InvoiceItems []InvoiceItem

// Value implements driver.Valuer interface for GORM to store as JSONB
func (items InvoiceItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	return json.Marshal(items)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (items *InvoiceItems) Scan(value interface{}) error {
	if value == nil {
		*items = InvoiceItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan InvoiceItems: unsupported type")
	}

	if len(bytes) == 0 {
		*items = InvoiceItems{}
		return nil
	}

	return json.Unmarshal(bytes, items)
}

// TaxBreakdown carries the GST split of an invoice total
type TaxBreakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	CGST     decimal.Decimal `json:"cgst"`
	SGST     decimal.Decimal `json:"sgst"`
	IGST     decimal.Decimal `json:"igst"`
}

// Value implements driver.Valuer interface for GORM to store as JSONB
func (t TaxBreakdown) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (t *TaxBreakdown) Scan(value interface{}) error {
	if value == nil {
		*t = TaxBreakdown{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan TaxBreakdown: unsupported type")
	}

	if len(bytes) == 0 {
		*t = TaxBreakdown{}
		return nil
	}

	return json.Unmarshal(bytes, t)
}

// Invoice is a sales-side billing document issued to a customer.
// The settlement trio (TotalPaid, Outstanding, PaymentStatus) is a cache of
// the payment ledger: it is only ever recomputed and overwritten as a whole,
// never incremented in place.
type Invoice struct {
	shared.CompanyAggregateRoot
	InvoiceNumber string
	CustomerID    uuid.UUID
	CustomerName  string
	InvoiceDate   time.Time
	DueDate       *time.Time
	InterestRate  decimal.Decimal // percent per annum on overdue balance
	Items         InvoiceItems
	Tax           TaxBreakdown
	TotalAmount   decimal.Decimal
	TotalPaid     decimal.Decimal
	Outstanding   decimal.Decimal
	PaymentStatus InvoiceStatus
	Notes         string
}

// NewInvoice creates a finalized sales invoice with no payments applied
func NewInvoice(companyID uuid.UUID, financialYear, invoiceNumber string, customerID uuid.UUID, customerName string, invoiceDate time.Time, items InvoiceItems, tax TaxBreakdown, totalAmount decimal.Decimal) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Customer ID cannot be empty")
	}
	if totalAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invoice total cannot be negative")
	}

	inv := &Invoice{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID, financialYear),
		InvoiceNumber:        invoiceNumber,
		CustomerID:           customerID,
		CustomerName:         customerName,
		InvoiceDate:          invoiceDate,
		Items:                items,
		Tax:                  tax,
		TotalAmount:          totalAmount,
		TotalPaid:            decimal.Zero,
		Outstanding:          totalAmount,
		PaymentStatus:        InvoiceStatusUnpaid,
	}

	inv.AddDomainEvent(NewInvoiceCreatedEvent(inv))
	return inv, nil
}

// SetInterestTerms sets the due date and overdue interest rate
func (inv *Invoice) SetInterestTerms(dueDate *time.Time, ratePerAnnum decimal.Decimal) error {
	if ratePerAnnum.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Interest rate cannot be negative")
	}
	inv.DueDate = dueDate
	inv.InterestRate = ratePerAnnum
	inv.Touch()
	return nil
}

// ApplySettlement overwrites the settlement trio from a freshly reconciled
// total. The caller derives totalPaid from the payment ledger; this method
// keeps outstanding and status consistent with it.
func (inv *Invoice) ApplySettlement(totalPaid decimal.Decimal) {
	inv.TotalPaid = totalPaid
	inv.Outstanding = Outstanding(inv.TotalAmount, totalPaid)
	inv.PaymentStatus = DeriveInvoiceStatus(inv.TotalAmount, totalPaid)
	inv.Touch()
	inv.AddDomainEvent(NewInvoiceSettledEvent(inv))
}

// InterestAccrued returns the overdue interest on the outstanding balance as
// of the given instant. Derived on every read, never stored.
func (inv *Invoice) InterestAccrued(asOf time.Time) decimal.Decimal {
	return AccrueInterest(inv.TotalAmount, inv.TotalPaid, inv.DueDate, inv.InterestRate, asOf)
}

// CanDelete reports whether the invoice may be removed from the ledger.
// An invoice with settled amounts must keep existing so the payment ledger
// never references a vanished target.
func (inv *Invoice) CanDelete() bool {
	return inv.TotalPaid.IsZero()
}

// IsOverdue reports whether the invoice has an unpaid balance past its due date
func (inv *Invoice) IsOverdue(asOf time.Time) bool {
	return inv.DueDate != nil && asOf.After(*inv.DueDate) && inv.Outstanding.IsPositive()
}
