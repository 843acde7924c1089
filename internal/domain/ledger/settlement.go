package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the settlement status of a sales invoice
type InvoiceStatus string

const (
	InvoiceStatusUnpaid  InvoiceStatus = "unpaid"
	InvoiceStatusPartial InvoiceStatus = "partial"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPartial, InvoiceStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// ChallanStatus represents the settlement status of a purchase challan.
// Challans with no payment carry an empty status rather than an explicit
// "unpaid" tag; reports and the UI branch on that absence.
type ChallanStatus string

const (
	ChallanStatusNone      ChallanStatus = ""
	ChallanStatusPartial   ChallanStatus = "partial"
	ChallanStatusCompleted ChallanStatus = "completed"
)

// IsValid checks if the status is a valid ChallanStatus
func (s ChallanStatus) IsValid() bool {
	switch s {
	case ChallanStatusNone, ChallanStatusPartial, ChallanStatusCompleted:
		return true
	}
	return false
}

// String returns the string representation of ChallanStatus
func (s ChallanStatus) String() string {
	return string(s)
}

// settlementTolerance absorbs paisa-level rounding between the billed total
// and the sum a partner actually remits.
var settlementTolerance = decimal.NewFromFloat(0.01)

// daysPerYear is the simple-interest day basis
var daysPerYear = decimal.NewFromInt(365)

// DeriveInvoiceStatus derives the invoice settlement status from the billed
// total and the amount paid so far. Pure function, no I/O.
func DeriveInvoiceStatus(totalAmount, totalPaid decimal.Decimal) InvoiceStatus {
	if totalPaid.GreaterThanOrEqual(totalAmount.Sub(settlementTolerance)) {
		return InvoiceStatusPaid
	}
	if totalPaid.GreaterThan(decimal.Zero) {
		return InvoiceStatusPartial
	}
	return InvoiceStatusUnpaid
}

// DeriveChallanStatus derives the challan settlement status. Same thresholds
// as the invoice side, but the terminal state is "completed" and the
// no-payment case is the empty status.
func DeriveChallanStatus(totalAmount, totalPaid decimal.Decimal) ChallanStatus {
	if totalPaid.GreaterThanOrEqual(totalAmount.Sub(settlementTolerance)) {
		return ChallanStatusCompleted
	}
	if totalPaid.GreaterThan(decimal.Zero) {
		return ChallanStatusPartial
	}
	return ChallanStatusNone
}

// Outstanding returns the unpaid remainder of a document
func Outstanding(totalAmount, totalPaid decimal.Decimal) decimal.Decimal {
	return totalAmount.Sub(totalPaid)
}

// AccrueInterest computes simple interest on the outstanding balance,
// pro-rated by whole calendar days overdue as of the given instant.
//
// Interest is never persisted. It changes every day a balance stays
// outstanding, so it is recomputed on each read instead of being maintained
// by a daily batch job.
func AccrueInterest(totalAmount, totalPaid decimal.Decimal, dueDate *time.Time, ratePerAnnum decimal.Decimal, asOf time.Time) decimal.Decimal {
	if dueDate == nil || !ratePerAnnum.IsPositive() {
		return decimal.Zero
	}
	if !asOf.After(*dueDate) {
		return decimal.Zero
	}
	balance := totalAmount.Sub(totalPaid)
	if !balance.IsPositive() {
		return decimal.Zero
	}
	overdueDays := int64(asOf.Sub(*dueDate).Hours() / 24)
	if overdueDays <= 0 {
		return decimal.Zero
	}
	return balance.
		Mul(ratePerAnnum).
		Mul(decimal.NewFromInt(overdueDays)).
		Div(daysPerYear.Mul(decimal.NewFromInt(100)))
}
