package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/shared"
)

// PaymentType separates money received from customers from money paid out
// to suppliers. The two sides draw from different document ledgers and
// different sequence-number series.
type PaymentType string

const (
	PaymentTypeReceipt PaymentType = "receipt" // money received from a customer
	PaymentTypePayment PaymentType = "payment" // money paid to a supplier
)

// IsValid checks if the payment type is valid
func (t PaymentType) IsValid() bool {
	return t == PaymentTypeReceipt || t == PaymentTypePayment
}

// TargetType returns the document ledger this payment type settles against
func (t PaymentType) TargetType() TargetType {
	if t == PaymentTypeReceipt {
		return TargetTypeInvoice
	}
	return TargetTypeChallan
}

// SequencePrefix returns the human-readable number prefix for this type
func (t PaymentType) SequencePrefix() string {
	if t == PaymentTypeReceipt {
		return "REC"
	}
	return "PAY"
}

// TargetType identifies which document ledger an allocation line points at.
// The two ledgers are never mixed within one payment.
type TargetType string

const (
	TargetTypeInvoice TargetType = "invoice"
	TargetTypeChallan TargetType = "challan"
)

// IsValid checks if the target type is valid
func (t TargetType) IsValid() bool {
	return t == TargetTypeInvoice || t == TargetTypeChallan
}

// PaymentMode is how the money physically moved
type PaymentMode string

const (
	PaymentModeCash   PaymentMode = "cash"
	PaymentModeCheque PaymentMode = "cheque"
	PaymentModeNEFT   PaymentMode = "neft"
	PaymentModeRTGS   PaymentMode = "rtgs"
	PaymentModeUPI    PaymentMode = "upi"
)

// IsValid checks if the payment mode is valid
func (m PaymentMode) IsValid() bool {
	switch m {
	case PaymentModeCash, PaymentModeCheque, PaymentModeNEFT, PaymentModeRTGS, PaymentModeUPI:
		return true
	}
	return false
}

// Allocation is one line splitting a payment across ledger documents.
// Its Amount is the ground-truth contribution to the target's total paid;
// the sum over a payment's allocations need not equal the payment's face
// amount because kasar, interest, and bank charges create the difference.
type Allocation struct {
	ID           uuid.UUID
	TargetType   TargetType
	TargetID     uuid.UUID
	TargetNumber string
	Amount       decimal.Decimal
}

// Payment is an independent ledger row recording money moved. It is
// immutable once recorded but deletable; no document owns it. Challans and
// invoices are referenced by its allocation lines, never the other way
// around.
type Payment struct {
	shared.CompanyAggregateRoot
	PaymentNumber string
	Type          PaymentType
	PartyID       uuid.UUID
	PartyName     string
	PaymentDate   time.Time
	Amount        decimal.Decimal // face amount that moved
	Kasar         decimal.Decimal // rounding/goodwill write-off
	InterestPaid  decimal.Decimal
	Mode          PaymentMode
	ChequeNumber  string
	BankAccountID *uuid.UUID
	// AffectsPassbook marks payments that mirror into a bank passbook
	// entry keyed by this payment's id, so deletion can find and remove it.
	AffectsPassbook bool
	Allocations     []Allocation
	Notes           string
}

// NewPayment records a payment or receipt with its allocation lines.
// The payment number is assigned by the caller from the sequence counter.
func NewPayment(companyID uuid.UUID, financialYear, paymentNumber string, paymentType PaymentType, partyID uuid.UUID, partyName string, paymentDate time.Time, amount decimal.Decimal, allocations []Allocation) (*Payment, error) {
	if !paymentType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid payment type")
	}
	if paymentNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment number cannot be empty")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Party ID cannot be empty")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment amount cannot be negative")
	}
	if err := validateAllocations(paymentType, allocations); err != nil {
		return nil, err
	}

	for i := range allocations {
		if allocations[i].ID == uuid.Nil {
			allocations[i].ID = uuid.New()
		}
	}

	p := &Payment{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID, financialYear),
		PaymentNumber:        paymentNumber,
		Type:                 paymentType,
		PartyID:              partyID,
		PartyName:            partyName,
		PaymentDate:          paymentDate,
		Amount:               amount,
		Kasar:                decimal.Zero,
		InterestPaid:         decimal.Zero,
		Mode:                 PaymentModeCash,
		Allocations:          allocations,
	}

	p.AddDomainEvent(NewPaymentRecordedEvent(p))
	return p, nil
}

func validateAllocations(paymentType PaymentType, allocations []Allocation) error {
	if len(allocations) == 0 {
		return shared.ErrInvalidAllocation
	}
	want := paymentType.TargetType()
	for _, a := range allocations {
		if a.TargetID == uuid.Nil {
			return shared.ErrInvalidAllocation
		}
		if a.TargetType != want {
			return shared.ErrInvalidAllocation
		}
		if !a.Amount.IsPositive() {
			return shared.ErrInvalidAllocation
		}
	}
	return nil
}

// SetInstrument records how the money moved
func (p *Payment) SetInstrument(mode PaymentMode, chequeNumber string, bankAccountID *uuid.UUID, affectsPassbook bool) error {
	if !mode.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "Invalid payment mode")
	}
	if affectsPassbook && bankAccountID == nil {
		return shared.NewDomainError("INVALID_INPUT", "Passbook payments require a bank account")
	}
	p.Mode = mode
	p.ChequeNumber = chequeNumber
	p.BankAccountID = bankAccountID
	p.AffectsPassbook = affectsPassbook
	p.Touch()
	return nil
}

// SetAdjustments records the kasar write-off and interest collected
func (p *Payment) SetAdjustments(kasar, interestPaid decimal.Decimal) error {
	if kasar.IsNegative() || interestPaid.IsNegative() {
		return shared.NewDomainError("INVALID_INPUT", "Adjustments cannot be negative")
	}
	p.Kasar = kasar
	p.InterestPaid = interestPaid
	p.Touch()
	return nil
}

// TargetIDs returns the distinct document ids this payment settles against
func (p *Payment) TargetIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(p.Allocations))
	ids := make([]uuid.UUID, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		if _, ok := seen[a.TargetID]; ok {
			continue
		}
		seen[a.TargetID] = struct{}{}
		ids = append(ids, a.TargetID)
	}
	return ids
}

// AllocatedTotal returns the sum of all allocation line amounts
func (p *Payment) AllocatedTotal() decimal.Decimal {
	total := decimal.Zero
	for _, a := range p.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}
