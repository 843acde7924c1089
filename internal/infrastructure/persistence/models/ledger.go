package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/ledger"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// TotalPaid, Outstanding and PaymentStatus are a cache of the payment ledger;
// reads that matter recompute them via the allocation table.
type InvoiceModel struct {
	CompanyAggregateModel
	InvoiceNumber string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_invoice_scope_number,priority:3"`
	CustomerID    uuid.UUID            `gorm:"type:uuid;not null;index"`
	CustomerName  string               `gorm:"type:varchar(200);not null"`
	InvoiceDate   time.Time            `gorm:"not null;index"`
	DueDate       *time.Time           `gorm:"index"`
	InterestRate  decimal.Decimal      `gorm:"type:decimal(8,4);not null;default:0"`
	Items         ledger.InvoiceItems  `gorm:"type:jsonb;default:'[]'"`
	Tax           ledger.TaxBreakdown  `gorm:"type:jsonb"`
	TotalAmount   decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	TotalPaid     decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Outstanding   decimal.Decimal      `gorm:"type:decimal(18,4);not null;index"`
	PaymentStatus ledger.InvoiceStatus `gorm:"type:varchar(20);not null;default:'unpaid';index"`
	Notes         string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *ledger.Invoice {
	inv := &ledger.Invoice{
		InvoiceNumber: m.InvoiceNumber,
		CustomerID:    m.CustomerID,
		CustomerName:  m.CustomerName,
		InvoiceDate:   m.InvoiceDate,
		DueDate:       m.DueDate,
		InterestRate:  m.InterestRate,
		Items:         m.Items,
		Tax:           m.Tax,
		TotalAmount:   m.TotalAmount,
		TotalPaid:     m.TotalPaid,
		Outstanding:   m.Outstanding,
		PaymentStatus: m.PaymentStatus,
		Notes:         m.Notes,
	}
	m.PopulateCompanyAggregateRoot(&inv.CompanyAggregateRoot)
	return inv
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *ledger.Invoice) {
	m.FromDomainCompanyAggregateRoot(inv.CompanyAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.CustomerID = inv.CustomerID
	m.CustomerName = inv.CustomerName
	m.InvoiceDate = inv.InvoiceDate
	m.DueDate = inv.DueDate
	m.InterestRate = inv.InterestRate
	m.Items = inv.Items
	m.Tax = inv.Tax
	m.TotalAmount = inv.TotalAmount
	m.TotalPaid = inv.TotalPaid
	m.Outstanding = inv.Outstanding
	m.PaymentStatus = inv.PaymentStatus
	m.Notes = inv.Notes
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice.
func InvoiceModelFromDomain(inv *ledger.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// ChallanModel is the persistence model for the Challan aggregate root.
// It carries both the settlement cache and the stock counters.
type ChallanModel struct {
	CompanyAggregateModel
	ChallanNumber         string               `gorm:"type:varchar(50);not null;uniqueIndex:idx_challan_scope_number,priority:3"`
	SupplierID            uuid.UUID            `gorm:"type:uuid;not null;index"`
	SupplierName          string               `gorm:"type:varchar(200);not null"`
	ChallanDate           time.Time            `gorm:"not null;index"`
	Items                 ledger.ChallanItems  `gorm:"type:jsonb;default:'[]'"`
	TotalAmount           decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	TotalPaid             decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Outstanding           decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	PaymentStatus         ledger.ChallanStatus `gorm:"type:varchar(20);not null;default:'';index"`
	TotalBoxes            int64                `gorm:"not null;default:0"`
	TotalMeters           decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	AvailableBoxes        int64                `gorm:"not null;default:0"`
	AvailableMeters       decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	TransferredBoxes      int64                `gorm:"not null;default:0"`
	TransferredMeters     decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	IsReceivedViaTransfer bool                 `gorm:"not null;default:false;index"`
	SourceTransferID      *uuid.UUID           `gorm:"type:uuid;index"`
	Notes                 string               `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ChallanModel) TableName() string {
	return "challans"
}

// ToDomain converts the persistence model to a domain Challan entity.
func (m *ChallanModel) ToDomain() *ledger.Challan {
	ch := &ledger.Challan{
		ChallanNumber:         m.ChallanNumber,
		SupplierID:            m.SupplierID,
		SupplierName:          m.SupplierName,
		ChallanDate:           m.ChallanDate,
		Items:                 m.Items,
		TotalAmount:           m.TotalAmount,
		TotalPaid:             m.TotalPaid,
		Outstanding:           m.Outstanding,
		PaymentStatus:         m.PaymentStatus,
		TotalBoxes:            m.TotalBoxes,
		TotalMeters:           m.TotalMeters,
		AvailableBoxes:        m.AvailableBoxes,
		AvailableMeters:       m.AvailableMeters,
		TransferredBoxes:      m.TransferredBoxes,
		TransferredMeters:     m.TransferredMeters,
		IsReceivedViaTransfer: m.IsReceivedViaTransfer,
		SourceTransferID:      m.SourceTransferID,
		Notes:                 m.Notes,
	}
	m.PopulateCompanyAggregateRoot(&ch.CompanyAggregateRoot)
	return ch
}

// FromDomain populates the persistence model from a domain Challan entity.
func (m *ChallanModel) FromDomain(ch *ledger.Challan) {
	m.FromDomainCompanyAggregateRoot(ch.CompanyAggregateRoot)
	m.ChallanNumber = ch.ChallanNumber
	m.SupplierID = ch.SupplierID
	m.SupplierName = ch.SupplierName
	m.ChallanDate = ch.ChallanDate
	m.Items = ch.Items
	m.TotalAmount = ch.TotalAmount
	m.TotalPaid = ch.TotalPaid
	m.Outstanding = ch.Outstanding
	m.PaymentStatus = ch.PaymentStatus
	m.TotalBoxes = ch.TotalBoxes
	m.TotalMeters = ch.TotalMeters
	m.AvailableBoxes = ch.AvailableBoxes
	m.AvailableMeters = ch.AvailableMeters
	m.TransferredBoxes = ch.TransferredBoxes
	m.TransferredMeters = ch.TransferredMeters
	m.IsReceivedViaTransfer = ch.IsReceivedViaTransfer
	m.SourceTransferID = ch.SourceTransferID
	m.Notes = ch.Notes
}

// ChallanModelFromDomain creates a new persistence model from a domain Challan.
func ChallanModelFromDomain(ch *ledger.Challan) *ChallanModel {
	m := &ChallanModel{}
	m.FromDomain(ch)
	return m
}

// PaymentModel is the persistence model for the Payment aggregate root.
// Allocations live in their own table so reconciliation can group-sum them
// in one SQL pass.
type PaymentModel struct {
	CompanyAggregateModel
	PaymentNumber   string                   `gorm:"type:varchar(50);not null;uniqueIndex:idx_payment_scope_number,priority:3"`
	Type            ledger.PaymentType       `gorm:"type:varchar(20);not null;index"`
	PartyID         uuid.UUID                `gorm:"type:uuid;not null;index"`
	PartyName       string                   `gorm:"type:varchar(200);not null"`
	PaymentDate     time.Time                `gorm:"not null;index"`
	Amount          decimal.Decimal          `gorm:"type:decimal(18,4);not null"`
	Kasar           decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	InterestPaid    decimal.Decimal          `gorm:"type:decimal(18,4);not null;default:0"`
	Mode            ledger.PaymentMode       `gorm:"type:varchar(20);not null;default:'cash'"`
	ChequeNumber    string                   `gorm:"type:varchar(50)"`
	BankAccountID   *uuid.UUID               `gorm:"type:uuid;index"`
	AffectsPassbook bool                     `gorm:"not null;default:false"`
	Allocations     []PaymentAllocationModel `gorm:"foreignKey:PaymentID;references:ID;constraint:OnDelete:CASCADE"`
	Notes           string                   `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "payments"
}

// PaymentAllocationModel is one allocation line of a payment. target_type +
// target_id + amount is the ground truth the reconciliation engine sums over.
type PaymentAllocationModel struct {
	ID            uuid.UUID         `gorm:"type:uuid;primary_key"`
	PaymentID     uuid.UUID         `gorm:"type:uuid;not null;index"`
	CompanyID     uuid.UUID         `gorm:"type:uuid;not null;index:idx_alloc_scope_target,priority:1"`
	FinancialYear string            `gorm:"type:varchar(20);not null;index:idx_alloc_scope_target,priority:2"`
	TargetType    ledger.TargetType `gorm:"type:varchar(20);not null;index:idx_alloc_scope_target,priority:3"`
	TargetID      uuid.UUID         `gorm:"type:uuid;not null;index:idx_alloc_scope_target,priority:4"`
	TargetNumber  string            `gorm:"type:varchar(50);not null"`
	Amount        decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	CreatedAt     time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentAllocationModel) TableName() string {
	return "payment_allocations"
}

// ToDomain converts the persistence model to a domain Payment entity.
func (m *PaymentModel) ToDomain() *ledger.Payment {
	allocations := make([]ledger.Allocation, len(m.Allocations))
	for i, a := range m.Allocations {
		allocations[i] = ledger.Allocation{
			ID:           a.ID,
			TargetType:   a.TargetType,
			TargetID:     a.TargetID,
			TargetNumber: a.TargetNumber,
			Amount:       a.Amount,
		}
	}
	p := &ledger.Payment{
		PaymentNumber:   m.PaymentNumber,
		Type:            m.Type,
		PartyID:         m.PartyID,
		PartyName:       m.PartyName,
		PaymentDate:     m.PaymentDate,
		Amount:          m.Amount,
		Kasar:           m.Kasar,
		InterestPaid:    m.InterestPaid,
		Mode:            m.Mode,
		ChequeNumber:    m.ChequeNumber,
		BankAccountID:   m.BankAccountID,
		AffectsPassbook: m.AffectsPassbook,
		Allocations:     allocations,
		Notes:           m.Notes,
	}
	m.PopulateCompanyAggregateRoot(&p.CompanyAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Payment entity.
func (m *PaymentModel) FromDomain(p *ledger.Payment) {
	m.FromDomainCompanyAggregateRoot(p.CompanyAggregateRoot)
	m.PaymentNumber = p.PaymentNumber
	m.Type = p.Type
	m.PartyID = p.PartyID
	m.PartyName = p.PartyName
	m.PaymentDate = p.PaymentDate
	m.Amount = p.Amount
	m.Kasar = p.Kasar
	m.InterestPaid = p.InterestPaid
	m.Mode = p.Mode
	m.ChequeNumber = p.ChequeNumber
	m.BankAccountID = p.BankAccountID
	m.AffectsPassbook = p.AffectsPassbook
	m.Notes = p.Notes

	m.Allocations = make([]PaymentAllocationModel, len(p.Allocations))
	for i, a := range p.Allocations {
		m.Allocations[i] = PaymentAllocationModel{
			ID:            a.ID,
			PaymentID:     p.ID,
			CompanyID:     p.CompanyID,
			FinancialYear: p.FinancialYear,
			TargetType:    a.TargetType,
			TargetID:      a.TargetID,
			TargetNumber:  a.TargetNumber,
			Amount:        a.Amount,
		}
	}
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment.
func PaymentModelFromDomain(p *ledger.Payment) *PaymentModel {
	m := &PaymentModel{}
	m.FromDomain(p)
	return m
}

// SequenceCounterModel is one atomic counter per (company, financial year,
// prefix) series. Next numbers come from an upsert-returning statement.
type SequenceCounterModel struct {
	CompanyID     uuid.UUID `gorm:"type:uuid;primary_key"`
	FinancialYear string    `gorm:"type:varchar(20);primary_key"`
	Prefix        string    `gorm:"type:varchar(10);primary_key"`
	Seq           int64     `gorm:"not null;default:0"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SequenceCounterModel) TableName() string {
	return "sequence_counters"
}
