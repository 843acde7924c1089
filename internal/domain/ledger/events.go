package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/shared"
)

// InvoiceCreatedEvent is raised when a new sales invoice is recorded
type InvoiceCreatedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    uuid.UUID       `json:"customer_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	InvoiceDate   time.Time       `json:"invoice_date"`
}

// EventType returns the event type name
func (e *InvoiceCreatedEvent) EventType() string {
	return "InvoiceCreated"
}

// NewInvoiceCreatedEvent creates a new InvoiceCreatedEvent
func NewInvoiceCreatedEvent(inv *Invoice) *InvoiceCreatedEvent {
	return &InvoiceCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceCreated", "Invoice", inv.ID, inv.CompanyID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		CustomerID:      inv.CustomerID,
		TotalAmount:     inv.TotalAmount,
		InvoiceDate:     inv.InvoiceDate,
	}
}

// InvoiceSettledEvent is raised whenever the settlement trio on an invoice
// is recomputed from the payment ledger
type InvoiceSettledEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	PaymentStatus InvoiceStatus   `json:"payment_status"`
}

// EventType returns the event type name
func (e *InvoiceSettledEvent) EventType() string {
	return "InvoiceSettled"
}

// NewInvoiceSettledEvent creates a new InvoiceSettledEvent
func NewInvoiceSettledEvent(inv *Invoice) *InvoiceSettledEvent {
	return &InvoiceSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("InvoiceSettled", "Invoice", inv.ID, inv.CompanyID),
		InvoiceID:       inv.ID,
		InvoiceNumber:   inv.InvoiceNumber,
		TotalPaid:       inv.TotalPaid,
		Outstanding:     inv.Outstanding,
		PaymentStatus:   inv.PaymentStatus,
	}
}

// ChallanCreatedEvent is raised when a new purchase challan is recorded
type ChallanCreatedEvent struct {
	shared.BaseDomainEvent
	ChallanID     uuid.UUID       `json:"challan_id"`
	ChallanNumber string          `json:"challan_number"`
	SupplierID    uuid.UUID       `json:"supplier_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TotalBoxes    int64           `json:"total_boxes"`
	TotalMeters   decimal.Decimal `json:"total_meters"`
}

// EventType returns the event type name
func (e *ChallanCreatedEvent) EventType() string {
	return "ChallanCreated"
}

// NewChallanCreatedEvent creates a new ChallanCreatedEvent
func NewChallanCreatedEvent(ch *Challan) *ChallanCreatedEvent {
	return &ChallanCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ChallanCreated", "Challan", ch.ID, ch.CompanyID),
		ChallanID:       ch.ID,
		ChallanNumber:   ch.ChallanNumber,
		SupplierID:      ch.SupplierID,
		TotalAmount:     ch.TotalAmount,
		TotalBoxes:      ch.TotalBoxes,
		TotalMeters:     ch.TotalMeters,
	}
}

// ChallanSettledEvent is raised whenever the settlement trio on a challan
// is recomputed from the payment ledger
type ChallanSettledEvent struct {
	shared.BaseDomainEvent
	ChallanID     uuid.UUID       `json:"challan_id"`
	ChallanNumber string          `json:"challan_number"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
	Outstanding   decimal.Decimal `json:"outstanding"`
	PaymentStatus ChallanStatus   `json:"payment_status"`
}

// EventType returns the event type name
func (e *ChallanSettledEvent) EventType() string {
	return "ChallanSettled"
}

// NewChallanSettledEvent creates a new ChallanSettledEvent
func NewChallanSettledEvent(ch *Challan) *ChallanSettledEvent {
	return &ChallanSettledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("ChallanSettled", "Challan", ch.ID, ch.CompanyID),
		ChallanID:       ch.ID,
		ChallanNumber:   ch.ChallanNumber,
		TotalPaid:       ch.TotalPaid,
		Outstanding:     ch.Outstanding,
		PaymentStatus:   ch.PaymentStatus,
	}
}

// PaymentRecordedEvent is raised when a payment or receipt enters the ledger
type PaymentRecordedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID       `json:"payment_id"`
	PaymentNumber string          `json:"payment_number"`
	PaymentType   PaymentType     `json:"payment_type"`
	PartyID       uuid.UUID       `json:"party_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentDate   time.Time       `json:"payment_date"`
	TargetCount   int             `json:"target_count"`
}

// EventType returns the event type name
func (e *PaymentRecordedEvent) EventType() string {
	return "PaymentRecorded"
}

// NewPaymentRecordedEvent creates a new PaymentRecordedEvent
func NewPaymentRecordedEvent(p *Payment) *PaymentRecordedEvent {
	return &PaymentRecordedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentRecorded", "Payment", p.ID, p.CompanyID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		PaymentType:     p.Type,
		PartyID:         p.PartyID,
		Amount:          p.Amount,
		PaymentDate:     p.PaymentDate,
		TargetCount:     len(p.TargetIDs()),
	}
}

// PaymentDeletedEvent is raised when a payment is removed from the ledger
// and its targets are re-reconciled
type PaymentDeletedEvent struct {
	shared.BaseDomainEvent
	PaymentID     uuid.UUID   `json:"payment_id"`
	PaymentNumber string      `json:"payment_number"`
	PaymentType   PaymentType `json:"payment_type"`
	TargetIDs     []uuid.UUID `json:"target_ids"`
}

// EventType returns the event type name
func (e *PaymentDeletedEvent) EventType() string {
	return "PaymentDeleted"
}

// NewPaymentDeletedEvent creates a new PaymentDeletedEvent
func NewPaymentDeletedEvent(p *Payment) *PaymentDeletedEvent {
	return &PaymentDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("PaymentDeleted", "Payment", p.ID, p.CompanyID),
		PaymentID:       p.ID,
		PaymentNumber:   p.PaymentNumber,
		PaymentType:     p.Type,
		TargetIDs:       p.TargetIDs(),
	}
}
