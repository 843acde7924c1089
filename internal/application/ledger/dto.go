package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/ledger"
)

// AllocationRequest is one {target, amount} split line on an incoming payment
type AllocationRequest struct {
	TargetID uuid.UUID       `json:"target_id" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

// RecordPaymentRequest carries everything needed to enter a payment or
// receipt into the ledger
type RecordPaymentRequest struct {
	PartyID         uuid.UUID           `json:"party_id" binding:"required"`
	PartyName       string              `json:"party_name"`
	PaymentDate     time.Time           `json:"payment_date" binding:"required"`
	Amount          decimal.Decimal     `json:"amount" binding:"required"`
	Allocations     []AllocationRequest `json:"allocations" binding:"required"`
	Mode            string              `json:"mode"`
	ChequeNumber    string              `json:"cheque_number"`
	BankAccountID   *uuid.UUID          `json:"bank_account_id"`
	AffectsPassbook bool                `json:"affects_passbook"`
	Kasar           decimal.Decimal     `json:"kasar"`
	InterestPaid    decimal.Decimal     `json:"interest_paid"`
	Notes           string              `json:"notes"`
	// IdempotencyKey lets a client retry the same logical payment after a
	// crash without it being applied twice. Optional.
	IdempotencyKey string `json:"idempotency_key"`
}

// AllocationResponse is one allocation line in API responses
type AllocationResponse struct {
	ID           uuid.UUID       `json:"id"`
	TargetType   string          `json:"target_type"`
	TargetID     uuid.UUID       `json:"target_id"`
	TargetNumber string          `json:"target_number"`
	Amount       decimal.Decimal `json:"amount"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID            uuid.UUID            `json:"id"`
	PaymentNumber string               `json:"payment_number"`
	Type          string               `json:"type"`
	PartyID       uuid.UUID            `json:"party_id"`
	PartyName     string               `json:"party_name"`
	PaymentDate   time.Time            `json:"payment_date"`
	Amount        decimal.Decimal      `json:"amount"`
	Kasar         decimal.Decimal      `json:"kasar"`
	InterestPaid  decimal.Decimal      `json:"interest_paid"`
	Mode          string               `json:"mode"`
	ChequeNumber  string               `json:"cheque_number,omitempty"`
	BankAccountID *uuid.UUID           `json:"bank_account_id,omitempty"`
	Allocations   []AllocationResponse `json:"allocations"`
	Notes         string               `json:"notes,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

func toPaymentResponse(p *ledger.Payment) *PaymentResponse {
	allocations := make([]AllocationResponse, len(p.Allocations))
	for i, a := range p.Allocations {
		allocations[i] = AllocationResponse{
			ID:           a.ID,
			TargetType:   string(a.TargetType),
			TargetID:     a.TargetID,
			TargetNumber: a.TargetNumber,
			Amount:       a.Amount,
		}
	}
	return &PaymentResponse{
		ID:            p.ID,
		PaymentNumber: p.PaymentNumber,
		Type:          string(p.Type),
		PartyID:       p.PartyID,
		PartyName:     p.PartyName,
		PaymentDate:   p.PaymentDate,
		Amount:        p.Amount,
		Kasar:         p.Kasar,
		InterestPaid:  p.InterestPaid,
		Mode:          string(p.Mode),
		ChequeNumber:  p.ChequeNumber,
		BankAccountID: p.BankAccountID,
		Allocations:   allocations,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
	}
}

// InvoiceItemRequest is one billed line on an incoming invoice
type InvoiceItemRequest struct {
	Quality string          `json:"quality" binding:"required"`
	HSNCode string          `json:"hsn_code"`
	Boxes   int64           `json:"boxes"`
	Meters  decimal.Decimal `json:"meters"`
	Rate    decimal.Decimal `json:"rate"`
	Amount  decimal.Decimal `json:"amount"`
}

// CreateInvoiceRequest carries a new sales invoice
type CreateInvoiceRequest struct {
	CustomerID   uuid.UUID            `json:"customer_id" binding:"required"`
	CustomerName string               `json:"customer_name"`
	InvoiceDate  time.Time            `json:"invoice_date" binding:"required"`
	DueDate      *time.Time           `json:"due_date"`
	InterestRate decimal.Decimal      `json:"interest_rate"`
	Items        []InvoiceItemRequest `json:"items" binding:"required"`
	Tax          ledger.TaxBreakdown  `json:"tax"`
	TotalAmount  decimal.Decimal      `json:"total_amount" binding:"required"`
	Notes        string               `json:"notes"`
}

// InvoiceView is an invoice enriched with freshly reconciled figures.
// TotalPaid/Outstanding/PaymentStatus come from the payment ledger, not the
// stored cache, and InterestAccrued is computed for the requested instant.
type InvoiceView struct {
	ID              uuid.UUID           `json:"id"`
	InvoiceNumber   string              `json:"invoice_number"`
	CustomerID      uuid.UUID           `json:"customer_id"`
	CustomerName    string              `json:"customer_name"`
	InvoiceDate     time.Time           `json:"invoice_date"`
	DueDate         *time.Time          `json:"due_date,omitempty"`
	InterestRate    decimal.Decimal     `json:"interest_rate"`
	Items           ledger.InvoiceItems `json:"items"`
	Tax             ledger.TaxBreakdown `json:"tax"`
	TotalAmount     decimal.Decimal     `json:"total_amount"`
	TotalPaid       decimal.Decimal     `json:"total_paid"`
	Outstanding     decimal.Decimal     `json:"outstanding"`
	PaymentStatus   string              `json:"payment_status"`
	InterestAccrued decimal.Decimal     `json:"interest_accrued"`
	Notes           string              `json:"notes,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

// ChallanItemRequest is one received line on an incoming challan
type ChallanItemRequest struct {
	Quality string          `json:"quality" binding:"required"`
	Boxes   int64           `json:"boxes"`
	Meters  decimal.Decimal `json:"meters"`
	Rate    decimal.Decimal `json:"rate"`
	Amount  decimal.Decimal `json:"amount"`
}

// CreateChallanRequest carries a new purchase challan
type CreateChallanRequest struct {
	SupplierID   uuid.UUID            `json:"supplier_id" binding:"required"`
	SupplierName string               `json:"supplier_name"`
	ChallanDate  time.Time            `json:"challan_date" binding:"required"`
	Items        []ChallanItemRequest `json:"items" binding:"required"`
	TotalAmount  decimal.Decimal      `json:"total_amount" binding:"required"`
	Notes        string               `json:"notes"`
}

// ChallanView is a challan enriched with freshly reconciled figures
type ChallanView struct {
	ID                    uuid.UUID           `json:"id"`
	ChallanNumber         string              `json:"challan_number"`
	SupplierID            uuid.UUID           `json:"supplier_id"`
	SupplierName          string              `json:"supplier_name"`
	ChallanDate           time.Time           `json:"challan_date"`
	Items                 ledger.ChallanItems `json:"items"`
	TotalAmount           decimal.Decimal     `json:"total_amount"`
	TotalPaid             decimal.Decimal     `json:"total_paid"`
	Outstanding           decimal.Decimal     `json:"outstanding"`
	PaymentStatus         string              `json:"payment_status"`
	TotalBoxes            int64               `json:"total_boxes"`
	TotalMeters           decimal.Decimal     `json:"total_meters"`
	AvailableBoxes        int64               `json:"available_boxes"`
	AvailableMeters       decimal.Decimal     `json:"available_meters"`
	TransferredBoxes      int64               `json:"transferred_boxes"`
	TransferredMeters     decimal.Decimal     `json:"transferred_meters"`
	IsReceivedViaTransfer bool                `json:"is_received_via_transfer"`
	Notes                 string              `json:"notes,omitempty"`
	CreatedAt             time.Time           `json:"created_at"`
}

// PaymentListFilter defines filtering options for payment list queries
type PaymentListFilter struct {
	PartyID  *uuid.UUID `form:"party_id"`
	Type     string     `form:"type"`
	FromDate *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}

// DocumentListFilter defines filtering options for invoice/challan list queries
type DocumentListFilter struct {
	PartyID  *uuid.UUID `form:"party_id"`
	Status   string     `form:"status"`
	FromDate *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"to_date" time_format:"2006-01-02"`
	Overdue  *bool      `form:"overdue"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}
