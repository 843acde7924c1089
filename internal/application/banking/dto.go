package banking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/banking"
)

// CreateBankAccountRequest carries a new company bank account
type CreateBankAccountRequest struct {
	Name           string          `json:"name" binding:"required"`
	BankName       string          `json:"bank_name"`
	AccountNumber  string          `json:"account_number" binding:"required"`
	IFSC           string          `json:"ifsc"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// ManualEntryRequest carries a hand-entered passbook line, e.g. bank charges
// or a deposit that has no payment document behind it
type ManualEntryRequest struct {
	Type        string          `json:"type" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Date        time.Time       `json:"date" binding:"required"`
	Description string          `json:"description"`
}

// PassbookListFilter defines filtering options for passbook queries
type PassbookListFilter struct {
	Type     string     `form:"type"`
	FromDate *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate   *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}

// BankAccountResponse represents a bank account in API responses
type BankAccountResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	BankName      string          `json:"bank_name,omitempty"`
	AccountNumber string          `json:"account_number"`
	IFSC          string          `json:"ifsc,omitempty"`
	Balance       decimal.Decimal `json:"balance"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toBankAccountResponse(a *banking.BankAccount) *BankAccountResponse {
	return &BankAccountResponse{
		ID:            a.ID,
		Name:          a.Name,
		BankName:      a.BankName,
		AccountNumber: a.AccountNumber,
		IFSC:          a.IFSC,
		Balance:       a.Balance,
		IsActive:      a.IsActive,
		CreatedAt:     a.CreatedAt,
	}
}

// PassbookEntryResponse represents one passbook line in API responses
type PassbookEntryResponse struct {
	ID            uuid.UUID       `json:"id"`
	BankAccountID uuid.UUID       `json:"bank_account_id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description,omitempty"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   *uuid.UUID      `json:"reference_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toPassbookEntryResponse(tx *banking.BankTransaction) *PassbookEntryResponse {
	return &PassbookEntryResponse{
		ID:            tx.ID,
		BankAccountID: tx.BankAccountID,
		Type:          string(tx.Type),
		Amount:        tx.Amount,
		Date:          tx.Date,
		Description:   tx.Description,
		ReferenceType: string(tx.ReferenceType),
		ReferenceID:   tx.ReferenceID,
		CreatedAt:     tx.CreatedAt,
	}
}
