package banking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/shared"
)

// TransactionType says which way money moved through the account
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "credit"
	TransactionTypeDebit  TransactionType = "debit"
)

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeCredit || t == TransactionTypeDebit
}

// ReferenceType tags what business document produced a passbook entry.
// Entries tagged with a payment reference are deleted when that payment is
// deleted; manual entries have no reference and survive.
type ReferenceType string

const (
	ReferenceTypeManual         ReferenceType = "manual"
	ReferenceTypePaymentReceipt ReferenceType = "payment_receipt"
	ReferenceTypePaymentMade    ReferenceType = "payment_made"
)

// IsValid checks if the reference type is valid
func (r ReferenceType) IsValid() bool {
	switch r {
	case ReferenceTypeManual, ReferenceTypePaymentReceipt, ReferenceTypePaymentMade:
		return true
	}
	return false
}

// BankTransaction is one passbook entry on a bank account
type BankTransaction struct {
	shared.CompanyAggregateRoot
	BankAccountID uuid.UUID
	Type          TransactionType
	Amount        decimal.Decimal
	Date          time.Time
	Description   string
	ReferenceType ReferenceType
	ReferenceID   *uuid.UUID
}

// NewBankTransaction records a manual passbook entry
func NewBankTransaction(companyID uuid.UUID, financialYear string, bankAccountID uuid.UUID, txType TransactionType, amount decimal.Decimal, date time.Time, description string) (*BankTransaction, error) {
	if bankAccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Bank account ID cannot be empty")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid transaction type")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Transaction amount must be positive")
	}

	return &BankTransaction{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID, financialYear),
		BankAccountID:        bankAccountID,
		Type:                 txType,
		Amount:               amount,
		Date:                 date,
		Description:          description,
		ReferenceType:        ReferenceTypeManual,
	}, nil
}

// NewPaymentPassbookEntry mirrors a payment into the passbook. Receipts
// credit the account, supplier payments debit it. The entry is keyed by the
// payment's id so deleting the payment can find and remove it.
func NewPaymentPassbookEntry(companyID uuid.UUID, financialYear string, bankAccountID uuid.UUID, isReceipt bool, amount decimal.Decimal, date time.Time, description string, paymentID uuid.UUID) (*BankTransaction, error) {
	if paymentID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Payment ID cannot be empty")
	}

	txType := TransactionTypeDebit
	refType := ReferenceTypePaymentMade
	if isReceipt {
		txType = TransactionTypeCredit
		refType = ReferenceTypePaymentReceipt
	}

	tx, err := NewBankTransaction(companyID, financialYear, bankAccountID, txType, amount, date, description)
	if err != nil {
		return nil, err
	}
	tx.ReferenceType = refType
	tx.ReferenceID = &paymentID
	return tx, nil
}

// IsPaymentLinked reports whether the entry mirrors a payment
func (t *BankTransaction) IsPaymentLinked() bool {
	return t.ReferenceID != nil &&
		(t.ReferenceType == ReferenceTypePaymentReceipt || t.ReferenceType == ReferenceTypePaymentMade)
}

// SignedAmount returns the amount with a debit-negative sign
func (t *BankTransaction) SignedAmount() decimal.Decimal {
	if t.Type == TransactionTypeDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
