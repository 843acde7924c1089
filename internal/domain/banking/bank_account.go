package banking

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/shared"
)

// BankAccount is a company bank account whose passbook mirrors cheque and
// transfer payments. The balance is maintained alongside the transaction
// ledger: every credit/debit entry adjusts it, and removing an entry undoes
// the adjustment.
type BankAccount struct {
	shared.CompanyAggregateRoot
	Name          string
	BankName      string
	AccountNumber string
	IFSC          string
	Balance       decimal.Decimal
	IsActive      bool
}

// NewBankAccount registers a company bank account with an opening balance
func NewBankAccount(companyID uuid.UUID, financialYear, name, bankName, accountNumber, ifsc string, openingBalance decimal.Decimal) (*BankAccount, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account name cannot be empty")
	}
	if accountNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Account number cannot be empty")
	}

	return &BankAccount{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID, financialYear),
		Name:                 name,
		BankName:             bankName,
		AccountNumber:        accountNumber,
		IFSC:                 ifsc,
		Balance:              openingBalance,
		IsActive:             true,
	}, nil
}

// Credit increases the account balance
func (a *BankAccount) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Credit amount must be positive")
	}
	a.Balance = a.Balance.Add(amount)
	a.Touch()
	return nil
}

// Debit decreases the account balance. Overdrafts are allowed; the passbook
// records what actually happened at the bank, it does not gate it.
func (a *BankAccount) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "Debit amount must be positive")
	}
	a.Balance = a.Balance.Sub(amount)
	a.Touch()
	return nil
}

// Deactivate retires the account from new entries
func (a *BankAccount) Deactivate() {
	a.IsActive = false
	a.Touch()
}
