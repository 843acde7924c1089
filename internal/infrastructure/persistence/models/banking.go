package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/banking"
)

// BankAccountModel is the persistence model for the BankAccount aggregate root.
type BankAccountModel struct {
	CompanyAggregateModel
	Name          string          `gorm:"type:varchar(200);not null"`
	BankName      string          `gorm:"type:varchar(200)"`
	AccountNumber string          `gorm:"type:varchar(50);not null"`
	IFSC          string          `gorm:"type:varchar(20)"`
	Balance       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive      bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (BankAccountModel) TableName() string {
	return "bank_accounts"
}

// ToDomain converts the persistence model to a domain BankAccount entity.
func (m *BankAccountModel) ToDomain() *banking.BankAccount {
	acc := &banking.BankAccount{
		Name:          m.Name,
		BankName:      m.BankName,
		AccountNumber: m.AccountNumber,
		IFSC:          m.IFSC,
		Balance:       m.Balance,
		IsActive:      m.IsActive,
	}
	m.PopulateCompanyAggregateRoot(&acc.CompanyAggregateRoot)
	return acc
}

// FromDomain populates the persistence model from a domain BankAccount entity.
func (m *BankAccountModel) FromDomain(acc *banking.BankAccount) {
	m.FromDomainCompanyAggregateRoot(acc.CompanyAggregateRoot)
	m.Name = acc.Name
	m.BankName = acc.BankName
	m.AccountNumber = acc.AccountNumber
	m.IFSC = acc.IFSC
	m.Balance = acc.Balance
	m.IsActive = acc.IsActive
}

// BankAccountModelFromDomain creates a new persistence model from a domain BankAccount.
func BankAccountModelFromDomain(acc *banking.BankAccount) *BankAccountModel {
	m := &BankAccountModel{}
	m.FromDomain(acc)
	return m
}

// BankTransactionModel is the persistence model for passbook entries.
// reference_type + reference_id lets a payment deletion find and remove the
// entries it created.
type BankTransactionModel struct {
	CompanyAggregateModel
	BankAccountID uuid.UUID               `gorm:"type:uuid;not null;index"`
	Type          banking.TransactionType `gorm:"type:varchar(10);not null"`
	Amount        decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Date          time.Time               `gorm:"not null;index"`
	Description   string                  `gorm:"type:varchar(500)"`
	ReferenceType banking.ReferenceType   `gorm:"type:varchar(30);not null;index:idx_banktx_reference,priority:1"`
	ReferenceID   *uuid.UUID              `gorm:"type:uuid;index:idx_banktx_reference,priority:2"`
}

// TableName returns the table name for GORM
func (BankTransactionModel) TableName() string {
	return "bank_transactions"
}

// ToDomain converts the persistence model to a domain BankTransaction entity.
func (m *BankTransactionModel) ToDomain() *banking.BankTransaction {
	tx := &banking.BankTransaction{
		BankAccountID: m.BankAccountID,
		Type:          m.Type,
		Amount:        m.Amount,
		Date:          m.Date,
		Description:   m.Description,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
	}
	m.PopulateCompanyAggregateRoot(&tx.CompanyAggregateRoot)
	return tx
}

// FromDomain populates the persistence model from a domain BankTransaction entity.
func (m *BankTransactionModel) FromDomain(tx *banking.BankTransaction) {
	m.FromDomainCompanyAggregateRoot(tx.CompanyAggregateRoot)
	m.BankAccountID = tx.BankAccountID
	m.Type = tx.Type
	m.Amount = tx.Amount
	m.Date = tx.Date
	m.Description = tx.Description
	m.ReferenceType = tx.ReferenceType
	m.ReferenceID = tx.ReferenceID
}

// BankTransactionModelFromDomain creates a new persistence model from a domain BankTransaction.
func BankTransactionModelFromDomain(tx *banking.BankTransaction) *BankTransactionModel {
	m := &BankTransactionModel{}
	m.FromDomain(tx)
	return m
}
