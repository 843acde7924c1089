package banking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vastra-erp/backend/internal/domain/shared"
)

// BankAccountRepository defines the interface for bank account persistence
type BankAccountRepository interface {
	// FindByID finds a bank account by ID within a scope
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*BankAccount, error)

	// FindAll finds bank accounts within a scope
	FindAll(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]BankAccount, error)

	// Save creates or updates a bank account
	Save(ctx context.Context, account *BankAccount) error
}

// BankTransactionFilter defines filtering options for passbook queries
type BankTransactionFilter struct {
	shared.Filter
	BankAccountID *uuid.UUID
	Type          *TransactionType
	ReferenceType *ReferenceType
	FromDate      *time.Time
	ToDate        *time.Time
}

// BankTransactionRepository defines the interface for passbook persistence
type BankTransactionRepository interface {
	// FindByID finds a passbook entry by ID within a scope
	FindByID(ctx context.Context, scope shared.Scope, id uuid.UUID) (*BankTransaction, error)

	// FindAll finds passbook entries within a scope with filtering
	FindAll(ctx context.Context, scope shared.Scope, filter BankTransactionFilter) ([]BankTransaction, error)

	// FindByReference finds the entries mirroring a business document
	FindByReference(ctx context.Context, scope shared.Scope, refType ReferenceType, refID uuid.UUID) ([]BankTransaction, error)

	// Save creates a passbook entry
	Save(ctx context.Context, tx *BankTransaction) error

	// DeleteByReference removes every entry mirroring a business document.
	// Returns the deleted entries so the caller can roll their amounts back
	// out of the account balance.
	DeleteByReference(ctx context.Context, scope shared.Scope, refType ReferenceType, refID uuid.UUID) ([]BankTransaction, error)
}
