package banking

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vastra-erp/backend/internal/domain/banking"
	"github.com/vastra-erp/backend/internal/domain/shared"
)

// BankingService manages company bank accounts and their passbooks. Payment
// mirror entries are written by the payment ledger; this service covers
// account setup, manual entries, and passbook reads.
type BankingService struct {
	accountRepo banking.BankAccountRepository
	txRepo      banking.BankTransactionRepository
	logger      *zap.Logger
}

// NewBankingService creates a new BankingService
func NewBankingService(accountRepo banking.BankAccountRepository, txRepo banking.BankTransactionRepository, logger *zap.Logger) *BankingService {
	return &BankingService{
		accountRepo: accountRepo,
		txRepo:      txRepo,
		logger:      logger,
	}
}

// CreateAccount registers a company bank account
func (s *BankingService) CreateAccount(ctx context.Context, scope shared.Scope, req CreateBankAccountRequest) (*BankAccountResponse, error) {
	account, err := banking.NewBankAccount(scope.CompanyID, scope.FinancialYear,
		req.Name, req.BankName, req.AccountNumber, req.IFSC, req.OpeningBalance)
	if err != nil {
		return nil, err
	}

	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("bank account registered",
		zap.String("name", account.Name),
		zap.String("bank", account.BankName))
	return toBankAccountResponse(account), nil
}

// GetAccount returns one bank account by id
func (s *BankingService) GetAccount(ctx context.Context, scope shared.Scope, id uuid.UUID) (*BankAccountResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Bank account not found")
	}
	return toBankAccountResponse(account), nil
}

// ListAccounts returns all bank accounts in the scope
func (s *BankingService) ListAccounts(ctx context.Context, scope shared.Scope) ([]BankAccountResponse, error) {
	accounts, err := s.accountRepo.FindAll(ctx, scope, shared.DefaultFilter())
	if err != nil {
		return nil, err
	}
	items := make([]BankAccountResponse, len(accounts))
	for i := range accounts {
		items[i] = *toBankAccountResponse(&accounts[i])
	}
	return items, nil
}

// RecordManualEntry appends a hand-entered passbook line and adjusts the
// account balance. Manual entries are not linked to payments and survive
// payment deletion.
func (s *BankingService) RecordManualEntry(ctx context.Context, scope shared.Scope, accountID uuid.UUID, req ManualEntryRequest) (*PassbookEntryResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, scope, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Bank account not found")
	}

	txType := banking.TransactionType(req.Type)
	entry, err := banking.NewBankTransaction(scope.CompanyID, scope.FinancialYear,
		account.ID, txType, req.Amount, req.Date, req.Description)
	if err != nil {
		return nil, err
	}

	if err := s.txRepo.Save(ctx, entry); err != nil {
		return nil, err
	}

	if txType == banking.TransactionTypeCredit {
		err = account.Credit(req.Amount)
	} else {
		err = account.Debit(req.Amount)
	}
	if err != nil {
		return nil, err
	}
	if err := s.accountRepo.Save(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("manual passbook entry recorded",
		zap.String("account", account.Name),
		zap.String("type", string(txType)),
		zap.String("amount", req.Amount.String()))
	return toPassbookEntryResponse(entry), nil
}

// ListPassbook returns an account's passbook entries, newest first
func (s *BankingService) ListPassbook(ctx context.Context, scope shared.Scope, accountID uuid.UUID, filter PassbookListFilter) ([]PassbookEntryResponse, error) {
	account, err := s.accountRepo.FindByID(ctx, scope, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Bank account not found")
	}

	domainFilter := banking.BankTransactionFilter{Filter: shared.DefaultFilter()}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.BankAccountID = &accountID
	domainFilter.FromDate = filter.FromDate
	domainFilter.ToDate = filter.ToDate
	if filter.Type != "" {
		txType := banking.TransactionType(filter.Type)
		if !txType.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid transaction type filter")
		}
		domainFilter.Type = &txType
	}

	txs, err := s.txRepo.FindAll(ctx, scope, domainFilter)
	if err != nil {
		return nil, err
	}
	items := make([]PassbookEntryResponse, len(txs))
	for i := range txs {
		items[i] = *toPassbookEntryResponse(&txs[i])
	}
	return items, nil
}
