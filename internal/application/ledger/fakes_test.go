package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/banking"
	"github.com/vastra-erp/backend/internal/domain/ledger"
	"github.com/vastra-erp/backend/internal/domain/shared"
)

// In-memory repositories backing the service tests. They implement the real
// group-sum semantics so sequences of creates and deletes behave like the
// database would.

type memPaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]ledger.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[uuid.UUID]ledger.Payment)}
}

func (r *memPaymentRepo) FindByID(_ context.Context, scope shared.Scope, id uuid.UUID) (*ledger.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.CompanyID != scope.CompanyID {
		return nil, nil
	}
	return &p, nil
}

func (r *memPaymentRepo) FindAll(_ context.Context, scope shared.Scope, _ ledger.PaymentFilter) ([]ledger.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Payment
	for _, p := range r.payments {
		if p.CompanyID == scope.CompanyID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memPaymentRepo) FindByTarget(_ context.Context, scope shared.Scope, targetType ledger.TargetType, targetID uuid.UUID) ([]ledger.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Payment
	for _, p := range r.payments {
		if p.CompanyID != scope.CompanyID {
			continue
		}
		for _, a := range p.Allocations {
			if a.TargetType == targetType && a.TargetID == targetID {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (r *memPaymentRepo) TotalPaidByTargets(_ context.Context, scope shared.Scope, targetType ledger.TargetType, targetIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	wanted := make(map[uuid.UUID]struct{}, len(targetIDs))
	for _, id := range targetIDs {
		wanted[id] = struct{}{}
	}
	totals := make(map[uuid.UUID]decimal.Decimal)
	for _, p := range r.payments {
		if p.CompanyID != scope.CompanyID || p.FinancialYear != scope.FinancialYear {
			continue
		}
		for _, a := range p.Allocations {
			if a.TargetType != targetType {
				continue
			}
			if _, ok := wanted[a.TargetID]; !ok {
				continue
			}
			totals[a.TargetID] = totals[a.TargetID].Add(a.Amount)
		}
	}
	return totals, nil
}

func (r *memPaymentRepo) Save(_ context.Context, payment *ledger.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.ID] = *payment
	return nil
}

func (r *memPaymentRepo) Delete(_ context.Context, scope shared.Scope, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.payments[id]; !ok || p.CompanyID != scope.CompanyID {
		return shared.ErrNotFound
	}
	delete(r.payments, id)
	return nil
}

func (r *memPaymentRepo) Count(_ context.Context, scope shared.Scope, _ ledger.PaymentFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.payments {
		if p.CompanyID == scope.CompanyID {
			n++
		}
	}
	return n, nil
}

type memInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]ledger.Invoice
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{invoices: make(map[uuid.UUID]ledger.Invoice)}
}

func (r *memInvoiceRepo) FindByID(_ context.Context, scope shared.Scope, id uuid.UUID) (*ledger.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok || inv.CompanyID != scope.CompanyID {
		return nil, nil
	}
	return &inv, nil
}

func (r *memInvoiceRepo) FindByIDs(_ context.Context, scope shared.Scope, ids []uuid.UUID) ([]ledger.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Invoice
	for _, id := range ids {
		if inv, ok := r.invoices[id]; ok && inv.CompanyID == scope.CompanyID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) FindByNumber(_ context.Context, scope shared.Scope, number string) (*ledger.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.CompanyID == scope.CompanyID && inv.InvoiceNumber == number {
			return &inv, nil
		}
	}
	return nil, nil
}

func (r *memInvoiceRepo) FindAll(_ context.Context, scope shared.Scope, _ ledger.InvoiceFilter) ([]ledger.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Invoice
	for _, inv := range r.invoices {
		if inv.CompanyID == scope.CompanyID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *memInvoiceRepo) Save(_ context.Context, invoice *ledger.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices[invoice.ID] = *invoice
	return nil
}

func (r *memInvoiceRepo) UpdateSettlement(ctx context.Context, invoice *ledger.Invoice) error {
	return r.Save(ctx, invoice)
}

func (r *memInvoiceRepo) Delete(_ context.Context, scope shared.Scope, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.invoices[id]; !ok || inv.CompanyID != scope.CompanyID {
		return shared.ErrNotFound
	}
	delete(r.invoices, id)
	return nil
}

func (r *memInvoiceRepo) Count(_ context.Context, scope shared.Scope, _ ledger.InvoiceFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, inv := range r.invoices {
		if inv.CompanyID == scope.CompanyID {
			n++
		}
	}
	return n, nil
}

func (r *memInvoiceRepo) ExistsByNumber(ctx context.Context, scope shared.Scope, number string) (bool, error) {
	inv, err := r.FindByNumber(ctx, scope, number)
	return inv != nil, err
}

type memChallanRepo struct {
	mu       sync.Mutex
	challans map[uuid.UUID]ledger.Challan
}

func newMemChallanRepo() *memChallanRepo {
	return &memChallanRepo{challans: make(map[uuid.UUID]ledger.Challan)}
}

func (r *memChallanRepo) FindByID(_ context.Context, scope shared.Scope, id uuid.UUID) (*ledger.Challan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.challans[id]
	if !ok || ch.CompanyID != scope.CompanyID {
		return nil, nil
	}
	return &ch, nil
}

func (r *memChallanRepo) FindByIDs(_ context.Context, scope shared.Scope, ids []uuid.UUID) ([]ledger.Challan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Challan
	for _, id := range ids {
		if ch, ok := r.challans[id]; ok && ch.CompanyID == scope.CompanyID {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (r *memChallanRepo) FindByNumber(_ context.Context, scope shared.Scope, number string) (*ledger.Challan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.challans {
		if ch.CompanyID == scope.CompanyID && ch.ChallanNumber == number {
			return &ch, nil
		}
	}
	return nil, nil
}

func (r *memChallanRepo) FindAll(_ context.Context, scope shared.Scope, _ ledger.ChallanFilter) ([]ledger.Challan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Challan
	for _, ch := range r.challans {
		if ch.CompanyID == scope.CompanyID {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (r *memChallanRepo) FindBySourceTransfer(_ context.Context, scope shared.Scope, transferID uuid.UUID) ([]ledger.Challan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Challan
	for _, ch := range r.challans {
		if ch.CompanyID == scope.CompanyID && ch.SourceTransferID != nil && *ch.SourceTransferID == transferID {
			out = append(out, ch)
		}
	}
	return out, nil
}

func (r *memChallanRepo) Save(_ context.Context, challan *ledger.Challan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.challans[challan.ID] = *challan
	return nil
}

func (r *memChallanRepo) UpdateSettlement(ctx context.Context, challan *ledger.Challan) error {
	return r.Save(ctx, challan)
}

func (r *memChallanRepo) UpdateStockCounters(ctx context.Context, challan *ledger.Challan) error {
	return r.Save(ctx, challan)
}

func (r *memChallanRepo) Delete(_ context.Context, scope shared.Scope, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.challans[id]; !ok || ch.CompanyID != scope.CompanyID {
		return shared.ErrNotFound
	}
	delete(r.challans, id)
	return nil
}

func (r *memChallanRepo) Count(_ context.Context, scope shared.Scope, _ ledger.ChallanFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, ch := range r.challans {
		if ch.CompanyID == scope.CompanyID {
			n++
		}
	}
	return n, nil
}

type memSequenceRepo struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newMemSequenceRepo() *memSequenceRepo {
	return &memSequenceRepo{counters: make(map[string]int64)}
}

func (r *memSequenceRepo) Next(_ context.Context, scope shared.Scope, prefix string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := scope.CompanyID.String() + ":" + scope.FinancialYear + ":" + prefix
	r.counters[key]++
	return r.counters[key], nil
}

type memBankAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]banking.BankAccount
}

func newMemBankAccountRepo() *memBankAccountRepo {
	return &memBankAccountRepo{accounts: make(map[uuid.UUID]banking.BankAccount)}
}

func (r *memBankAccountRepo) FindByID(_ context.Context, scope shared.Scope, id uuid.UUID) (*banking.BankAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[id]
	if !ok || acc.CompanyID != scope.CompanyID {
		return nil, nil
	}
	return &acc, nil
}

func (r *memBankAccountRepo) FindAll(_ context.Context, scope shared.Scope, _ shared.Filter) ([]banking.BankAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []banking.BankAccount
	for _, acc := range r.accounts {
		if acc.CompanyID == scope.CompanyID {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (r *memBankAccountRepo) Save(_ context.Context, account *banking.BankAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.ID] = *account
	return nil
}

type memBankTxRepo struct {
	mu  sync.Mutex
	txs map[uuid.UUID]banking.BankTransaction
}

func newMemBankTxRepo() *memBankTxRepo {
	return &memBankTxRepo{txs: make(map[uuid.UUID]banking.BankTransaction)}
}

func (r *memBankTxRepo) FindByID(_ context.Context, scope shared.Scope, id uuid.UUID) (*banking.BankTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok || tx.CompanyID != scope.CompanyID {
		return nil, nil
	}
	return &tx, nil
}

func (r *memBankTxRepo) FindAll(_ context.Context, scope shared.Scope, _ banking.BankTransactionFilter) ([]banking.BankTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []banking.BankTransaction
	for _, tx := range r.txs {
		if tx.CompanyID == scope.CompanyID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *memBankTxRepo) FindByReference(_ context.Context, scope shared.Scope, refType banking.ReferenceType, refID uuid.UUID) ([]banking.BankTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []banking.BankTransaction
	for _, tx := range r.txs {
		if tx.CompanyID == scope.CompanyID && tx.ReferenceType == refType && tx.ReferenceID != nil && *tx.ReferenceID == refID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (r *memBankTxRepo) Save(_ context.Context, tx *banking.BankTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs[tx.ID] = *tx
	return nil
}

func (r *memBankTxRepo) DeleteByReference(ctx context.Context, scope shared.Scope, refType banking.ReferenceType, refID uuid.UUID) ([]banking.BankTransaction, error) {
	matched, err := r.FindByReference(ctx, scope, refType, refID)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tx := range matched {
		delete(r.txs, tx.ID)
	}
	return matched, nil
}

type memIdempotencyStore struct {
	mu   sync.Mutex
	seen map[string]time.Time
}

func newMemIdempotencyStore() *memIdempotencyStore {
	return &memIdempotencyStore{seen: make(map[string]time.Time)}
}

func (s *memIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if exp, ok := s.seen[key]; ok && time.Now().Before(exp) {
		return false, nil
	}
	s.seen[key] = time.Now().Add(ttl)
	return true, nil
}

func (s *memIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.seen[key]
	return ok && time.Now().Before(exp), nil
}

func (s *memIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, key)
	return nil
}

func (s *memIdempotencyStore) Close() error { return nil }
