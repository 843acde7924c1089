package handler

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/banking"
	"github.com/vastra-erp/backend/internal/domain/inventory"
	"github.com/vastra-erp/backend/internal/domain/ledger"
	"github.com/vastra-erp/backend/internal/domain/partner"
	"github.com/vastra-erp/backend/internal/domain/shared"
)

// In-memory repositories backing the handler tests. Handlers run against the
// real application services; only persistence is faked.

type fakeInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]ledger.Invoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[uuid.UUID]ledger.Invoice)}
}

func (r *fakeInvoiceRepo) FindByID(_ context.Context, scope shared.Scope, id uuid.UUID) (*ledger.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok || inv.CompanyID != scope.CompanyID {
		return nil, nil
	}
	return &inv, nil
}

func (r *fakeInvoiceRepo) FindByIDs(_ context.Context, scope shared.Scope, ids []uuid.UUID) ([]ledger.Invoice, error) {
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

func (r *fakeInvoiceRepo) FindByNumber(_ context.Context, scope shared.Scope, number string) (*ledger.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.CompanyID == scope.CompanyID && inv.InvoiceNumber == number {
			return &inv, nil
		}
	}
	return nil, nil
}

func (r *fakeInvoiceRepo) FindAll(_ context.Context, scope shared.Scope, filter ledger.InvoiceFilter) ([]ledger.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Invoice
	for _, inv := range r.invoices {
		if inv.CompanyID != scope.CompanyID {
			continue
		}
		if filter.CustomerID != nil && inv.CustomerID != *filter.CustomerID {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func (r *fakeInvoiceRepo) Save(_ context.Context, invoice *ledger.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices[invoice.ID] = *invoice
	return nil
}

func (r *fakeInvoiceRepo) UpdateSettlement(ctx context.Context, invoice *ledger.Invoice) error {
	return r.Save(ctx, invoice)
}

func (r *fakeInvoiceRepo) Delete(_ context.Context, scope shared.Scope, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inv, ok := r.invoices[id]; !ok || inv.CompanyID != scope.CompanyID {
		return shared.ErrNotFound
	}
	delete(r.invoices, id)
	return nil
}

func (r *fakeInvoiceRepo) Count(ctx context.Context, scope shared.Scope, filter ledger.InvoiceFilter) (int64, error) {
	out, err := r.FindAll(ctx, scope, filter)
	return int64(len(out)), err
}

func (r *fakeInvoiceRepo) ExistsByNumber(ctx context.Context, scope shared.Scope, number string) (bool, error) {
	inv, err := r.FindByNumber(ctx, scope, number)
	return inv != nil, err
}

type fakeChallanRepo struct {
	mu       sync.Mutex
	challans map[uuid.UUID]ledger.Challan
}

func newFakeChallanRepo() *fakeChallanRepo {
	return &fakeChallanRepo{challans: make(map[uuid.UUID]ledger.Challan)}
}

func (r *fakeChallanRepo) FindByID(_ context.Context, scope shared.Scope, id uuid.UUID) (*ledger.Challan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.challans[id]
	if !ok || ch.CompanyID != scope.CompanyID {
		return nil, nil
	}
	return &ch, nil
}

func (r *fakeChallanRepo) FindByIDs(_ context.Context, scope shared.Scope, ids []uuid.UUID) ([]ledger.Challan, error) {
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

func (r *fakeChallanRepo) FindByNumber(_ context.Context, scope shared.Scope, number string) (*ledger.Challan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ch := range r.challans {
		if ch.CompanyID == scope.CompanyID && ch.ChallanNumber == number {
			return &ch, nil
		}
	}
	return nil, nil
}

func (r *fakeChallanRepo) FindAll(_ context.Context, scope shared.Scope, filter ledger.ChallanFilter) ([]ledger.Challan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ledger.Challan
	for _, ch := range r.challans {
		if ch.CompanyID != scope.CompanyID {
			continue
		}
		if filter.SupplierID != nil && ch.SupplierID != *filter.SupplierID {
			continue
		}
		out = append(out, ch)
	}
	return out, nil
}

func (r *fakeChallanRepo) FindBySourceTransfer(_ context.Context, scope shared.Scope, transferID uuid.UUID) ([]ledger.Challan, error) {
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

func (r *fakeChallanRepo) Save(_ context.Context, challan *ledger.Challan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.challans[challan.ID] = *challan
	return nil
}

func (r *fakeChallanRepo) UpdateSettlement(ctx context.Context, challan *ledger.Challan) error {
	return r.Save(ctx, challan)
}

func (r *fakeChallanRepo) UpdateStockCounters(ctx context.Context, challan *ledger.Challan) error {
	return r.Save(ctx, challan)
}

func (r *fakeChallanRepo) Delete(_ context.Context, scope shared.Scope, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.challans[id]; !ok || ch.CompanyID != scope.CompanyID {
		return shared.ErrNotFound
	}
	delete(r.challans, id)
	return nil
}

func (r *fakeChallanRepo) Count(ctx context.Context, scope shared.Scope, filter ledger.ChallanFilter) (int64, error) {
	out, err := r.FindAll(ctx, scope, filter)
	return int64(len(out)), err
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]ledger.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{payments: make(map[uuid.UUID]ledger.Payment)}
}

func (r *fakePaymentRepo) FindByID(_ context.Context, scope shared.Scope, id uuid.UUID) (*ledger.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.CompanyID != scope.CompanyID {
		return nil, nil
	}
	return &p, nil
}

func (r *fakePaymentRepo) FindAll(_ context.Context, scope shared.Scope, _ ledger.PaymentFilter) ([]ledger.Payment, error) {
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

func (r *fakePaymentRepo) FindByTarget(_ context.Context, scope shared.Scope, targetType ledger.TargetType, targetID uuid.UUID) ([]ledger.Payment, error) {
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

func (r *fakePaymentRepo) TotalPaidByTargets(_ context.Context, scope shared.Scope, targetType ledger.TargetType, targetIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
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

func (r *fakePaymentRepo) Save(_ context.Context, payment *ledger.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments[payment.ID] = *payment
	return nil
}

func (r *fakePaymentRepo) Delete(_ context.Context, scope shared.Scope, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.payments[id]; !ok || p.CompanyID != scope.CompanyID {
		return shared.ErrNotFound
	}
	delete(r.payments, id)
	return nil
}

func (r *fakePaymentRepo) Count(ctx context.Context, scope shared.Scope, filter ledger.PaymentFilter) (int64, error) {
	out, err := r.FindAll(ctx, scope, filter)
	return int64(len(out)), err
}

type fakeSequenceRepo struct {
	mu       sync.Mutex
	counters map[string]int64
}

func newFakeSequenceRepo() *fakeSequenceRepo {
	return &fakeSequenceRepo{counters: make(map[string]int64)}
}

func (r *fakeSequenceRepo) Next(_ context.Context, scope shared.Scope, prefix string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := scope.CompanyID.String() + ":" + scope.FinancialYear + ":" + prefix
	r.counters[key]++
	return r.counters[key], nil
}

type fakeBankAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]banking.BankAccount
}

func newFakeBankAccountRepo() *fakeBankAccountRepo {
	return &fakeBankAccountRepo{accounts: make(map[uuid.UUID]banking.BankAccount)}
}

func (r *fakeBankAccountRepo) FindByID(_ context.Context, scope shared.Scope, id uuid.UUID) (*banking.BankAccount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	acc, ok := r.accounts[id]
	if !ok || acc.CompanyID != scope.CompanyID {
		return nil, nil
	}
	return &acc, nil
}

func (r *fakeBankAccountRepo) FindAll(_ context.Context, scope shared.Scope, _ shared.Filter) ([]banking.BankAccount, error) {
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

func (r *fakeBankAccountRepo) Save(_ context.Context, account *banking.BankAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[account.ID] = *account
	return nil
}

type fakeBankTxRepo struct {
	mu  sync.Mutex
	txs map[uuid.UUID]banking.BankTransaction
}

func newFakeBankTxRepo() *fakeBankTxRepo {
	return &fakeBankTxRepo{txs: make(map[uuid.UUID]banking.BankTransaction)}
}

func (r *fakeBankTxRepo) FindByID(_ context.Context, scope shared.Scope, id uuid.UUID) (*banking.BankTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx, ok := r.txs[id]
	if !ok || tx.CompanyID != scope.CompanyID {
		return nil, nil
	}
	return &tx, nil
}

func (r *fakeBankTxRepo) FindAll(_ context.Context, scope shared.Scope, filter banking.BankTransactionFilter) ([]banking.BankTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []banking.BankTransaction
	for _, tx := range r.txs {
		if tx.CompanyID != scope.CompanyID {
			continue
		}
		if filter.BankAccountID != nil && tx.BankAccountID != *filter.BankAccountID {
			continue
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *fakeBankTxRepo) FindByReference(_ context.Context, scope shared.Scope, refType banking.ReferenceType, refID uuid.UUID) ([]banking.BankTransaction, error) {
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

func (r *fakeBankTxRepo) Save(_ context.Context, tx *banking.BankTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.txs[tx.ID] = *tx
	return nil
}

func (r *fakeBankTxRepo) DeleteByReference(ctx context.Context, scope shared.Scope, refType banking.ReferenceType, refID uuid.UUID) ([]banking.BankTransaction, error) {
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

type fakePartyRepo struct {
	mu      sync.Mutex
	parties map[uuid.UUID]partner.Party
}

func newFakePartyRepo() *fakePartyRepo {
	return &fakePartyRepo{parties: make(map[uuid.UUID]partner.Party)}
}

func (r *fakePartyRepo) FindByID(_ context.Context, scope shared.Scope, id uuid.UUID) (*partner.Party, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.parties[id]
	if !ok || p.CompanyID != scope.CompanyID {
		return nil, nil
	}
	return &p, nil
}

func (r *fakePartyRepo) FindByName(_ context.Context, scope shared.Scope, name string) (*partner.Party, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.parties {
		if p.CompanyID == scope.CompanyID && p.Name == name {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *fakePartyRepo) FindAll(_ context.Context, scope shared.Scope, _ partner.PartyFilter) ([]partner.Party, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []partner.Party
	for _, p := range r.parties {
		if p.CompanyID == scope.CompanyID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePartyRepo) Save(_ context.Context, party *partner.Party) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.parties[party.ID] = *party
	return nil
}

func (r *fakePartyRepo) Delete(_ context.Context, scope shared.Scope, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.parties[id]; !ok || p.CompanyID != scope.CompanyID {
		return shared.ErrNotFound
	}
	delete(r.parties, id)
	return nil
}

func (r *fakePartyRepo) Count(ctx context.Context, scope shared.Scope, filter partner.PartyFilter) (int64, error) {
	out, err := r.FindAll(ctx, scope, filter)
	return int64(len(out)), err
}

type fakeTransferRepo struct {
	mu        sync.Mutex
	transfers map[uuid.UUID]inventory.Transfer
}

func newFakeTransferRepo() *fakeTransferRepo {
	return &fakeTransferRepo{transfers: make(map[uuid.UUID]inventory.Transfer)}
}

func (r *fakeTransferRepo) FindByID(_ context.Context, scope shared.Scope, id uuid.UUID) (*inventory.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tr, ok := r.transfers[id]
	if !ok || tr.CompanyID != scope.CompanyID {
		return nil, nil
	}
	return &tr, nil
}

func (r *fakeTransferRepo) FindAll(_ context.Context, scope shared.Scope, _ inventory.TransferFilter) ([]inventory.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []inventory.Transfer
	for _, tr := range r.transfers {
		if tr.CompanyID == scope.CompanyID {
			out = append(out, tr)
		}
	}
	return out, nil
}

func (r *fakeTransferRepo) Save(_ context.Context, transfer *inventory.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transfers[transfer.ID] = *transfer
	return nil
}

func (r *fakeTransferRepo) Count(ctx context.Context, scope shared.Scope, filter inventory.TransferFilter) (int64, error) {
	out, err := r.FindAll(ctx, scope, filter)
	return int64(len(out)), err
}
