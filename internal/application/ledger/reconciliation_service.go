package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/ledger"
	"github.com/vastra-erp/backend/internal/domain/shared"
)

// ReconciliationService derives total-paid figures for invoices and challans
// from the payment ledger. Every read is a fresh resum over the allocation
// lines; the denormalized fields stored on the documents are treated purely
// as a cache of this service's output.
type ReconciliationService struct {
	paymentRepo ledger.PaymentRepository
	invoiceRepo ledger.InvoiceRepository
	challanRepo ledger.ChallanRepository
}

// NewReconciliationService creates a new ReconciliationService
func NewReconciliationService(paymentRepo ledger.PaymentRepository, invoiceRepo ledger.InvoiceRepository, challanRepo ledger.ChallanRepository) *ReconciliationService {
	return &ReconciliationService{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		challanRepo: challanRepo,
	}
}

// TotalPaidByInvoices sums payments per invoice over the whole ledger in one
// pass. Invoices nothing was paid against are absent from the map; callers
// default to zero.
func (s *ReconciliationService) TotalPaidByInvoices(ctx context.Context, scope shared.Scope, invoiceIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	if len(invoiceIDs) == 0 {
		return map[uuid.UUID]decimal.Decimal{}, nil
	}
	return s.paymentRepo.TotalPaidByTargets(ctx, scope, ledger.TargetTypeInvoice, invoiceIDs)
}

// TotalPaidByChallans is the purchase-side counterpart of TotalPaidByInvoices
func (s *ReconciliationService) TotalPaidByChallans(ctx context.Context, scope shared.Scope, challanIDs []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	if len(challanIDs) == 0 {
		return map[uuid.UUID]decimal.Decimal{}, nil
	}
	return s.paymentRepo.TotalPaidByTargets(ctx, scope, ledger.TargetTypeChallan, challanIDs)
}

// TotalPaidByInvoice returns the total paid against one invoice. Defined as
// the bulk query with a singleton input so the two paths can never disagree.
// A target with no payments yields zero, never an error.
func (s *ReconciliationService) TotalPaidByInvoice(ctx context.Context, scope shared.Scope, invoiceID uuid.UUID) (decimal.Decimal, error) {
	totals, err := s.TotalPaidByInvoices(ctx, scope, []uuid.UUID{invoiceID})
	if err != nil {
		return decimal.Zero, err
	}
	if total, ok := totals[invoiceID]; ok {
		return total, nil
	}
	return decimal.Zero, nil
}

// TotalPaidByChallan returns the total paid against one challan
func (s *ReconciliationService) TotalPaidByChallan(ctx context.Context, scope shared.Scope, challanID uuid.UUID) (decimal.Decimal, error) {
	totals, err := s.TotalPaidByChallans(ctx, scope, []uuid.UUID{challanID})
	if err != nil {
		return decimal.Zero, err
	}
	if total, ok := totals[challanID]; ok {
		return total, nil
	}
	return decimal.Zero, nil
}

// EnrichInvoices builds display views with freshly reconciled totals and
// point-in-time interest for a page of invoices, using one bulk query
// instead of one per row.
func (s *ReconciliationService) EnrichInvoices(ctx context.Context, scope shared.Scope, invoices []ledger.Invoice, asOf time.Time) ([]InvoiceView, error) {
	ids := make([]uuid.UUID, len(invoices))
	for i := range invoices {
		ids[i] = invoices[i].ID
	}

	totals, err := s.TotalPaidByInvoices(ctx, scope, ids)
	if err != nil {
		return nil, err
	}

	views := make([]InvoiceView, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		paid := totals[inv.ID] // zero when absent
		views[i] = InvoiceView{
			ID:              inv.ID,
			InvoiceNumber:   inv.InvoiceNumber,
			CustomerID:      inv.CustomerID,
			CustomerName:    inv.CustomerName,
			InvoiceDate:     inv.InvoiceDate,
			DueDate:         inv.DueDate,
			InterestRate:    inv.InterestRate,
			Items:           inv.Items,
			Tax:             inv.Tax,
			TotalAmount:     inv.TotalAmount,
			TotalPaid:       paid,
			Outstanding:     ledger.Outstanding(inv.TotalAmount, paid),
			PaymentStatus:   ledger.DeriveInvoiceStatus(inv.TotalAmount, paid).String(),
			InterestAccrued: ledger.AccrueInterest(inv.TotalAmount, paid, inv.DueDate, inv.InterestRate, asOf),
			Notes:           inv.Notes,
			CreatedAt:       inv.CreatedAt,
		}
	}
	return views, nil
}

// EnrichChallans builds display views with freshly reconciled totals for a
// page of challans
func (s *ReconciliationService) EnrichChallans(ctx context.Context, scope shared.Scope, challans []ledger.Challan) ([]ChallanView, error) {
	ids := make([]uuid.UUID, len(challans))
	for i := range challans {
		ids[i] = challans[i].ID
	}

	totals, err := s.TotalPaidByChallans(ctx, scope, ids)
	if err != nil {
		return nil, err
	}

	views := make([]ChallanView, len(challans))
	for i := range challans {
		ch := &challans[i]
		paid := totals[ch.ID]
		views[i] = ChallanView{
			ID:                    ch.ID,
			ChallanNumber:         ch.ChallanNumber,
			SupplierID:            ch.SupplierID,
			SupplierName:          ch.SupplierName,
			ChallanDate:           ch.ChallanDate,
			Items:                 ch.Items,
			TotalAmount:           ch.TotalAmount,
			TotalPaid:             paid,
			Outstanding:           ledger.Outstanding(ch.TotalAmount, paid),
			PaymentStatus:         ledger.DeriveChallanStatus(ch.TotalAmount, paid).String(),
			TotalBoxes:            ch.TotalBoxes,
			TotalMeters:           ch.TotalMeters,
			AvailableBoxes:        ch.AvailableBoxes,
			AvailableMeters:       ch.AvailableMeters,
			TransferredBoxes:      ch.TransferredBoxes,
			TransferredMeters:     ch.TransferredMeters,
			IsReceivedViaTransfer: ch.IsReceivedViaTransfer,
			Notes:                 ch.Notes,
			CreatedAt:             ch.CreatedAt,
		}
	}
	return views, nil
}

// ResettleInvoice recomputes the settlement trio on an invoice from the
// ledger and persists it. The write overwrites whatever was stored before,
// which makes the cached fields self-healing after a crash left them stale.
func (s *ReconciliationService) ResettleInvoice(ctx context.Context, scope shared.Scope, invoiceID uuid.UUID) error {
	inv, err := s.invoiceRepo.FindByID(ctx, scope, invoiceID)
	if err != nil {
		return err
	}
	if inv == nil {
		return shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}

	paid, err := s.TotalPaidByInvoice(ctx, scope, invoiceID)
	if err != nil {
		return err
	}
	inv.ApplySettlement(paid)
	return s.invoiceRepo.UpdateSettlement(ctx, inv)
}

// ResettleChallan recomputes the settlement trio on a challan from the
// ledger and persists it
func (s *ReconciliationService) ResettleChallan(ctx context.Context, scope shared.Scope, challanID uuid.UUID) error {
	ch, err := s.challanRepo.FindByID(ctx, scope, challanID)
	if err != nil {
		return err
	}
	if ch == nil {
		return shared.NewDomainError("NOT_FOUND", "Challan not found")
	}

	paid, err := s.TotalPaidByChallan(ctx, scope, challanID)
	if err != nil {
		return err
	}
	ch.ApplySettlement(paid)
	return s.challanRepo.UpdateSettlement(ctx, ch)
}
