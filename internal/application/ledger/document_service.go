package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vastra-erp/backend/internal/domain/ledger"
	"github.com/vastra-erp/backend/internal/domain/shared"
)

// DocumentService manages the invoice and challan ledgers: creation with
// sequence-numbered documents, enriched reads, and deletion guarded so the
// payment ledger never references a vanished target.
type DocumentService struct {
	invoiceRepo ledger.InvoiceRepository
	challanRepo ledger.ChallanRepository
	sequences   ledger.SequenceRepository
	recon       *ReconciliationService
	events      shared.EventPublisher
	logger      *zap.Logger
}

// DocumentServiceOption is a functional option for configuring DocumentService
type DocumentServiceOption func(*DocumentService)

// WithDocumentEventPublisher dispatches document lifecycle events onto a bus
func WithDocumentEventPublisher(bus shared.EventPublisher) DocumentServiceOption {
	return func(s *DocumentService) {
		s.events = bus
	}
}

// Sequence prefixes for document number series
const (
	invoiceSeqPrefix = "INV"
	challanSeqPrefix = "CH"
)

// outstandingFetchLimit caps how many documents the allocation picker pulls
// per party. Open documents per party stay far below this in practice; a
// fetch that fills the cap is logged because older open documents are cut.
const outstandingFetchLimit = 500

// NewDocumentService creates a new DocumentService
func NewDocumentService(
	invoiceRepo ledger.InvoiceRepository,
	challanRepo ledger.ChallanRepository,
	sequences ledger.SequenceRepository,
	recon *ReconciliationService,
	logger *zap.Logger,
	opts ...DocumentServiceOption,
) *DocumentService {
	s := &DocumentService{
		invoiceRepo: invoiceRepo,
		challanRepo: challanRepo,
		sequences:   sequences,
		recon:       recon,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInvoice records a new sales invoice
func (s *DocumentService) CreateInvoice(ctx context.Context, scope shared.Scope, req CreateInvoiceRequest) (*InvoiceView, error) {
	seq, err := s.sequences.Next(ctx, scope, invoiceSeqPrefix)
	if err != nil {
		return nil, err
	}
	number := fmt.Sprintf("%s%04d", invoiceSeqPrefix, seq)

	items := make(ledger.InvoiceItems, len(req.Items))
	for i, it := range req.Items {
		items[i] = ledger.InvoiceItem{
			Quality: it.Quality,
			HSNCode: it.HSNCode,
			Boxes:   it.Boxes,
			Meters:  it.Meters,
			Rate:    it.Rate,
			Amount:  it.Amount,
		}
	}

	inv, err := ledger.NewInvoice(scope.CompanyID, scope.FinancialYear, number,
		req.CustomerID, req.CustomerName, req.InvoiceDate, items, req.Tax, req.TotalAmount)
	if err != nil {
		return nil, err
	}
	if err := inv.SetInterestTerms(req.DueDate, req.InterestRate); err != nil {
		return nil, err
	}
	inv.Notes = req.Notes

	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.events, s.logger, inv)

	s.logger.Info("invoice created",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("customer", inv.CustomerName))

	views, err := s.recon.EnrichInvoices(ctx, scope, []ledger.Invoice{*inv}, time.Now())
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// GetInvoice returns one invoice with freshly reconciled figures
func (s *DocumentService) GetInvoice(ctx context.Context, scope shared.Scope, id uuid.UUID) (*InvoiceView, error) {
	inv, err := s.invoiceRepo.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}
	views, err := s.recon.EnrichInvoices(ctx, scope, []ledger.Invoice{*inv}, time.Now())
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListInvoices returns a page of invoices, enriched via one bulk
// reconciliation query for the whole page
func (s *DocumentService) ListInvoices(ctx context.Context, scope shared.Scope, filter DocumentListFilter) (*shared.Paginated[InvoiceView], error) {
	domainFilter := ledger.InvoiceFilter{Filter: shared.DefaultFilter()}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.CustomerID = filter.PartyID
	domainFilter.FromDate = filter.FromDate
	domainFilter.ToDate = filter.ToDate
	domainFilter.Overdue = filter.Overdue
	if filter.Status != "" {
		st := ledger.InvoiceStatus(filter.Status)
		if !st.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid invoice status filter")
		}
		domainFilter.Status = &st
	}

	invoices, err := s.invoiceRepo.FindAll(ctx, scope, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.invoiceRepo.Count(ctx, scope, domainFilter)
	if err != nil {
		return nil, err
	}

	views, err := s.recon.EnrichInvoices(ctx, scope, invoices, time.Now())
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(views, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// OutstandingInvoicesByParty returns the party's invoices that still carry a
// balance, freshly reconciled. The settlement decision comes from the ledger
// resum, never the cached status column, so an invoice whose cache went stale
// still shows up (or drops out) correctly.
func (s *DocumentService) OutstandingInvoicesByParty(ctx context.Context, scope shared.Scope, partyID uuid.UUID) ([]InvoiceView, error) {
	domainFilter := ledger.InvoiceFilter{Filter: shared.DefaultFilter()}
	domainFilter.PageSize = outstandingFetchLimit
	domainFilter.CustomerID = &partyID

	invoices, err := s.invoiceRepo.FindAll(ctx, scope, domainFilter)
	if err != nil {
		return nil, err
	}
	if len(invoices) == outstandingFetchLimit {
		s.logger.Warn("outstanding invoice fetch hit its cap, older open documents omitted",
			zap.String("party_id", partyID.String()),
			zap.Int("limit", outstandingFetchLimit))
	}
	views, err := s.recon.EnrichInvoices(ctx, scope, invoices, time.Now())
	if err != nil {
		return nil, err
	}

	open := make([]InvoiceView, 0, len(views))
	for _, v := range views {
		if v.PaymentStatus != ledger.InvoiceStatusPaid.String() {
			open = append(open, v)
		}
	}
	return open, nil
}

// OutstandingChallansByParty returns the party's challans that still carry a
// balance, freshly reconciled
func (s *DocumentService) OutstandingChallansByParty(ctx context.Context, scope shared.Scope, partyID uuid.UUID) ([]ChallanView, error) {
	domainFilter := ledger.ChallanFilter{Filter: shared.DefaultFilter()}
	domainFilter.PageSize = outstandingFetchLimit
	domainFilter.SupplierID = &partyID

	challans, err := s.challanRepo.FindAll(ctx, scope, domainFilter)
	if err != nil {
		return nil, err
	}
	if len(challans) == outstandingFetchLimit {
		s.logger.Warn("outstanding challan fetch hit its cap, older open documents omitted",
			zap.String("party_id", partyID.String()),
			zap.Int("limit", outstandingFetchLimit))
	}
	views, err := s.recon.EnrichChallans(ctx, scope, challans)
	if err != nil {
		return nil, err
	}

	open := make([]ChallanView, 0, len(views))
	for _, v := range views {
		if v.PaymentStatus != ledger.ChallanStatusCompleted.String() {
			open = append(open, v)
		}
	}
	return open, nil
}

// DeleteInvoice removes an invoice that has no settled amounts. The check
// runs against a fresh reconciliation, not the cached trio, so a stale cache
// can never let a referenced invoice vanish.
func (s *DocumentService) DeleteInvoice(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	inv, err := s.invoiceRepo.FindByID(ctx, scope, id)
	if err != nil {
		return err
	}
	if inv == nil {
		return shared.NewDomainError("NOT_FOUND", "Invoice not found")
	}

	paid, err := s.recon.TotalPaidByInvoice(ctx, scope, id)
	if err != nil {
		return err
	}
	if !paid.IsZero() {
		return shared.ErrConflictingDelete
	}

	if err := s.invoiceRepo.Delete(ctx, scope, id); err != nil {
		return err
	}
	s.logger.Info("invoice deleted", zap.String("invoice_number", inv.InvoiceNumber))
	return nil
}

// CreateChallan records a new purchase challan
func (s *DocumentService) CreateChallan(ctx context.Context, scope shared.Scope, req CreateChallanRequest) (*ChallanView, error) {
	seq, err := s.sequences.Next(ctx, scope, challanSeqPrefix)
	if err != nil {
		return nil, err
	}
	number := fmt.Sprintf("%s%04d", challanSeqPrefix, seq)

	items := make(ledger.ChallanItems, len(req.Items))
	for i, it := range req.Items {
		items[i] = ledger.ChallanItem{
			Quality: it.Quality,
			Boxes:   it.Boxes,
			Meters:  it.Meters,
			Rate:    it.Rate,
			Amount:  it.Amount,
		}
	}

	ch, err := ledger.NewChallan(scope.CompanyID, scope.FinancialYear, number,
		req.SupplierID, req.SupplierName, req.ChallanDate, items, req.TotalAmount)
	if err != nil {
		return nil, err
	}
	ch.Notes = req.Notes

	if err := s.challanRepo.Save(ctx, ch); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.events, s.logger, ch)

	s.logger.Info("challan created",
		zap.String("challan_number", ch.ChallanNumber),
		zap.String("supplier", ch.SupplierName))

	views, err := s.recon.EnrichChallans(ctx, scope, []ledger.Challan{*ch})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// GetChallan returns one challan with freshly reconciled figures
func (s *DocumentService) GetChallan(ctx context.Context, scope shared.Scope, id uuid.UUID) (*ChallanView, error) {
	ch, err := s.challanRepo.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Challan not found")
	}
	views, err := s.recon.EnrichChallans(ctx, scope, []ledger.Challan{*ch})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListChallans returns a page of challans, enriched via one bulk
// reconciliation query for the whole page
func (s *DocumentService) ListChallans(ctx context.Context, scope shared.Scope, filter DocumentListFilter) (*shared.Paginated[ChallanView], error) {
	domainFilter := ledger.ChallanFilter{Filter: shared.DefaultFilter()}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.SupplierID = filter.PartyID
	domainFilter.FromDate = filter.FromDate
	domainFilter.ToDate = filter.ToDate
	if filter.Status != "" {
		st := ledger.ChallanStatus(filter.Status)
		if !st.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid challan status filter")
		}
		domainFilter.Status = &st
	}

	challans, err := s.challanRepo.FindAll(ctx, scope, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.challanRepo.Count(ctx, scope, domainFilter)
	if err != nil {
		return nil, err
	}

	views, err := s.recon.EnrichChallans(ctx, scope, challans)
	if err != nil {
		return nil, err
	}
	page := shared.NewPaginated(views, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

// DeleteChallan removes a challan that has no settled amounts, with the same
// fresh-reconciliation guard as DeleteInvoice
func (s *DocumentService) DeleteChallan(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	ch, err := s.challanRepo.FindByID(ctx, scope, id)
	if err != nil {
		return err
	}
	if ch == nil {
		return shared.NewDomainError("NOT_FOUND", "Challan not found")
	}

	paid, err := s.recon.TotalPaidByChallan(ctx, scope, id)
	if err != nil {
		return err
	}
	if !paid.IsZero() {
		return shared.ErrConflictingDelete
	}
	if ch.TransferredBoxes > 0 || ch.TransferredMeters.IsPositive() {
		return shared.NewDomainError("CONFLICTING_DELETE", "Challan has stock out on transfer")
	}
	// Recipient-side challans exist only as the mirror of a stock transfer;
	// they leave the ledger when the transfer is reversed, never through
	// this endpoint.
	if ch.IsReceivedViaTransfer {
		return shared.NewDomainError("CONFLICTING_DELETE", "Challan was received via transfer; reverse the transfer instead")
	}

	if err := s.challanRepo.Delete(ctx, scope, id); err != nil {
		return err
	}
	s.logger.Info("challan deleted", zap.String("challan_number", ch.ChallanNumber))
	return nil
}
