package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vastra-erp/backend/internal/domain/inventory"
	"github.com/vastra-erp/backend/internal/domain/ledger"
	"github.com/vastra-erp/backend/internal/domain/shared"
	"github.com/vastra-erp/backend/internal/domain/shared/valueobject"
)

// Sequence prefixes for the transfer series and the recipient challan series
const (
	transferSeqPrefix     = "TR"
	receivedChallanPrefix = "RCH"
)

// TransferService moves stock between parties. A transfer draws from one or
// more source challans, keeping their available/transferred counters in step,
// and mints a zero-amount challan on the recipient's side. Reversal restores
// the counters exactly and removes the minted challan.
type TransferService struct {
	transferRepo inventory.TransferRepository
	challanRepo  ledger.ChallanRepository
	paymentRepo  ledger.PaymentRepository
	sequences    ledger.SequenceRepository
	events       shared.EventPublisher
	logger       *zap.Logger
}

// TransferServiceOption is a functional option for configuring TransferService
type TransferServiceOption func(*TransferService)

// WithTransferEventPublisher dispatches transfer lifecycle events onto a bus
func WithTransferEventPublisher(bus shared.EventPublisher) TransferServiceOption {
	return func(s *TransferService) {
		s.events = bus
	}
}

// NewTransferService creates a new TransferService
func NewTransferService(
	transferRepo inventory.TransferRepository,
	challanRepo ledger.ChallanRepository,
	paymentRepo ledger.PaymentRepository,
	sequences ledger.SequenceRepository,
	logger *zap.Logger,
	opts ...TransferServiceOption,
) *TransferService {
	s := &TransferService{
		transferRepo: transferRepo,
		challanRepo:  challanRepo,
		paymentRepo:  paymentRepo,
		sequences:    sequences,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// publishEvents drains an aggregate's pending domain events onto the bus.
// Best-effort: a failed dispatch is logged, never rolled back.
func (s *TransferService) publishEvents(ctx context.Context, agg shared.AggregateRoot) {
	events := agg.GetDomainEvents()
	if s.events == nil || len(events) == 0 {
		agg.ClearDomainEvents()
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("domain event publish failed", zap.Error(err))
	}
	agg.ClearDomainEvents()
}

// CreateTransfer moves stock from the sender's challans to the recipient.
// Every source challan is loaded and checked for availability before any
// write happens, so an uncoverable item can never leave counters half moved.
func (s *TransferService) CreateTransfer(ctx context.Context, scope shared.Scope, req CreateTransferRequest) (*TransferResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Transfer has no items")
	}

	// Resolve and validate all sources first, fail-closed.
	sources := make(map[uuid.UUID]*ledger.Challan, len(req.Items))
	requested := make(map[uuid.UUID]valueobject.Stock, len(req.Items))
	items := make(inventory.TransferItems, len(req.Items))
	for i, it := range req.Items {
		ch, ok := sources[it.ChallanID]
		if !ok {
			found, err := s.challanRepo.FindByID(ctx, scope, it.ChallanID)
			if err != nil {
				return nil, err
			}
			if found == nil {
				return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Challan %s not found", it.ChallanID))
			}
			sources[it.ChallanID] = found
			ch = found
		}

		stock, err := valueobject.NewStock(it.Boxes, it.Meters)
		if err != nil {
			return nil, err
		}
		requested[it.ChallanID] = requested[it.ChallanID].Add(stock)

		quality := it.Quality
		if quality == "" && len(ch.Items) > 0 {
			quality = ch.Items[0].Quality
		}
		items[i] = inventory.TransferItem{
			ChallanID:     ch.ID,
			ChallanNumber: ch.ChallanNumber,
			Quality:       quality,
			Boxes:         it.Boxes,
			Meters:        it.Meters,
		}
	}
	for id, stock := range requested {
		if !sources[id].AvailableStock().CanCover(stock) {
			return nil, shared.ErrInsufficientStock
		}
	}

	seq, err := s.sequences.Next(ctx, scope, transferSeqPrefix)
	if err != nil {
		return nil, err
	}
	number := fmt.Sprintf("%s%04d", transferSeqPrefix, seq)

	tr, err := inventory.NewTransfer(scope.CompanyID, scope.FinancialYear, number,
		req.FromPartyID, req.FromPartyName, req.ToPartyID, req.ToPartyName,
		req.TransferDate, items)
	if err != nil {
		return nil, err
	}
	tr.Notes = req.Notes

	if err := s.transferRepo.Save(ctx, tr); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, tr)

	for id, stock := range requested {
		ch := sources[id]
		if err := ch.TransferOut(stock); err != nil {
			return nil, err
		}
		if err := s.challanRepo.UpdateStockCounters(ctx, ch); err != nil {
			return nil, err
		}
	}

	if err := s.mintRecipientChallan(ctx, scope, tr); err != nil {
		return nil, err
	}

	s.logger.Info("stock transferred",
		zap.String("transfer_number", tr.TransferNumber),
		zap.String("from", tr.FromPartyName),
		zap.String("to", tr.ToPartyName))

	return toTransferResponse(tr), nil
}

// mintRecipientChallan creates the recipient-side challan carrying the moved
// stock with no amount owed
func (s *TransferService) mintRecipientChallan(ctx context.Context, scope shared.Scope, tr *inventory.Transfer) error {
	seq, err := s.sequences.Next(ctx, scope, receivedChallanPrefix)
	if err != nil {
		return err
	}
	number := fmt.Sprintf("%s%04d", receivedChallanPrefix, seq)

	items := make(ledger.ChallanItems, len(tr.Items))
	for i, it := range tr.Items {
		items[i] = ledger.ChallanItem{
			Quality: it.Quality,
			Boxes:   it.Boxes,
			Meters:  it.Meters,
		}
	}

	ch, err := ledger.NewTransferredChallan(scope.CompanyID, scope.FinancialYear,
		number, tr.ToPartyID, tr.ToPartyName, tr.ID, items)
	if err != nil {
		return err
	}
	return s.challanRepo.Save(ctx, ch)
}

// ReverseTransfer undoes a transfer: recipient challans are removed, source
// counters restored exactly, and the transfer marked reversed. Refused when
// the recipient challan has payments against it or has itself transferred
// stock onward.
func (s *TransferService) ReverseTransfer(ctx context.Context, scope shared.Scope, id uuid.UUID) (*TransferResponse, error) {
	tr, err := s.transferRepo.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Transfer not found")
	}
	if tr.IsReversed() {
		return nil, shared.NewDomainError("INVALID_STATE", "Transfer has already been reversed")
	}

	minted, err := s.challanRepo.FindBySourceTransfer(ctx, scope, tr.ID)
	if err != nil {
		return nil, err
	}
	if err := s.guardRecipientChallans(ctx, scope, minted); err != nil {
		return nil, err
	}

	for challanID, stock := range tr.StockByChallan() {
		ch, err := s.challanRepo.FindByID(ctx, scope, challanID)
		if err != nil {
			return nil, err
		}
		if ch == nil {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Source challan %s not found", challanID))
		}
		if err := ch.RestoreTransferred(stock); err != nil {
			return nil, err
		}
		if err := s.challanRepo.UpdateStockCounters(ctx, ch); err != nil {
			return nil, err
		}
	}

	for i := range minted {
		if err := s.challanRepo.Delete(ctx, scope, minted[i].ID); err != nil {
			return nil, err
		}
	}

	if err := tr.Reverse(); err != nil {
		return nil, err
	}
	if err := s.transferRepo.Save(ctx, tr); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, tr)

	s.logger.Info("transfer reversed", zap.String("transfer_number", tr.TransferNumber))
	return toTransferResponse(tr), nil
}

// guardRecipientChallans refuses the reversal when a minted challan is no
// longer safe to delete
func (s *TransferService) guardRecipientChallans(ctx context.Context, scope shared.Scope, minted []ledger.Challan) error {
	if len(minted) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(minted))
	for i := range minted {
		ids[i] = minted[i].ID
	}
	paid, err := s.paymentRepo.TotalPaidByTargets(ctx, scope, ledger.TargetTypeChallan, ids)
	if err != nil {
		return err
	}
	for i := range minted {
		if amount, ok := paid[minted[i].ID]; ok && !amount.IsZero() {
			return shared.ErrConflictingDelete
		}
		if minted[i].TransferredBoxes > 0 || minted[i].TransferredMeters.IsPositive() {
			return shared.NewDomainError("CONFLICTING_DELETE", "Recipient challan has stock out on a further transfer")
		}
	}
	return nil
}

// GetTransfer returns one transfer
func (s *TransferService) GetTransfer(ctx context.Context, scope shared.Scope, id uuid.UUID) (*TransferResponse, error) {
	tr, err := s.transferRepo.FindByID(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Transfer not found")
	}
	return toTransferResponse(tr), nil
}

// ListTransfers returns a page of transfers
func (s *TransferService) ListTransfers(ctx context.Context, scope shared.Scope, filter TransferListFilter) (*shared.Paginated[TransferResponse], error) {
	domainFilter := inventory.TransferFilter{Filter: shared.DefaultFilter()}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.FromPartyID = filter.FromPartyID
	domainFilter.ToPartyID = filter.ToPartyID
	domainFilter.FromDate = filter.FromDate
	domainFilter.ToDate = filter.ToDate
	if filter.Status != "" {
		st := inventory.TransferStatus(filter.Status)
		if !st.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid transfer status filter")
		}
		domainFilter.Status = &st
	}

	transfers, err := s.transferRepo.FindAll(ctx, scope, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.transferRepo.Count(ctx, scope, domainFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]TransferResponse, len(transfers))
	for i := range transfers {
		responses[i] = *toTransferResponse(&transfers[i])
	}
	page := shared.NewPaginated(responses, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}
