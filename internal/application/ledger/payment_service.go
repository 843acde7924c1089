package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vastra-erp/backend/internal/domain/banking"
	"github.com/vastra-erp/backend/internal/domain/ledger"
	"github.com/vastra-erp/backend/internal/domain/shared"
)

// PaymentService is the write path of the payment ledger. Creating or
// deleting a payment is a two-phase write: first the payment row itself
// (the leader), then a recompute-and-overwrite of the settlement trio on
// every referenced document (the followers). There is no cross-table
// transaction around the phases; each follower update is a pure function of
// ledger state, so a crash between phases leaves stale cached fields that
// the next mutation against the same target recomputes away.
type PaymentService struct {
	paymentRepo ledger.PaymentRepository
	invoiceRepo ledger.InvoiceRepository
	challanRepo ledger.ChallanRepository
	sequences   ledger.SequenceRepository
	bankAccRepo banking.BankAccountRepository
	bankTxRepo  banking.BankTransactionRepository
	recon       *ReconciliationService
	events      shared.EventPublisher
	idempotency shared.IdempotencyStore
	idemCfg     shared.IdempotencyConfig
	logger      *zap.Logger
}

// PaymentServiceOption is a functional option for configuring PaymentService
type PaymentServiceOption func(*PaymentService)

// WithIdempotencyStore enables duplicate suppression for retried mutations
func WithIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) PaymentServiceOption {
	return func(s *PaymentService) {
		s.idempotency = store
		s.idemCfg = cfg
	}
}

// WithPaymentEventPublisher dispatches payment lifecycle events onto a bus
func WithPaymentEventPublisher(bus shared.EventPublisher) PaymentServiceOption {
	return func(s *PaymentService) {
		s.events = bus
	}
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo ledger.PaymentRepository,
	invoiceRepo ledger.InvoiceRepository,
	challanRepo ledger.ChallanRepository,
	sequences ledger.SequenceRepository,
	bankAccRepo banking.BankAccountRepository,
	bankTxRepo banking.BankTransactionRepository,
	recon *ReconciliationService,
	logger *zap.Logger,
	opts ...PaymentServiceOption,
) *PaymentService {
	s := &PaymentService{
		paymentRepo: paymentRepo,
		invoiceRepo: invoiceRepo,
		challanRepo: challanRepo,
		sequences:   sequences,
		bankAccRepo: bankAccRepo,
		bankTxRepo:  bankTxRepo,
		recon:       recon,
		idemCfg:     shared.DefaultIdempotencyConfig(),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecordReceipt enters money received from a customer, allocated across
// sales invoices
func (s *PaymentService) RecordReceipt(ctx context.Context, scope shared.Scope, req RecordPaymentRequest) (*PaymentResponse, error) {
	return s.record(ctx, scope, ledger.PaymentTypeReceipt, req)
}

// RecordSupplierPayment enters money paid to a supplier, allocated across
// purchase challans
func (s *PaymentService) RecordSupplierPayment(ctx context.Context, scope shared.Scope, req RecordPaymentRequest) (*PaymentResponse, error) {
	return s.record(ctx, scope, ledger.PaymentTypePayment, req)
}

func (s *PaymentService) record(ctx context.Context, scope shared.Scope, paymentType ledger.PaymentType, req RecordPaymentRequest) (*PaymentResponse, error) {
	if len(req.Allocations) == 0 {
		return nil, shared.ErrInvalidAllocation
	}

	// Retry safety: a client re-issuing the same logical payment after a
	// crash must not double-book it. The key is reserved up front so two
	// concurrent submissions cannot both pass, but a reservation whose
	// payment never committed is released again; a corrected retry with
	// the same key must not wait out the TTL.
	var reservedKey string
	if s.idempotency != nil && s.idemCfg.Enabled && req.IdempotencyKey != "" {
		reservedKey = idempotencyKey(scope, req.IdempotencyKey)
		fresh, err := s.idempotency.MarkProcessed(ctx, reservedKey, s.idemCfg.TTL)
		if err != nil {
			return nil, err
		}
		if !fresh {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Payment with this idempotency key was already recorded")
		}
	}

	resp, err := s.insertPayment(ctx, scope, paymentType, req)
	if err != nil && reservedKey != "" {
		if relErr := s.idempotency.Release(ctx, reservedKey); relErr != nil {
			s.logger.Warn("failed to release idempotency key after aborted payment",
				zap.String("key", reservedKey),
				zap.Error(relErr))
		}
	}
	return resp, err
}

func (s *PaymentService) insertPayment(ctx context.Context, scope shared.Scope, paymentType ledger.PaymentType, req RecordPaymentRequest) (*PaymentResponse, error) {
	// Resolve every target before writing anything. A single missing id
	// aborts the whole operation with no partial payment record.
	allocations, err := s.resolveAllocations(ctx, scope, paymentType, req.Allocations)
	if err != nil {
		return nil, err
	}

	seq, err := s.sequences.Next(ctx, scope, paymentType.SequencePrefix())
	if err != nil {
		return nil, err
	}
	paymentNumber := fmt.Sprintf("%s%04d", paymentType.SequencePrefix(), seq)

	payment, err := ledger.NewPayment(scope.CompanyID, scope.FinancialYear, paymentNumber, paymentType,
		req.PartyID, req.PartyName, req.PaymentDate, req.Amount, allocations)
	if err != nil {
		return nil, err
	}
	payment.Notes = req.Notes

	mode := ledger.PaymentMode(req.Mode)
	if req.Mode == "" {
		mode = ledger.PaymentModeCash
	}
	if err := payment.SetInstrument(mode, req.ChequeNumber, req.BankAccountID, req.AffectsPassbook); err != nil {
		return nil, err
	}
	if err := payment.SetAdjustments(req.Kasar, req.InterestPaid); err != nil {
		return nil, err
	}

	// Phase one: the leader write.
	if err := s.paymentRepo.Save(ctx, payment); err != nil {
		return nil, err
	}
	publishEvents(ctx, s.events, s.logger, payment)

	// Phase two: recompute each touched document from the ledger. Errors
	// here are logged, not rolled back; the payment row is committed and
	// any stale trio self-heals on the next mutation or enriched read.
	s.resettleTargets(ctx, scope, payment)

	if payment.AffectsPassbook {
		if err := s.appendPassbookEntry(ctx, scope, payment); err != nil {
			s.logger.Error("passbook entry failed after payment insert",
				zap.String("payment_number", payment.PaymentNumber),
				zap.Error(err))
		}
	}

	s.logger.Info("payment recorded",
		zap.String("payment_number", payment.PaymentNumber),
		zap.String("type", string(payment.Type)),
		zap.Int("targets", len(payment.TargetIDs())))

	return toPaymentResponse(payment), nil
}

// resolveAllocations checks every referenced document exists and stamps the
// allocation lines with the target type and human-readable number
func (s *PaymentService) resolveAllocations(ctx context.Context, scope shared.Scope, paymentType ledger.PaymentType, reqs []AllocationRequest) ([]ledger.Allocation, error) {
	targetType := paymentType.TargetType()
	allocations := make([]ledger.Allocation, len(reqs))

	for i, r := range reqs {
		if !r.Amount.IsPositive() {
			return nil, shared.ErrInvalidAllocation
		}

		var number string
		switch targetType {
		case ledger.TargetTypeInvoice:
			inv, err := s.invoiceRepo.FindByID(ctx, scope, r.TargetID)
			if err != nil {
				return nil, err
			}
			if inv == nil {
				return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Invoice %s not found", r.TargetID))
			}
			number = inv.InvoiceNumber
		case ledger.TargetTypeChallan:
			ch, err := s.challanRepo.FindByID(ctx, scope, r.TargetID)
			if err != nil {
				return nil, err
			}
			if ch == nil {
				return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Challan %s not found", r.TargetID))
			}
			number = ch.ChallanNumber
		}

		allocations[i] = ledger.Allocation{
			TargetType:   targetType,
			TargetID:     r.TargetID,
			TargetNumber: number,
			Amount:       r.Amount,
		}
	}
	return allocations, nil
}

// resettleTargets recomputes the settlement trio on every document the
// payment touches. Each target is independent; one failing does not stop
// the rest.
func (s *PaymentService) resettleTargets(ctx context.Context, scope shared.Scope, payment *ledger.Payment) {
	for _, targetID := range payment.TargetIDs() {
		var err error
		switch payment.Type.TargetType() {
		case ledger.TargetTypeInvoice:
			err = s.recon.ResettleInvoice(ctx, scope, targetID)
		case ledger.TargetTypeChallan:
			err = s.recon.ResettleChallan(ctx, scope, targetID)
		}
		if err != nil {
			s.logger.Error("resettle failed, cached fields stale until next write",
				zap.String("target_id", targetID.String()),
				zap.String("payment_number", payment.PaymentNumber),
				zap.Error(err))
		}
	}
}

func (s *PaymentService) appendPassbookEntry(ctx context.Context, scope shared.Scope, payment *ledger.Payment) error {
	if payment.BankAccountID == nil {
		return shared.NewDomainError("INVALID_INPUT", "Passbook payment has no bank account")
	}

	account, err := s.bankAccRepo.FindByID(ctx, scope, *payment.BankAccountID)
	if err != nil {
		return err
	}
	if account == nil {
		return shared.NewDomainError("NOT_FOUND", "Bank account not found")
	}

	isReceipt := payment.Type == ledger.PaymentTypeReceipt
	description := fmt.Sprintf("%s %s", payment.PaymentNumber, payment.PartyName)
	entry, err := banking.NewPaymentPassbookEntry(scope.CompanyID, scope.FinancialYear,
		account.ID, isReceipt, payment.Amount, payment.PaymentDate, description, payment.ID)
	if err != nil {
		return err
	}
	if err := s.bankTxRepo.Save(ctx, entry); err != nil {
		return err
	}

	if isReceipt {
		err = account.Credit(payment.Amount)
	} else {
		err = account.Debit(payment.Amount)
	}
	if err != nil {
		return err
	}
	return s.bankAccRepo.Save(ctx, account)
}

// DeletePayment removes a payment from the ledger, re-reconciles every
// document it touched, and removes its passbook mirror entries. The result
// must be indistinguishable from the payment never having existed.
func (s *PaymentService) DeletePayment(ctx context.Context, scope shared.Scope, paymentID uuid.UUID) error {
	payment, err := s.paymentRepo.FindByID(ctx, scope, paymentID)
	if err != nil {
		return err
	}
	if payment == nil {
		return shared.NewDomainError("NOT_FOUND", "Payment not found")
	}

	if err := s.paymentRepo.Delete(ctx, scope, paymentID); err != nil {
		return err
	}
	payment.AddDomainEvent(ledger.NewPaymentDeletedEvent(payment))
	publishEvents(ctx, s.events, s.logger, payment)

	// Same follower phase as creation; the resum no longer sees the
	// deleted payment's allocations.
	s.resettleTargets(ctx, scope, payment)

	if payment.AffectsPassbook {
		if err := s.removePassbookEntries(ctx, scope, payment); err != nil {
			s.logger.Error("passbook cleanup failed after payment delete",
				zap.String("payment_number", payment.PaymentNumber),
				zap.Error(err))
		}
	}

	s.logger.Info("payment deleted",
		zap.String("payment_number", payment.PaymentNumber),
		zap.Int("targets", len(payment.TargetIDs())))
	return nil
}

func (s *PaymentService) removePassbookEntries(ctx context.Context, scope shared.Scope, payment *ledger.Payment) error {
	refType := banking.ReferenceTypePaymentMade
	if payment.Type == ledger.PaymentTypeReceipt {
		refType = banking.ReferenceTypePaymentReceipt
	}

	removed, err := s.bankTxRepo.DeleteByReference(ctx, scope, refType, payment.ID)
	if err != nil {
		return err
	}

	// Roll the removed entries back out of the account balance.
	for _, tx := range removed {
		account, err := s.bankAccRepo.FindByID(ctx, scope, tx.BankAccountID)
		if err != nil {
			return err
		}
		if account == nil {
			continue
		}
		if tx.Type == banking.TransactionTypeCredit {
			err = account.Debit(tx.Amount)
		} else {
			err = account.Credit(tx.Amount)
		}
		if err != nil {
			return err
		}
		if err := s.bankAccRepo.Save(ctx, account); err != nil {
			return err
		}
	}
	return nil
}

// GetPayment returns one payment by id
func (s *PaymentService) GetPayment(ctx context.Context, scope shared.Scope, paymentID uuid.UUID) (*PaymentResponse, error) {
	payment, err := s.paymentRepo.FindByID(ctx, scope, paymentID)
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Payment not found")
	}
	return toPaymentResponse(payment), nil
}

// ListPayments returns a page of payments
func (s *PaymentService) ListPayments(ctx context.Context, scope shared.Scope, filter PaymentListFilter) (*shared.Paginated[PaymentResponse], error) {
	domainFilter := ledger.PaymentFilter{Filter: shared.DefaultFilter()}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.PartyID = filter.PartyID
	domainFilter.FromDate = filter.FromDate
	domainFilter.ToDate = filter.ToDate
	if filter.Type != "" {
		pt := ledger.PaymentType(filter.Type)
		if !pt.IsValid() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Invalid payment type filter")
		}
		domainFilter.Type = &pt
	}

	payments, err := s.paymentRepo.FindAll(ctx, scope, domainFilter)
	if err != nil {
		return nil, err
	}
	total, err := s.paymentRepo.Count(ctx, scope, domainFilter)
	if err != nil {
		return nil, err
	}

	items := make([]PaymentResponse, len(payments))
	for i := range payments {
		items[i] = *toPaymentResponse(&payments[i])
	}
	page := shared.NewPaginated(items, total, domainFilter.Page, domainFilter.PageSize)
	return &page, nil
}

func idempotencyKey(scope shared.Scope, key string) string {
	return fmt.Sprintf("payment:%s:%s:%s", scope.CompanyID, scope.FinancialYear, key)
}
