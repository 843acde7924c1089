package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/vastra-erp/backend/internal/domain/ledger"
	"github.com/vastra-erp/backend/internal/domain/shared"
)

func invoiceReq(total float64) CreateInvoiceRequest {
	return CreateInvoiceRequest{
		CustomerID:   uuid.New(),
		CustomerName: "Mahavir Silk Mills",
		InvoiceDate:  time.Now(),
		Items: []InvoiceItemRequest{
			{Quality: "Georgette 60gm", HSNCode: "5407", Boxes: 10, Meters: d(1200), Rate: d(0.5), Amount: d(total)},
		},
		TotalAmount: decimal.NewFromFloat(total),
	}
}

func challanReq(total float64) CreateChallanRequest {
	return CreateChallanRequest{
		SupplierID:   uuid.New(),
		SupplierName: "Kiran Fabrics",
		ChallanDate:  time.Now(),
		Items: []ChallanItemRequest{
			{Quality: "Chiffon", Boxes: 5, Meters: d(600), Rate: d(1), Amount: d(total)},
		},
		TotalAmount: decimal.NewFromFloat(total),
	}
}

func TestCreateInvoiceAssignsSequentialNumbers(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	v1, err := f.docs.CreateInvoice(ctx, f.scope, invoiceReq(1000))
	require.NoError(t, err)
	v2, err := f.docs.CreateInvoice(ctx, f.scope, invoiceReq(2000))
	require.NoError(t, err)
	c1, err := f.docs.CreateChallan(ctx, f.scope, challanReq(600))
	require.NoError(t, err)

	assert.Equal(t, "INV0001", v1.InvoiceNumber)
	assert.Equal(t, "INV0002", v2.InvoiceNumber)
	assert.Equal(t, "CH0001", c1.ChallanNumber, "challans number independently of invoices")

	assert.Equal(t, string(ledger.InvoiceStatusUnpaid), v1.PaymentStatus)
	assert.True(t, v1.Outstanding.Equal(d(1000)))
}

func TestCreateChallanStartsFullyAvailable(t *testing.T) {
	f := newPaymentFixture()

	view, err := f.docs.CreateChallan(context.Background(), f.scope, challanReq(600))
	require.NoError(t, err)

	assert.Equal(t, int64(5), view.TotalBoxes)
	assert.Equal(t, int64(5), view.AvailableBoxes)
	assert.Zero(t, view.TransferredBoxes)
	assert.True(t, view.AvailableMeters.Equal(d(600)))
	assert.False(t, view.IsReceivedViaTransfer)
	assert.Equal(t, string(ledger.ChallanStatusNone), view.PaymentStatus)
}

func TestDeleteInvoiceGuards(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	t.Run("unpaid invoice deletes cleanly", func(t *testing.T) {
		view, err := f.docs.CreateInvoice(ctx, f.scope, invoiceReq(1000))
		require.NoError(t, err)

		require.NoError(t, f.docs.DeleteInvoice(ctx, f.scope, view.ID))
		_, err = f.docs.GetInvoice(ctx, f.scope, view.ID)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})

	t.Run("invoice with receipts refuses deletion", func(t *testing.T) {
		view, err := f.docs.CreateInvoice(ctx, f.scope, invoiceReq(1000))
		require.NoError(t, err)
		_, err = f.svc.RecordReceipt(ctx, f.scope, f.receiptReq(view.ID, 250))
		require.NoError(t, err)

		err = f.docs.DeleteInvoice(ctx, f.scope, view.ID)
		assert.ErrorIs(t, err, shared.ErrConflictingDelete)
	})

	t.Run("guard reads the ledger, not the cached trio", func(t *testing.T) {
		view, err := f.docs.CreateInvoice(ctx, f.scope, invoiceReq(1000))
		require.NoError(t, err)
		_, err = f.svc.RecordReceipt(ctx, f.scope, f.receiptReq(view.ID, 250))
		require.NoError(t, err)

		// Force the stored trio back to zero as if a resettle had been lost.
		stale := f.freshInvoice(t, view.ID)
		stale.ApplySettlement(decimal.Zero)
		require.NoError(t, f.invoiceRepo.Save(ctx, stale))

		err = f.docs.DeleteInvoice(ctx, f.scope, view.ID)
		assert.ErrorIs(t, err, shared.ErrConflictingDelete)
	})

	t.Run("deleting again after payments are removed succeeds", func(t *testing.T) {
		view, err := f.docs.CreateInvoice(ctx, f.scope, invoiceReq(1000))
		require.NoError(t, err)
		resp, err := f.svc.RecordReceipt(ctx, f.scope, f.receiptReq(view.ID, 250))
		require.NoError(t, err)

		require.ErrorIs(t, f.docs.DeleteInvoice(ctx, f.scope, view.ID), shared.ErrConflictingDelete)
		require.NoError(t, f.svc.DeletePayment(ctx, f.scope, resp.ID))
		assert.NoError(t, f.docs.DeleteInvoice(ctx, f.scope, view.ID))
	})
}

func TestDeleteChallanGuards(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	view, err := f.docs.CreateChallan(ctx, f.scope, challanReq(600))
	require.NoError(t, err)

	_, err = f.svc.RecordSupplierPayment(ctx, f.scope, RecordPaymentRequest{
		PartyID: view.SupplierID, PaymentDate: time.Now(), Amount: d(100),
		Allocations: []AllocationRequest{{TargetID: view.ID, Amount: d(100)}},
	})
	require.NoError(t, err)

	assert.ErrorIs(t, f.docs.DeleteChallan(ctx, f.scope, view.ID), shared.ErrConflictingDelete)
}

func TestDeleteChallanRejectsTransferRecipient(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	ch, err := ledger.NewTransferredChallan(f.scope.CompanyID, f.scope.FinancialYear,
		"CH0101", uuid.New(), "Kiran Fabrics", uuid.New(),
		ledger.ChallanItems{{Quality: "Chiffon", Boxes: 5, Meters: d(600)}})
	require.NoError(t, err)
	require.NoError(t, f.challanRepo.Save(ctx, ch))

	err = f.docs.DeleteChallan(ctx, f.scope, ch.ID)
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "CONFLICTING_DELETE", domainErr.Code)

	// The mirror challan stays until its transfer is reversed.
	kept, err := f.challanRepo.FindByID(ctx, f.scope, ch.ID)
	require.NoError(t, err)
	require.NotNil(t, kept)
}

func TestListInvoicesEnrichesFromLedger(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	v1, err := f.docs.CreateInvoice(ctx, f.scope, invoiceReq(1000))
	require.NoError(t, err)
	v2, err := f.docs.CreateInvoice(ctx, f.scope, invoiceReq(2000))
	require.NoError(t, err)

	_, err = f.svc.RecordReceipt(ctx, f.scope, f.receiptReq(v1.ID, 1000))
	require.NoError(t, err)
	_, err = f.svc.RecordReceipt(ctx, f.scope, f.receiptReq(v2.ID, 500))
	require.NoError(t, err)

	page, err := f.docs.ListInvoices(ctx, f.scope, DocumentListFilter{})
	require.NoError(t, err)
	require.Equal(t, int64(2), page.Total)

	byNumber := make(map[string]InvoiceView, len(page.Items))
	for _, v := range page.Items {
		byNumber[v.InvoiceNumber] = v
	}
	assert.Equal(t, string(ledger.InvoiceStatusPaid), byNumber["INV0001"].PaymentStatus)
	assert.True(t, byNumber["INV0001"].Outstanding.IsZero())
	assert.Equal(t, string(ledger.InvoiceStatusPartial), byNumber["INV0002"].PaymentStatus)
	assert.True(t, byNumber["INV0002"].Outstanding.Equal(d(1500)))
}

func TestListInvoicesRejectsUnknownStatus(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.docs.ListInvoices(context.Background(), f.scope, DocumentListFilter{Status: "overdue-ish"})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
}

func TestOutstandingInvoicesWarnsWhenFetchCapped(t *testing.T) {
	f := newPaymentFixture()
	ctx := context.Background()

	core, recorded := observer.New(zapcore.WarnLevel)
	recon := NewReconciliationService(f.paymentRepo, f.invoiceRepo, f.challanRepo)
	docs := NewDocumentService(f.invoiceRepo, f.challanRepo, f.sequences, recon, zap.New(core))

	partyID := uuid.New()
	for i := 0; i < outstandingFetchLimit; i++ {
		inv, err := ledger.NewInvoice(f.scope.CompanyID, f.scope.FinancialYear,
			fmt.Sprintf("INV%04d", i+1), partyID, "Mahavir Silk Mills",
			time.Now(), nil, ledger.TaxBreakdown{}, d(100))
		require.NoError(t, err)
		require.NoError(t, f.invoiceRepo.Save(ctx, inv))
	}

	views, err := docs.OutstandingInvoicesByParty(ctx, f.scope, partyID)
	require.NoError(t, err)
	assert.Len(t, views, outstandingFetchLimit)

	entries := recorded.FilterMessageSnippet("hit its cap").All()
	require.Len(t, entries, 1, "filled fetch must be visible in the log")
	assert.Equal(t, int64(outstandingFetchLimit), entries[0].ContextMap()["limit"])
}
