package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vastra-erp/backend/internal/domain/shared"
)

func newTestReceipt(t *testing.T, allocations []Allocation) *Payment {
	t.Helper()
	p, err := NewPayment(
		uuid.New(), "2025-2026", "REC0001", PaymentTypeReceipt,
		uuid.New(), "Shree Textiles",
		time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		d(800), allocations,
	)
	require.NoError(t, err)
	return p
}

func TestNewPayment(t *testing.T) {
	t.Run("records a receipt with allocations", func(t *testing.T) {
		target := uuid.New()
		p := newTestReceipt(t, []Allocation{
			{TargetType: TargetTypeInvoice, TargetID: target, TargetNumber: "INV0042", Amount: d(800)},
		})
		assert.Equal(t, PaymentTypeReceipt, p.Type)
		assert.Equal(t, "REC0001", p.PaymentNumber)
		assert.NotEqual(t, uuid.Nil, p.Allocations[0].ID)
		assert.Len(t, p.GetDomainEvents(), 1)
	})

	t.Run("rejects empty allocation list", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), "2025-2026", "REC0002", PaymentTypeReceipt,
			uuid.New(), "X", time.Now(), d(100), nil)
		assert.ErrorIs(t, err, shared.ErrInvalidAllocation)
	})

	t.Run("rejects zero allocation amount", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), "2025-2026", "REC0002", PaymentTypeReceipt,
			uuid.New(), "X", time.Now(), d(100),
			[]Allocation{{TargetType: TargetTypeInvoice, TargetID: uuid.New(), Amount: decimal.Zero}})
		assert.ErrorIs(t, err, shared.ErrInvalidAllocation)
	})

	t.Run("rejects negative allocation amount", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), "2025-2026", "REC0002", PaymentTypeReceipt,
			uuid.New(), "X", time.Now(), d(100),
			[]Allocation{{TargetType: TargetTypeInvoice, TargetID: uuid.New(), Amount: d(-50)}})
		assert.ErrorIs(t, err, shared.ErrInvalidAllocation)
	})

	t.Run("rejects nil allocation target", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), "2025-2026", "REC0002", PaymentTypeReceipt,
			uuid.New(), "X", time.Now(), d(100),
			[]Allocation{{TargetType: TargetTypeInvoice, TargetID: uuid.Nil, Amount: d(50)}})
		assert.ErrorIs(t, err, shared.ErrInvalidAllocation)
	})

	t.Run("receipts cannot allocate against challans", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), "2025-2026", "REC0002", PaymentTypeReceipt,
			uuid.New(), "X", time.Now(), d(100),
			[]Allocation{{TargetType: TargetTypeChallan, TargetID: uuid.New(), Amount: d(100)}})
		assert.ErrorIs(t, err, shared.ErrInvalidAllocation)
	})

	t.Run("supplier payments allocate against challans", func(t *testing.T) {
		p, err := NewPayment(uuid.New(), "2025-2026", "PAY0001", PaymentTypePayment,
			uuid.New(), "Kiran Fabrics", time.Now(), d(4000),
			[]Allocation{{TargetType: TargetTypeChallan, TargetID: uuid.New(), Amount: d(4000)}})
		require.NoError(t, err)
		assert.Equal(t, TargetTypeChallan, p.Type.TargetType())
	})

	t.Run("rejects invalid payment type", func(t *testing.T) {
		_, err := NewPayment(uuid.New(), "2025-2026", "X0001", PaymentType("refund"),
			uuid.New(), "X", time.Now(), d(100),
			[]Allocation{{TargetType: TargetTypeInvoice, TargetID: uuid.New(), Amount: d(100)}})
		assert.Error(t, err)
	})
}

func TestPaymentAllocatedTotalAndFaceAmountDiffer(t *testing.T) {
	// Kasar and interest make the face amount differ from the allocated sum.
	// The allocation lines stay the ground truth for reconciliation.
	target := uuid.New()
	p := newTestReceipt(t, []Allocation{
		{TargetType: TargetTypeInvoice, TargetID: target, Amount: d(500)},
		{TargetType: TargetTypeInvoice, TargetID: target, Amount: d(250)},
	})
	require.NoError(t, p.SetAdjustments(d(50), decimal.Zero))

	assert.True(t, p.AllocatedTotal().Equal(d(750)))
	assert.True(t, p.Amount.Equal(d(800)))
	assert.False(t, p.AllocatedTotal().Equal(p.Amount))
}

func TestPaymentTargetIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	p := newTestReceipt(t, []Allocation{
		{TargetType: TargetTypeInvoice, TargetID: a, Amount: d(100)},
		{TargetType: TargetTypeInvoice, TargetID: b, Amount: d(200)},
		{TargetType: TargetTypeInvoice, TargetID: a, Amount: d(300)},
	})

	ids := p.TargetIDs()
	assert.Len(t, ids, 2)
	assert.Contains(t, ids, a)
	assert.Contains(t, ids, b)
}

func TestPaymentSetInstrument(t *testing.T) {
	target := uuid.New()
	p := newTestReceipt(t, []Allocation{{TargetType: TargetTypeInvoice, TargetID: target, Amount: d(800)}})

	t.Run("passbook payments require a bank account", func(t *testing.T) {
		err := p.SetInstrument(PaymentModeCheque, "443312", nil, true)
		assert.Error(t, err)
	})

	t.Run("records the instrument", func(t *testing.T) {
		bank := uuid.New()
		require.NoError(t, p.SetInstrument(PaymentModeCheque, "443312", &bank, true))
		assert.Equal(t, PaymentModeCheque, p.Mode)
		assert.True(t, p.AffectsPassbook)
	})

	t.Run("rejects unknown mode", func(t *testing.T) {
		assert.Error(t, p.SetInstrument(PaymentMode("barter"), "", nil, false))
	})
}

func TestPaymentSequencePrefix(t *testing.T) {
	assert.Equal(t, "REC", PaymentTypeReceipt.SequencePrefix())
	assert.Equal(t, "PAY", PaymentTypePayment.SequencePrefix())
}
