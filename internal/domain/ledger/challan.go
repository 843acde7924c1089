package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/shared"
	"github.com/vastra-erp/backend/internal/domain/shared/valueobject"
)

// ChallanItem is one received line on a purchase challan.
// Stored as JSONB inside the Challan aggregate.
type ChallanItem struct {
	Quality string          `json:"quality"`
	Boxes   int64           `json:"boxes"`
	Meters  decimal.Decimal `json:"meters"`
	Rate    decimal.Decimal `json:"rate"`
	Amount  decimal.Decimal `json:"amount"`
}

// ChallanItems is a slice of ChallanItem that implements GORM Scanner/Valuer for JSONB storage
type ChallanItems []ChallanItem

// Value implements driver.Valuer interface for GORM to store as JSONB
func (items ChallanItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	return json.Marshal(items)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (items *ChallanItems) Scan(value interface{}) error {
	if value == nil {
		*items = ChallanItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan ChallanItems: unsupported type")
	}

	if len(bytes) == 0 {
		*items = ChallanItems{}
		return nil
	}

	return json.Unmarshal(bytes, items)
}

// Challan is a purchase-side delivery document from a supplier. It carries
// both an amount owed (settled through the payment ledger, same recompute-
// and-overwrite rule as Invoice) and physical stock counters moved by the
// transfer ledger.
//
// Stock invariant: available + transferred never exceeds the received total,
// in boxes and in meters.
type Challan struct {
	shared.CompanyAggregateRoot
	ChallanNumber string
	SupplierID    uuid.UUID
	SupplierName  string
	ChallanDate   time.Time
	Items         ChallanItems
	TotalAmount   decimal.Decimal
	TotalPaid     decimal.Decimal
	Outstanding   decimal.Decimal
	PaymentStatus ChallanStatus

	TotalBoxes        int64
	TotalMeters       decimal.Decimal
	AvailableBoxes    int64
	AvailableMeters   decimal.Decimal
	TransferredBoxes  int64
	TransferredMeters decimal.Decimal

	// Set on challans minted at the receiving end of a stock transfer.
	// Such challans carry no amount owed and vanish when the transfer
	// is reversed.
	IsReceivedViaTransfer bool
	SourceTransferID      *uuid.UUID

	Notes string
}

// NewChallan creates a finalized purchase challan with no payments applied.
// All received stock starts available.
func NewChallan(companyID uuid.UUID, financialYear, challanNumber string, supplierID uuid.UUID, supplierName string, challanDate time.Time, items ChallanItems, totalAmount decimal.Decimal) (*Challan, error) {
	if challanNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Challan number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Supplier ID cannot be empty")
	}
	if totalAmount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Challan total cannot be negative")
	}

	var boxes int64
	meters := decimal.Zero
	for _, item := range items {
		if item.Boxes < 0 || item.Meters.IsNegative() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Challan item quantities cannot be negative")
		}
		boxes += item.Boxes
		meters = meters.Add(item.Meters)
	}

	ch := &Challan{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID, financialYear),
		ChallanNumber:        challanNumber,
		SupplierID:           supplierID,
		SupplierName:         supplierName,
		ChallanDate:          challanDate,
		Items:                items,
		TotalAmount:          totalAmount,
		TotalPaid:            decimal.Zero,
		Outstanding:          totalAmount,
		PaymentStatus:        ChallanStatusNone,
		TotalBoxes:           boxes,
		TotalMeters:          meters,
		AvailableBoxes:       boxes,
		AvailableMeters:      meters,
	}

	ch.AddDomainEvent(NewChallanCreatedEvent(ch))
	return ch, nil
}

// NewTransferredChallan mints the recipient-side challan for a stock
// transfer. It carries the moved stock but no amount owed.
func NewTransferredChallan(companyID uuid.UUID, financialYear, challanNumber string, recipientID uuid.UUID, recipientName string, transferID uuid.UUID, items ChallanItems) (*Challan, error) {
	zeroed := make(ChallanItems, len(items))
	for i, item := range items {
		item.Rate = decimal.Zero
		item.Amount = decimal.Zero
		zeroed[i] = item
	}

	ch, err := NewChallan(companyID, financialYear, challanNumber, recipientID, recipientName, time.Now(), zeroed, decimal.Zero)
	if err != nil {
		return nil, err
	}
	ch.IsReceivedViaTransfer = true
	ch.SourceTransferID = &transferID
	return ch, nil
}

// ApplySettlement overwrites the settlement trio from a freshly reconciled
// total, mirroring Invoice.ApplySettlement on the purchase side.
func (ch *Challan) ApplySettlement(totalPaid decimal.Decimal) {
	ch.TotalPaid = totalPaid
	ch.Outstanding = Outstanding(ch.TotalAmount, totalPaid)
	ch.PaymentStatus = DeriveChallanStatus(ch.TotalAmount, totalPaid)
	ch.Touch()
	ch.AddDomainEvent(NewChallanSettledEvent(ch))
}

// CanDelete reports whether the challan may be removed from the ledger
func (ch *Challan) CanDelete() bool {
	return ch.TotalPaid.IsZero()
}

// AvailableStock returns the stock still on hand as a value object
func (ch *Challan) AvailableStock() valueobject.Stock {
	return valueobject.MustNewStock(ch.AvailableBoxes, ch.AvailableMeters)
}

// TransferOut moves stock from available to transferred.
// Fails if the challan cannot cover the requested stock.
func (ch *Challan) TransferOut(stock valueobject.Stock) error {
	if !ch.AvailableStock().CanCover(stock) {
		return shared.ErrInsufficientStock
	}
	ch.AvailableBoxes -= stock.Boxes()
	ch.AvailableMeters = ch.AvailableMeters.Sub(stock.Meters())
	ch.TransferredBoxes += stock.Boxes()
	ch.TransferredMeters = ch.TransferredMeters.Add(stock.Meters())
	ch.Touch()
	return nil
}

// RestoreTransferred moves stock back from transferred to available,
// the exact inverse of TransferOut. Used when a transfer is reversed.
func (ch *Challan) RestoreTransferred(stock valueobject.Stock) error {
	if ch.TransferredBoxes < stock.Boxes() || ch.TransferredMeters.LessThan(stock.Meters()) {
		return shared.NewDomainError("INVALID_STATE", "Cannot restore more stock than was transferred")
	}
	ch.TransferredBoxes -= stock.Boxes()
	ch.TransferredMeters = ch.TransferredMeters.Sub(stock.Meters())
	ch.AvailableBoxes += stock.Boxes()
	ch.AvailableMeters = ch.AvailableMeters.Add(stock.Meters())
	ch.Touch()
	return nil
}
