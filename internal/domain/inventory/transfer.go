package inventory

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

// TransferStatus marks whether a transfer still stands or has been reversed
type TransferStatus string

const (
	TransferStatusActive   TransferStatus = "active"
	TransferStatusReversed TransferStatus = "reversed"
)

// IsValid checks if the status is a valid TransferStatus
func (s TransferStatus) IsValid() bool {
	return s == TransferStatusActive || s == TransferStatusReversed
}

// TransferItem is one challan's worth of stock moved by a transfer.
// Stored as JSONB inside the Transfer aggregate.
type TransferItem struct {
	ChallanID     uuid.UUID       `json:"challan_id"`
	ChallanNumber string          `json:"challan_number"`
	Quality       string          `json:"quality"`
	Boxes         int64           `json:"boxes"`
	Meters        decimal.Decimal `json:"meters"`
}

// Stock returns the item's counters as a value object
func (i TransferItem) Stock() valueobject.Stock {
	return valueobject.MustNewStock(i.Boxes, i.Meters)
}

// TransferItems is a slice of TransferItem that implements GORM Scanner/Valuer for JSONB storage
type TransferItems []TransferItem

// Value implements driver.Valuer interface for GORM to store as JSONB
func (items TransferItems) Value() (driver.Value, error) {
	if items == nil {
		return "[]", nil
	}
	return json.Marshal(items)
}

// Scan implements sql.Scanner interface for GORM to read from JSONB
func (items *TransferItems) Scan(value interface{}) error {
	if value == nil {
		*items = TransferItems{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New("failed to scan TransferItems: unsupported type")
	}

	if len(bytes) == 0 {
		*items = TransferItems{}
		return nil
	}

	return json.Unmarshal(bytes, items)
}

// Transfer moves stock from source challans to a recipient party, who
// receives freshly minted challans flagged as received via transfer.
// A reversal restores the source challans' counters exactly and deletes
// the recipient challans; the Transfer row itself stays as an audit trail.
type Transfer struct {
	shared.CompanyAggregateRoot
	TransferNumber string
	FromPartyID    uuid.UUID
	FromPartyName  string
	ToPartyID      uuid.UUID
	ToPartyName    string
	TransferDate   time.Time
	Items          TransferItems
	Status         TransferStatus
	ReversedAt     *time.Time
	Notes          string
}

// NewTransfer records a stock transfer between two parties
func NewTransfer(companyID uuid.UUID, financialYear, transferNumber string, fromPartyID uuid.UUID, fromPartyName string, toPartyID uuid.UUID, toPartyName string, transferDate time.Time, items TransferItems) (*Transfer, error) {
	if transferNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Transfer number cannot be empty")
	}
	if fromPartyID == uuid.Nil || toPartyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Both parties are required")
	}
	if fromPartyID == toPartyID {
		return nil, shared.NewDomainError("INVALID_INPUT", "Cannot transfer stock to the same party")
	}
	if len(items) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "Transfer has no items")
	}
	for _, item := range items {
		if item.ChallanID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_INPUT", "Transfer item missing source challan")
		}
		if item.Boxes <= 0 && !item.Meters.IsPositive() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Transfer item moves no stock")
		}
		if item.Boxes < 0 || item.Meters.IsNegative() {
			return nil, shared.NewDomainError("INVALID_INPUT", "Transfer item quantities cannot be negative")
		}
	}

	tr := &Transfer{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID, financialYear),
		TransferNumber:       transferNumber,
		FromPartyID:          fromPartyID,
		FromPartyName:        fromPartyName,
		ToPartyID:            toPartyID,
		ToPartyName:          toPartyName,
		TransferDate:         transferDate,
		Items:                items,
		Status:               TransferStatusActive,
	}

	tr.AddDomainEvent(NewTransferCreatedEvent(tr))
	return tr, nil
}

// Reverse marks the transfer as undone. The coordinator restores the source
// challans and deletes the recipient challans around this call.
func (tr *Transfer) Reverse() error {
	if tr.Status == TransferStatusReversed {
		return shared.NewDomainError("INVALID_STATE", "Transfer has already been reversed")
	}
	now := time.Now()
	tr.Status = TransferStatusReversed
	tr.ReversedAt = &now
	tr.Touch()
	tr.AddDomainEvent(NewTransferReversedEvent(tr))
	return nil
}

// IsReversed reports whether the transfer has been undone
func (tr *Transfer) IsReversed() bool {
	return tr.Status == TransferStatusReversed
}

// StockByChallan groups the moved stock per source challan
func (tr *Transfer) StockByChallan() map[uuid.UUID]valueobject.Stock {
	grouped := make(map[uuid.UUID]valueobject.Stock)
	for _, item := range tr.Items {
		grouped[item.ChallanID] = grouped[item.ChallanID].Add(item.Stock())
	}
	return grouped
}

// TotalStock sums the moved counters across all items
func (tr *Transfer) TotalStock() valueobject.Stock {
	total := valueobject.ZeroStock()
	for _, item := range tr.Items {
		total = total.Add(item.Stock())
	}
	return total
}
