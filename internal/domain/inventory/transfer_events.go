package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/shared"
)

// TransferCreatedEvent is raised when stock moves between parties
type TransferCreatedEvent struct {
	shared.BaseDomainEvent
	TransferID     uuid.UUID       `json:"transfer_id"`
	TransferNumber string          `json:"transfer_number"`
	FromPartyID    uuid.UUID       `json:"from_party_id"`
	ToPartyID      uuid.UUID       `json:"to_party_id"`
	TotalBoxes     int64           `json:"total_boxes"`
	TotalMeters    decimal.Decimal `json:"total_meters"`
	TransferDate   time.Time       `json:"transfer_date"`
}

// EventType returns the event type name
func (e *TransferCreatedEvent) EventType() string {
	return "TransferCreated"
}

// NewTransferCreatedEvent creates a new TransferCreatedEvent
func NewTransferCreatedEvent(tr *Transfer) *TransferCreatedEvent {
	total := tr.TotalStock()
	return &TransferCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TransferCreated", "Transfer", tr.ID, tr.CompanyID),
		TransferID:      tr.ID,
		TransferNumber:  tr.TransferNumber,
		FromPartyID:     tr.FromPartyID,
		ToPartyID:       tr.ToPartyID,
		TotalBoxes:      total.Boxes(),
		TotalMeters:     total.Meters(),
		TransferDate:    tr.TransferDate,
	}
}

// TransferReversedEvent is raised when a transfer is undone and the source
// challans' counters are restored
type TransferReversedEvent struct {
	shared.BaseDomainEvent
	TransferID     uuid.UUID `json:"transfer_id"`
	TransferNumber string    `json:"transfer_number"`
	ReversedAt     time.Time `json:"reversed_at"`
}

// EventType returns the event type name
func (e *TransferReversedEvent) EventType() string {
	return "TransferReversed"
}

// NewTransferReversedEvent creates a new TransferReversedEvent
func NewTransferReversedEvent(tr *Transfer) *TransferReversedEvent {
	reversedAt := time.Now()
	if tr.ReversedAt != nil {
		reversedAt = *tr.ReversedAt
	}
	return &TransferReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent("TransferReversed", "Transfer", tr.ID, tr.CompanyID),
		TransferID:      tr.ID,
		TransferNumber:  tr.TransferNumber,
		ReversedAt:      reversedAt,
	}
}
