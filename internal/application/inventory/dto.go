package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/inventory"
)

// TransferItemRequest draws stock from one source challan
type TransferItemRequest struct {
	ChallanID uuid.UUID       `json:"challan_id" binding:"required"`
	Quality   string          `json:"quality"`
	Boxes     int64           `json:"boxes"`
	Meters    decimal.Decimal `json:"meters"`
}

// CreateTransferRequest carries a stock transfer between two parties
type CreateTransferRequest struct {
	FromPartyID   uuid.UUID             `json:"from_party_id" binding:"required"`
	FromPartyName string                `json:"from_party_name"`
	ToPartyID     uuid.UUID             `json:"to_party_id" binding:"required"`
	ToPartyName   string                `json:"to_party_name"`
	TransferDate  time.Time             `json:"transfer_date" binding:"required"`
	Items         []TransferItemRequest `json:"items" binding:"required"`
	Notes         string                `json:"notes"`
}

// TransferResponse is a transfer in API responses
type TransferResponse struct {
	ID             uuid.UUID               `json:"id"`
	TransferNumber string                  `json:"transfer_number"`
	FromPartyID    uuid.UUID               `json:"from_party_id"`
	FromPartyName  string                  `json:"from_party_name"`
	ToPartyID      uuid.UUID               `json:"to_party_id"`
	ToPartyName    string                  `json:"to_party_name"`
	TransferDate   time.Time               `json:"transfer_date"`
	Items          inventory.TransferItems `json:"items"`
	Status         string                  `json:"status"`
	ReversedAt     *time.Time              `json:"reversed_at,omitempty"`
	Notes          string                  `json:"notes,omitempty"`
	CreatedAt      time.Time               `json:"created_at"`
}

func toTransferResponse(tr *inventory.Transfer) *TransferResponse {
	return &TransferResponse{
		ID:             tr.ID,
		TransferNumber: tr.TransferNumber,
		FromPartyID:    tr.FromPartyID,
		FromPartyName:  tr.FromPartyName,
		ToPartyID:      tr.ToPartyID,
		ToPartyName:    tr.ToPartyName,
		TransferDate:   tr.TransferDate,
		Items:          tr.Items,
		Status:         string(tr.Status),
		ReversedAt:     tr.ReversedAt,
		Notes:          tr.Notes,
		CreatedAt:      tr.CreatedAt,
	}
}

// TransferListFilter defines filtering options for transfer list queries
type TransferListFilter struct {
	FromPartyID *uuid.UUID `form:"from_party_id"`
	ToPartyID   *uuid.UUID `form:"to_party_id"`
	Status      string     `form:"status"`
	FromDate    *time.Time `form:"from_date" time_format:"2006-01-02"`
	ToDate      *time.Time `form:"to_date" time_format:"2006-01-02"`
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size"`
}
