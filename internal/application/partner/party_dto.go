package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/partner"
)

// CreatePartyRequest carries a new trading partner registration
type CreatePartyRequest struct {
	Name           string          `json:"name" binding:"required"`
	Kind           string          `json:"kind" binding:"required"`
	GSTIN          string          `json:"gstin"`
	Address        string          `json:"address"`
	City           string          `json:"city"`
	Phone          string          `json:"phone"`
	Email          string          `json:"email"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
}

// UpdatePartyRequest carries contact detail changes for a party
type UpdatePartyRequest struct {
	GSTIN   *string `json:"gstin"`
	Address *string `json:"address"`
	City    *string `json:"city"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email"`
}

// PartyListFilter defines filtering options for party list queries
type PartyListFilter struct {
	Kind     string `form:"kind"`
	City     string `form:"city"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// PartyResponse represents a trading partner in API responses
type PartyResponse struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Kind           string          `json:"kind"`
	GSTIN          string          `json:"gstin,omitempty"`
	Address        string          `json:"address,omitempty"`
	City           string          `json:"city,omitempty"`
	Phone          string          `json:"phone,omitempty"`
	Email          string          `json:"email,omitempty"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
}

func toPartyResponse(p *partner.Party) *PartyResponse {
	return &PartyResponse{
		ID:             p.ID,
		Name:           p.Name,
		Kind:           string(p.Kind),
		GSTIN:          p.GSTIN,
		Address:        p.Address,
		City:           p.City,
		Phone:          p.Phone,
		Email:          p.Email,
		OpeningBalance: p.OpeningBalance,
		IsActive:       p.IsActive,
		CreatedAt:      p.CreatedAt,
	}
}
