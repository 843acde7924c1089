package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/vastra-erp/backend/internal/domain/inventory"
)

// TransferModel is the persistence model for the Transfer aggregate root.
// Items are stored as JSONB since the allocation-style group-sum never runs
// against them; counter updates go through the challans table.
type TransferModel struct {
	CompanyAggregateModel
	TransferNumber string                   `gorm:"type:varchar(50);not null;uniqueIndex:idx_transfer_scope_number,priority:3"`
	FromPartyID    uuid.UUID                `gorm:"type:uuid;not null;index"`
	FromPartyName  string                   `gorm:"type:varchar(200);not null"`
	ToPartyID      uuid.UUID                `gorm:"type:uuid;not null;index"`
	ToPartyName    string                   `gorm:"type:varchar(200);not null"`
	TransferDate   time.Time                `gorm:"not null;index"`
	Items          inventory.TransferItems  `gorm:"type:jsonb;default:'[]'"`
	Status         inventory.TransferStatus `gorm:"type:varchar(20);not null;default:'active';index"`
	ReversedAt     *time.Time
	Notes          string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (TransferModel) TableName() string {
	return "transfers"
}

// ToDomain converts the persistence model to a domain Transfer entity.
func (m *TransferModel) ToDomain() *inventory.Transfer {
	tr := &inventory.Transfer{
		TransferNumber: m.TransferNumber,
		FromPartyID:    m.FromPartyID,
		FromPartyName:  m.FromPartyName,
		ToPartyID:      m.ToPartyID,
		ToPartyName:    m.ToPartyName,
		TransferDate:   m.TransferDate,
		Items:          m.Items,
		Status:         m.Status,
		ReversedAt:     m.ReversedAt,
		Notes:          m.Notes,
	}
	m.PopulateCompanyAggregateRoot(&tr.CompanyAggregateRoot)
	return tr
}

// FromDomain populates the persistence model from a domain Transfer entity.
func (m *TransferModel) FromDomain(tr *inventory.Transfer) {
	m.FromDomainCompanyAggregateRoot(tr.CompanyAggregateRoot)
	m.TransferNumber = tr.TransferNumber
	m.FromPartyID = tr.FromPartyID
	m.FromPartyName = tr.FromPartyName
	m.ToPartyID = tr.ToPartyID
	m.ToPartyName = tr.ToPartyName
	m.TransferDate = tr.TransferDate
	m.Items = tr.Items
	m.Status = tr.Status
	m.ReversedAt = tr.ReversedAt
	m.Notes = tr.Notes
}

// TransferModelFromDomain creates a new persistence model from a domain Transfer.
func TransferModelFromDomain(tr *inventory.Transfer) *TransferModel {
	m := &TransferModel{}
	m.FromDomain(tr)
	return m
}
