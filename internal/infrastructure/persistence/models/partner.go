package models

import (
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/partner"
)

// PartyModel is the persistence model for the Party aggregate root.
type PartyModel struct {
	CompanyAggregateModel
	Name           string            `gorm:"type:varchar(200);not null;index"`
	Kind           partner.PartyKind `gorm:"type:varchar(20);not null;index"`
	GSTIN          string            `gorm:"type:varchar(20)"`
	Address        string            `gorm:"type:varchar(500)"`
	City           string            `gorm:"type:varchar(100)"`
	Phone          string            `gorm:"type:varchar(20)"`
	Email          string            `gorm:"type:varchar(100)"`
	OpeningBalance decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0"`
	IsActive       bool              `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (PartyModel) TableName() string {
	return "parties"
}

// ToDomain converts the persistence model to a domain Party entity.
func (m *PartyModel) ToDomain() *partner.Party {
	p := &partner.Party{
		Name:           m.Name,
		Kind:           m.Kind,
		GSTIN:          m.GSTIN,
		Address:        m.Address,
		City:           m.City,
		Phone:          m.Phone,
		Email:          m.Email,
		OpeningBalance: m.OpeningBalance,
		IsActive:       m.IsActive,
	}
	m.PopulateCompanyAggregateRoot(&p.CompanyAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Party entity.
func (m *PartyModel) FromDomain(p *partner.Party) {
	m.FromDomainCompanyAggregateRoot(p.CompanyAggregateRoot)
	m.Name = p.Name
	m.Kind = p.Kind
	m.GSTIN = p.GSTIN
	m.Address = p.Address
	m.City = p.City
	m.Phone = p.Phone
	m.Email = p.Email
	m.OpeningBalance = p.OpeningBalance
	m.IsActive = p.IsActive
}

// PartyModelFromDomain creates a new persistence model from a domain Party.
func PartyModelFromDomain(p *partner.Party) *PartyModel {
	m := &PartyModel{}
	m.FromDomain(p)
	return m
}
