package partner

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/vastra-erp/backend/internal/domain/shared"
)

// PartyKind says which side of the ledger a party trades on. A party can be
// both a customer and a supplier of the same company.
type PartyKind string

const (
	PartyKindCustomer PartyKind = "customer"
	PartyKindSupplier PartyKind = "supplier"
	PartyKindBoth     PartyKind = "both"
)

// IsValid checks if the kind is a valid PartyKind
func (k PartyKind) IsValid() bool {
	switch k {
	case PartyKindCustomer, PartyKindSupplier, PartyKindBoth:
		return true
	}
	return false
}

// CanReceiveInvoices reports whether sales invoices may be issued to this kind
func (k PartyKind) CanReceiveInvoices() bool {
	return k == PartyKindCustomer || k == PartyKindBoth
}

// CanIssueChallans reports whether purchase challans may be recorded against this kind
func (k PartyKind) CanIssueChallans() bool {
	return k == PartyKindSupplier || k == PartyKindBoth
}

// Party is a trading partner: a customer, a supplier, or both.
// Challans, invoices, payments, and transfers all reference parties by id.
type Party struct {
	shared.CompanyAggregateRoot
	Name           string
	Kind           PartyKind
	GSTIN          string
	Address        string
	City           string
	Phone          string
	Email          string
	OpeningBalance decimal.Decimal
	IsActive       bool
}

// NewParty registers a trading partner
func NewParty(companyID uuid.UUID, financialYear, name string, kind PartyKind) (*Party, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Party name cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Invalid party kind")
	}

	p := &Party{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID, financialYear),
		Name:                 name,
		Kind:                 kind,
		OpeningBalance:       decimal.Zero,
		IsActive:             true,
	}

	p.AddDomainEvent(NewPartyRegisteredEvent(p))
	return p, nil
}

// UpdateContact sets the party's contact details
func (p *Party) UpdateContact(address, city, phone, email string) {
	p.Address = address
	p.City = city
	p.Phone = phone
	p.Email = email
	p.Touch()
}

// SetGSTIN records the party's GST identification number
func (p *Party) SetGSTIN(gstin string) {
	p.GSTIN = gstin
	p.Touch()
}

// SetOpeningBalance records the balance carried in from before this financial year
func (p *Party) SetOpeningBalance(balance decimal.Decimal) {
	p.OpeningBalance = balance
	p.Touch()
}

// Deactivate retires the party from new documents without deleting history
func (p *Party) Deactivate() {
	p.IsActive = false
	p.Touch()
}

// Activate re-enables the party for new documents
func (p *Party) Activate() {
	p.IsActive = true
	p.Touch()
}
