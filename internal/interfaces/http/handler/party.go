package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/vastra-erp/backend/internal/application/ledger"
	partnerapp "github.com/vastra-erp/backend/internal/application/partner"
)

// PartyHandler handles trading partner endpoints, including the per-party
// outstanding document lookups the payment allocation screen is built on
type PartyHandler struct {
	BaseHandler
	partyService    *partnerapp.PartyService
	documentService *ledgerapp.DocumentService
}

// NewPartyHandler creates a new PartyHandler
func NewPartyHandler(partyService *partnerapp.PartyService, documentService *ledgerapp.DocumentService) *PartyHandler {
	return &PartyHandler{
		partyService:    partyService,
		documentService: documentService,
	}
}

// Create registers a trading partner
// POST /parties
func (h *PartyHandler) Create(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var req partnerapp.CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	party, err := h.partyService.Create(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, party)
}

// List returns a page of parties
// GET /parties
func (h *PartyHandler) List(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var filter partnerapp.PartyListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.partyService.List(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID returns one party
// GET /parties/:id
func (h *PartyHandler) GetByID(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid party ID")
		return
	}

	party, err := h.partyService.Get(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, party)
}

// Update changes a party's contact details
// PUT /parties/:id
func (h *PartyHandler) Update(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid party ID")
		return
	}

	var req partnerapp.UpdatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	party, err := h.partyService.Update(c.Request.Context(), scope, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, party)
}

// Deactivate retires a party from new documents
// POST /parties/:id/deactivate
func (h *PartyHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

// Activate re-enables a party for new documents
// POST /parties/:id/activate
func (h *PartyHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *PartyHandler) setActive(c *gin.Context, active bool) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid party ID")
		return
	}

	var party interface{}
	if active {
		party, err = h.partyService.Activate(c.Request.Context(), scope, id)
	} else {
		party, err = h.partyService.Deactivate(c.Request.Context(), scope, id)
	}
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, party)
}

// OutstandingInvoices returns the party's invoices still carrying a balance,
// freshly reconciled from the payment ledger
// GET /parties/:id/outstanding-invoices
func (h *PartyHandler) OutstandingInvoices(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid party ID")
		return
	}

	invoices, err := h.documentService.OutstandingInvoicesByParty(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, invoices)
}

// OutstandingChallans returns the party's challans still carrying a balance
// GET /parties/:id/outstanding-challans
func (h *PartyHandler) OutstandingChallans(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid party ID")
		return
	}

	challans, err := h.documentService.OutstandingChallansByParty(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, challans)
}
