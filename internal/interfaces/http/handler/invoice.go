package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/vastra-erp/backend/internal/application/ledger"
)

// InvoiceHandler handles sales invoice endpoints. Reads return views whose
// paid/outstanding figures are reconciled from the payment ledger at request
// time.
type InvoiceHandler struct {
	BaseHandler
	documentService *ledgerapp.DocumentService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(documentService *ledgerapp.DocumentService) *InvoiceHandler {
	return &InvoiceHandler{documentService: documentService}
}

// Create records a new sales invoice
// POST /invoices
func (h *InvoiceHandler) Create(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var req ledgerapp.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	invoice, err := h.documentService.CreateInvoice(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, invoice)
}

// List returns a page of invoices
// GET /invoices
func (h *InvoiceHandler) List(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var filter ledgerapp.DocumentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.documentService.ListInvoices(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID returns one invoice
// GET /invoices/:id
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.documentService.GetInvoice(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Delete removes an unpaid invoice
// DELETE /invoices/:id
func (h *InvoiceHandler) Delete(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.documentService.DeleteInvoice(c.Request.Context(), scope, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
