package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/vastra-erp/backend/internal/application/ledger"
)

// ChallanHandler handles purchase challan endpoints
type ChallanHandler struct {
	BaseHandler
	documentService *ledgerapp.DocumentService
}

// NewChallanHandler creates a new ChallanHandler
func NewChallanHandler(documentService *ledgerapp.DocumentService) *ChallanHandler {
	return &ChallanHandler{documentService: documentService}
}

// Create records a new purchase challan
// POST /challans
func (h *ChallanHandler) Create(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var req ledgerapp.CreateChallanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	challan, err := h.documentService.CreateChallan(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, challan)
}

// List returns a page of challans
// GET /challans
func (h *ChallanHandler) List(c *gin.Context) {
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

	page, err := h.documentService.ListChallans(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID returns one challan
// GET /challans/:id
func (h *ChallanHandler) GetByID(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid challan ID")
		return
	}

	challan, err := h.documentService.GetChallan(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, challan)
}

// Delete removes an unpaid challan with no transferred stock outstanding
// DELETE /challans/:id
func (h *ChallanHandler) Delete(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid challan ID")
		return
	}

	if err := h.documentService.DeleteChallan(c.Request.Context(), scope, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
