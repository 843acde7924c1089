package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	inventoryapp "github.com/vastra-erp/backend/internal/application/inventory"
)

// TransferHandler handles stock transfer endpoints
type TransferHandler struct {
	BaseHandler
	transferService *inventoryapp.TransferService
}

// NewTransferHandler creates a new TransferHandler
func NewTransferHandler(transferService *inventoryapp.TransferService) *TransferHandler {
	return &TransferHandler{transferService: transferService}
}

// Create moves stock from source challans to a recipient party
// POST /transfers
func (h *TransferHandler) Create(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var req inventoryapp.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	transfer, err := h.transferService.CreateTransfer(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, transfer)
}

// List returns a page of transfers
// GET /transfers
func (h *TransferHandler) List(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var filter inventoryapp.TransferListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.transferService.ListTransfers(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID returns one transfer
// GET /transfers/:id
func (h *TransferHandler) GetByID(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	transfer, err := h.transferService.GetTransfer(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, transfer)
}

// Reverse undoes a transfer, restoring source counters and removing the
// recipient challans
// POST /transfers/:id/reverse
func (h *TransferHandler) Reverse(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transfer ID")
		return
	}

	transfer, err := h.transferService.ReverseTransfer(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, transfer)
}
