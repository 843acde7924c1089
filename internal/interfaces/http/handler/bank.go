package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	bankingapp "github.com/vastra-erp/backend/internal/application/banking"
)

// BankHandler handles bank account and passbook endpoints
type BankHandler struct {
	BaseHandler
	bankingService *bankingapp.BankingService
}

// NewBankHandler creates a new BankHandler
func NewBankHandler(bankingService *bankingapp.BankingService) *BankHandler {
	return &BankHandler{bankingService: bankingService}
}

// CreateAccount registers a company bank account
// POST /bank-accounts
func (h *BankHandler) CreateAccount(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var req bankingapp.CreateBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	account, err := h.bankingService.CreateAccount(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, account)
}

// ListAccounts returns all bank accounts in the scope
// GET /bank-accounts
func (h *BankHandler) ListAccounts(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	accounts, err := h.bankingService.ListAccounts(c.Request.Context(), scope)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, accounts)
}

// GetAccount returns one bank account
// GET /bank-accounts/:id
func (h *BankHandler) GetAccount(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bank account ID")
		return
	}

	account, err := h.bankingService.GetAccount(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, account)
}

// RecordManualEntry appends a hand-entered passbook line
// POST /bank-accounts/:id/entries
func (h *BankHandler) RecordManualEntry(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bank account ID")
		return
	}

	var req bankingapp.ManualEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entry, err := h.bankingService.RecordManualEntry(c.Request.Context(), scope, id, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, entry)
}

// ListPassbook returns an account's passbook entries
// GET /bank-accounts/:id/passbook
func (h *BankHandler) ListPassbook(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bank account ID")
		return
	}

	var filter bankingapp.PassbookListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entries, err := h.bankingService.ListPassbook(c.Request.Context(), scope, id, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, entries)
}
