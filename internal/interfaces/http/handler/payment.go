package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/vastra-erp/backend/internal/application/ledger"
)

// PaymentHandler handles the payment ledger endpoints. Receipts and
// disbursements share the request shape; the route decides which side of the
// ledger the money lands on.
type PaymentHandler struct {
	BaseHandler
	paymentService *ledgerapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *ledgerapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// RecordReceipt enters money received from a customer
// POST /payments/receipts
func (h *PaymentHandler) RecordReceipt(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var req ledgerapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.RecordReceipt(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, payment)
}

// RecordDisbursement enters money paid out to a supplier
// POST /payments/disbursements
func (h *PaymentHandler) RecordDisbursement(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var req ledgerapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.RecordSupplierPayment(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, payment)
}

// List returns a page of payments
// GET /payments
func (h *PaymentHandler) List(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	var filter ledgerapp.PaymentListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.paymentService.ListPayments(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// GetByID returns one payment
// GET /payments/:id
func (h *PaymentHandler) GetByID(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, payment)
}

// Delete removes a payment and re-reconciles everything it touched
// DELETE /payments/:id
func (h *PaymentHandler) Delete(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID")
		return
	}

	if err := h.paymentService.DeletePayment(c.Request.Context(), scope, id); err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.NoContent(c)
}
