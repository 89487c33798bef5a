package handlers

import (
	"errors"
	request "fieldserve/internal/adapter/http/dto/request"
	response "fieldserve/internal/adapter/http/dto/response"
	"fieldserve/internal/domain/billing"
	"fieldserve/internal/domain/entities"
	"fieldserve/internal/usecase"
	"fieldserve/pkg"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidInvoicePayload = pkg.NewDomainErrorSimple("INVALID_INVOICE_INPUT", "Invalid invoice payload", http.StatusBadRequest)
)

// InvoiceHandler handles HTTP requests for the invoice ledger: deposits,
// progress invoices, lookup and voiding.

type InvoiceHandler struct {
	usecase usecase.IInvoiceUseCase
}

func NewInvoiceHandler(uc usecase.IInvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{usecase: uc}
}

// CreateDeposit records an up-front deposit against a job.
func (h *InvoiceHandler) CreateDeposit(c *gin.Context) {
	var payload request.DepositCreateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidInvoicePayload.HTTPStatus, errInvalidInvoicePayload.ToHTTPError())
		return
	}

	inv, err := h.usecase.CreateDeposit(c.Request.Context(), c.Param("job_id"), payload.Amount)
	if err != nil {
		appErr := mapInvoiceError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusCreated, response.FromInvoice(inv))
}

// CreatePartial issues the next progress invoice for a job.
func (h *InvoiceHandler) CreatePartial(c *gin.Context) {
	var payload request.PartialCreateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidInvoicePayload.HTTPStatus, errInvalidInvoicePayload.ToHTTPError())
		return
	}

	basis := billing.PartialBasis{
		Kind:    entities.ProgressBasis(payload.Basis),
		Percent: payload.Percent,
		Amount:  payload.Amount,
	}
	inv, err := h.usecase.CreatePartial(c.Request.Context(), c.Param("job_id"), basis)
	if err != nil {
		appErr := mapInvoiceError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusCreated, response.FromInvoice(inv))
}

// GetInvoice returns an invoice by id.
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	inv, err := h.usecase.GetByID(c.Request.Context(), c.Param("invoice_id"))
	if err != nil {
		appErr := mapInvoiceError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromInvoice(inv))
}

// ListInvoicesByJob returns every invoice issued against a job.
func (h *InvoiceHandler) ListInvoicesByJob(c *gin.Context) {
	invs, err := h.usecase.ListByJobID(c.Request.Context(), c.Param("job_id"))
	if err != nil {
		appErr := mapInvoiceError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	out := make([]response.InvoiceResponse, 0, len(invs))
	for _, inv := range invs {
		out = append(out, response.FromInvoice(inv))
	}
	c.JSON(http.StatusOK, out)
}

// VoidInvoice marks an invoice void, removing it from ledger aggregation.
func (h *InvoiceHandler) VoidInvoice(c *gin.Context) {
	inv, err := h.usecase.Void(c.Request.Context(), c.Param("invoice_id"))
	if err != nil {
		appErr := mapInvoiceError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromInvoice(inv))
}

func mapInvoiceError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidJobID), errors.Is(err, usecase.ErrInvalidInvoiceID),
		errors.Is(err, usecase.ErrInvalidDepositAmount), errors.Is(err, billing.ErrUnknownPartialBasis),
		errors.Is(err, billing.ErrUnknownPricingModel):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrJobNotFound):
		return pkg.NewDomainErrorSimple("JOB_NOT_FOUND", "Job not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrInvoiceNotFound):
		return pkg.NewDomainErrorSimple("INVOICE_NOT_FOUND", "Invoice not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrInvoiceVoided):
		return pkg.NewDomainErrorSimple("INVOICE_ALREADY_VOID", "Invoice already voided", http.StatusConflict)
	case errors.Is(err, usecase.ErrInvoicePaid):
		return pkg.NewDomainErrorSimple("INVOICE_PAID", "Paid invoice cannot be voided", http.StatusConflict)
	case errors.Is(err, usecase.ErrNothingToInvoice):
		return pkg.NewDomainErrorSimple("NOTHING_TO_INVOICE", "No remaining balance to invoice", http.StatusConflict)
	case errors.Is(err, usecase.ErrJobBusy):
		return pkg.NewDomainErrorSimple("JOB_BUSY", "Another operation is in flight for this job", http.StatusConflict)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
