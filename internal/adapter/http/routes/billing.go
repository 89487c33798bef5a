package routes

import (
	"fieldserve/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathInvoices = "/invoices"
	PathPayments = "/payments"
)

func addBillingRoutes(rg *gin.RouterGroup, invoiceHandler *handlers.InvoiceHandler, paymentHandler *handlers.PaymentHandler) {
	invoices := rg.Group(PathInvoices)
	{
		invoices.GET("/:invoice_id", invoiceHandler.GetInvoice)
		invoices.POST("/:invoice_id/void", invoiceHandler.VoidInvoice)
	}

	payments := rg.Group(PathPayments)
	{
		payments.POST("/:invoice_id", paymentHandler.CollectPaymentByInvoiceID)
		payments.GET("/:invoice_id", paymentHandler.GetPaymentByInvoiceID)
	}
}
