package response

import (
	"time"

	"fieldserve/internal/domain/entities"
)

type InvoiceLineResponse struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TaxRate     float64 `json:"tax_rate"`
	TaxAmount   float64 `json:"tax_amount"`
	LineTotal   float64 `json:"line_total"`
}

type InvoiceResponse struct {
	InvoiceID       string  `json:"invoice_id"`
	ID              string  `json:"id"`
	Number          string  `json:"number"`
	JobID           string  `json:"job_id"`
	Kind            string  `json:"kind"`
	ParentInvoiceID *string `json:"parent_invoice_id,omitempty"`
	Status          string  `json:"status"`
	Subtotal        float64 `json:"subtotal"`
	TaxAmount       float64 `json:"tax_amount"`
	TotalAmount     float64 `json:"total_amount"`
	DepositApplied  float64 `json:"deposit_applied"`
	AmountDue       float64 `json:"amount_due"`
	ProgressBasis   string  `json:"progress_basis,omitempty"`
	ProgressPercent float64 `json:"progress_percent,omitempty"`
	ComputedBalance float64 `json:"computed_balance,omitempty"`

	Lines []InvoiceLineResponse `json:"lines,omitempty"`

	PaymentTerms string     `json:"payment_terms,omitempty"`
	IssuedAt     time.Time  `json:"issued_at"`
	DueDate      string     `json:"due_date,omitempty"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func FromInvoice(inv entities.Invoice) InvoiceResponse {
	lines := make([]InvoiceLineResponse, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		lines = append(lines, InvoiceLineResponse{
			Description: l.Description,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			TaxRate:     l.TaxRate,
			TaxAmount:   l.TaxAmount,
			LineTotal:   l.LineTotal,
		})
	}
	return InvoiceResponse{
		InvoiceID:       inv.ID,
		ID:              inv.ID,
		Number:          inv.Number,
		JobID:           inv.JobID,
		Kind:            string(inv.Kind),
		ParentInvoiceID: inv.ParentInvoiceID,
		Status:          string(inv.Status),
		Subtotal:        inv.Subtotal,
		TaxAmount:       inv.TaxAmount,
		TotalAmount:     inv.TotalAmount,
		DepositApplied:  inv.DepositApplied,
		AmountDue:       inv.TotalAmount - inv.DepositApplied,
		ProgressBasis:   string(inv.ProgressBasis),
		ProgressPercent: inv.ProgressPercent,
		ComputedBalance: inv.ComputedBalance,
		Lines:           lines,
		PaymentTerms:    inv.PaymentTerms,
		IssuedAt:        inv.IssuedAt,
		DueDate:         inv.DueDate,
		PaidAt:          inv.PaidAt,
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
	}
}
