package entities

import "time"

// InvoiceKind distinguishes the single full invoice from deposit records and
// progress (partial) invoices issued against the same job.

type InvoiceKind string

const (
	InvoiceKindFull     InvoiceKind = "full"
	InvoiceKindDeposit  InvoiceKind = "deposit"
	InvoiceKindProgress InvoiceKind = "progress"
)

// InvoiceStatus is the payment state of an invoice. Voided invoices stay on
// record but are excluded from ledger aggregation.

type InvoiceStatus string

const (
	InvoiceStatusUnpaid InvoiceStatus = "unpaid"
	InvoiceStatusPaid   InvoiceStatus = "paid"
	InvoiceStatusVoid   InvoiceStatus = "void"
)

// ProgressBasis is how a partial invoice amount was requested.

type ProgressBasis string

const (
	ProgressBasisPercent ProgressBasis = "percent"
	ProgressBasisFixed   ProgressBasis = "fixed_amount"
)

// InvoiceLineItem is an invoice-side line with its tax breakdown.
// LineTotal = Quantity*UnitPrice + TaxAmount, rounded per line.
type InvoiceLineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TaxRate     float64 `json:"tax_rate"`
	TaxAmount   float64 `json:"tax_amount"`
	LineTotal   float64 `json:"line_total"`
	SortOrder   int     `json:"sort_order"`
}

// Invoice is a billing record tied to exactly one job.
//
// Storage model (DynamoDB):
//   - PK: id
//   - GSI1 (job_id-index): job_id
//
// Monetary fields are rounded to cents; the engine rounds at every
// multiplication boundary so stored figures equal displayed per-line sums.
type Invoice struct {
	ID              string        `json:"id"`
	Number          string        `json:"number"`
	JobID           string        `json:"job_id"`
	Kind            InvoiceKind   `json:"kind"`
	ParentInvoiceID *string       `json:"parent_invoice_id,omitempty"`
	Status          InvoiceStatus `json:"status"`

	Subtotal       float64 `json:"subtotal"`
	TaxAmount      float64 `json:"tax_amount"`
	TotalAmount    float64 `json:"total_amount"`
	DepositApplied float64 `json:"deposit_applied"`

	// Progress-invoice bookkeeping (kind == progress only).
	ProgressBasis   ProgressBasis `json:"progress_basis,omitempty"`
	ProgressPercent float64       `json:"progress_percent,omitempty"`
	ProgressAmount  float64       `json:"progress_amount,omitempty"`
	ComputedBalance float64       `json:"computed_balance,omitempty"`

	Lines []InvoiceLineItem `json:"lines,omitempty"`

	PaymentTerms string     `json:"payment_terms,omitempty"`
	IssuedAt     time.Time  `json:"issued_at"`
	DueDate      string     `json:"due_date,omitempty"`
	PaidAt       *time.Time `json:"paid_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
