package entities

import "time"

// JobStatus is the unified work-order pipeline: quote stage (draft/approved),
// job stage (scheduled through completed) and invoice stage (invoiced, paid,
// closed), plus cancelled.
//
// Status transitions are driven exclusively by the lifecycle guard; nothing
// else writes the status field.

type JobStatus string

const (
	JobStatusDraft             JobStatus = "draft"
	JobStatusApproved          JobStatus = "approved"
	JobStatusScheduled         JobStatus = "scheduled"
	JobStatusInProgress        JobStatus = "in_progress"
	JobStatusOnHold            JobStatus = "on_hold"
	JobStatusNeedsRescheduling JobStatus = "needs_rescheduling"
	JobStatusCompleted         JobStatus = "completed"
	JobStatusInvoiced          JobStatus = "invoiced"
	JobStatusPaid              JobStatus = "paid"
	JobStatusClosed            JobStatus = "closed"
	JobStatusCancelled         JobStatus = "cancelled"
)

// AllJobStatuses lists every lifecycle state, in pipeline order.
var AllJobStatuses = []JobStatus{
	JobStatusDraft,
	JobStatusApproved,
	JobStatusScheduled,
	JobStatusInProgress,
	JobStatusOnHold,
	JobStatusNeedsRescheduling,
	JobStatusCompleted,
	JobStatusInvoiced,
	JobStatusPaid,
	JobStatusClosed,
	JobStatusCancelled,
}

// PricingModel selects how a job's monetary value is derived.

type PricingModel string

const (
	PricingTimeAndMaterials PricingModel = "time_materials"
	PricingFlatRate         PricingModel = "flat_rate"
	PricingUnitPrice        PricingModel = "unit_price"
	PricingPercentage       PricingModel = "percentage"
	PricingRecurring        PricingModel = "recurring"
	PricingMilestone        PricingModel = "milestone"
)

// LineItemType distinguishes labor from material on job-side line items.

type LineItemType string

const (
	LineItemLabor    LineItemType = "labor"
	LineItemMaterial LineItemType = "material"
)

// JobLineItem is a job-side line item. Invoice-side line items (with tax
// breakdown) are derived from these by the billing engine.
type JobLineItem struct {
	Description string       `json:"description"`
	Quantity    float64      `json:"quantity"`
	UnitRate    float64      `json:"unit_rate"`
	ItemType    LineItemType `json:"item_type"`
}

// Job is the unit of billable field work (work order).
//
// Storage model (DynamoDB):
//   - PK: id
//
// Scheduling fields are nil while the job is unscheduled, and are cleared
// again whenever the job moves into cancelled, on_hold or
// needs_rescheduling (the technician's slot must be freed).
type Job struct {
	ID               string     `json:"id"`
	CustomerID       string     `json:"customer_id"`
	AssignedWorkerID *string    `json:"assigned_worker_id,omitempty"`
	Status           JobStatus  `json:"status"`
	Title            string     `json:"title"`
	ScheduledStart   *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd     *time.Time `json:"scheduled_end,omitempty"`

	PricingModel         PricingModel  `json:"pricing_model"`
	FlatRateAmount       float64       `json:"flat_rate_amount,omitempty"`
	UnitCount            float64       `json:"unit_count,omitempty"`
	UnitPrice            float64       `json:"unit_price,omitempty"`
	Percentage           float64       `json:"percentage,omitempty"`
	PercentageBaseAmount float64       `json:"percentage_base_amount,omitempty"`
	RecurringInterval    string        `json:"recurring_interval,omitempty"`
	RecurringRate        float64       `json:"recurring_rate,omitempty"`
	MilestoneBaseAmount  float64       `json:"milestone_base_amount,omitempty"`
	TaxRate              float64       `json:"tax_rate"`
	LineItems            []JobLineItem `json:"line_items,omitempty"`

	// Supplemental data captured by lifecycle transitions.
	CancellationReason      string     `json:"cancellation_reason,omitempty"`
	CancellationInitiatedBy string     `json:"cancellation_initiated_by,omitempty"`
	CancellationNotes       string     `json:"cancellation_notes,omitempty"`
	CancelledAt             *time.Time `json:"cancelled_at,omitempty"`
	OnHoldReason            string     `json:"on_hold_reason,omitempty"`
	OnHoldNotes             string     `json:"on_hold_notes,omitempty"`
	EstimatedResumeDate     string     `json:"estimated_resume_date,omitempty"`
	OnHoldAt                *time.Time `json:"on_hold_at,omitempty"`
	ReschedulingReason      string     `json:"rescheduling_reason,omitempty"`
	ReschedulingNotes       string     `json:"rescheduling_notes,omitempty"`
	ReschedulingRequestedAt *time.Time `json:"rescheduling_requested_at,omitempty"`
	WorkPerformed           string     `json:"work_performed,omitempty"`
	MaterialsUsed           string     `json:"materials_used,omitempty"`
	CompletedAt             *time.Time `json:"completed_at,omitempty"`
	StartedAt               *time.Time `json:"started_at,omitempty"`
	ResolutionNotes         string     `json:"resolution_notes,omitempty"`

	// Invoicing terms captured on completed -> invoiced.
	InvoiceDate  string  `json:"invoice_date,omitempty"`
	DueDate      string  `json:"due_date,omitempty"`
	PaymentTerms string  `json:"payment_terms,omitempty"`
	InvoiceID    *string `json:"invoice_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
