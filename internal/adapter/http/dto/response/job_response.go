package response

import (
	"time"

	"fieldserve/internal/domain/entities"
)

type JobResponse struct {
	JobID            string     `json:"job_id"`
	ID               string     `json:"id"`
	CustomerID       string     `json:"customer_id"`
	AssignedWorkerID *string    `json:"assigned_worker_id,omitempty"`
	Status           string     `json:"status"`
	Title            string     `json:"title,omitempty"`
	PricingModel     string     `json:"pricing_model"`
	ScheduledStart   *time.Time `json:"scheduled_start,omitempty"`
	ScheduledEnd     *time.Time `json:"scheduled_end,omitempty"`
	InvoiceID        *string    `json:"invoice_id,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func FromJob(j entities.Job) JobResponse {
	return JobResponse{
		JobID:            j.ID,
		ID:               j.ID,
		CustomerID:       j.CustomerID,
		AssignedWorkerID: j.AssignedWorkerID,
		Status:           string(j.Status),
		Title:            j.Title,
		PricingModel:     string(j.PricingModel),
		ScheduledStart:   j.ScheduledStart,
		ScheduledEnd:     j.ScheduledEnd,
		InvoiceID:        j.InvoiceID,
		CreatedAt:        j.CreatedAt,
		UpdatedAt:        j.UpdatedAt,
	}
}
