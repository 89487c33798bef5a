package interfaces

import (
	"context"
	"time"

	"fieldserve/internal/domain/entities"
)

// IInvoiceRepository abstracts DynamoDB persistence for Invoice.

type IInvoiceRepository interface {
	Create(ctx context.Context, inv entities.Invoice) (entities.Invoice, error)
	GetByID(ctx context.Context, id string) (entities.Invoice, error)
	ListByJobID(ctx context.Context, jobID string) ([]entities.Invoice, error)
	UpdateStatus(ctx context.Context, id string, status entities.InvoiceStatus, paidAt *time.Time) (entities.Invoice, error)
}
