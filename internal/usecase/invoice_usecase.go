package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"fieldserve/internal/domain/billing"
	"fieldserve/internal/domain/entities"
	"fieldserve/internal/usecase/interfaces"

	"github.com/google/uuid"
)

var (
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrInvalidInvoiceID     = errors.New("invalid invoice id")
	ErrInvalidDepositAmount = errors.New("invalid deposit amount")
	ErrInvoiceVoided        = errors.New("invoice already voided")
	ErrInvoicePaid          = errors.New("paid invoice cannot be voided")
	ErrNothingToInvoice     = errors.New("no remaining balance to invoice")
)

// IInvoiceUseCase exposes the invoice ledger operations: deposit recording,
// progress (partial) invoicing with deposit offset, lookup and voiding.

type IInvoiceUseCase interface {
	CreateDeposit(ctx context.Context, jobID string, amount float64) (entities.Invoice, error)
	CreatePartial(ctx context.Context, jobID string, basis billing.PartialBasis) (entities.Invoice, error)
	GetByID(ctx context.Context, id string) (entities.Invoice, error)
	ListByJobID(ctx context.Context, jobID string) ([]entities.Invoice, error)
	Void(ctx context.Context, id string) (entities.Invoice, error)
}

type InvoiceUseCase struct {
	repo     interfaces.IInvoiceRepository
	jobRepo  interfaces.IJobRepository
	inflight *InflightGuard
	now      func() time.Time
}

var _ IInvoiceUseCase = (*InvoiceUseCase)(nil)

func NewInvoiceUseCase(repo interfaces.IInvoiceRepository, jobRepo interfaces.IJobRepository, inflight *InflightGuard) *InvoiceUseCase {
	return &InvoiceUseCase{
		repo:     repo,
		jobRepo:  jobRepo,
		inflight: inflight,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateDeposit records an up-front payment as an invoice of kind deposit.
// A recorded deposit is money already received, so the row is born paid;
// the ledger offsets it against the job's first partial invoice.
func (u *InvoiceUseCase) CreateDeposit(ctx context.Context, jobID string, amount float64) (entities.Invoice, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return entities.Invoice{}, ErrInvalidJobID
	}
	if amount <= 0 {
		return entities.Invoice{}, ErrInvalidDepositAmount
	}

	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return entities.Invoice{}, err
	}
	if job.ID == "" {
		return entities.Invoice{}, ErrJobNotFound
	}

	// A deposit bills nothing (total stays zero); the amount lives in
	// deposit_applied so it never inflates the job's invoiced-to-date sum.
	amount = billing.Round2(amount)
	now := u.now()
	paidAt := now
	inv := entities.Invoice{
		ID:             uuid.NewString(),
		Number:         billing.GenerateInvoiceNumber(now),
		JobID:          jobID,
		Kind:           entities.InvoiceKindDeposit,
		Status:         entities.InvoiceStatusPaid,
		DepositApplied: amount,
		IssuedAt:       now,
		PaidAt:         &paidAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	created, err := u.repo.Create(ctx, inv)
	if err != nil {
		return entities.Invoice{}, err
	}
	log.Printf("[invoice][usecase] deposit recorded job_id=%s invoice_id=%s amount=%.2f", jobID, created.ID, amount)
	return created, nil
}

// CreatePartial issues the next progress invoice against a job: the job's
// full value comes from the billing engine, the amount already invoiced
// and the recorded deposit from the ledger, and the requested basis sizes
// the invoice with the deposit offset applied at most once.
func (u *InvoiceUseCase) CreatePartial(ctx context.Context, jobID string, basis billing.PartialBasis) (entities.Invoice, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return entities.Invoice{}, ErrInvalidJobID
	}
	if !u.inflight.Acquire(jobID) {
		log.Printf("[invoice][usecase] partial rejected (busy) job_id=%s", jobID)
		return entities.Invoice{}, ErrJobBusy
	}
	defer u.inflight.Release(jobID)

	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return entities.Invoice{}, err
	}
	if job.ID == "" {
		return entities.Invoice{}, ErrJobNotFound
	}

	lines, err := billing.ComputeInvoiceLines(job)
	if err != nil {
		return entities.Invoice{}, err
	}
	total := billing.ComputeTotals(lines).TotalAmount

	existing, err := u.repo.ListByJobID(ctx, jobID)
	if err != nil {
		return entities.Invoice{}, err
	}
	ledger := billing.BuildLedger(existing)

	res, err := billing.ComputePartial(total, ledger.AlreadyInvoiced, ledger.DepositRecorded, basis)
	if err != nil {
		return entities.Invoice{}, err
	}
	if res.RawAmount <= 0 {
		return entities.Invoice{}, ErrNothingToInvoice
	}

	// The invoice totals the raw slice of the remaining balance; the deposit
	// offset is carried in deposit_applied, so amount payable is
	// total_amount - deposit_applied. Summing total_amount across invoices
	// therefore reflects how much of the job has been consumed.
	now := u.now()
	inv := entities.Invoice{
		ID:              uuid.NewString(),
		Number:          billing.GenerateInvoiceNumber(now),
		JobID:           jobID,
		Kind:            entities.InvoiceKindProgress,
		Status:          entities.InvoiceStatusUnpaid,
		Subtotal:        res.RawAmount,
		TotalAmount:     res.RawAmount,
		DepositApplied:  res.AppliedDeposit,
		ProgressBasis:   basis.Kind,
		ProgressAmount:  res.RawAmount,
		ComputedBalance: res.RemainingAfter,
		Lines: []entities.InvoiceLineItem{{
			Description: "Partial/progress amount",
			Quantity:    1,
			UnitPrice:   res.RawAmount,
			LineTotal:   res.RawAmount,
		}},
		IssuedAt:  now,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if basis.Kind == entities.ProgressBasisPercent {
		inv.ProgressPercent = basis.Percent
	}
	if parent := billing.FirstInvoiceID(existing); parent != "" {
		inv.ParentInvoiceID = &parent
	}

	created, err := u.repo.Create(ctx, inv)
	if err != nil {
		return entities.Invoice{}, err
	}
	log.Printf("[invoice][usecase] partial created job_id=%s invoice_id=%s amount=%.2f deposit=%.2f balance=%.2f",
		jobID, created.ID, res.InvoiceAmount, res.AppliedDeposit, res.RemainingAfter)
	return created, nil
}

func (u *InvoiceUseCase) GetByID(ctx context.Context, id string) (entities.Invoice, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return entities.Invoice{}, ErrInvalidInvoiceID
	}

	inv, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return entities.Invoice{}, err
	}
	if inv.ID == "" {
		return entities.Invoice{}, ErrInvoiceNotFound
	}
	return inv, nil
}

func (u *InvoiceUseCase) ListByJobID(ctx context.Context, jobID string) ([]entities.Invoice, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return nil, ErrInvalidJobID
	}
	return u.repo.ListByJobID(ctx, jobID)
}

// Void marks an unpaid invoice void, excluding it from ledger aggregation.
// Paid invoices are immutable: voiding one would drop it from the ledger
// and free balance (and the deposit offset) that was already collected.
func (u *InvoiceUseCase) Void(ctx context.Context, id string) (entities.Invoice, error) {
	inv, err := u.GetByID(ctx, id)
	if err != nil {
		return entities.Invoice{}, err
	}
	if inv.Status == entities.InvoiceStatusVoid {
		return entities.Invoice{}, ErrInvoiceVoided
	}
	if inv.Status == entities.InvoiceStatusPaid {
		return entities.Invoice{}, ErrInvoicePaid
	}

	updated, err := u.repo.UpdateStatus(ctx, inv.ID, entities.InvoiceStatusVoid, nil)
	if err != nil {
		return entities.Invoice{}, err
	}
	if updated.ID == "" {
		return entities.Invoice{}, ErrInvoiceNotFound
	}
	log.Printf("[invoice][usecase] voided invoice_id=%s", id)
	return updated, nil
}
