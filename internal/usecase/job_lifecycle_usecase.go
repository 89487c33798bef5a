package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"fieldserve/internal/domain/billing"
	"fieldserve/internal/domain/entities"
	"fieldserve/internal/domain/lifecycle"
	"fieldserve/internal/usecase/interfaces"

	"github.com/google/uuid"
)

var (
	ErrJobNotFound         = errors.New("job not found")
	ErrInvalidJobID        = errors.New("invalid job id")
	ErrJobBusy             = errors.New("another operation is in flight for this job")
	ErrCaptureKindMismatch = errors.New("capture kind does not match the requested transition")
)

// PendingCapture tells the caller which dialog must collect data before the
// transition can commit.
type PendingCapture struct {
	JobID string
	Kind  lifecycle.CaptureKind
}

// TransitionOutcome is the result of a transition request or commit.
// Exactly one of Pending or a committed Job is meaningful; Invoice is set
// when invoice terms asked for immediate invoice creation; Warning is set
// when the status write committed but a dependent invoice write did not
// (partial success, never silent).
type TransitionOutcome struct {
	Job     entities.Job
	Pending *PendingCapture
	Invoice *entities.Invoice
	Warning string
}

// IJobLifecycleUseCase is the job lifecycle controller: the two-phase
// transition protocol over the status guard.
//
// RequestTransition classifies the request and either commits a direct
// transition or returns a PendingCapture without persisting anything.
// CommitTransition validates the captured data, applies side effects and
// performs exactly one conditional status write. Abandoning a pending
// capture requires no compensation because nothing was written.

type IJobLifecycleUseCase interface {
	RequestTransition(ctx context.Context, jobID string, requested entities.JobStatus) (TransitionOutcome, error)
	CommitTransition(ctx context.Context, jobID string, requested entities.JobStatus, kind lifecycle.CaptureKind, data lifecycle.Data) (TransitionOutcome, error)
}

type JobLifecycleUseCase struct {
	jobRepo     interfaces.IJobRepository
	invoiceRepo interfaces.IInvoiceRepository
	inflight    *InflightGuard
	now         func() time.Time
}

var _ IJobLifecycleUseCase = (*JobLifecycleUseCase)(nil)

func NewJobLifecycleUseCase(jobRepo interfaces.IJobRepository, invoiceRepo interfaces.IInvoiceRepository, inflight *InflightGuard) *JobLifecycleUseCase {
	return &JobLifecycleUseCase{
		jobRepo:     jobRepo,
		invoiceRepo: invoiceRepo,
		inflight:    inflight,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (u *JobLifecycleUseCase) RequestTransition(ctx context.Context, jobID string, requested entities.JobStatus) (TransitionOutcome, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return TransitionOutcome{}, ErrInvalidJobID
	}

	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return TransitionOutcome{}, err
	}
	if job.ID == "" {
		return TransitionOutcome{}, ErrJobNotFound
	}

	cls := lifecycle.Classify(job.Status, requested)
	switch cls.Decision {
	case lifecycle.Disallowed:
		log.Printf("[lifecycle][usecase] transition rejected job_id=%s from=%s to=%s", jobID, job.Status, requested)
		return TransitionOutcome{}, &lifecycle.InvalidTransitionError{From: job.Status, To: requested}

	case lifecycle.RequiresCapture:
		log.Printf("[lifecycle][usecase] capture required job_id=%s from=%s to=%s kind=%s", jobID, job.Status, requested, cls.Capture)
		return TransitionOutcome{Pending: &PendingCapture{JobID: jobID, Kind: cls.Capture}}, nil
	}

	// AllowedDirect. A same-status request is a no-op without a write.
	if requested == job.Status {
		return TransitionOutcome{Job: job}, nil
	}
	updated, err := u.jobRepo.UpdateStatus(ctx, jobID, requested, nil, job.Status)
	if err != nil {
		return TransitionOutcome{}, err
	}
	if updated.ID == "" {
		return TransitionOutcome{}, u.conflictOrNotFound(ctx, jobID, job.Status)
	}
	log.Printf("[lifecycle][usecase] transition committed job_id=%s from=%s to=%s", jobID, job.Status, requested)
	return TransitionOutcome{Job: updated}, nil
}

func (u *JobLifecycleUseCase) CommitTransition(ctx context.Context, jobID string, requested entities.JobStatus, kind lifecycle.CaptureKind, data lifecycle.Data) (TransitionOutcome, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return TransitionOutcome{}, ErrInvalidJobID
	}
	if !u.inflight.Acquire(jobID) {
		log.Printf("[lifecycle][usecase] commit rejected (busy) job_id=%s", jobID)
		return TransitionOutcome{}, ErrJobBusy
	}
	defer u.inflight.Release(jobID)

	job, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return TransitionOutcome{}, err
	}
	if job.ID == "" {
		return TransitionOutcome{}, ErrJobNotFound
	}

	cls := lifecycle.Classify(job.Status, requested)
	if cls.Decision == lifecycle.Disallowed {
		return TransitionOutcome{}, &lifecycle.InvalidTransitionError{From: job.Status, To: requested}
	}
	if cls.Decision != lifecycle.RequiresCapture || cls.Capture != kind {
		return TransitionOutcome{}, ErrCaptureKindMismatch
	}

	if err := lifecycle.Validate(kind, data); err != nil {
		log.Printf("[lifecycle][usecase] capture validation failed job_id=%s kind=%s err=%v", jobID, kind, err)
		return TransitionOutcome{}, err
	}

	fields := u.captureFields(kind, requested, data)
	updated, err := u.jobRepo.UpdateStatus(ctx, jobID, requested, fields, job.Status)
	if err != nil {
		return TransitionOutcome{}, err
	}
	if updated.ID == "" {
		return TransitionOutcome{}, u.conflictOrNotFound(ctx, jobID, job.Status)
	}
	log.Printf("[lifecycle][usecase] commit success job_id=%s from=%s to=%s kind=%s", jobID, job.Status, requested, kind)

	outcome := TransitionOutcome{Job: updated}
	if kind == lifecycle.CaptureInvoiceTerms && data.Bool("create_invoice_now") {
		u.createInvoiceForJob(ctx, updated, data, &outcome)
	}
	return outcome, nil
}

// createInvoiceForJob runs after a committed invoiced transition. The
// status write already succeeded, so failures here downgrade to a warning
// on the outcome instead of an error; reporting full success would hide a
// missing invoice.
func (u *JobLifecycleUseCase) createInvoiceForJob(ctx context.Context, job entities.Job, data lifecycle.Data, outcome *TransitionOutcome) {
	lines, err := billing.ComputeInvoiceLines(job)
	if err != nil {
		log.Printf("[lifecycle][usecase] invoice computation failed job_id=%s err=%v", job.ID, err)
		outcome.Warning = "job invoiced but invoice creation failed"
		return
	}
	totals := billing.ComputeTotals(lines)

	now := u.now()
	inv := entities.Invoice{
		ID:           uuid.NewString(),
		Number:       billing.GenerateInvoiceNumber(now),
		JobID:        job.ID,
		Kind:         entities.InvoiceKindFull,
		Status:       entities.InvoiceStatusUnpaid,
		Subtotal:     totals.Subtotal,
		TaxAmount:    totals.TaxAmount,
		TotalAmount:  totals.TotalAmount,
		Lines:        lines,
		PaymentTerms: data.String("payment_terms"),
		IssuedAt:     now,
		DueDate:      data.String("due_date"),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := u.invoiceRepo.Create(ctx, inv)
	if err != nil {
		log.Printf("[lifecycle][usecase] invoice create failed job_id=%s err=%v", job.ID, err)
		outcome.Warning = "job invoiced but invoice creation failed"
		return
	}
	outcome.Invoice = &created

	// Linking the invoice sets no status field, so it deliberately bypasses
	// the guard; it is not a second transition.
	patched, err := u.jobRepo.Patch(ctx, job.ID, map[string]any{"invoice_id": created.ID})
	if err != nil || patched.ID == "" {
		log.Printf("[lifecycle][usecase] invoice link write failed job_id=%s invoice_id=%s err=%v", job.ID, created.ID, err)
		outcome.Warning = "invoice created but job link write failed"
		return
	}
	outcome.Job = patched
}

// conflictOrNotFound distinguishes a vanished job from a concurrent status
// change after a conditional write came back empty.
func (u *JobLifecycleUseCase) conflictOrNotFound(ctx context.Context, jobID string, expected entities.JobStatus) error {
	fresh, err := u.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if fresh.ID == "" {
		return ErrJobNotFound
	}
	return &lifecycle.StaleStateError{Expected: expected, Actual: fresh.Status}
}

// captureFields maps validated capture data to the persisted side effects:
// supplemental fields, the kind-specific timestamp, and schedule clearing
// for interruption states.
func (u *JobLifecycleUseCase) captureFields(kind lifecycle.CaptureKind, requested entities.JobStatus, data lifecycle.Data) map[string]any {
	now := u.now()
	fields := map[string]any{}

	if lifecycle.ClearsSchedule(requested) {
		fields["scheduled_start"] = nil
		fields["scheduled_end"] = nil
	}

	switch kind {
	case lifecycle.CaptureCancellation:
		fields["cancellation_reason"] = data.String("reason")
		fields["cancellation_initiated_by"] = data.String("initiated_by")
		if notes := data.String("notes"); notes != "" {
			fields["cancellation_notes"] = notes
		}
		fields["cancelled_at"] = now

	case lifecycle.CaptureOnHold:
		fields["on_hold_reason"] = data.String("reason")
		if notes := data.String("notes"); notes != "" {
			fields["on_hold_notes"] = notes
		}
		if resume := data.String("estimated_resume_date"); resume != "" {
			fields["estimated_resume_date"] = resume
		}
		fields["on_hold_at"] = now

	case lifecycle.CaptureRescheduling:
		fields["rescheduling_reason"] = data.String("reason")
		if notes := data.String("notes"); notes != "" {
			fields["rescheduling_notes"] = notes
		}
		fields["rescheduling_requested_at"] = now

	case lifecycle.CaptureSchedulingSlot:
		fields["scheduled_start"] = *data.Time("scheduled_start")
		fields["scheduled_end"] = *data.Time("scheduled_end")
		if worker := data.String("assigned_worker_id"); worker != "" {
			fields["assigned_worker_id"] = worker
		}

	case lifecycle.CaptureJobStart:
		fields["started_at"] = combineDateTime(data.String("actual_start_date"), data.String("actual_start_time"), now)

	case lifecycle.CaptureJobResume:
		fields["resolution_notes"] = data.String("resolution_notes")

	case lifecycle.CaptureJobCompletion:
		fields["work_performed"] = data.String("work_performed")
		if materials := data.String("materials_used"); materials != "" {
			fields["materials_used"] = materials
		}
		fields["completed_at"] = combineDateTime(data.String("completion_date"), data.String("completion_time"), now)

	case lifecycle.CaptureInvoiceTerms:
		fields["invoice_date"] = data.String("invoice_date")
		fields["due_date"] = data.String("due_date")
		fields["payment_terms"] = data.String("payment_terms")
	}

	return fields
}

// combineDateTime joins a form date (2006-01-02) and time (15:04) into a
// UTC instant, falling back to the commit time when the pair does not
// parse. Presence was already validated; format slips only shift the stamp.
func combineDateTime(date, clock string, fallback time.Time) time.Time {
	t, err := time.Parse("2006-01-02 15:04", date+" "+clock)
	if err != nil {
		return fallback
	}
	return t.UTC()
}
