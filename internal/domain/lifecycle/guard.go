// Package lifecycle defines the job status state machine: which transitions
// are legal, which of them must capture supplemental data before they may
// commit, and the validation contracts for that captured data.
//
// Pipeline (forward edges):
//
//	draft ──► approved ──► scheduled ──► in_progress ──► completed ──► invoiced ──► paid ──► closed
//	                           │ ▲            │ ▲
//	                           ▼ │            ▼ │
//	                     on_hold / needs_rescheduling
//
// cancelled, on_hold and needs_rescheduling are reachable from any other
// state, always through a capture step.
package lifecycle

import (
	"fmt"

	"fieldserve/internal/domain/entities"
)

// Decision classifies a requested transition.
type Decision int

const (
	// Disallowed transitions must never persist.
	Disallowed Decision = iota
	// AllowedDirect transitions commit without supplemental data.
	AllowedDirect
	// RequiresCapture transitions must capture supplemental data first.
	RequiresCapture
)

func (d Decision) String() string {
	switch d {
	case Disallowed:
		return "disallowed"
	case AllowedDirect:
		return "allowed_direct"
	case RequiresCapture:
		return "requires_capture"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// Classification is the guard's verdict for one (current, requested) pair.
// Capture is set only when Decision == RequiresCapture.
type Classification struct {
	Decision Decision
	Capture  CaptureKind
}

// ParseStatus converts a raw string to a JobStatus, returning an error for
// unknown values.
func ParseStatus(s string) (entities.JobStatus, error) {
	st := entities.JobStatus(s)
	for _, known := range entities.AllJobStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown job status %q", s)
}

// Classify is the transition guard. It is pure, deterministic and total:
// every (current, requested) pair maps to exactly one classification.
// Rules are ordered most-specific-first; interruption states (cancelled,
// needs_rescheduling, on_hold) win over everything but a no-op.
func Classify(current, requested entities.JobStatus) Classification {
	if requested == current {
		return Classification{Decision: AllowedDirect}
	}

	switch requested {
	case entities.JobStatusCancelled:
		return Classification{Decision: RequiresCapture, Capture: CaptureCancellation}
	case entities.JobStatusNeedsRescheduling:
		return Classification{Decision: RequiresCapture, Capture: CaptureRescheduling}
	case entities.JobStatusOnHold:
		return Classification{Decision: RequiresCapture, Capture: CaptureOnHold}
	case entities.JobStatusScheduled:
		if current == entities.JobStatusOnHold {
			return Classification{Decision: RequiresCapture, Capture: CaptureJobResume}
		}
		return Classification{Decision: RequiresCapture, Capture: CaptureSchedulingSlot}
	case entities.JobStatusInProgress:
		switch current {
		case entities.JobStatusScheduled:
			return Classification{Decision: RequiresCapture, Capture: CaptureJobStart}
		case entities.JobStatusOnHold:
			return Classification{Decision: RequiresCapture, Capture: CaptureJobResume}
		}
		return Classification{Decision: Disallowed}
	case entities.JobStatusCompleted:
		if current == entities.JobStatusInProgress {
			return Classification{Decision: RequiresCapture, Capture: CaptureJobCompletion}
		}
		return Classification{Decision: Disallowed}
	case entities.JobStatusInvoiced:
		if current == entities.JobStatusCompleted {
			return Classification{Decision: RequiresCapture, Capture: CaptureInvoiceTerms}
		}
		return Classification{Decision: Disallowed}
	case entities.JobStatusApproved:
		if current == entities.JobStatusDraft {
			return Classification{Decision: AllowedDirect}
		}
		return Classification{Decision: Disallowed}
	case entities.JobStatusPaid:
		if current == entities.JobStatusInvoiced {
			return Classification{Decision: AllowedDirect}
		}
		return Classification{Decision: Disallowed}
	case entities.JobStatusClosed:
		if current == entities.JobStatusPaid {
			return Classification{Decision: AllowedDirect}
		}
		return Classification{Decision: Disallowed}
	}

	// Reverting to draft, and anything outside the enumerated set.
	return Classification{Decision: Disallowed}
}

// ClearsSchedule reports whether entering status frees the technician's
// slot (scheduled_start/scheduled_end must be nulled on commit).
func ClearsSchedule(status entities.JobStatus) bool {
	switch status {
	case entities.JobStatusCancelled, entities.JobStatusOnHold, entities.JobStatusNeedsRescheduling:
		return true
	}
	return false
}
