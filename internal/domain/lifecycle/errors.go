package lifecycle

import (
	"fmt"
	"strings"

	"fieldserve/internal/domain/entities"
)

// InvalidTransitionError is returned when the guard classifies a requested
// transition as disallowed. Nothing is persisted.
type InvalidTransitionError struct {
	From entities.JobStatus
	To   entities.JobStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition from %q to %q", e.From, e.To)
}

// CaptureValidationError is returned when a commit is attempted without the
// capture fields its kind requires. MissingFields also names fields whose
// value fails the kind's rule (too short, out of range, unconfirmed).
type CaptureValidationError struct {
	Kind          CaptureKind
	MissingFields []string
}

func (e *CaptureValidationError) Error() string {
	return fmt.Sprintf("capture %q validation failed: missing %s", e.Kind, strings.Join(e.MissingFields, ", "))
}

// StaleStateError is returned when the job's persisted status no longer
// matches the status observed at classify time. The caller must re-read
// and re-classify; the conflicting write is never applied.
type StaleStateError struct {
	Expected entities.JobStatus
	Actual   entities.JobStatus
}

func (e *StaleStateError) Error() string {
	return fmt.Sprintf("stale job state: expected status %q, found %q", e.Expected, e.Actual)
}
