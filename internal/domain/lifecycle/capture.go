package lifecycle

import (
	"strings"
	"time"
)

// CaptureKind names the supplemental-data dialog a transition must go
// through before it commits.

type CaptureKind string

const (
	CaptureCancellation   CaptureKind = "cancellation"
	CaptureOnHold         CaptureKind = "on_hold"
	CaptureRescheduling   CaptureKind = "rescheduling"
	CaptureSchedulingSlot CaptureKind = "scheduling_slot"
	CaptureJobStart       CaptureKind = "job_start"
	CaptureJobResume      CaptureKind = "job_resume"
	CaptureJobCompletion  CaptureKind = "job_completion"
	CaptureInvoiceTerms   CaptureKind = "invoice_terms"
)

// Data is the free-form payload collected by a capture dialog. Keys follow
// the form field names; values arrive as decoded JSON.
type Data map[string]any

// String returns the trimmed string value under key, or "".
func (d Data) String(key string) string {
	v, ok := d[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}

// Bool returns the boolean value under key, or false.
func (d Data) Bool(key string) bool {
	v, ok := d[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// Time parses the value under key as RFC 3339, returning nil when absent
// or malformed.
func (d Data) Time(key string) *time.Time {
	s := d.String(key)
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	return &t
}

const dateLayout = "2006-01-02"

// Validate checks the captured data against the kind's required-field
// contract. It returns a *CaptureValidationError naming every missing or
// invalid field, or nil when the data may commit.
func Validate(kind CaptureKind, data Data) error {
	var missing []string

	requireString := func(field string) string {
		v := data.String(field)
		if v == "" {
			missing = append(missing, field)
		}
		return v
	}
	requireNotesIfOther := func(reason string) {
		if reason == "other" && data.String("notes") == "" {
			missing = append(missing, "notes")
		}
	}

	switch kind {
	case CaptureCancellation:
		reason := requireString("reason")
		requireString("initiated_by")
		requireNotesIfOther(reason)

	case CaptureOnHold, CaptureRescheduling:
		reason := requireString("reason")
		requireNotesIfOther(reason)

	case CaptureSchedulingSlot:
		start := requireString("scheduled_start")
		end := requireString("scheduled_end")
		if start != "" && end != "" {
			st, errS := time.Parse(time.RFC3339, start)
			en, errE := time.Parse(time.RFC3339, end)
			if errS != nil {
				missing = append(missing, "scheduled_start")
			}
			if errE != nil {
				missing = append(missing, "scheduled_end")
			} else if errS == nil && en.Before(st) {
				missing = append(missing, "scheduled_end")
			}
		}

	case CaptureJobStart:
		requireString("actual_start_date")
		requireString("actual_start_time")

	case CaptureJobResume:
		if !data.Bool("issue_resolved_confirmation") {
			missing = append(missing, "issue_resolved_confirmation")
		}
		requireString("resolution_notes")

	case CaptureJobCompletion:
		work := requireString("work_performed")
		if work != "" && len(work) < 10 {
			missing = append(missing, "work_performed")
		}
		requireString("completion_date")
		requireString("completion_time")

	case CaptureInvoiceTerms:
		invoiceDate := requireString("invoice_date")
		dueDate := requireString("due_date")
		requireString("payment_terms")
		if invoiceDate != "" && dueDate != "" {
			inv, errI := time.Parse(dateLayout, invoiceDate)
			due, errD := time.Parse(dateLayout, dueDate)
			if errI != nil {
				missing = append(missing, "invoice_date")
			}
			if errD != nil {
				missing = append(missing, "due_date")
			} else if errI == nil && due.Before(inv) {
				missing = append(missing, "due_date")
			}
		}
	}

	if len(missing) > 0 {
		return &CaptureValidationError{Kind: kind, MissingFields: missing}
	}
	return nil
}
