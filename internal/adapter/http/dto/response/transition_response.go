package response

import "fieldserve/internal/usecase"

type PendingCaptureResponse struct {
	JobID       string `json:"job_id"`
	CaptureKind string `json:"capture_kind"`
}

// TransitionResponse reports a lifecycle request or commit. Either
// `pending_capture` is set (phase one answered "collect this first",
// nothing persisted) or `job` reflects the committed transition.
// `warning` flags partial success after a committed status write.
type TransitionResponse struct {
	Job            *JobResponse            `json:"job,omitempty"`
	PendingCapture *PendingCaptureResponse `json:"pending_capture,omitempty"`
	Invoice        *InvoiceResponse        `json:"invoice,omitempty"`
	Warning        string                  `json:"warning,omitempty"`
}

func FromTransitionOutcome(out usecase.TransitionOutcome) TransitionResponse {
	resp := TransitionResponse{Warning: out.Warning}
	if out.Pending != nil {
		resp.PendingCapture = &PendingCaptureResponse{
			JobID:       out.Pending.JobID,
			CaptureKind: string(out.Pending.Kind),
		}
		return resp
	}
	job := FromJob(out.Job)
	resp.Job = &job
	if out.Invoice != nil {
		inv := FromInvoice(*out.Invoice)
		resp.Invoice = &inv
	}
	return resp
}
