package request

// TransitionRequest asks the lifecycle controller for a status change.
// When the guard answers "capture required" the caller gets the capture
// kind back and nothing is persisted.
type TransitionRequest struct {
	RequestedStatus string `json:"requested_status" binding:"required"`
}

// TransitionCommitRequest completes a pending capture: the same requested
// status plus the capture kind announced by the request phase and the
// collected dialog fields.
type TransitionCommitRequest struct {
	RequestedStatus string         `json:"requested_status" binding:"required"`
	CaptureKind     string         `json:"capture_kind" binding:"required"`
	Capture         map[string]any `json:"capture"`
}
