package handlers

import (
	"errors"
	request "fieldserve/internal/adapter/http/dto/request"
	response "fieldserve/internal/adapter/http/dto/response"
	"fieldserve/internal/domain/lifecycle"
	"fieldserve/internal/usecase"
	"fieldserve/pkg"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

var (
	errInvalidTransitionPayload = pkg.NewDomainErrorSimple("INVALID_TRANSITION_INPUT", "Invalid transition payload", http.StatusBadRequest)
)

// JobLifecycleHandler exposes the two-phase transition protocol over HTTP:
// POST /transitions asks the guard, POST /transitions/commit completes a
// pending capture.

type JobLifecycleHandler struct {
	usecase usecase.IJobLifecycleUseCase
}

func NewJobLifecycleHandler(uc usecase.IJobLifecycleUseCase) *JobLifecycleHandler {
	return &JobLifecycleHandler{usecase: uc}
}

// RequestTransition classifies a requested status change. Direct
// transitions commit immediately; guarded ones answer with the capture
// kind the caller must collect, persisting nothing.
func (h *JobLifecycleHandler) RequestTransition(c *gin.Context) {
	jobID := c.Param("job_id")
	var payload request.TransitionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidTransitionPayload.HTTPStatus, errInvalidTransitionPayload.ToHTTPError())
		return
	}

	requested, err := lifecycle.ParseStatus(payload.RequestedStatus)
	if err != nil {
		c.JSON(errInvalidTransitionPayload.HTTPStatus, errInvalidTransitionPayload.ToHTTPError())
		return
	}

	out, err := h.usecase.RequestTransition(c.Request.Context(), jobID, requested)
	if err != nil {
		log.Printf("[lifecycle][handler] request failed job_id=%s requested=%s err=%v", jobID, requested, err)
		writeLifecycleError(c, err)
		return
	}

	status := http.StatusOK
	if out.Pending != nil {
		status = http.StatusAccepted
	}
	c.JSON(status, response.FromTransitionOutcome(out))
}

// CommitTransition completes a pending capture with the collected fields.
func (h *JobLifecycleHandler) CommitTransition(c *gin.Context) {
	jobID := c.Param("job_id")
	var payload request.TransitionCommitRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidTransitionPayload.HTTPStatus, errInvalidTransitionPayload.ToHTTPError())
		return
	}

	requested, err := lifecycle.ParseStatus(payload.RequestedStatus)
	if err != nil {
		c.JSON(errInvalidTransitionPayload.HTTPStatus, errInvalidTransitionPayload.ToHTTPError())
		return
	}

	out, err := h.usecase.CommitTransition(c.Request.Context(), jobID, requested,
		lifecycle.CaptureKind(payload.CaptureKind), lifecycle.Data(payload.Capture))
	if err != nil {
		log.Printf("[lifecycle][handler] commit failed job_id=%s requested=%s kind=%s err=%v", jobID, requested, payload.CaptureKind, err)
		writeLifecycleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.FromTransitionOutcome(out))
}

// writeLifecycleError maps lifecycle errors to HTTP. Capture validation
// failures carry the missing field names as details so the dialog can
// highlight them.
func writeLifecycleError(c *gin.Context, err error) {
	var invalidErr *lifecycle.InvalidTransitionError
	if errors.As(err, &invalidErr) {
		c.JSON(http.StatusConflict, pkg.HTTPError{
			Code:    "INVALID_TRANSITION",
			Message: "Transition not allowed",
			Details: gin.H{"from": invalidErr.From, "to": invalidErr.To},
		})
		return
	}

	var captureErr *lifecycle.CaptureValidationError
	if errors.As(err, &captureErr) {
		c.JSON(http.StatusUnprocessableEntity, pkg.HTTPError{
			Code:    "CAPTURE_VALIDATION_FAILED",
			Message: "Required capture fields are missing or invalid",
			Details: gin.H{"capture_kind": captureErr.Kind, "missing_fields": captureErr.MissingFields},
		})
		return
	}

	var staleErr *lifecycle.StaleStateError
	if errors.As(err, &staleErr) {
		c.JSON(http.StatusConflict, pkg.HTTPError{
			Code:    "STALE_STATE_CONFLICT",
			Message: "Job changed concurrently, re-read and retry",
			Details: gin.H{"expected": staleErr.Expected, "actual": staleErr.Actual},
		})
		return
	}

	appErr := mapLifecycleError(err)
	c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
}

func mapLifecycleError(err error) *pkg.AppError {
	switch {
	case errors.Is(err, usecase.ErrInvalidJobID):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrCaptureKindMismatch):
		return pkg.NewDomainErrorSimple("CAPTURE_KIND_MISMATCH", "Capture kind does not match the requested transition", http.StatusConflict)
	case errors.Is(err, usecase.ErrJobBusy):
		return pkg.NewDomainErrorSimple("JOB_BUSY", "Another operation is in flight for this job", http.StatusConflict)
	case errors.Is(err, usecase.ErrJobNotFound):
		return pkg.NewDomainErrorSimple("JOB_NOT_FOUND", "Job not found", http.StatusNotFound)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
