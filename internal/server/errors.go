package server

import (
	"context"
	"errors"

	"github.com/rpgo/household-planner/internal/calculation"
	"github.com/valyala/fasthttp"
)

// APIError is the body of every failed response.
type APIError struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Status   int    `json:"-"`
	Year     int    `json:"year,omitempty"`
	EntityID string `json:"entityId,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

var sentinelCodes = []struct {
	err    error
	code   string
	status int
}{
	{calculation.ErrMalformedEntity, "INVALID_INPUT", fasthttp.StatusBadRequest},
	{calculation.ErrToleranceExceeded, "TOLERANCE_EXCEEDED", fasthttp.StatusUnprocessableEntity},
	{calculation.ErrAllocationMismatch, "ALLOCATION_MISMATCH", fasthttp.StatusUnprocessableEntity},
	{calculation.ErrWithdrawalExceedsBalance, "WITHDRAWAL_EXCEEDS_BALANCE", fasthttp.StatusUnprocessableEntity},
	{calculation.ErrUnknownTarget, "UNKNOWN_TARGET", fasthttp.StatusUnprocessableEntity},
	{calculation.ErrDegenerateSchedule, "DEGENERATE_SCHEDULE", fasthttp.StatusUnprocessableEntity},
}

// toAPIError maps an engine error to its response code and status.
func toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	out := &APIError{Code: "INTERNAL_ERROR", Message: err.Error(), Status: fasthttp.StatusInternalServerError}
	for _, s := range sentinelCodes {
		if errors.Is(err, s.err) {
			out.Code, out.Status = s.code, s.status
			break
		}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		out.Code, out.Status = "UNAVAILABLE", fasthttp.StatusServiceUnavailable
	}

	var pe *calculation.ProjectionError
	if errors.As(err, &pe) {
		out.Year, out.EntityID = pe.Year, pe.EntityID
	}
	return out
}

func badRequest(msg string) *APIError {
	return &APIError{Code: "INVALID_INPUT", Message: msg, Status: fasthttp.StatusBadRequest}
}
