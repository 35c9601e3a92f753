// Package errors provides standardized error handling for the submission
// moderation service.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed   ErrorCode = "VALIDATION_FAILED"
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeRejectedByStore    ErrorCode = "REJECTED_BY_STORE"
	ErrCodeNotFound           ErrorCode = "NOT_FOUND"
	ErrCodeDecodeFailure      ErrorCode = "DECODE_FAILURE"
	ErrCodeInvalidTransition  ErrorCode = "INVALID_TRANSITION"
	ErrCodePublishFailed      ErrorCode = "PUBLISH_FAILED"
	ErrCodeUnknownOutcome     ErrorCode = "UNKNOWN_OUTCOME"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
//
// Retryable distinguishes "nothing happened, safe to retry" from failures
// that must be surfaced: a non-retryable error either changed nothing for a
// permanent reason (validation, store rejection) or may have partially
// happened (unknown outcome, publish after a successful label write).
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationFailedError creates a non-retryable submitter input error.
// No external call has been made when this is returned.
func NewValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidationFailed,
		Message:   "Submission payload validation failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewServiceUnavailableError creates a retryable transient store error.
func NewServiceUnavailableError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeServiceUnavailable,
		Message:   "Issue store temporarily unavailable",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRejectedByStoreError creates a non-retryable permanent store rejection.
func NewRejectedByStoreError(operation string, status int, body string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRejectedByStore,
		Message:   "Issue store rejected the request",
		Details:   fmt.Sprintf("operation: %s, status: %d, body: %s", operation, status, body),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewNotFoundError creates a non-retryable missing record error.
func NewNotFoundError(issueNumber int) *StandardError {
	return &StandardError{
		Code:      ErrCodeNotFound,
		Message:   "Submission record not found",
		Details:   fmt.Sprintf("issueNumber: %d", issueNumber),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDecodeFailureError creates a non-fatal malformed record error. It is
// downgraded to an absent payload at the listing boundary and never escapes
// as a service outage.
func NewDecodeFailureError(issueNumber int) *StandardError {
	return &StandardError{
		Code:      ErrCodeDecodeFailure,
		Message:   "Stored submission body could not be decoded",
		Details:   fmt.Sprintf("issueNumber: %d", issueNumber),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidTransitionError creates a non-retryable state machine error for
// an approve/reject attempted on a record that is no longer pending.
func NewInvalidTransitionError(issueNumber int, current string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidTransition,
		Message:   "Submission is not pending review",
		Details:   fmt.Sprintf("issueNumber: %d, currentStatus: %s", issueNumber, current),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPublishFailedError marks the approved-but-unpublished window: the label
// write succeeded but the publish notification did not. Must be surfaced,
// never silently retried.
func NewPublishFailedError(issueNumber int, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodePublishFailed,
		Message:   "Submission approved but publish notification failed",
		Details:   err.Error(),
		Retryable: false,
		Metadata:  map[string]interface{}{"issueNumber": issueNumber},
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownOutcomeError marks a cancelled or timed-out write whose result
// was never observed. The caller must not assume it failed.
func NewUnknownOutcomeError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownOutcome,
		Message:   "Store write outcome unknown",
		Details:   fmt.Sprintf("operation: %s, error: %s", operation, err.Error()),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 3. Utility Functions
// ==========================

// IsRetryable reports whether the error is a transient failure where
// nothing happened on the store side.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}

// CodeOf extracts the ErrorCode, normalizing unknown errors to INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Code
	}
	return ErrCodeInternal
}
