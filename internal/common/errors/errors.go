// Package errors provides standardized error handling for the scorecard
// processing pipeline.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Input errors: the caller supplied something we cannot work with.
	ErrCodeInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrCodeFileTooLarge   ErrorCode = "FILE_TOO_LARGE"
	ErrCodePDFParseFailed ErrorCode = "PDF_PARSE_FAILED"

	// Persistence errors: the transaction was rolled back, nothing committed.
	ErrCodePersistenceFailed ErrorCode = "PERSISTENCE_FAILED"
	ErrCodeDatabaseFailed    ErrorCode = "DATABASE_CONNECTION_FAILED"

	// Lookup errors.
	ErrCodeJobNotFound       ErrorCode = "JOB_NOT_FOUND"
	ErrCodeScorecardNotFound ErrorCode = "SCORECARD_NOT_FOUND"

	// Search errors (report index is best effort).
	ErrCodeSearchFailed ErrorCode = "SEARCH_QUERY_FAILED"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
//
// Extraction misses are deliberately NOT errors: a missing week token,
// location label or KPI line resolves to a default or an empty collection,
// never to a StandardError.
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

// FullMessage joins Message and Details for surfaces that record a single
// string, such as the error_message column on a failed job.
func (e *StandardError) FullMessage() string {
	if e.Details == "" {
		return e.Message
	}
	return e.Message + ": " + e.Details
}

// New creates a StandardError with the given code and message.
func New(code ErrorCode, message string) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Retryable: code == ErrCodeDatabaseFailed,
		Timestamp: time.Now().UTC(),
	}
}

// Wrap creates a StandardError that carries the underlying error's text in
// Details.
func Wrap(code ErrorCode, message string, cause error) *StandardError {
	e := New(code, message)
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// Normalize ensures we always have a StandardError to report.
func Normalize(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// IsInputError reports whether the error maps to a 4xx-equivalent response.
func IsInputError(err error) bool {
	var stdErr *StandardError
	if !errors.As(err, &stdErr) {
		return false
	}
	switch stdErr.Code {
	case ErrCodeInvalidInput, ErrCodeFileTooLarge, ErrCodePDFParseFailed,
		ErrCodeJobNotFound, ErrCodeScorecardNotFound:
		return true
	}
	return false
}

// IsNotFound reports whether the error is a missing-resource lookup.
func IsNotFound(err error) bool {
	var stdErr *StandardError
	if !errors.As(err, &stdErr) {
		return false
	}
	return stdErr.Code == ErrCodeJobNotFound || stdErr.Code == ErrCodeScorecardNotFound
}
