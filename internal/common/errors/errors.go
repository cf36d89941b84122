// Package errors provides the standardized error taxonomy of the form client.
package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"

	ErrCodeTransport   ErrorCode = "TRANSPORT_ERROR"
	ErrCodeApplication ErrorCode = "APPLICATION_ERROR"

	ErrCodeOptionsLoadFailed  ErrorCode = "OPTIONS_LOAD_FAILED"
	ErrCodeWeatherFetchFailed ErrorCode = "WEATHER_FETCH_FAILED"
	ErrCodeMarketFetchFailed  ErrorCode = "MARKET_FETCH_FAILED"

	ErrCodeSubmissionInFlight ErrorCode = "SUBMISSION_IN_FLIGHT"
	ErrCodeGuardNotInFlight   ErrorCode = "GUARD_NOT_IN_FLIGHT"
	ErrCodeConfigInvalid      ErrorCode = "CONFIG_INVALID"
	ErrCodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// Category groups error codes by how they surface to the user.
type Category string

const (
	// CategoryValidation errors are generated locally before any request.
	CategoryValidation Category = "validation"
	// CategoryTransport errors mean the endpoint could not be reached or read.
	CategoryTransport Category = "transport"
	// CategoryApplication errors are logical failures reported by the endpoint.
	CategoryApplication Category = "application"
	// CategoryDegraded errors are recovered locally and only visible in diagnostics.
	CategoryDegraded Category = "degraded"
	// CategoryInternal errors are logic faults of the client itself.
	CategoryInternal Category = "internal"
)

// StandardError represents a structured client error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// Category returns the category of the error's code.
func (e *StandardError) Category() Category {
	return CategoryOf(e.Code)
}

// WithMetadata sets a metadata entry and returns the error for chaining.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

func newError(code ErrorCode, message, details string, cause error) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
}

// ==========================
// 2. Error Constructors
// ==========================

// NewValidationError creates a client-side validation error. details lists the
// offending fields and is what the user sees.
func NewValidationError(details string) *StandardError {
	return newError(ErrCodeValidationFailed, "Form validation failed", details, nil)
}

// NewTransportError wraps a network, read or decode failure.
func NewTransportError(endpoint string, err error) *StandardError {
	return newError(ErrCodeTransport, "Endpoint unreachable or unreadable", err.Error(), err).
		WithMetadata("endpoint", endpoint)
}

// NewApplicationError creates an error for a logical failure reported by an endpoint.
func NewApplicationError(endpoint, serverMessage string, statusCode int) *StandardError {
	return newError(ErrCodeApplication, "Endpoint reported failure", serverMessage, nil).
		WithMetadata("endpoint", endpoint).
		WithMetadata("statusCode", statusCode)
}

// NewOptionsLoadFailedError is reported when reference options could not be loaded.
func NewOptionsLoadFailedError(err error) *StandardError {
	return newError(ErrCodeOptionsLoadFailed, "Reference options load failed", err.Error(), err)
}

// NewWeatherFetchFailedError is reported when the weather source fails.
func NewWeatherFetchFailedError(location string, err error) *StandardError {
	return newError(ErrCodeWeatherFetchFailed, "Weather fetch failed", err.Error(), err).
		WithMetadata("location", location)
}

// NewMarketFetchFailedError is reported when the market price source fails.
func NewMarketFetchFailedError(err error) *StandardError {
	return newError(ErrCodeMarketFetchFailed, "Market price fetch failed", err.Error(), err)
}

// NewSubmissionInFlightError is returned when a submit overlaps an outstanding one.
func NewSubmissionInFlightError(form string) *StandardError {
	return newError(ErrCodeSubmissionInFlight, "Submission already in progress", "", nil).
		WithMetadata("form", form)
}

// NewGuardNotInFlightError flags an End call without a matching TryBegin.
func NewGuardNotInFlightError(phase string) *StandardError {
	return newError(ErrCodeGuardNotInFlight, "Submission guard ended while not in flight",
		fmt.Sprintf("phase: %s", phase), nil)
}

// NewConfigInvalidError wraps a configuration validation failure.
func NewConfigInvalidError(err error) *StandardError {
	return newError(ErrCodeConfigInvalid, "Invalid configuration", err.Error(), err)
}

// ==========================
// 3. Utility Functions
// ==========================

// CategoryOf returns the category of the error code.
func CategoryOf(code ErrorCode) Category {
	switch code {
	case ErrCodeValidationFailed:
		return CategoryValidation
	case ErrCodeTransport:
		return CategoryTransport
	case ErrCodeApplication:
		return CategoryApplication
	case ErrCodeOptionsLoadFailed, ErrCodeWeatherFetchFailed, ErrCodeMarketFetchFailed:
		return CategoryDegraded
	default:
		return CategoryInternal
	}
}

// IsUserVisible reports whether errors of the code end up in the primary display.
func IsUserVisible(code ErrorCode) bool {
	switch CategoryOf(code) {
	case CategoryValidation, CategoryTransport, CategoryApplication:
		return true
	}
	return false
}

// Normalize ensures we always have a StandardError.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), err)
}

// DisplayMessage is the primary-display text for user-visible errors. Transport
// failures are prefixed with "Error: ", application failures show the server
// message, validation failures show the offending fields. Everything else
// returns "".
func DisplayMessage(err error) string {
	stdErr := Normalize(err)
	if stdErr == nil || !IsUserVisible(stdErr.Code) {
		return ""
	}
	if stdErr.Code == ErrCodeTransport {
		return "Error: " + stdErr.Details
	}
	return stdErr.Details
}

// HasCode reports whether err is, or wraps, a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code == code
	}
	return false
}
