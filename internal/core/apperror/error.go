// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidRange = "INVALID_RANGE"

	// Business rule violations (422)
	CodeBusinessRule           = "BUSINESS_RULE_VIOLATION"
	CodeNumberingConfigMissing = "NUMBERING_CONFIG_MISSING"
	CodeNumberingRangeExceeded = "NUMBERING_RANGE_EXCEEDED"
	CodeInsufficientStock      = "INSUFFICIENT_STOCK"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict        = "CONFLICT"
	CodeDuplicate       = "DUPLICATE_ENTRY"
	CodeAlreadyResolved = "REQUEST_ALREADY_RESOLVED"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, last valid number, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewNumberingConfigMissing is returned when no counter exists for a prefix.
// Counters are never auto-created on issuance; an administrator must load
// an authorized range first.
func NewNumberingConfigMissing(prefix string) *AppError {
	return &AppError{
		Code:       CodeNumberingConfigMissing,
		Message:    "no numbering configuration for prefix",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"prefix": prefix},
	}
}

// NewNumberingRangeExceeded is returned when the authorized numbering range
// is exhausted. Carries the last valid formatted number so an operator can
// request a new resolution.
func NewNumberingRangeExceeded(prefix, lastValidNumber string) *AppError {
	return &AppError{
		Code:       CodeNumberingRangeExceeded,
		Message:    "authorized numbering range exhausted",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"prefix":            prefix,
			"last_valid_number": lastValidNumber,
		},
	}
}

// NewInvalidRange is returned when a range reload has start >= end.
func NewInvalidRange(start, end int64) *AppError {
	return &AppError{
		Code:       CodeInvalidRange,
		Message:    "range start must be below range end",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"start": start, "end": end},
	}
}

// NewAlreadyResolved is returned when a change request left PENDING before
// the caller's resolve attempt landed.
func NewAlreadyResolved(requestID any) *AppError {
	return &AppError{
		Code:       CodeAlreadyResolved,
		Message:    "change request already resolved",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"request_id": requestID},
	}
}

// NewInsufficientStock creates a stock shortage error
func NewInsufficientStock(productID string, requested, available string) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    "Insufficient stock",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"product_id": productID,
			"requested":  requested,
			"available":  available,
		},
	}
}

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewDatabase wraps a storage failure, distinct from business-rule errors.
func NewDatabase(err error) *AppError {
	return &AppError{
		Code:       CodeDatabase,
		Message:    "Storage operation failed",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsAlreadyResolved checks if error is CodeAlreadyResolved
func IsAlreadyResolved(err error) bool {
	return hasCode(err, CodeAlreadyResolved)
}

// IsRangeExceeded checks if error is CodeNumberingRangeExceeded
func IsRangeExceeded(err error) bool {
	return hasCode(err, CodeNumberingRangeExceeded)
}

// IsConfigMissing checks if error is CodeNumberingConfigMissing
func IsConfigMissing(err error) bool {
	return hasCode(err, CodeNumberingConfigMissing)
}

func hasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
