package domain

import (
	"fmt"
	"net/http"
)

// APIError is the RFC 7807 style body of every error response. Errors holds
// per-field validation messages keyed by JSON field name.
type APIError struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Title
}

// Problem types
const (
	ErrorTypeValidation   = "validation_error"
	ErrorTypeNotFound     = "not_found"
	ErrorTypeBadRequest   = "bad_request"
	ErrorTypeConflict     = "conflict"
	ErrorTypeUnauthorized = "unauthorized"
	ErrorTypeForbidden    = "forbidden"
	ErrorTypeInternal     = "internal_error"
)

// NewAPIError builds the body for a non-validation error response
func NewAPIError(status int, detail string) *APIError {
	return &APIError{
		Type:   ErrorTypeForStatus(status),
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	}
}

// NewValidationError builds a 400 body carrying field messages
func NewValidationError(fields map[string]string) *APIError {
	return &APIError{
		Type:   ErrorTypeValidation,
		Title:  "Validation Error",
		Status: http.StatusBadRequest,
		Detail: "One or more fields failed validation",
		Errors: fields,
	}
}

// ErrorTypeForStatus maps an HTTP status to its problem type. Anything
// unmapped is reported as internal.
func ErrorTypeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return ErrorTypeBadRequest
	case http.StatusUnauthorized:
		return ErrorTypeUnauthorized
	case http.StatusForbidden:
		return ErrorTypeForbidden
	case http.StatusNotFound:
		return ErrorTypeNotFound
	case http.StatusConflict:
		return ErrorTypeConflict
	default:
		return ErrorTypeInternal
	}
}

// ValidationMessage renders a validator tag failure on a request field.
// param is the tag argument, e.g. "200" for max=200.
func ValidationMessage(field, tag, param string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "email":
		return "Must be a valid email address"
	case "url":
		return "Must be a valid URL"
	case "max":
		return "Must be at most " + param
	case "min":
		return "Must be at least " + param
	case "gt":
		return "Must be greater than " + param
	case "gte":
		return "Must be greater than or equal to " + param
	case "lte":
		return "Must be less than or equal to " + param
	case "oneof":
		return "Must be one of: " + param
	case "datetime":
		return "Must be a date in the format " + param
	default:
		return fmt.Sprintf("Validation failed: %s", tag)
	}
}
