package errors

import (
	stderrors "errors"
	"net/http"

	apperrors "speech-relay/internal/app/errors"
)

// ErrorKind represents different types of API errors
type ErrorKind string

const (
	KindValidation      ErrorKind = "validation"
	KindBadRequest      ErrorKind = "bad_request"
	KindPayloadTooLarge ErrorKind = "payload_too_large"
	KindNotFound        ErrorKind = "not_found"
	KindInternal        ErrorKind = "internal"
)

// InternalMessage is the only text clients see for unexpected failures
const InternalMessage = "internal server error"

// APIError is the JSON error body. Success is always false so the body matches
// the transcription response shape.
type APIError struct {
	Success   bool              `json:"success"`
	Message   string            `json:"error"`
	Kind      ErrorKind         `json:"kind"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error kind
func (e *APIError) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// NewValidationError creates a validation error with field details
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: message,
		Details: fields,
	}
}

// NewBadRequestError creates a bad request error
func NewBadRequestError(message string) *APIError {
	return &APIError{
		Kind:    KindBadRequest,
		Message: message,
	}
}

// NewPayloadTooLargeError creates a 413 error
func NewPayloadTooLargeError(message string) *APIError {
	return &APIError{
		Kind:    KindPayloadTooLarge,
		Message: message,
	}
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: message,
	}
}

// NewInternalError creates an internal server error
func NewInternalError(message string) *APIError {
	return &APIError{
		Kind:    KindInternal,
		Message: message,
	}
}

// FromKind builds the error body for a failed pipeline result. Pipeline
// failures are server-side and always map to 500; the domain kind is kept for
// clients that want to distinguish them.
func FromKind(kind apperrors.Kind, message string) *APIError {
	if message == "" {
		message = InternalMessage
	}
	return &APIError{
		Kind:    ErrorKind(kind),
		Message: message,
	}
}

// WrapError converts err into an APIError. Domain errors keep their safe
// message; anything else becomes a generic internal error.
func WrapError(err error) *APIError {
	if err == nil {
		return nil
	}
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}

	var typed *apperrors.Error
	if stderrors.As(err, &typed) {
		if typed.Kind() == apperrors.KindValidation {
			return NewBadRequestError(typed.Message())
		}
		return FromKind(typed.Kind(), typed.Message())
	}
	return NewInternalError(InternalMessage)
}
