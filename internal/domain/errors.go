package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"

	// Remote collaborator errors. Any non-success status from the backend is
	// collapsed into CodeBackendFailure; the client does not distinguish.
	CodeBackendFailure   ErrorCode = "BACKEND_FAILURE"
	CodeGenerationFailed ErrorCode = "QUIZ_GENERATION_FAILED"
	CodeAttemptLimit     ErrorCode = "ATTEMPT_LIMIT_REACHED"
	CodeQuizState        ErrorCode = "INVALID_QUIZ_STATE"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper constructors for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInternalError(message string, cause error) *DomainError {
	return NewError(CodeInternal, message, cause)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewForbiddenError(message string) *DomainError {
	return NewError(CodeForbidden, message, nil)
}

func NewBackendFailureError(operation string, cause error) *DomainError {
	return NewError(CodeBackendFailure, fmt.Sprintf("Operation failed: %s", operation), cause)
}

func NewGenerationFailedError(cause error) *DomainError {
	return NewError(CodeGenerationFailed, "Failed to generate quiz", cause)
}

func NewAttemptLimitError(attempts int) *DomainError {
	return NewError(CodeAttemptLimit, fmt.Sprintf("Quiz attempt limit reached (%d of %d)", attempts, MaxQuizAttempts), nil)
}

func NewQuizStateError(message string) *DomainError {
	return NewError(CodeQuizState, message, nil)
}

// ValidationError represents a single field validation failure. Validation
// errors are surfaced inline and never sent to the server.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors aggregates per-field validation failures
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", e[0].Error())
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Message: "is required"}
}

func NewInvalidFormatError(field, message string) ValidationError {
	return ValidationError{Field: field, Message: message}
}

func NewOutOfRangeError(field string, min, max int) ValidationError {
	return ValidationError{Field: field, Message: fmt.Sprintf("must be between %d and %d", min, max)}
}
