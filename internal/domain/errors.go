package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrMissingTitle        = NewDomainError(ErrCodeValidation, "title is required")
	ErrMissingContent      = NewDomainError(ErrCodeValidation, "content is required")
	ErrMissingAuthor       = NewDomainError(ErrCodeValidation, "author is required")
	ErrTitleTooLong        = NewDomainError(ErrCodeValidation, "title must be 255 characters or fewer")
	ErrInvalidScope        = NewDomainError(ErrCodeValidation, "invalid analysis scope")
	ErrInvalidSensitivity  = NewDomainError(ErrCodeValidation, "sensitivity must be between 0 and 3")
	ErrInvalidStaleness    = NewDomainError(ErrCodeValidation, "staleness risk must be between 1 and 3")
	ErrInvalidConfidence   = NewDomainError(ErrCodeValidation, "confidence must be between 0 and 1")
	ErrMissingPath         = NewDomainError(ErrCodeValidation, "file path is required")
	ErrMissingRepository   = NewDomainError(ErrCodeValidation, "repository is required")
	ErrInvalidJobStatus    = NewDomainError(ErrCodeValidation, "invalid embedding job status")
	ErrEmptySnapshot       = NewDomainError(ErrCodeValidation, "snapshot has no entries")
)

// Not found errors
var (
	ErrPostNotFound     = NewDomainError(ErrCodeNotFound, "post not found")
	ErrSnapshotNotFound = NewDomainError(ErrCodeNotFound, "knowledge base snapshot not found")
	ErrEntryNotFound    = NewDomainError(ErrCodeNotFound, "knowledge base entry not found")
	ErrDriftRunNotFound = NewDomainError(ErrCodeNotFound, "drift run not found")
	ErrJobNotFound      = NewDomainError(ErrCodeNotFound, "embedding job not found")
)
