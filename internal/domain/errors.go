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

// Is reports whether target is the same sentinel (matched by code and message),
// so wrapped copies carrying a cause still compare equal to the sentinel.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
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
	ErrCodeUnavailable      = "UNAVAILABLE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
)

// Validation errors
var (
	ErrInvalidAlertType     = NewDomainError(ErrCodeValidation, "invalid alert type")
	ErrInvalidQueryStatus   = NewDomainError(ErrCodeValidation, "invalid query status")
	ErrInvalidCabinClass    = NewDomainError(ErrCodeValidation, "invalid cabin class")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrQueryNotFound       = NewDomainError(ErrCodeNotFound, "search query not found")
	ErrSourceNotFound      = NewDomainError(ErrCodeNotFound, "source not found")
	ErrObservationNotFound = NewDomainError(ErrCodeNotFound, "observation not found")
	ErrAlertNotFound       = NewDomainError(ErrCodeNotFound, "alert not found")
	ErrMatchNotFound       = NewDomainError(ErrCodeNotFound, "match not found")
)

// Already exists errors
var (
	ErrDuplicateObservation = NewDomainError(ErrCodeAlreadyExists, "observation already stored")
	ErrDuplicateMatch       = NewDomainError(ErrCodeAlreadyExists, "match already recorded")
)

// Authorization errors
var (
	ErrBadIngestToken = NewDomainError(ErrCodeUnauthorized, "invalid ingest token")
	ErrMissingUser    = NewDomainError(ErrCodeUnauthorized, "missing user identity")
)

// Availability errors. Retryable: the producer resubmits on its next batch.
var (
	ErrStoreUnavailable = NewDomainError(ErrCodeUnavailable, "result store unavailable")
)
