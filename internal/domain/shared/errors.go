package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target is a DomainError with the same code, so callers
// can match on the sentinel values below with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// NewDomainErrorf creates a new domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// Error codes
const (
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInvalidState        = "INVALID_STATE"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeInvalidPolicy       = "INVALID_POLICY"
	CodeInvalidTerm         = "INVALID_TERM"
	CodeInvalidDate         = "INVALID_DATE"
	CodeInvalidAmount       = "INVALID_AMOUNT"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")

	// ErrInvalidPolicy is a malformed commission policy (negative or out-of-range value)
	ErrInvalidPolicy = NewDomainError(CodeInvalidPolicy, "Invalid commission policy")
	// ErrInvalidTerm is an unusable installment term (down payment above net, non-positive term)
	ErrInvalidTerm = NewDomainError(CodeInvalidTerm, "Invalid installment term")
	// ErrInvalidDate is a missing or out-of-order date
	ErrInvalidDate = NewDomainError(CodeInvalidDate, "Invalid date")
	// ErrInvalidAmount is a negative price or a non-positive payment
	ErrInvalidAmount = NewDomainError(CodeInvalidAmount, "Invalid amount")
)
