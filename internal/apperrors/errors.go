package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the operation lost a race against a concurrent
// writer (stale voucher version) and may be retried by the caller.
var ErrConflict = errors.New("conflicting concurrent modification")

// ErrInternal indicates an unexpected internal failure.
var ErrInternal = errors.New("internal error")

// ErrUnbalanced indicates that the debit and credit sides of a voucher do not
// sum to the same exact amount.
var ErrUnbalanced = errors.New("voucher line items do not balance")

// ErrMissingLineItems indicates a voucher was submitted with no line items or
// with required line item fields absent.
var ErrMissingLineItems = errors.New("voucher has no line items")

// ErrDanglingReference indicates that a referenced account, counterparty,
// certificate or asset id could not be resolved.
var ErrDanglingReference = errors.New("referenced entity not found")

// ErrAlreadyReversed indicates an attempt to delete or structurally amend a
// voucher that has already been reversed or deleted.
var ErrAlreadyReversed = errors.New("voucher already reversed")

// ErrInvariantViolation indicates an internal consistency fault, such as an
// outstanding amount going negative or an associate cycle. It is logged and
// surfaced, never auto-corrected.
var ErrInvariantViolation = errors.New("ledger invariant violation")

// AppError wraps a lower-level error with a status code and message. Used by
// the persistence layer so repository failures stay distinguishable from
// domain errors.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping the given cause.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
