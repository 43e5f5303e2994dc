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

// ErrUnknownAccount indicates that a transaction referenced an account code that does not exist.
var ErrUnknownAccount = errors.New("unknown account")

// ErrUnbalanced indicates that the debit and credit totals of a transaction differ.
// It is always reported together with ErrValidation.
var ErrUnbalanced = errors.New("transaction entries are not balanced")

// ErrInvalidTransition indicates a status change that the transaction lifecycle does not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// ErrConflict indicates that a concurrent or repeated request holds the same resource.
var ErrConflict = errors.New("request conflicts with an in-flight request")

// AppError carries an infrastructure failure together with a status code hint.
type AppError struct {
	Code    int
	Message string
	Err     error
}

// NewAppError creates a new AppError.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *AppError) Unwrap() error {
	return e.Err
}
