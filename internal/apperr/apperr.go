// Package apperr defines the error taxonomy shared by services and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and for HTTP status mapping.
type Kind string

// Error kinds.
const (
	KindValidation         Kind = "validation"
	KindNotFound           Kind = "not_found"
	KindForbidden          Kind = "forbidden"
	KindUnauthorized       Kind = "unauthorized"
	KindInsufficientPoints Kind = "insufficient_points"
	KindInsufficientBudget Kind = "insufficient_budget"
	KindConflict           Kind = "conflict"
	KindInternal           Kind = "internal"
)

// Machine-readable codes for the cases clients need to tell apart.
const (
	CodeBudgetNotFound     = "budget_not_found"
	CodeAlreadyAssigned    = "already_assigned"
	CodeAlreadyResolved    = "already_resolved"
	CodeInvalidReason      = "invalid_reason"
	CodeInsufficientPoints = "insufficient_points"
	CodeInsufficientBudget = "insufficient_budget"
)

// Error is an application error carrying a kind, a code and an optional cause.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind. The code defaults to the kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Code: string(kind), Message: message}
}

// WithCode returns a copy of e carrying a specific code.
func (e *Error) WithCode(code string) *Error {
	cp := *e
	cp.Code = code
	return &cp
}

// Validation reports malformed or missing input.
func Validation(format string, args ...any) *Error {
	return New(KindValidation, fmt.Sprintf(format, args...))
}

// NotFound reports a missing referenced entity.
func NotFound(format string, args ...any) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

// Forbidden reports a failed role or ownership check.
func Forbidden(format string, args ...any) *Error {
	return New(KindForbidden, fmt.Sprintf(format, args...))
}

// Unauthorized reports a missing or invalid credential.
func Unauthorized(format string, args ...any) *Error {
	return New(KindUnauthorized, fmt.Sprintf(format, args...))
}

// Conflict reports a state that forbids the operation.
func Conflict(format string, args ...any) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

// InsufficientPoints reports a points balance that cannot cover a debit.
func InsufficientPoints(format string, args ...any) *Error {
	return New(KindInsufficientPoints, fmt.Sprintf(format, args...))
}

// InsufficientBudget reports an admin budget that cannot cover an allocation.
func InsufficientBudget(format string, args ...any) *Error {
	return New(KindInsufficientBudget, fmt.Sprintf(format, args...))
}

// Internal wraps a storage or infrastructure failure.
func Internal(err error, message string) *Error {
	return &Error{Kind: KindInternal, Code: string(KindInternal), Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// CodeOf returns the code of err, or "internal" for foreign errors.
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return string(KindInternal)
}

// Is reports whether err is an application error of the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}
