package tmplcore

import (
	"errors"

	"github.com/mitsuhiko/tmplcore/value"
)

// Error is the error type returned by the evaluation core.
type Error = value.Error

// ErrorKind describes the type of error.
type ErrorKind = value.ErrorKind

const (
	ErrTypeMismatch         = value.ErrTypeMismatch
	ErrMissingArgument      = value.ErrMissingArgument
	ErrInvalidArgumentValue = value.ErrInvalidArgumentValue
	ErrUndefinedVariable    = value.ErrUndefinedVariable
	ErrNotSortable          = value.ErrNotSortable
	ErrFieldNotFound        = value.ErrFieldNotFound
	ErrDomain               = value.ErrDomain
	ErrUnknownFilter        = value.ErrUnknownFilter
	ErrUnknownTest          = value.ErrUnknownTest
	ErrUnknownFunction      = value.ErrUnknownFunction
	ErrUser                 = value.ErrUser
	ErrOutOfFuel            = value.ErrOutOfFuel
	ErrInvalidOperation     = value.ErrInvalidOperation
)

// NewError creates a new error with the given kind and message.
func NewError(kind ErrorKind, msg string) *Error {
	return value.NewError(kind, msg)
}

// wrapCallError attaches the name of the filter, test or function that
// produced err. Kinds are preserved so callers can still match on them,
// including for an *Error wrapped by the callee with %w.
func wrapCallError(name string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if err == error(e) {
			return e.WithCall(name)
		}
		return &Error{Kind: e.Kind, Op: e.Op, Call: name, Err: err, Message: "call failed"}
	}
	return &Error{Kind: ErrUser, Op: name, Call: name, Err: err, Message: "call failed"}
}
