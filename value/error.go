package value

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind describes the type of error.
type ErrorKind int

const (
	ErrTypeMismatch ErrorKind = iota + 1
	ErrMissingArgument
	ErrInvalidArgumentValue
	ErrUndefinedVariable
	ErrNotSortable
	ErrFieldNotFound
	ErrDomain
	ErrUnknownFilter
	ErrUnknownTest
	ErrUnknownFunction
	ErrUser
	ErrOutOfFuel
	ErrInvalidOperation
)

func (k ErrorKind) String() string {
	switch k {
	case ErrTypeMismatch:
		return "type mismatch"
	case ErrMissingArgument:
		return "missing argument"
	case ErrInvalidArgumentValue:
		return "invalid argument value"
	case ErrUndefinedVariable:
		return "undefined variable"
	case ErrNotSortable:
		return "not sortable"
	case ErrFieldNotFound:
		return "field not found"
	case ErrDomain:
		return "domain error"
	case ErrUnknownFilter:
		return "unknown filter"
	case ErrUnknownTest:
		return "unknown test"
	case ErrUnknownFunction:
		return "unknown function"
	case ErrUser:
		return "error"
	case ErrOutOfFuel:
		return "out of fuel"
	case ErrInvalidOperation:
		return "invalid operation"
	default:
		return "error"
	}
}

// Error implements the error interface so that a bare kind can be used as a
// target for errors.Is:
//
//	if errors.Is(err, value.ErrNotSortable) { ... }
func (k ErrorKind) Error() string {
	return k.String()
}

// Error is the error type returned by every operation of the evaluation
// core. Op names the operation that failed and Arg the offending argument,
// if any. Call is the registered filter, test or function the error
// surfaced through; it differs from Op when a custom filter fails inside a
// value accessor or another builtin.
type Error struct {
	Kind     ErrorKind
	Op       string
	Call     string
	Arg      string
	Expected string
	Got      string
	Message  string
	Err      error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	switch {
	case e.Call != "":
		b.WriteString(" in `")
		b.WriteString(e.Call)
		b.WriteString("`")
		if e.Op != "" && e.Op != e.Call {
			b.WriteString(" (`")
			b.WriteString(e.Op)
			b.WriteString("`)")
		}
	case e.Op != "":
		b.WriteString(" in `")
		b.WriteString(e.Op)
		b.WriteString("`")
	}
	if e.Arg != "" {
		b.WriteString(" for arg `")
		b.WriteString(e.Arg)
		b.WriteString("`")
	}
	b.WriteString(": ")
	switch {
	case e.Message != "":
		b.WriteString(e.Message)
	case e.Expected != "":
		fmt.Fprintf(&b, "got %s but expected %s", e.Got, e.Expected)
	default:
		b.WriteString(e.Kind.String())
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the same kind of error. Both *Error values
// and bare ErrorKind values are accepted as targets.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case ErrorKind:
		return e.Kind == t
	case *Error:
		return t != nil && e.Kind == t.Kind
	}
	return false
}

// WithOp returns a copy of the error with the operation name set if it was
// empty.
func (e *Error) WithOp(op string) *Error {
	if e.Op != "" {
		return e
	}
	clone := *e
	clone.Op = op
	return &clone
}

// WithCall returns a copy of the error attributed to the registered
// filter, test or function name. An empty Op is filled in as well.
func (e *Error) WithCall(name string) *Error {
	clone := *e
	clone.Call = name
	if clone.Op == "" {
		clone.Op = name
	}
	return &clone
}

// NewError creates a new error.
func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Errorf creates a new error with a formatted message.
func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// TypeMismatch reports that op received got while it required expected.
func TypeMismatch(op string, got Value, expected string) *Error {
	return &Error{Kind: ErrTypeMismatch, Op: op, Got: got.Repr(), Expected: expected}
}

// ArgTypeMismatch is TypeMismatch for a named argument of op.
func ArgTypeMismatch(op, arg string, got Value, expected string) *Error {
	return &Error{Kind: ErrTypeMismatch, Op: op, Arg: arg, Got: got.Repr(), Expected: expected}
}

// MissingArgument reports that op was called without the required arg.
func MissingArgument(op, arg string) *Error {
	return &Error{
		Kind:    ErrMissingArgument,
		Op:      op,
		Arg:     arg,
		Message: fmt.Sprintf("`%s` has to have a `%s` argument", op, arg),
	}
}

// InvalidArgument reports an argument that is present but semantically
// invalid.
func InvalidArgument(op, arg, msg string) *Error {
	return &Error{Kind: ErrInvalidArgumentValue, Op: op, Arg: arg, Message: msg}
}

// Undefined reports that a variable path did not resolve.
func Undefined(path string) *Error {
	return &Error{Kind: ErrUndefinedVariable, Message: fmt.Sprintf("variable `%s` not found in context", path)}
}

// NotSortable reports a sort key that cannot take part in a sort.
func NotSortable(key Value) *Error {
	return &Error{Kind: ErrNotSortable, Message: fmt.Sprintf("%s cannot be sorted", key.Repr())}
}

// FieldNotFound reports that a pointer path failed to resolve.
func FieldNotFound(op, path string) *Error {
	return &Error{
		Kind:    ErrFieldNotFound,
		Op:      op,
		Message: fmt.Sprintf("attribute '%s' does not reference a field", path),
	}
}

// Domain reports an arithmetic domain error such as division by zero.
func Domain(op, msg string) *Error {
	return &Error{Kind: ErrDomain, Op: op, Message: msg}
}

// KindOf returns the kind of err if it is (or wraps) an *Error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
