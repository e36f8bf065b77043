package messaging

import (
	"errors"
	"fmt"
)

// ErrorKind is a stable category for domain errors raised while executing
// Sequence requests. Callers should branch on ErrorKind, not on messages.
type ErrorKind string

const (
	KindAccessDenied       ErrorKind = "AccessDenied"
	KindNoSuchData         ErrorKind = "NoSuchData"
	KindNoSuchEntry        ErrorKind = "NoSuchEntry"
	KindDataExists         ErrorKind = "DataExists"
	KindInvalidOwners      ErrorKind = "InvalidOwners"
	KindInvalidPermissions ErrorKind = "InvalidPermissions"
	KindInvalidOperation   ErrorKind = "InvalidOperation"
	KindNotResponsible     ErrorKind = "NotResponsible"
	KindInternal           ErrorKind = "Internal"
)

// Error is the domain error produced by the execution, authorization and
// routing layers. This package only reshapes it into responses.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is matches another *Error of the same Kind, so sentinel values such as
// ErrNoSuchData work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind && (t.Message == "" || t.Message == e.Message)
}

func NewError(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

func WrapError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// Kind-only sentinels for errors.Is.
var (
	ErrAccessDenied       = &Error{Kind: KindAccessDenied}
	ErrNoSuchData         = &Error{Kind: KindNoSuchData}
	ErrNoSuchEntry        = &Error{Kind: KindNoSuchEntry}
	ErrDataExists         = &Error{Kind: KindDataExists}
	ErrInvalidOwners      = &Error{Kind: KindInvalidOwners}
	ErrInvalidPermissions = &Error{Kind: KindInvalidPermissions}
	ErrInvalidOperation   = &Error{Kind: KindInvalidOperation}
	ErrNotResponsible     = &Error{Kind: KindNotResponsible}
)

// IsKind reports whether err is (or wraps) an *Error with the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return KindOf(err) == kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}
