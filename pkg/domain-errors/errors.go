// Package domainerrors carries coded errors across the service boundary.
//
// Services return *Error values; transports map the Code to a status. Stores
// never construct these directly, they return pkg/platform/sentinel facts that
// services translate.
//
// Every Code belongs to exactly one Kind. The four kinds mirror how callers are
// expected to react:
//   - KindValidation: input was malformed; nothing was applied
//   - KindState: the record's lifecycle state forbids the operation; nothing was applied
//   - KindIntegrity: a stored record violates an immutable invariant; that record is unusable
//   - KindNotFound: the referenced entity does not exist
package domainerrors

import (
	"errors"
	"fmt"
)

// Code identifies an error condition in API responses and logs.
type Code string

const (
	CodeValidation         Code = "validation_error"
	CodeInvalidInput       Code = "invalid_input"
	CodeBadRequest         Code = "bad_request"
	CodeInvalidLogicalDate Code = "invalid_logical_date"

	CodeEditBlocked      Code = "edit_blocked"
	CodeAlreadyFinalized Code = "already_finalized"
	CodeRevisionOnDraft  Code = "revision_on_draft"
	CodeDeleteBlocked    Code = "delete_blocked"
	CodeConflict         Code = "conflict"

	CodeIntegrityViolation Code = "integrity_violation"
	CodeInvariantViolation Code = "invariant_violation"

	CodeNotFound Code = "not_found"
	CodeInternal Code = "internal_error"
)

// Kind groups codes into the engine's error taxonomy.
type Kind string

const (
	KindValidation Kind = "ValidationError"
	KindState      Kind = "StateError"
	KindIntegrity  Kind = "IntegrityError"
	KindNotFound   Kind = "NotFoundError"
	KindInternal   Kind = "InternalError"
)

var codeKinds = map[Code]Kind{
	CodeValidation:         KindValidation,
	CodeInvalidInput:       KindValidation,
	CodeBadRequest:         KindValidation,
	CodeInvalidLogicalDate: KindValidation,
	CodeInvariantViolation: KindValidation,
	CodeEditBlocked:        KindState,
	CodeAlreadyFinalized:   KindState,
	CodeRevisionOnDraft:    KindState,
	CodeDeleteBlocked:      KindState,
	CodeConflict:           KindState,
	CodeIntegrityViolation: KindIntegrity,
	CodeNotFound:           KindNotFound,
	CodeInternal:           KindInternal,
}

// Kind returns the taxonomy bucket for the code. Unknown codes are internal.
func (c Code) Kind() Kind {
	if k, ok := codeKinds[c]; ok {
		return k
	}
	return KindInternal
}

// Error is a coded error with an optional cause.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying error. Wrapping nil returns nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// As returns the outermost coded error in the chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether the outermost coded error in the chain carries code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// Is is an alias of HasCode kept for call sites that read better with it.
func Is(err error, code Code) bool {
	return HasCode(err, code)
}

// CodeOf returns the outermost code, or CodeInternal for uncoded errors.
func CodeOf(err error) Code {
	if de, ok := As(err); ok {
		return de.Code
	}
	return CodeInternal
}

// KindOf classifies err into the taxonomy. Nil errors have no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return CodeOf(err).Kind()
}
