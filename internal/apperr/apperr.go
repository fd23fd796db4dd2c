// Package apperr defines the error taxonomy every handler failure is
// normalized into before leaving the process: authentication, field
// validation, not-found and internal. The HTTP middleware maps each kind to
// a status code and the uniform response envelope.
package apperr

import "fmt"

type Kind int

const (
	KindInternal Kind = iota
	KindAuthentication
	KindValidation
	KindNotFound
)

type Error struct {
	Kind    Kind
	Message string
	// Fields holds per-field validation messages, keyed by the JSON field
	// name, each with one or more human-readable reasons.
	Fields map[string][]string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Authentication reports failed credentials or a bad/expired token.
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// AuthenticationFields reports an authentication failure carrying per-field
// detail, for endpoints whose input errors are credential failures.
func AuthenticationFields(message string, fields map[string][]string) *Error {
	return &Error{Kind: KindAuthentication, Message: message, Fields: fields}
}

// Validation reports one or more per-field schema violations.
func Validation(fields map[string][]string) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed.", Fields: fields}
}

// FieldError is shorthand for a single-field validation failure.
func FieldError(field, message string) *Error {
	return Validation(map[string][]string{field: {message}})
}

// NotFound reports a missing resource. Per the API's status policy this is
// surfaced to clients as a 400-class error, and the same error covers a
// resource owned by somebody else so existence never leaks.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Internal wraps an unexpected failure. The wrapped error is logged
// server-side only; clients see the message.
func Internal(message string, err error) *Error {
	return &Error{Kind: KindInternal, Message: message, Err: err}
}
