// Package domainerrors defines the coded error taxonomy shared by services
// and the HTTP boundary. Stores return sentinel errors (pkg/platform/sentinel);
// services translate them into coded errors; httputil maps codes to statuses.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain failure.
type Code string

const (
	// CodeValidation marks field-level rule violations on a command payload.
	CodeValidation Code = "validation_failed"
	// CodeNotFound marks a missing referenced entity (person, relation edge).
	CodeNotFound Code = "not_found"
	// CodeConflict marks a uniqueness violation (duplicate personal id, duplicate edge).
	CodeConflict Code = "conflict"
	// CodeBadRequest marks structurally malformed input.
	CodeBadRequest Code = "bad_request"
	// CodeInternal marks unexpected infrastructure failures.
	CodeInternal Code = "internal_error"
)

// Error is a coded domain error. Message is developer-facing English; Key and
// Args, when set, let the boundary resolve a localized user-facing message.
// Fields carries per-field message keys for validation failures.
type Error struct {
	Code    Code
	Message string
	Key     string
	Args    []any
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds a coded error with a plain message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewKeyed builds a coded error whose user-facing message is resolved from
// the message catalog by key, formatted with args. Message falls back to the
// key so logs stay readable without the catalog.
func NewKeyed(code Code, key string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf("%s %v", key, args), Key: key, Args: args}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// NewValidation builds a validation error carrying a field -> message-key map.
func NewValidation(fields map[string]string) *Error {
	return &Error{Code: CodeValidation, Message: "validation failed", Fields: fields}
}

// HasCode reports whether err (or anything it wraps) carries the given code.
func HasCode(err error, code Code) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// GetCode extracts the code from err, defaulting to CodeInternal.
func GetCode(err error) Code {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return CodeInternal
}
