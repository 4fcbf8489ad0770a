// Package bofhtypes defines the error taxonomy of the shell.
// Every error here except a login failure leaves the session alive; the session loop
// classifies them with errors.Is and errors.As.
package bofhtypes

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownCommand is returned when no catalog entry matches the typed command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrBadParameterSpec is returned when the service sent a malformed parameter spec.
	ErrBadParameterSpec = errors.New("bad param spec")
	// ErrMissingFormatSpec is returned when structured data has no display format.
	ErrMissingFormatSpec = errors.New("no format suggestion exists")
	// ErrInputAbort is returned when the operator ends input while being prompted.
	ErrInputAbort = errors.New("input aborted")
	// ErrInterrupted is returned by terminals when the operator presses Ctrl-C.
	ErrInterrupted = errors.New("interrupted")
	// ErrInternal marks a broken internal invariant.
	ErrInternal = errors.New("internal error")
)

// AmbiguousCommandError is returned when more than one catalog segment matches a typed
// token at the same level.
type AmbiguousCommandError struct {
	Level      int
	Count      int
	Candidates []string
}

func (e *AmbiguousCommandError) Error() string {
	return fmt.Sprintf("ambiguous command, %d matches: %s", e.Count, strings.Join(e.Candidates, ", "))
}

// ServiceError is a failed remote call or an error payload from the service.
// Message is meant for the operator.
type ServiceError struct {
	Method  string
	Message string
	Err     error
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a ServiceError for method with an operator-facing message.
func NewServiceError(method string, err error, format string, args ...interface{}) *ServiceError {
	return &ServiceError{Method: method, Message: fmt.Sprintf(format, args...), Err: err}
}

// FormattingError is a template/field mismatch while rendering one record.
type FormattingError struct {
	Template string
	Reason   string
}

func (e *FormattingError) Error() string {
	return fmt.Sprintf("cannot format %q: %s", e.Template, e.Reason)
}
