// Package errors defines the error taxonomy of the sync tool.
// Every failure a run can hit falls into one of four classes, each with a
// sentinel that callers can test with errors.Is.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
var New = errors.New

// Is reports whether any error in err's tree matches target.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
var As = errors.As

var (
	// ErrMalformedInput indicates input that is not valid JSON or not the expected shape.
	ErrMalformedInput = errors.New("malformed input")

	// ErrMissingCredential indicates a required identifier or key is absent.
	ErrMissingCredential = errors.New("missing credential")

	// ErrCollaboratorFailure indicates the remote fetch/write collaborator failed.
	ErrCollaboratorFailure = errors.New("collaborator failure")

	// ErrUnsupportedOption indicates an unrecognized format or style.
	ErrUnsupportedOption = errors.New("unsupported option")
)

// MalformedInputError describes input that could not be decoded.
type MalformedInputError struct {
	Source  string
	Message string
	Err     error
}

// Error implements the error interface
func (e *MalformedInputError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Source != "" {
		return fmt.Sprintf("malformed %s: %s", e.Source, msg)
	}
	return fmt.Sprintf("malformed input: %s", msg)
}

// Unwrap implements errors.Unwrap
func (e *MalformedInputError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// NewMalformedInputError creates a new MalformedInputError
func NewMalformedInputError(source, message string, err error) *MalformedInputError {
	return &MalformedInputError{Source: source, Message: message, Err: err}
}

// MissingCredentialError lists the settings that must be provided before
// any network activity is attempted.
type MissingCredentialError struct {
	Names []string
	Hint  string
}

// Error implements the error interface
func (e *MissingCredentialError) Error() string {
	msg := fmt.Sprintf("missing %s", strings.Join(e.Names, ", "))
	if e.Hint != "" {
		msg += ". " + e.Hint
	}
	return msg
}

// Is implements errors.Is support
func (e *MissingCredentialError) Is(target error) bool {
	return target == ErrMissingCredential
}

// NewMissingCredentialError creates a new MissingCredentialError
func NewMissingCredentialError(hint string, names ...string) *MissingCredentialError {
	return &MissingCredentialError{Names: names, Hint: hint}
}

// CollaboratorError is returned when the remote collection API reports a
// failure. StatusCode is zero when the request never got a response.
type CollaboratorError struct {
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface
func (e *CollaboratorError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s failed (status %d): %s", e.Operation, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s failed (status %d)", e.Operation, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s failed: %v", e.Operation, e.Err)
	default:
		return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
	}
}

// Unwrap implements errors.Unwrap
func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *CollaboratorError) Is(target error) bool {
	return target == ErrCollaboratorFailure
}

// NewCollaboratorError creates a new CollaboratorError
func NewCollaboratorError(operation string, statusCode int, message string, err error) *CollaboratorError {
	return &CollaboratorError{
		Operation:  operation,
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

// UnsupportedOptionError reports an option value outside the accepted set.
type UnsupportedOptionError struct {
	Option  string
	Value   string
	Allowed []string
}

// Error implements the error interface
func (e *UnsupportedOptionError) Error() string {
	quoted := make([]string, len(e.Allowed))
	for i, a := range e.Allowed {
		quoted[i] = "'" + a + "'"
	}
	return fmt.Sprintf("unsupported %s '%s'. Use %s", e.Option, e.Value, strings.Join(quoted, " or "))
}

// Is implements errors.Is support
func (e *UnsupportedOptionError) Is(target error) bool {
	return target == ErrUnsupportedOption
}

// NewUnsupportedOptionError creates a new UnsupportedOptionError
func NewUnsupportedOptionError(option, value string, allowed ...string) *UnsupportedOptionError {
	return &UnsupportedOptionError{Option: option, Value: value, Allowed: allowed}
}

// IsMalformedInput reports whether err is a MalformedInput error.
func IsMalformedInput(err error) bool {
	return errors.Is(err, ErrMalformedInput)
}

// IsMissingCredential reports whether err is a MissingCredential error.
func IsMissingCredential(err error) bool {
	return errors.Is(err, ErrMissingCredential)
}

// IsCollaboratorFailure reports whether err is a CollaboratorFailure error.
func IsCollaboratorFailure(err error) bool {
	return errors.Is(err, ErrCollaboratorFailure)
}

// IsUnsupportedOption reports whether err is an UnsupportedOption error.
func IsUnsupportedOption(err error) bool {
	return errors.Is(err, ErrUnsupportedOption)
}

// Describe renders err as the text shown to a caller. It never panics and
// returns an empty string for a nil error.
func Describe(err error) string {
	if err == nil {
		return ""
	}
	var prefix string
	switch {
	case IsMalformedInput(err):
		prefix = "Error parsing API data"
	case IsCollaboratorFailure(err):
		prefix = "Error talking to Postman"
	default:
		prefix = "Error"
	}
	return fmt.Sprintf("%s: %v", prefix, err)
}
