// Package errors provides structured error types for langpack.
//
// Every failure that can occur while resolving a repository's language packs
// maps to one machine-readable [Code]. The codes mirror the failure classes of
// the resolution pipeline:
//
//   - INVALID_URI: the repository "languages" URI could not be parsed
//   - CONFIG: required provider configuration is missing or unknown
//   - NETWORK_ERROR: transport failure (DNS, TLS, timeout)
//   - PROVIDER_ERROR: the provider answered with a non-2xx status
//   - DECODE_ERROR: the manifest was present but could not be decoded
//   - NO_MANIFEST: the provider answered but no usable manifest exists
//   - RATE_LIMITED: a previous failure is still cooling down
//
// All of them are recovered at the per-repository boundary; none is fatal to
// the process.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeConfig, "gitea requires a base URL")
//	if errors.Is(err, errors.ErrCodeConfig) {
//	    // skip the repository
//	}
//
//	err := errors.Wrap(errors.ErrCodeNetwork, origErr, "fetch %s", url)
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for the resolution pipeline.
const (
	// Input errors
	ErrCodeInvalidURI    Code = "INVALID_URI"
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidLocale Code = "INVALID_LOCALE"
	ErrCodeConfig        Code = "CONFIG"

	// Remote errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeProvider    Code = "PROVIDER_ERROR"
	ErrCodeDecode      Code = "DECODE_ERROR"
	ErrCodeNoManifest  Code = "NO_MANIFEST"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
// A *CooldownError matches ErrCodeRateLimited.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error carries no code.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	var ce *CooldownError
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// Detail returns the messages of err and its causes joined with ": ",
// without codes. Causes that are not *Error contribute their Error text.
func Detail(err error) string {
	var parts []string
	for err != nil {
		e, ok := err.(*Error)
		if !ok {
			parts = append(parts, err.Error())
			break
		}
		if e.Message != "" {
			parts = append(parts, e.Message)
		}
		err = e.Cause
	}
	return strings.Join(parts, ": ")
}

// CooldownError is returned while a previously recorded provider failure is
// still suppressing requests for a repository.
type CooldownError struct {
	Slug       string    // Repository slug
	Provider   string    // Provider name (github, gitlab, ...)
	StatusCode int       // HTTP status of the recorded failure
	Until      time.Time // When requests resume
}

// Error implements the error interface.
func (e *CooldownError) Error() string {
	if e.Until.IsZero() {
		return fmt.Sprintf("rate limited: %s (%s) last answered %d", e.Slug, e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("rate limited: %s (%s) last answered %d, retry after %s",
		e.Slug, e.Provider, e.StatusCode, e.Until.UTC().Format(time.RFC3339))
}

// Code returns the error code for this error type.
func (e *CooldownError) Code() Code {
	return ErrCodeRateLimited
}
