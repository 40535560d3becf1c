package scrapemd

import (
	"errors"
	"fmt"
)

// Application error codes. These map to broad failure categories rather than
// to specific failures so callers can make policy decisions (retry, fall
// back, surface to user) without string matching.
const (
	ECONFLICT    = "conflict"    // conflicting state, e.g. record already claimed
	EINVALID     = "invalid"     // validation failed
	ENOTFOUND    = "not_found"   // entity does not exist
	ETIMEOUT     = "timeout"     // operation exceeded its deadline
	EUNAVAILABLE = "unavailable" // collaborator cannot be reached or started
	EINTERNAL    = "internal"    // unexpected internal error
)

// Error represents an application error with a machine-readable code and a
// human-readable message.
type Error struct {
	// Code is one of the constants above.
	Code string

	// Message is a human-readable description of the failure.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("scrapemd error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper to construct an *Error with formatting.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors return EINTERNAL; nil returns the empty string.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors return a generic message; nil returns the empty string.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}
