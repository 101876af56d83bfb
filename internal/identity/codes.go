// internal/identity/codes.go
package identity

import (
	"errors"
	"fmt"
)

// Code is the closed set of provider failure codes. Every failure a
// provider can report is tagged with one of these; downstream mapping
// tables are checked for exhaustiveness against AllCodes.
type Code string

const (
	CodeInvalidCredential Code = "invalid-credential"
	CodeUserNotFound      Code = "user-not-found"
	CodeUserDisabled      Code = "user-disabled"
	CodeEmailInUse        Code = "email-already-in-use"
	CodeWeakPassword      Code = "weak-password"
	CodeInvalidEmail      Code = "invalid-email"
	CodeTooManyRequests   Code = "too-many-requests"
	CodeNetworkFailure    Code = "network-request-failed"
	CodeFlowCancelled     Code = "cancelled-by-user"
	CodeUnconfigured      Code = "provider-unconfigured"
	CodeUnknown           Code = "unknown"
)

// AllCodes returns every defined code. Keep in sync with the constants
// above; the message-table test depends on it.
func AllCodes() []Code {
	return []Code{
		CodeInvalidCredential,
		CodeUserNotFound,
		CodeUserDisabled,
		CodeEmailInUse,
		CodeWeakPassword,
		CodeInvalidEmail,
		CodeTooManyRequests,
		CodeNetworkFailure,
		CodeFlowCancelled,
		CodeUnconfigured,
		CodeUnknown,
	}
}

// Error is a provider failure tagged with its code.
type Error struct {
	Code  Code
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Code, e.cause)
	}
	return string(e.Code)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// E wraps a cause with a provider code. cause may be nil.
func E(code Code, cause error) *Error {
	return &Error{Code: code, cause: cause}
}

// CodeOf extracts the code from err, or CodeUnknown for untagged errors.
func CodeOf(err error) Code {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code
	}
	return CodeUnknown
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
