package domain

import (
	"errors"
	"fmt"
)

// DomainError represents an expected business failure with a stable
// error code. Codes are part of the client contract: callers branch on
// Code, never on message text.
type DomainError struct {
	Code    string // Stable identifier (e.g. "CLIENT_ID_INVALID")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support; two DomainErrors match when their
// codes match.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// An empty code matches any DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return code == "" || de.Code == code
	}
	return false
}

// ErrorCode extracts the code from an error if it is a DomainError.
func ErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Authorization errors. These codes surface verbatim in API responses,
// so renaming one is a breaking change.
var (
	// ErrClientIDInvalid indicates no client record matches the
	// presented id.
	ErrClientIDInvalid = NewDomainError("CLIENT_ID_INVALID", "client id not recognized")

	// ErrAuthTokenInvalid indicates a secret or token failed signature
	// or hash verification, or is malformed.
	ErrAuthTokenInvalid = NewDomainError("AUTH_TOKEN_INVALID", "token or secret failed verification")

	// ErrAuthTokenMismatched indicates a validly signed token whose
	// payload disagrees with the stored relationship record.
	ErrAuthTokenMismatched = NewDomainError("AUTH_TOKEN_MISMATCHED", "token does not match the pending authorization")

	// ErrUserNotAuthorized covers a missing user, a password mismatch,
	// and a missing prior authorization where one is required.
	ErrUserNotAuthorized = NewDomainError("USER_NOT_AUTHORIZED", "user could not be authorized")

	// ErrRelationshipNotFound indicates a relationship lookup for
	// revocation or consumption returned nothing.
	ErrRelationshipNotFound = NewDomainError("USER_CLIENT_REL_NOT_FOUND", "no such relationship between user and client")

	// ErrStepIDNotFound indicates a step with no associated
	// relationship kind was asked to check or revoke one. This is a
	// caller programming error, not a user error.
	ErrStepIDNotFound = NewDomainError("STEP_ID_NOT_FOUND", "step has no relationship kind")

	// ErrScopeNotFound indicates the issuance request carried no scope.
	ErrScopeNotFound = NewDomainError("SCOPE_NOT_FOUND", "scope missing from request")

	// ErrClientUnofficial indicates a step required an official relay
	// client and the presented one is not.
	ErrClientUnofficial = NewDomainError("CLIENT_UNOFFICIAL", "client is not official")
)

// Session and command errors.
var (
	// ErrSessionNotFound indicates the session id matches no live session.
	ErrSessionNotFound = NewDomainError("SESSION_ID_INVALID", "session not found")

	// ErrQueueFull indicates a session queue is at capacity and the
	// submission was refused.
	ErrQueueFull = NewDomainError("QUEUE_FULL", "session queue is full")

	// ErrPluginNotFound indicates no plugin claimed a command and no
	// fallback was configured.
	ErrPluginNotFound = NewDomainError("PLUGIN_NOT_FOUND", "no plugin can handle this command")
)

// Account errors.
var (
	// ErrUsernameTaken indicates a registration attempt for an existing
	// username.
	ErrUsernameTaken = NewDomainError("USERNAME_TAKEN", "username is already taken")

	// ErrSettingsKeyNotFound indicates a required field was missing
	// from a mutation document.
	ErrSettingsKeyNotFound = NewDomainError("SETTINGS_KEY_NOT_FOUND", "required field missing from request document")
)

// System errors. These are not part of the recoverable taxonomy;
// handlers report them as server faults.
var (
	// ErrInternal indicates an unexpected server-side failure.
	ErrInternal = NewDomainError("INTERNAL_ERROR", "internal server error")

	// ErrStorage indicates the record store failed.
	ErrStorage = NewDomainError("STORAGE_ERROR", "storage error")
)
