package api

import (
	"errors"
	"fmt"
)

// ValidationError is raised locally, before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
	}
	return "validation failed: " + e.Reason
}

// AuthError means the token is missing, expired or rejected. The session
// layer resolves every AuthError by forcing a logout.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	if e.Reason == "" {
		return "authentication rejected"
	}
	return "authentication rejected: " + e.Reason
}

// ServerRejection is a structured refusal of a well-formed request. The
// reason is surfaced to the user verbatim.
type ServerRejection struct {
	StatusCode int
	Reason     string
}

func (e *ServerRejection) Error() string {
	return fmt.Sprintf("server rejected request (%d): %s", e.StatusCode, e.Reason)
}

// NotFoundError means the referenced entity no longer exists upstream.
// Callers treat it as a no-op removal from local view state.
type NotFoundError struct {
	Resource string
	ID       int32
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

// NetworkError wraps a transport failure: no usable response arrived, so
// local state must not be mutated and the user gets a retry-capable message.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network failure during %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
