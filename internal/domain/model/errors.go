package model

import "fmt"

// AuthError signals a login or credential failure. Fatal at startup;
// recoverable by deleting the token cache and retrying.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("auth: %s", e.Op)
}

func (e *AuthError) Unwrap() error { return e.Err }

// SetupError signals an unrecoverable hub-side failure while ensuring the
// tool-calling integration is installed.
type SetupError struct {
	Op  string
	Err error
}

func (e *SetupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("setup: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("setup: %s", e.Op)
}

func (e *SetupError) Unwrap() error { return e.Err }

// UpstreamErrorKind classifies call-time failures against the hub.
type UpstreamErrorKind string

const (
	// UpstreamTransient is retryable by the caller.
	UpstreamTransient UpstreamErrorKind = "transient"
	// UpstreamAuth means the credential is no longer valid.
	UpstreamAuth UpstreamErrorKind = "auth"
	// UpstreamProtocol is a contract mismatch with the hub, not retryable.
	UpstreamProtocol UpstreamErrorKind = "protocol"
)

// UpstreamError wraps a failed native call with its classification.
type UpstreamError struct {
	Kind UpstreamErrorKind
	Op   string
	Err  error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream %s (%s): %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("upstream %s (%s)", e.Op, e.Kind)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ValidationError rejects bad input for a single id in a batch.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return "validation: " + e.Msg }

// NotFoundError marks an unresolved device id within a batch.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("device with id '%s' not found", e.ID)
}
