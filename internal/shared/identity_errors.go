package shared

import (
	"errors"
	"fmt"
)

// Canonical identity error codes. Adapters translate provider specific failures
// into one of these so that user-facing messages come from a single table.
const (
	CodeUserNotFound        = "auth/user-not-found"
	CodeWrongPassword       = "auth/wrong-password"
	CodeInvalidCredential   = "auth/invalid-credential"
	CodeInvalidEmail        = "auth/invalid-email"
	CodeEmailAlreadyInUse   = "auth/email-already-in-use"
	CodeWeakPassword        = "auth/weak-password"
	CodeTooManyRequests     = "auth/too-many-requests"
	CodeUserDisabled        = "auth/user-disabled"
	CodeNetworkFailed       = "auth/network-request-failed"
	CodeMissingPassword     = "auth/missing-password"
	CodeOperationNotAllowed = "auth/operation-not-allowed"
	CodeInvalidToken        = "auth/invalid-id-token"
	CodeUnavailable         = "auth/unavailable"
	CodeInternal            = "auth/internal-error"
)

// IdentityError is a failure reported by the identity store.
type IdentityError struct {
	Code string
	Err  error
}

func (e *IdentityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("identity: %s: %v", e.Code, e.Err)
	}
	return "identity: " + e.Code
}

func (e *IdentityError) Unwrap() error { return e.Err }

// NewIdentityError wraps err under a canonical code.
func NewIdentityError(code string, err error) *IdentityError {
	return &IdentityError{Code: code, Err: err}
}

// IdentityErrorCode extracts the canonical code from err, or "" when err is not an IdentityError.
func IdentityErrorCode(err error) string {
	var idErr *IdentityError
	if errors.As(err, &idErr) {
		return idErr.Code
	}
	return ""
}
