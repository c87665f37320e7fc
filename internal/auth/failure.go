package auth

import (
	stderrors "errors"

	"todoapp/internal/errors"
)

// Failure is a specific reason a token or identity was rejected. Every
// Failure unwraps to errors.ErrUnauthorized so callers can treat them alike;
// the reason itself is for logs and metrics, never for the client.
type Failure struct {
	reason string
}

func (f *Failure) Error() string { return "unauthorized: " + f.reason }

func (f *Failure) Unwrap() error { return errors.ErrUnauthorized }

// Reason returns the short machine-readable cause.
func (f *Failure) Reason() string { return f.reason }

var (
	ErrTokenMalformed      = &Failure{reason: "malformed"}
	ErrTokenBadSignature   = &Failure{reason: "bad_signature"}
	ErrTokenExpired        = &Failure{reason: "expired"}
	ErrTokenMissingSubject = &Failure{reason: "missing_subject"}
	ErrTokenMissing        = &Failure{reason: "missing_token"}
	ErrUnknownSubject      = &Failure{reason: "unknown_subject"}
	ErrInactiveAccount     = &Failure{reason: "inactive_account"}
)

// FailureReason extracts the reason from err, or "unknown".
func FailureReason(err error) string {
	var f *Failure
	if stderrors.As(err, &f) {
		return f.reason
	}
	return "unknown"
}
