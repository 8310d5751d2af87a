package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/obiajulum/padipay/internal/common"
)

// Machine-readable error codes returned in the envelope's data.code field.
const (
	CodeRequiresVerification  = "requires_verification"
	CodeAccountNotFound       = "account_not_found"
	CodeInvalidCredentials    = "invalid_credentials"
	CodeInvalidBiometricToken = "invalid_biometric_token"
	CodePinNotSet             = "pin_not_set"
)

// APIError is a backend rejection with a status, an optional machine code and
// a user-facing message. A 401 unwraps to common.ErrUnauthorized so callers
// can trigger the session-expired path with errors.Is.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	if e.Status == 401 {
		return common.ErrUnauthorized
	}
	return nil
}

// RateLimitError is a 429-class rejection. RetryAfter is the server-provided
// cool-down; zero when the server did not specify one.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: %s (retry after %s)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limited: %s", e.Message)
}

// PinRejectedError is a wrong-PIN rejection carrying the server-reported
// remaining attempts before lockout.
type PinRejectedError struct {
	RemainingAttempts int
	Message           string
}

func (e *PinRejectedError) Error() string {
	return fmt.Sprintf("pin rejected: %s (%d attempts remaining)", e.Message, e.RemainingAttempts)
}

// NetworkErrorKind distinguishes the retryable-error affordances the UI shows:
// a timeout, a connectivity failure, and a server-side 5xx.
type NetworkErrorKind int

const (
	NetworkTimeout NetworkErrorKind = iota
	NetworkConnect
	NetworkServer
)

func (k NetworkErrorKind) String() string {
	switch k {
	case NetworkTimeout:
		return "timeout"
	case NetworkConnect:
		return "connect"
	case NetworkServer:
		return "server"
	default:
		return "unknown"
	}
}

// NetworkError is a transport-level or 5xx failure: the request may be retried
// as-is once connectivity or the backend recovers.
type NetworkError struct {
	Kind NetworkErrorKind
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network %s: %v", e.Kind, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsRateLimited reports whether err is a 429-class rejection.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsNetwork reports whether err is a transport/5xx failure.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
