// Package common contains shared constants and sentinel errors used across
// PadiPay client components. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Store-level errors.
	ErrNotFound = errors.New("not found")

	// Auth/session errors.
	ErrUnauthorized         = errors.New("unauthorized")
	ErrSessionExpired       = errors.New("session expired")
	ErrStorageInconsistency = errors.New("session storage inconsistent")

	// Biometric errors. ErrBiometricUnavailable is a capability fact, not a
	// failure: hardware or enrollment is missing and password login applies.
	ErrBiometricUnavailable   = errors.New("biometric unavailable")
	ErrBiometricNotEnrolled   = errors.New("biometric re-enrollment required")
	ErrBiometricTokenRejected = errors.New("biometric token rejected")

	// User-interaction errors.
	ErrPromptCancelled = errors.New("prompt cancelled")

	// Flow-control errors.
	ErrBusy       = errors.New("operation already in progress")
	ErrValidation = errors.New("validation error")
)
