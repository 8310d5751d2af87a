// Package api is the client for the PadiPay backend auth surface: login,
// biometric login, session probe, transaction-PIN endpoints and account
// deletion. Responses use the JSON envelope {success, data|message}.
package api

import "context"

// Client defines the backend operations consumed by the auth subsystem.
//
// All methods honor context cancellation and deadlines. Authenticated calls
// carry the current session token as a Bearer header; a missing token
// surfaces as common.ErrUnauthorized without a network round trip.
type Client interface {
	// Login exchanges email+password for a session token and user.
	Login(ctx context.Context, email, password string) (*LoginResult, error)

	// BiometricLogin exchanges a stored opaque biometric token for a fresh
	// session token.
	BiometricLogin(ctx context.Context, biometricToken string) (*LoginResult, error)

	// BiometricEnroll asks the backend to issue an opaque long-lived biometric
	// token bound to the user and this device. Requires a valid session.
	BiometricEnroll(ctx context.Context, userID, deviceID string) (string, error)

	// Profile fetches the current user. Doubles as the session-validity probe.
	Profile(ctx context.Context) (*User, error)

	// DeleteAccount permanently deletes the account. Requires the password.
	DeleteAccount(ctx context.Context, password string) error

	// PinStatus reports whether a transaction PIN has been set.
	PinStatus(ctx context.Context) (bool, error)

	// SetupPin creates the transaction PIN.
	SetupPin(ctx context.Context, pin, confirmPin string) error

	// VerifyPin checks the transaction PIN. A wrong PIN returns
	// *PinRejectedError; a lockout returns *RateLimitError.
	VerifyPin(ctx context.Context, pin string) error

	// ChangePin replaces the transaction PIN.
	ChangePin(ctx context.Context, currentPin, newPin string) error

	// ForgotPinRequest starts PIN recovery (sends an OTP out of band).
	ForgotPinRequest(ctx context.Context) error

	// ForgotPinVerify checks the OTP and returns a short-lived reset token.
	ForgotPinVerify(ctx context.Context, otp string) (string, error)

	// ForgotPinReset sets a new PIN using the reset token.
	ForgotPinReset(ctx context.Context, resetToken, newPin string) error
}
