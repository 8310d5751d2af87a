package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/obiajulum/padipay/internal/client/api"
	"github.com/obiajulum/padipay/internal/client/session"
	"github.com/obiajulum/padipay/internal/common"
)

// report prints guidance for err. An authorization failure from an
// authenticated call is more than a message: the session-expiry transition
// runs so the dead token never outlives the Authenticated surface.
func (a *App) report(ctx context.Context, err error) {
	if errors.Is(err, common.ErrUnauthorized) || errors.Is(err, common.ErrSessionExpired) {
		a.sessionExpired(ctx)
		return
	}
	fmt.Println(describeError(err))
}

// sessionExpired destroys the stored token, keeps the biometric binding and
// moves to the next login surface.
func (a *App) sessionExpired(ctx context.Context) {
	fmt.Println(describeError(common.ErrSessionExpired))

	res, err := a.session.HandleAuthFailure(ctx)
	a.user = nil
	if err != nil {
		a.log.Error(ctx, "session expiry transition failed", "error", err)
		a.state = session.StatePasswordForm
		return
	}
	a.applyResolution(res)
}

// describeError maps the error taxonomy to user guidance. Network-class
// failures get a distinct, retryable message per kind instead of a generic
// "something went wrong".
func describeError(err error) string {
	switch {
	case errors.Is(err, common.ErrValidation):
		return fmt.Sprintf("Check your input: %v", err)
	case errors.Is(err, common.ErrPromptCancelled):
		return "Cancelled."
	case errors.Is(err, common.ErrBusy):
		return "Already working on it, hold on."
	case errors.Is(err, common.ErrStorageInconsistency):
		return "Could not save your session on this device. Please try logging in again."
	case errors.Is(err, common.ErrBiometricNotEnrolled):
		return "Biometric login is not set up on this device. Log in with your password."
	case errors.Is(err, common.ErrSessionExpired):
		return "Your session has expired. Please log in again."
	}

	var rl *api.RateLimitError
	if errors.As(err, &rl) {
		if rl.RetryAfter > 0 {
			return fmt.Sprintf("Too many attempts. Try again in %s.", rl.RetryAfter)
		}
		return "Too many attempts. Try again later."
	}

	var ne *api.NetworkError
	if errors.As(err, &ne) {
		switch ne.Kind {
		case api.NetworkTimeout:
			return "The request timed out. Check your connection and 'retry'."
		case api.NetworkConnect:
			return "Could not reach PadiPay. Check your connection and 'retry'."
		default:
			return "PadiPay is having trouble right now. Please 'retry' in a moment."
		}
	}

	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case api.CodeRequiresVerification:
			return "Your email is not verified yet. Check your inbox for the verification link."
		case api.CodeAccountNotFound:
			return "No account with that email. Register in the PadiPay app first."
		case api.CodeInvalidCredentials:
			return "Incorrect email or password."
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}

	return fmt.Sprintf("Error: %v", err)
}
