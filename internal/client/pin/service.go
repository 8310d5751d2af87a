// Package pin gates sensitive actions behind the server-verified transaction
// PIN. The Service wraps the backend PIN endpoints; the Gate wraps a
// continuation and only runs it after a successful verification.
package pin

import (
	"context"
	"fmt"
	"regexp"

	"github.com/obiajulum/padipay/internal/client/api"
	"github.com/obiajulum/padipay/internal/common"
	"github.com/obiajulum/padipay/internal/logging"
)

// pinPattern is the client-side shape guard. The server is the authority;
// this only keeps obviously malformed input off the wire.
var pinPattern = regexp.MustCompile(`^\d{4,6}$`)

// ValidFormat reports whether pin is 4 to 6 digits.
func ValidFormat(pin string) bool {
	return pinPattern.MatchString(pin)
}

type Service struct {
	api api.Client
	log logging.Logger
}

func NewService(apiClient api.Client, log logging.Logger) *Service {
	return &Service{api: apiClient, log: log}
}

// Status reports whether a transaction PIN has been set for the account.
func (s *Service) Status(ctx context.Context) (bool, error) {
	return s.api.PinStatus(ctx)
}

// Setup creates the PIN. Both values must be well-formed and equal before the
// request goes out.
func (s *Service) Setup(ctx context.Context, pin, confirm string) error {
	if !ValidFormat(pin) {
		return fmt.Errorf("%w: pin must be 4 to 6 digits", common.ErrValidation)
	}
	if pin != confirm {
		return fmt.Errorf("%w: pins do not match", common.ErrValidation)
	}
	return s.api.SetupPin(ctx, pin, confirm)
}

// Verify checks the PIN server-side. A wrong PIN surfaces as
// *api.PinRejectedError, a lockout as *api.RateLimitError.
func (s *Service) Verify(ctx context.Context, pin string) error {
	if !ValidFormat(pin) {
		return fmt.Errorf("%w: pin must be 4 to 6 digits", common.ErrValidation)
	}
	return s.api.VerifyPin(ctx, pin)
}

// Change replaces the PIN after verifying the current one server-side.
func (s *Service) Change(ctx context.Context, currentPin, newPin string) error {
	if !ValidFormat(currentPin) || !ValidFormat(newPin) {
		return fmt.Errorf("%w: pin must be 4 to 6 digits", common.ErrValidation)
	}
	return s.api.ChangePin(ctx, currentPin, newPin)
}

// RequestReset starts PIN recovery; the server sends an OTP out of band.
func (s *Service) RequestReset(ctx context.Context) error {
	return s.api.ForgotPinRequest(ctx)
}

// VerifyReset exchanges the OTP for a short-lived reset token.
func (s *Service) VerifyReset(ctx context.Context, otp string) (string, error) {
	return s.api.ForgotPinVerify(ctx, otp)
}

// CompleteReset sets a new PIN using the reset token.
func (s *Service) CompleteReset(ctx context.Context, resetToken, newPin string) error {
	if !ValidFormat(newPin) {
		return fmt.Errorf("%w: pin must be 4 to 6 digits", common.ErrValidation)
	}
	return s.api.ForgotPinReset(ctx, resetToken, newPin)
}
